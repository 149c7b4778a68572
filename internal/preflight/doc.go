// Package preflight provides readiness checks for the external tools and
// filesystem paths reel depends on.
//
// "reel check" runs RunAll and prints the results. "reel render" checks the
// encoder binary with CheckBinary before it spawns anything.
package preflight
