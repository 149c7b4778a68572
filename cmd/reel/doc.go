// Package main hosts the reel CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once per invocation, builds
// the structured logger, and turns terminal arguments into clip, effect and
// render calls. Subcommands stay thin: probing, counting and rendering live in
// the internal packages and are only surfaced here.
package main
