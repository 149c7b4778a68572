// Package logs reads back the daily log files written by internal/logging.
//
// Tail returns the last lines of a file or everything after a byte offset,
// optionally waiting for new lines. Latest finds the newest reel-*.log in a
// directory so "reel logs" works after midnight rollover.
package logs
