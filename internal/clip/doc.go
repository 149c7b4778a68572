// Package clip binds a video file to its probed metadata and derives the
// decoder parameters for a time window of it.
//
// A Clip is immutable. Subclip returns a new Clip over the same file and
// Frames spawns a fresh decoder each time it is called, so clips can be
// shared and re-read freely.
package clip
