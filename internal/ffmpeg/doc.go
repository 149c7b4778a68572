// Package ffmpeg streams raw video frames through external ffmpeg processes.
//
// Source spawns a decoder that writes fixed-size rawvideo frames to its
// stdout and reads them one at a time, never past a frame cap. Sink spawns an
// encoder and feeds it frames on stdin. Both collect the process's stderr in
// the background into a bounded tail that is attached to errors, so a chatty
// process never blocks on its diagnostic pipe.
//
// Process creation goes through a Launcher so the protocol can be exercised
// in tests without ffmpeg installed.
package ffmpeg
