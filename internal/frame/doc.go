// Package frame owns decoded frame buffers and the pull-based Sequence
// capability every pipeline stage implements.
//
// A Frame exclusively owns one width*height*channels byte buffer. Typed pixel
// views (Pixels, PixelsMut) borrow that buffer through a pixel.Layout and must
// not outlive the frame. A Sequence hands out one frame per Next call; stages
// never keep a frame between calls, so at most one frame per stage is alive.
package frame
