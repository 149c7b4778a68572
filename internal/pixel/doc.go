// Package pixel describes raw pixel layouts and reinterprets byte buffers as
// typed pixels without copying.
//
// Key types:
//   - Format: closed set of interleaved 8-bit layouts (rgb24, rgba, bgr24,
//     gray). The format name is also the ffmpeg -pix_fmt tag used on both the
//     decode and encode side.
//   - RGB, BGR, RGBAPixel, Y: fixed-size pixel structures.
//   - Layout: a verified binding between a pixel structure and a Format.
//
// A Layout is the only way to obtain a typed view. Bind checks once that the
// structure is exactly Channels() bytes wide, byte aligned, and declares the
// same channel order as the format; views built from it are then plain slice
// reinterpretations.
package pixel
