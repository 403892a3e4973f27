// Package drawutil draws the decorations and bars of the window manager:
// filled rectangles, cleared backgrounds, surface copies and text.
//
// A Surface pairs a drawable with two ways of drawing on it. Rectangles,
// clears and copies go through a cairo context that buffers pixels on the
// client. Text goes straight to the drawable through the surface's graphics
// context. Every operation keeps the two views coherent: vector drawing is
// flushed before it returns and before text is drawn, and the cairo cache is
// invalidated after text is drawn.
//
// Drawing never fails from the caller's point of view. Bad colors fall back
// to a default, operations on an uninitialized Surface are skipped, and
// server errors are logged.
package drawutil
