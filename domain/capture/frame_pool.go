package capture

import (
	"image"
	"sync"
)

// Reusable frame pool. Each detection cycle grabs two small regions and drops
// them once the cycle is scored, so the backing slices are recycled instead of
// being reallocated on every trigger.
//
// Usage: acquireFrame(w, h) returns a *image.RGBA anchored at the origin whose Pix
// length is exactly w*h*4. Consumers call RecycleFrame once they no longer read
// the frame. Frames that are never recycled are simply collected.

var framePool sync.Pool // stores *image.RGBA

// acquireFrame returns a reusable w x h RGBA image with Stride w*4.
func acquireFrame(w, h int) *image.RGBA {
	rect := image.Rect(0, 0, w, h)
	if w <= 0 || h <= 0 {
		return &image.RGBA{Rect: image.Rectangle{}}
	}
	needed := w * h * 4
	var img *image.RGBA
	if v := framePool.Get(); v != nil {
		img = v.(*image.RGBA)
	}
	if img == nil || cap(img.Pix) < needed {
		img = &image.RGBA{Pix: make([]byte, needed), Stride: w * 4, Rect: rect}
	} else {
		img.Stride = w * 4
		img.Rect = rect
		img.Pix = img.Pix[:needed]
	}
	return img
}

// RecycleFrame returns the frame to the pool for potential reuse. The frame
// must no longer be accessed by the caller after invoking RecycleFrame.
func RecycleFrame(img *image.RGBA) {
	if img == nil || img.Pix == nil {
		return
	}
	framePool.Put(img)
}
