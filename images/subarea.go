package images

import (
	"errors"
	"image"
	"image/draw"
)

// SubArea returns the columns [x, x+width) of frame over its full height,
// clamped to the frame bounds. The rectangle is relative to the frame origin and
// may be empty when x lies past the right edge.
func SubArea(frame image.Image, x, width int) (*image.RGBA, image.Rectangle, error) {
	if frame == nil {
		return nil, image.Rectangle{}, errors.New("nil frame")
	}
	b := frame.Bounds()
	if x < 0 {
		x = 0
	}
	if width < 0 {
		width = 0
	}
	x0 := min(x, b.Dx())
	x1 := min(x0+width, b.Dx())
	rel := image.Rect(x0, 0, x1, b.Dy())
	abs := rel.Add(b.Min)

	if rgba, ok := frame.(*image.RGBA); ok {
		return rgba.SubImage(abs).(*image.RGBA), rel, nil
	}
	out := image.NewRGBA(image.Rect(0, 0, rel.Dx(), rel.Dy()))
	draw.Draw(out, out.Bounds(), frame, abs.Min, draw.Src)
	return out, rel, nil
}
