package detect

import (
	"image"
)

// ScanGeometry places the scan area as fractions of the screen size.
type ScanGeometry struct {
	Left, Top, Width, Height float64
}

// DefaultScanGeometry is the bottom-right quadrant of the screen.
var DefaultScanGeometry = ScanGeometry{Left: 0.75, Top: 0.75, Width: 0.25, Height: 0.25}

// ScanRegion returns the screen rectangle searched for the HUD border.
func ScanRegion(screenW, screenH int, g ScanGeometry) image.Rectangle {
	left := int(float64(screenW) * g.Left)
	top := int(float64(screenH) * g.Top)
	w := int(float64(screenW) * g.Width)
	h := int(float64(screenH) * g.Height)
	return image.Rect(left, top, left+w, top+h)
}

// LocateColor scans frame row by row, left to right, and returns the first pixel
// within tol of target on every channel, relative to the frame origin.
func LocateColor(frame *image.RGBA, target Color, tol int) (image.Point, error) {
	if frame == nil {
		return image.Point{}, ErrTargetColorNotFound
	}
	b := frame.Bounds()
	w, h := b.Dx(), b.Dy()
	for y := 0; y < h; y++ {
		row := frame.Pix[y*frame.Stride : y*frame.Stride+w*4]
		for x := 0; x < w; x++ {
			i := x * 4
			if target.Matches(row[i], row[i+1], row[i+2], tol) {
				return image.Pt(x, y), nil
			}
		}
	}
	return image.Point{}, ErrTargetColorNotFound
}

// VerticalRun counts the matching pixels from anchor downward in the same column
// and stops at the first mismatch or the frame edge.
func VerticalRun(frame *image.RGBA, anchor image.Point, target Color, tol int) int {
	if frame == nil {
		return 0
	}
	b := frame.Bounds()
	if anchor.X < 0 || anchor.X >= b.Dx() || anchor.Y < 0 {
		return 0
	}
	run := 0
	for y := anchor.Y; y < b.Dy(); y++ {
		i := y*frame.Stride + anchor.X*4
		if !target.Matches(frame.Pix[i], frame.Pix[i+1], frame.Pix[i+2], tol) {
			break
		}
		run++
	}
	return run
}

// CropRegion converts an anchor inside the scan area into the screen rectangle
// holding the HUD icon. Height is the border run; width is fixed and left to the
// capture backend to clip.
func CropRegion(scan image.Rectangle, anchor image.Point, run, width int) image.Rectangle {
	min := scan.Min.Add(anchor)
	return image.Rect(min.X, min.Y, min.X+width, min.Y+run)
}
