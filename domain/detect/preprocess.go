package detect

import (
	"image"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/histogram"
	"github.com/disintegration/imaging"
)

// Both pipelines are pure: inputs are never modified and the same input always
// yields the same output.

// gaussian3 is the 3x3 binomial kernel OpenCV derives for ksize 3 with sigma 0.
var gaussian3 = [9]float64{
	1, 2, 1,
	2, 4, 2,
	1, 2, 1,
}

// NormalizeFrame converts a capture in any layout to opaque RGBA with true color
// channel order. Alpha is discarded.
func NormalizeFrame(img image.Image) *image.RGBA {
	if img == nil {
		return nil
	}
	out := clone.AsRGBA(img)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xFF
	}
	return out
}

// PreprocessTemplate prepares a reference image: grayscale, pixels brighter than
// cutoff zeroed, then one 3x3 erosion.
func PreprocessTemplate(img image.Image, cutoff uint8) *image.Gray {
	g := ToGray(img)
	for i, v := range g.Pix {
		if v > cutoff {
			g.Pix[i] = 0
		}
	}
	return Erode3x3(g)
}

// PreprocessCapture prepares a captured region: grayscale, 3x3 Gaussian blur and
// histogram equalization.
func PreprocessCapture(img image.Image) *image.Gray {
	g := ToGray(img)
	if g.Rect.Empty() {
		return g
	}
	blurred := grayFromNRGBA(imaging.Convolve3x3(g, gaussian3, &imaging.ConvolveOptions{Normalize: true}))
	return EqualizeHist(blurred)
}

// ToGray returns a new 8-bit luminance image anchored at the origin.
func ToGray(img image.Image) *image.Gray {
	if img == nil {
		return image.NewGray(image.Rectangle{})
	}
	if src, ok := img.(*image.Gray); ok {
		b := src.Bounds()
		out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
		for y := 0; y < b.Dy(); y++ {
			copy(out.Pix[y*out.Stride:y*out.Stride+b.Dx()], src.Pix[y*src.Stride:y*src.Stride+b.Dx()])
		}
		return out
	}
	return grayFromNRGBA(imaging.Grayscale(img))
}

// grayFromNRGBA keeps the red channel of an NRGBA image whose channels are equal.
func grayFromNRGBA(src *image.NRGBA) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride:]
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < w; x++ {
			dst[x] = row[x*4]
		}
	}
	return out
}

// Erode3x3 applies one pass of grayscale erosion with a 3x3 all-ones element.
// Neighbours outside the image are ignored.
func Erode3x3(src *image.Gray) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		y0, y1 := max(y-1, 0), min(y+1, h-1)
		for x := 0; x < w; x++ {
			x0, x1 := max(x-1, 0), min(x+1, w-1)
			m := uint8(255)
			for yy := y0; yy <= y1; yy++ {
				row := src.Pix[yy*src.Stride:]
				for xx := x0; xx <= x1; xx++ {
					if row[xx] < m {
						m = row[xx]
					}
				}
			}
			out.Pix[y*out.Stride+x] = m
		}
	}
	return out
}

// EqualizeHist spreads the intensity histogram over [0,255] using the cumulative
// distribution, starting from the darkest occupied bin.
func EqualizeHist(src *image.Gray) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	total := w * h
	if total == 0 {
		return out
	}
	hist := histogram.NewRGBAHistogram(src)
	bins := hist.R.Bins

	first := 0
	for first < 255 && bins[first] == 0 {
		first++
	}
	var lut [256]uint8
	if bins[first] == total {
		for i := range lut {
			lut[i] = uint8(first)
		}
	} else {
		scale := 255.0 / float64(total-bins[first])
		sum := 0
		for i := first + 1; i < 256; i++ {
			sum += bins[i]
			v := int(float64(sum)*scale + 0.5)
			if v > 255 {
				v = 255
			}
			lut[i] = uint8(v)
		}
	}
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride:]
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < w; x++ {
			dst[x] = lut[row[x]]
		}
	}
	return out
}

// ResizeArea scales src to w x h with a box filter.
func ResizeArea(src *image.Gray, w, h int) *image.Gray {
	if w == src.Rect.Dx() && h == src.Rect.Dy() {
		return ToGray(src)
	}
	return grayFromNRGBA(imaging.Resize(src, w, h, imaging.Box))
}
