package detect

import (
	"image"
	"math"
)

// varianceEpsilon guards window and template variances against rounding noise.
const varianceEpsilon = 1e-7

// grayPrecomp stores per-image intensities and their summed-area tables
// (integral images). The integrals allow O(1) window sum and variance queries.
type grayPrecomp struct {
	gray       []float64 // per pixel intensity (length W*H)
	integral   []float64 // summed-area table of intensity
	integralSq []float64 // summed-area table of intensity squared
	W, H       int
}

// templatePrecomp caches intensities and summary statistics for a template.
type templatePrecomp struct {
	gray  []float64
	W, H  int
	meanT float64
	stdT  float64
}

// buildGrayPrecomp computes intensities and summed-area tables for img.
func buildGrayPrecomp(img *image.Gray) *grayPrecomp {
	W, H := img.Rect.Dx(), img.Rect.Dy()
	need := W * H
	p := &grayPrecomp{
		gray:       make([]float64, need),
		integral:   make([]float64, need),
		integralSq: make([]float64, need),
		W:          W,
		H:          H,
	}
	for y := 0; y < H; y++ {
		var rowSum, rowSum2 float64
		for x := 0; x < W; x++ {
			v := float64(img.Pix[y*img.Stride+x])
			off := y*W + x
			p.gray[off] = v
			rowSum += v
			rowSum2 += v * v
			if y == 0 {
				p.integral[off] = rowSum
				p.integralSq[off] = rowSum2
			} else {
				p.integral[off] = p.integral[(y-1)*W+x] + rowSum
				p.integralSq[off] = p.integralSq[(y-1)*W+x] + rowSum2
			}
		}
	}
	return p
}

// buildTemplatePrecomp computes the template's mean and population standard
// deviation.
func buildTemplatePrecomp(img *image.Gray) *templatePrecomp {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	pc := &templatePrecomp{gray: make([]float64, w*h), W: w, H: h}
	if w == 0 || h == 0 {
		return pc
	}
	var sumT, sumT2 float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := float64(img.Pix[y*img.Stride+x])
			pc.gray[y*w+x] = v
			sumT += v
			sumT2 += v * v
		}
	}
	n := float64(w * h)
	pc.meanT = sumT / n
	if varT := (sumT2 - sumT*sumT/n) / n; varT > varianceEpsilon {
		pc.stdT = math.Sqrt(varT)
	}
	return pc
}

// integralSum returns the inclusive sum over rectangle [x0..x1] x [y0..y1]
// from an integral image stored in row-major order with width W.
func integralSum(I []float64, W int, x0, y0, x1, y1 int) float64 {
	if x0 > x1 || y0 > y1 {
		return 0
	}
	A := func(x, y int) float64 {
		if x < 0 || y < 0 {
			return 0
		}
		return I[y*W+x]
	}
	return A(x1, y1) - A(x0-1, y1) - A(x1, y0-1) + A(x0-1, y0-1)
}

// maxNCC slides the template over every valid position of the frame and returns
// the highest zero-mean normalized correlation coefficient.
//
// A constant template correlates equally with everything and scores 1. Windows
// with no variance score 0. An empty or oversized template scores NoValidScale.
func maxNCC(pre *grayPrecomp, pc *templatePrecomp) float64 {
	if pre == nil || pc == nil {
		return NoValidScale
	}
	W, H := pre.W, pre.H
	w, h := pc.W, pc.H
	if w == 0 || h == 0 || W < w || H < h {
		return NoValidScale
	}
	if pc.stdT == 0 {
		return 1
	}
	n := float64(w * h)
	best := math.Inf(-1)
	for y := 0; y <= H-h; y++ {
		for x := 0; x <= W-w; x++ {
			sumF := integralSum(pre.integral, pre.W, x, y, x+w-1, y+h-1)
			sumF2 := integralSum(pre.integralSq, pre.W, x, y, x+w-1, y+h-1)
			meanF := sumF / n
			varF := (sumF2 - sumF*sumF/n) / n
			score := 0.0
			if varF > varianceEpsilon {
				var sumFT float64
				for py := 0; py < h; py++ {
					frow := pre.gray[(y+py)*W+x : (y+py)*W+x+w]
					trow := pc.gray[py*w : py*w+w]
					for px, t := range trow {
						sumFT += frow[px] * t
					}
				}
				score = (sumFT - n*meanF*pc.meanT) / (n * math.Sqrt(varF) * pc.stdT)
				if score > 1 {
					score = 1
				} else if score < -1 {
					score = -1
				}
			}
			if score > best {
				best = score
			}
		}
	}
	return best
}

// MatchNCC returns the maximum normalized cross-correlation of tmpl slid over img.
// It returns NoValidScale when tmpl is empty or larger than img on either axis.
func MatchNCC(img, tmpl *image.Gray) float64 {
	if img == nil || tmpl == nil {
		return NoValidScale
	}
	return maxNCC(buildGrayPrecomp(img), buildTemplatePrecomp(tmpl))
}
