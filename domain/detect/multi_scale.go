package detect

import (
	"image"
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"
)

// MultiScaleOptions configures the scale sweep. Workers bounds the number of
// scales scored concurrently; values below 2 score sequentially.
type MultiScaleOptions struct {
	MinScale float64
	MaxScale float64
	Steps    int
	Workers  int
}

// DefaultMultiScaleOptions sweeps 15 factors from 0.1 to 1.5.
func DefaultMultiScaleOptions() MultiScaleOptions {
	return MultiScaleOptions{MinScale: 0.1, MaxScale: 1.5, Steps: 15, Workers: 1}
}

// MultiScaleResult is the best score found across scales.
type MultiScaleResult struct {
	Score           float64
	Scale           float64
	ScalesEvaluated int
	ScalesSkipped   int
}

// Scales returns n linearly spaced factors from lo to hi inclusive.
func Scales(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

// Matcher scores one template at every scale of the sweep.
type Matcher struct {
	opts   MultiScaleOptions
	scales []float64
}

// NewMatcher builds a matcher for opts.
func NewMatcher(opts MultiScaleOptions) *Matcher {
	return &Matcher{opts: opts, scales: Scales(opts.MinScale, opts.MaxScale, opts.Steps)}
}

// ScaleFactors returns the sweep in evaluation order.
func (m *Matcher) ScaleFactors() []float64 {
	return append([]float64(nil), m.scales...)
}

// scaledSize rounds the template dimensions at factor to whole pixels.
func scaledSize(w, h int, factor float64) (int, int) {
	return int(math.Round(float64(w) * factor)), int(math.Round(float64(h) * factor))
}

// Match resizes tmpl to every scale and keeps the best combined score. Scales
// whose template would not fit inside the capture are skipped without scoring.
// Score is NoValidScale when no scale fits.
func (m *Matcher) Match(target *Target, tmpl *image.Gray) MultiScaleResult {
	res := MultiScaleResult{Score: NoValidScale}
	if target == nil || tmpl == nil {
		return res
	}
	tw, th := tmpl.Rect.Dx(), tmpl.Rect.Dy()

	// One slot per scale keeps the reduction independent of completion order.
	scores := make([]float64, len(m.scales))
	valid := make([]bool, len(m.scales))
	eval := func(i int) {
		w, h := scaledSize(tw, th, m.scales[i])
		if !target.Fits(w, h) {
			return
		}
		scores[i] = target.Score(ResizeArea(tmpl, w, h))
		valid[i] = true
	}

	if m.opts.Workers < 2 {
		for i := range m.scales {
			eval(i)
		}
	} else {
		var wg sync.WaitGroup
		sem := make(chan struct{}, m.opts.Workers)
		for i := range m.scales {
			wg.Add(1)
			sem <- struct{}{}
			go func(i int) {
				defer wg.Done()
				defer func() { <-sem }()
				eval(i)
			}(i)
		}
		wg.Wait()
	}

	for i, ok := range valid {
		if !ok {
			res.ScalesSkipped++
			continue
		}
		res.ScalesEvaluated++
		if res.ScalesEvaluated == 1 || scores[i] > res.Score {
			res.Score = scores[i]
			res.Scale = m.scales[i]
		}
	}
	return res
}
