package detect

import (
	"image"
)

// ScoreOptions weights the intensity and edge correlations.
type ScoreOptions struct {
	IntensityWeight float64
	EdgeWeight      float64
	CannyLow        float64
	CannyHigh       float64
}

// DefaultScoreOptions returns the 0.7/0.3 blend with Canny limits 50/150.
func DefaultScoreOptions() ScoreOptions {
	return ScoreOptions{IntensityWeight: 0.7, EdgeWeight: 0.3, CannyLow: 50, CannyHigh: 150}
}

// Target is a preprocessed capture prepared for repeated scoring. Its edge map
// and summed-area tables are built once; a Target is read-only and may be shared
// between goroutines.
type Target struct {
	Image *image.Gray
	Edges *image.Gray

	opts      ScoreOptions
	intensity *grayPrecomp
	edges     *grayPrecomp
}

// NewTarget prepares capture for scoring with opts.
func NewTarget(capture *image.Gray, opts ScoreOptions) *Target {
	edges := Canny(capture, opts.CannyLow, opts.CannyHigh)
	return &Target{
		Image:     capture,
		Edges:     edges,
		opts:      opts,
		intensity: buildGrayPrecomp(capture),
		edges:     buildGrayPrecomp(edges),
	}
}

// Width of the capture in pixels.
func (t *Target) Width() int { return t.intensity.W }

// Height of the capture in pixels.
func (t *Target) Height() int { return t.intensity.H }

// Fits reports whether a w x h template can be slid over the capture.
func (t *Target) Fits(w, h int) bool {
	return w >= 1 && h >= 1 && w <= t.Width() && h <= t.Height()
}

// Score blends the intensity correlation and the edge-map correlation of tmpl
// against the capture. The caller guarantees tmpl fits.
func (t *Target) Score(tmpl *image.Gray) float64 {
	gray := maxNCC(t.intensity, buildTemplatePrecomp(tmpl))
	edges := maxNCC(t.edges, buildTemplatePrecomp(Canny(tmpl, t.opts.CannyLow, t.opts.CannyHigh)))
	return t.opts.IntensityWeight*gray + t.opts.EdgeWeight*edges
}

// CombinedScore scores tmpl against capture without a prepared Target.
func CombinedScore(capture, tmpl *image.Gray, opts ScoreOptions) float64 {
	return NewTarget(capture, opts).Score(tmpl)
}
