package detect

import (
	"errors"
	"fmt"
	"image"
	"time"
)

// ErrTargetColorNotFound is returned by the locator when no pixel of the scan
// area lies within tolerance of the target color.
var ErrTargetColorNotFound = errors.New("target color not found")

// NoValidScale is the best score reported when every scale was skipped. It is
// lower than any real correlation score.
const NoValidScale = -1.0

// Color is an 8-bit RGB triple.
type Color struct {
	R, G, B uint8
}

// Matches reports whether the pixel is within tol of c on all three channels.
func (c Color) Matches(r, g, b uint8, tol int) bool {
	return absDiff(c.R, r) <= tol && absDiff(c.G, g) <= tol && absDiff(c.B, b) <= tol
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

// Status classifies the terminal result of one detection cycle.
type Status int

const (
	StatusNoCandidates Status = iota
	StatusMatched
	StatusBelowThreshold
	StatusTargetNotFound
)

func (s Status) String() string {
	switch s {
	case StatusMatched:
		return "matched"
	case StatusBelowThreshold:
		return "below-threshold"
	case StatusNoCandidates:
		return "no-candidates"
	case StatusTargetNotFound:
		return "target-not-found"
	default:
		return "unknown"
	}
}

// MatchResult is the best score of one template across all scales.
type MatchResult struct {
	Template string // identifier (file base name)
	Path     string
	MultiScaleResult
}

// Outcome is the terminal output of a detection cycle.
type Outcome struct {
	CycleID  string
	Status   Status
	Template string
	Path     string
	Score    float64
	Scale    float64

	Threshold float64
	Evaluated int // templates that produced a score
	Failed    int // templates that could not be loaded

	Anchor   image.Point     // anchor pixel in screen coordinates
	Region   image.Rectangle // crop region in screen coordinates
	Duration time.Duration
}

// Found reports whether the outcome is a positive identification.
func (o Outcome) Found() bool { return o.Status == StatusMatched }

func (o Outcome) String() string {
	switch o.Status {
	case StatusMatched:
		return fmt.Sprintf("detected weapon: %s with score %.4f", o.Template, o.Score)
	case StatusBelowThreshold:
		return fmt.Sprintf("no weapon detected, closest: %s at %.4f (threshold %.2f)", o.Template, o.Score, o.Threshold)
	case StatusTargetNotFound:
		return "target color not found"
	default:
		return fmt.Sprintf("no weapon detected, best score: %.0f", o.Score)
	}
}

// classify turns the best match of a ranking pass into an outcome.
func classify(best *MatchResult, threshold float64) Outcome {
	out := Outcome{Status: StatusNoCandidates, Score: NoValidScale, Threshold: threshold}
	if best == nil {
		return out
	}
	out.Template, out.Path = best.Template, best.Path
	out.Score, out.Scale = best.Score, best.Scale
	if best.Score > threshold {
		out.Status = StatusMatched
	} else {
		out.Status = StatusBelowThreshold
	}
	return out
}
