package detect

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/soocke/hudscan/images"
)

// Screen is the capture collaborator used by the engine.
type Screen interface {
	ScreenSize() (int, int, error)
	Grab(r image.Rectangle) (*image.RGBA, error)
}

// FrameRecycler is optionally implemented by screens that pool frame buffers.
type FrameRecycler interface {
	Recycle(*image.RGBA)
}

// Sink persists intermediate images for debugging.
type Sink interface {
	Save(name string, img image.Image) error
}

// Diagnostic image names.
const (
	HUDImageName       = "weaponhud.png"
	DetectionImageName = "detection.png"
)

// EngineOptions holds the geometry and matching parameters of a cycle.
type EngineOptions struct {
	Target          Color
	Tolerance       int
	Scan            ScanGeometry
	CropWidth       int
	DetectionStartX int
	DetectionWidth  float64 // fraction of the crop width
	Score           ScoreOptions
	MultiScale      MultiScaleOptions
	Threshold       float64
	HighlightCutoff uint8
	TemplateWorkers int
}

// DefaultEngineOptions mirrors the shipped configuration.
func DefaultEngineOptions() EngineOptions {
	return EngineOptions{
		Target:          Color{R: 234, G: 255, B: 5},
		Tolerance:       15,
		Scan:            DefaultScanGeometry,
		CropWidth:       200,
		DetectionStartX: 10,
		DetectionWidth:  0.45,
		Score:           DefaultScoreOptions(),
		MultiScale:      DefaultMultiScaleOptions(),
		Threshold:       0.3,
		HighlightCutoff: 240,
	}
}

// Engine runs detection cycles. Cycles share no mutable state, but the screen and
// sink need not be safe for concurrent use, so call RunCycle from one goroutine.
type Engine struct {
	opts      EngineOptions
	screen    Screen
	templates TemplateSource
	sink      Sink
	ranker    *Ranker
	logger    *slog.Logger
}

// NewEngine wires an engine. sink may be nil.
func NewEngine(opts EngineOptions, screen Screen, templates TemplateSource, sink Sink, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		opts:      opts,
		screen:    screen,
		templates: templates,
		sink:      sink,
		logger:    logger,
		ranker: &Ranker{
			Matcher:         NewMatcher(opts.MultiScale),
			Threshold:       opts.Threshold,
			HighlightCutoff: opts.HighlightCutoff,
			Workers:         opts.TemplateWorkers,
			Logger:          logger,
		},
	}
}

// RunCycle captures the HUD, isolates the icon and ranks the template library.
// A missing target color is reported as StatusTargetNotFound; only capture and
// template enumeration failures are returned as errors.
func (e *Engine) RunCycle(ctx context.Context) (Outcome, error) {
	start := time.Now()
	id := uuid.NewString()
	log := e.logger.With("cycle", id)

	out, err := e.run(ctx, log)
	out.CycleID = id
	out.Duration = time.Since(start)
	if err != nil {
		log.Error("cycle.failed", "error", err, "duration", out.Duration)
		return out, err
	}
	log.Info("cycle.done",
		"status", out.Status.String(),
		"template", out.Template,
		"score", out.Score,
		"scale", out.Scale,
		"evaluated", out.Evaluated,
		"failed", out.Failed,
		"duration", out.Duration,
	)
	return out, nil
}

func (e *Engine) run(ctx context.Context, log *slog.Logger) (Outcome, error) {
	out := Outcome{Status: StatusNoCandidates, Score: NoValidScale, Threshold: e.opts.Threshold}

	sw, sh, err := e.screen.ScreenSize()
	if err != nil {
		return out, fmt.Errorf("screen size: %w", err)
	}
	scan := ScanRegion(sw, sh, e.opts.Scan)
	raw, err := e.screen.Grab(scan)
	if err != nil {
		return out, fmt.Errorf("grab scan region %v: %w", scan, err)
	}
	frame := NormalizeFrame(raw)
	e.recycle(raw)

	anchor, err := LocateColor(frame, e.opts.Target, e.opts.Tolerance)
	if errors.Is(err, ErrTargetColorNotFound) {
		log.Info("locate.miss", "scan", scan.String())
		out.Status = StatusTargetNotFound
		return out, nil
	}
	run := VerticalRun(frame, anchor, e.opts.Target, e.opts.Tolerance)
	region := CropRegion(scan, anchor, run, e.opts.CropWidth)
	out.Anchor, out.Region = scan.Min.Add(anchor), region
	log.Debug("locate.hit", "anchor", out.Anchor.String(), "run", run, "region", region.String())

	if err := ctx.Err(); err != nil {
		return out, err
	}
	rawROI, err := e.screen.Grab(region)
	if err != nil {
		return out, fmt.Errorf("grab crop region %v: %w", region, err)
	}
	roi := NormalizeFrame(rawROI)
	e.recycle(rawROI)
	e.save(log, HUDImageName, roi)

	area := DetectionArea(roi, e.opts.DetectionStartX, e.opts.DetectionWidth)
	e.save(log, DetectionImageName, area)

	capture := PreprocessCapture(area)
	log.Debug("capture.processed", "width", capture.Rect.Dx(), "height", capture.Rect.Dy())
	target := NewTarget(capture, e.opts.Score)

	ranked, err := e.ranker.Rank(ctx, target, e.templates)
	ranked.Anchor, ranked.Region = out.Anchor, out.Region
	return ranked, err
}

// DetectionArea returns the columns [startX, startX+frac*width) of roi, clamped
// to its bounds. The result may be empty.
func DetectionArea(roi *image.RGBA, startX int, frac float64) *image.RGBA {
	area, _, err := images.SubArea(roi, startX, int(frac*float64(roi.Bounds().Dx())))
	if err != nil {
		return image.NewRGBA(image.Rectangle{})
	}
	return area
}

func (e *Engine) recycle(img *image.RGBA) {
	if r, ok := e.screen.(FrameRecycler); ok {
		r.Recycle(img)
	}
}

func (e *Engine) save(log *slog.Logger, name string, img image.Image) {
	if e.sink == nil || img.Bounds().Empty() {
		return
	}
	if err := e.sink.Save(name, img); err != nil {
		log.Warn("diagnostics.save", "name", name, "error", err)
	}
}
