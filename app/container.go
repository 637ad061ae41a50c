package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/soocke/hudscan/config"
	"github.com/soocke/hudscan/domain/capture"
	"github.com/soocke/hudscan/domain/detect"
	"github.com/soocke/hudscan/domain/templates"
	"github.com/soocke/hudscan/domain/trigger"
	"github.com/soocke/hudscan/images"
)

// Container assembles the capture session, template library, diagnostics sink,
// detection engine and trigger source.
type Container struct {
	Config    *config.Config
	Logger    *slog.Logger
	Session   *capture.Session
	Templates *templates.Library
	Sink      detect.Sink
	Engine    *detect.Engine
	Trigger   trigger.Source
}

// Options replaces live collaborators. A nil Session opens the platform capture
// backend; a nil Input reads operator lines from stdin where keys cannot be polled.
type Options struct {
	Session   *capture.Session
	Input     io.Reader
	NoTrigger bool
}

// BuildContainer constructs all components. The only side effect is acquiring the
// capture session when none is supplied.
func BuildContainer(cfg *config.Config, logger *slog.Logger, opts Options) (*Container, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	engineOpts, err := EngineOptions(cfg)
	if err != nil {
		return nil, err
	}
	c := &Container{Config: cfg, Logger: logger}

	if !opts.NoTrigger {
		input := opts.Input
		if input == nil {
			input = os.Stdin
		}
		c.Trigger, err = trigger.NewSource(trigger.Options{
			ScanKeys: cfg.ScanKeys,
			ExitKey:  cfg.ExitKey,
			Poll:     cfg.PollInterval(),
		}, input)
		if err != nil {
			return nil, fmt.Errorf("trigger: %w", err)
		}
		if cfg.FocusWindow != "" {
			c.Trigger = trigger.NewFocusGate(c.Trigger, cfg.FocusWindow, logger)
		}
	}

	c.Session = opts.Session
	if c.Session == nil {
		if c.Session, err = capture.Open(logger); err != nil {
			return nil, err
		}
	}

	c.Templates = templates.NewLibrary(cfg.TemplateDir, cfg.TemplateGlob, cfg.CacheTemplates, logger)
	if cfg.SaveDiagnostics {
		c.Sink = images.FileSink{Dir: cfg.DiagnosticsDir}
	} else {
		c.Sink = images.NopSink{}
	}
	c.Engine = detect.NewEngine(engineOpts, c.Session, c.Templates, c.Sink, logger)
	return c, nil
}

// EngineOptions translates a validated configuration into engine parameters.
func EngineOptions(cfg *config.Config) (detect.EngineOptions, error) {
	r, g, b, err := cfg.TargetRGB()
	if err != nil {
		return detect.EngineOptions{}, err
	}
	return detect.EngineOptions{
		Target:    detect.Color{R: r, G: g, B: b},
		Tolerance: cfg.Tolerance,
		Scan: detect.ScanGeometry{
			Left:   cfg.ScanLeft,
			Top:    cfg.ScanTop,
			Width:  cfg.ScanWidth,
			Height: cfg.ScanHeight,
		},
		CropWidth:       cfg.CropWidth,
		DetectionStartX: cfg.DetectionStartX,
		DetectionWidth:  cfg.DetectionWidthPct,
		Score: detect.ScoreOptions{
			IntensityWeight: cfg.IntensityWeight,
			EdgeWeight:      cfg.EdgeWeight,
			CannyLow:        cfg.CannyLow,
			CannyHigh:       cfg.CannyHigh,
		},
		MultiScale: detect.MultiScaleOptions{
			MinScale: cfg.MinScale,
			MaxScale: cfg.MaxScale,
			Steps:    cfg.ScaleSteps,
			Workers:  cfg.ScaleWorkers,
		},
		Threshold:       cfg.Threshold,
		HighlightCutoff: uint8(cfg.HighlightCutoff),
		TemplateWorkers: cfg.TemplateWorkers,
	}, nil
}

// WatchTemplates follows template edits in the background when enabled.
func (c *Container) WatchTemplates(ctx context.Context) {
	if !c.Config.WatchTemplates {
		return
	}
	go func() {
		if err := c.Templates.Watch(ctx, nil); err != nil {
			c.Logger.Warn("templates.watch_failed", "error", err)
		}
	}()
}

// Close releases the capture session.
func (c *Container) Close() error {
	if c.Session == nil {
		return nil
	}
	return c.Session.Close()
}
