package capture

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync/atomic"
	"time"
)

var (
	// ErrEmptySelection is returned when a grab rectangle does not overlap the screen.
	ErrEmptySelection = errors.New("capture: empty selection")
	// ErrClosed is returned by grabs on a closed session.
	ErrClosed = errors.New("capture: session closed")
)

// backend copies screen pixels. captureInto is only called with rectangles that
// lie inside screenRect and a destination sized to match.
type backend interface {
	screenRect() (image.Rectangle, error)
	captureInto(dst *image.RGBA, r image.Rectangle) error
	close() error
}

// Session owns a capture device for the lifetime of the application. Use Open
// for the live screen or NewImageSession for a still image. Grab and ScreenSize
// are safe for concurrent use.
type Session struct {
	b      backend
	logger *slog.Logger

	closed       atomic.Bool
	captures     atomic.Uint64
	failures     atomic.Uint64
	captureNanos atomic.Uint64
	last         atomic.Int64
}

func newSession(b backend, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{b: b, logger: logger}
}

// Open acquires the platform screen capture backend.
func Open(logger *slog.Logger) (*Session, error) {
	b, err := openPlatformBackend()
	if err != nil {
		return nil, fmt.Errorf("capture: open: %w", err)
	}
	return newSession(b, logger), nil
}

// ScreenSize reports the capturable screen dimensions.
func (s *Session) ScreenSize() (int, int, error) {
	r, err := s.b.screenRect()
	if err != nil {
		return 0, 0, err
	}
	return r.Dx(), r.Dy(), nil
}

// Grab captures sel clipped to the screen. The returned frame is anchored at the
// origin and may be handed back with Recycle once it is no longer read.
func (s *Session) Grab(sel image.Rectangle) (*image.RGBA, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	if sel.Empty() {
		return nil, ErrEmptySelection
	}
	screen, err := s.b.screenRect()
	if err != nil {
		s.failures.Add(1)
		return nil, err
	}
	r := sel.Intersect(screen)
	if r.Empty() {
		s.failures.Add(1)
		return nil, fmt.Errorf("%w: sel=%v screen=%v", ErrEmptySelection, sel, screen)
	}
	start := time.Now()
	dst := acquireFrame(r.Dx(), r.Dy())
	if err := s.b.captureInto(dst, r); err != nil {
		RecycleFrame(dst)
		s.failures.Add(1)
		s.logger.Error("capture.grab", "rect", r.String(), "error", err)
		return nil, err
	}
	s.captureNanos.Add(uint64(time.Since(start).Nanoseconds()))
	s.captures.Add(1)
	s.last.Store(time.Now().UnixNano())
	if r != sel {
		s.logger.Debug("capture.clipped", "requested", sel.String(), "captured", r.String())
	}
	return dst, nil
}

// Recycle returns a frame produced by Grab to the frame pool.
func (s *Session) Recycle(img *image.RGBA) { RecycleFrame(img) }

// Stats returns counters accumulated since Open.
func (s *Session) Stats() CaptureStats {
	captures := s.captures.Load()
	total := s.captureNanos.Load()
	var avg time.Duration
	avgMicros := 0.0
	if captures > 0 && total > 0 {
		avg = time.Duration(total / captures)
		avgMicros = float64(avg) / float64(time.Microsecond)
	}
	var last time.Time
	if ns := s.last.Load(); ns != 0 {
		last = time.Unix(0, ns)
	}
	return CaptureStats{
		Captures:         captures,
		Failures:         s.failures.Load(),
		AvgCapture:       avg,
		AvgCaptureMicros: avgMicros,
		LastCapture:      last,
	}
}

// Close releases the backend. It is idempotent.
func (s *Session) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	stats := s.Stats()
	s.logger.Debug("capture.stats",
		"captures", stats.Captures,
		"failures", stats.Failures,
		"avg_capture", stats.AvgCapture,
	)
	return s.b.close()
}
