package trigger

import (
	"context"
	"log/slog"
	"strings"
)

// FocusGate drops scan signals while the foreground window title does not
// contain Title, compared case-insensitively. Exit signals always pass. When the
// foreground title cannot be read the signal passes.
type FocusGate struct {
	Source     Source
	Title      string
	Foreground func() (string, error)
	Logger     *slog.Logger
}

// NewFocusGate gates src on the platform foreground window.
func NewFocusGate(src Source, title string, logger *slog.Logger) *FocusGate {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &FocusGate{Source: src, Title: title, Foreground: foregroundWindowTitle, Logger: logger}
}

func (g *FocusGate) Next(ctx context.Context) (Signal, error) {
	want := strings.ToLower(strings.TrimSpace(g.Title))
	for {
		sig, err := g.Source.Next(ctx)
		if err != nil || sig != SignalScan || want == "" {
			return sig, err
		}
		title, err := g.Foreground()
		if err != nil {
			g.Logger.Debug("trigger.focus_unknown", "error", err)
			return sig, nil
		}
		if strings.Contains(strings.ToLower(title), want) {
			return sig, nil
		}
		g.Logger.Info("trigger.unfocused", "foreground", title, "want", g.Title)
	}
}
