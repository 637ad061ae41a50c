package main

import (
	"io"
	"log/slog"
	"strings"
)

// NewLogger returns a structured slog.Logger with the given level. format "text"
// selects a human-readable handler; anything else logs JSON.
func NewLogger(w io.Writer, level slog.Leveler, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if strings.EqualFold(format, "text") {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	return slog.New(h)
}
