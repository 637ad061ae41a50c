package trigger

import (
	"bufio"
	"context"
	"io"
	"strings"
	"time"
)

// Signal is an operator request.
type Signal int

const (
	SignalScan Signal = iota + 1
	SignalExit
)

func (s Signal) String() string {
	switch s {
	case SignalScan:
		return "scan"
	case SignalExit:
		return "exit"
	default:
		return "none"
	}
}

// Source delivers operator signals. Next blocks until a signal arrives or ctx is
// done.
type Source interface {
	Next(ctx context.Context) (Signal, error)
}

// Options configures the platform trigger source.
type Options struct {
	ScanKeys []string
	ExitKey  string
	Poll     time.Duration
}

// LineSource reads one token per line. An empty line, "scan" or a scan key name
// requests a scan; "q", "quit", "exit" or the exit key name end the session, as
// does end of input.
type LineSource struct {
	scan map[string]bool
	exit map[string]bool

	lines chan string
	done  chan struct{}
}

// NewLineSource starts reading r in the background.
func NewLineSource(r io.Reader, opts Options) *LineSource {
	s := &LineSource{
		scan:  map[string]bool{"": true, "SCAN": true},
		exit:  map[string]bool{"Q": true, "QUIT": true, "EXIT": true},
		lines: make(chan string),
		done:  make(chan struct{}),
	}
	for _, k := range opts.ScanKeys {
		s.scan[strings.ToUpper(strings.TrimSpace(k))] = true
	}
	if k := strings.ToUpper(strings.TrimSpace(opts.ExitKey)); k != "" {
		s.exit[k] = true
	}
	go s.read(r)
	return s
}

func (s *LineSource) read(r io.Reader) {
	defer close(s.done)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		s.lines <- sc.Text()
	}
}

// Next returns the next recognized signal. Unrecognized lines are ignored.
func (s *LineSource) Next(ctx context.Context) (Signal, error) {
	for {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-s.done:
			return SignalExit, nil
		case line := <-s.lines:
			tok := strings.ToUpper(strings.TrimSpace(line))
			switch {
			case s.exit[tok]:
				return SignalExit, nil
			case s.scan[tok]:
				return SignalScan, nil
			}
		}
	}
}
