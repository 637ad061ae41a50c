//go:build windows

package trigger

import (
	"context"
	"io"
	"time"

	"golang.org/x/sys/windows"
)

var (
	user32               = windows.NewLazySystemDLL("user32.dll")
	procGetAsyncKeyState = user32.NewProc("GetAsyncKeyState")
)

func keyDown(vk byte) bool {
	r, _, _ := procGetAsyncKeyState.Call(uintptr(vk))
	return r&0x8000 != 0
}

// KeyPoller watches the keyboard with GetAsyncKeyState so it works while the
// game window has focus. A signal fires on the transition from released to
// pressed.
type KeyPoller struct {
	scan []byte
	exit byte
	poll time.Duration

	down    map[byte]bool
	pressed func(byte) bool
}

// NewKeyPoller parses the key names in opts.
func NewKeyPoller(opts Options) (*KeyPoller, error) {
	scan, err := ParseVKs(opts.ScanKeys)
	if err != nil {
		return nil, err
	}
	exit, err := ParseVK(opts.ExitKey)
	if err != nil {
		return nil, err
	}
	poll := opts.Poll
	if poll <= 0 {
		poll = 30 * time.Millisecond
	}
	return &KeyPoller{scan: scan, exit: exit, poll: poll, down: make(map[byte]bool), pressed: keyDown}, nil
}

// Next polls until a scan or exit key is newly pressed.
func (p *KeyPoller) Next(ctx context.Context) (Signal, error) {
	ticker := time.NewTicker(p.poll)
	defer ticker.Stop()
	for {
		if p.edge(p.exit) {
			return SignalExit, nil
		}
		for _, vk := range p.scan {
			if p.edge(vk) {
				return SignalScan, nil
			}
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (p *KeyPoller) edge(vk byte) bool {
	now := p.pressed(vk)
	was := p.down[vk]
	p.down[vk] = now
	return now && !was
}

// NewSource returns the keyboard poller. Input is unused on Windows.
func NewSource(opts Options, _ io.Reader) (Source, error) {
	return NewKeyPoller(opts)
}
