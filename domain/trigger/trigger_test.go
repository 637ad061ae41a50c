package trigger

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func TestParseVK(t *testing.T) {
	cases := map[string]byte{
		"1":   '1',
		"2":   '2',
		"r":   'R',
		"F1":  0x70,
		"f9":  0x78,
		"F12": 0x7B,
		"ESC": 0x1B,
		"esc": 0x1B,
	}
	for in, want := range cases {
		got, err := ParseVK(in)
		if err != nil {
			t.Fatalf("ParseVK(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseVK(%q) = %#x, want %#x", in, got, want)
		}
	}
	for _, bad := range []string{"", "F0", "F13", "ctrl", "!"} {
		if _, err := ParseVK(bad); !errors.Is(err, ErrUnknownKey) {
			t.Fatalf("ParseVK(%q) expected ErrUnknownKey, got %v", bad, err)
		}
	}
}

func TestParseVKs_StopsAtFirstError(t *testing.T) {
	if _, err := ParseVKs([]string{"1", "nope"}); err == nil {
		t.Fatalf("expected error")
	}
	got, err := ParseVKs([]string{"1", "2"})
	if err != nil || len(got) != 2 || got[0] != '1' || got[1] != '2' {
		t.Fatalf("got %v err=%v", got, err)
	}
}

func TestLineSource_Tokens(t *testing.T) {
	in := strings.NewReader("\nhello\n2\nscan\nesc\n")
	src := NewLineSource(in, Options{ScanKeys: []string{"1", "2"}, ExitKey: "ESC"})
	ctx := context.Background()

	want := []Signal{SignalScan, SignalScan, SignalScan, SignalExit}
	for i, w := range want {
		got, err := src.Next(ctx)
		if err != nil {
			t.Fatalf("signal %d: %v", i, err)
		}
		if got != w {
			t.Fatalf("signal %d = %v, want %v", i, got, w)
		}
	}
}

func TestLineSource_EOFExits(t *testing.T) {
	src := NewLineSource(strings.NewReader(""), Options{})
	got, err := src.Next(context.Background())
	if err != nil || got != SignalExit {
		t.Fatalf("got %v err=%v", got, err)
	}
}

func TestLineSource_Canceled(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	src := NewLineSource(r, Options{})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := src.Next(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline, got %v", err)
	}
}

func TestSignal_String(t *testing.T) {
	if SignalScan.String() != "scan" || SignalExit.String() != "exit" || Signal(0).String() != "none" {
		t.Fatalf("unexpected names")
	}
}
