//go:build !windows

package trigger

import "io"

// NewSource returns a line-oriented source over input. Global key polling is
// only available on Windows.
func NewSource(opts Options, input io.Reader) (Source, error) {
	if _, err := ParseVKs(append([]string{opts.ExitKey}, opts.ScanKeys...)); err != nil {
		return nil, err
	}
	return NewLineSource(input, opts), nil
}
