//go:build !windows

package trigger

import "errors"

func foregroundWindowTitle() (string, error) {
	return "", errors.New("foreground window title not supported on this platform")
}
