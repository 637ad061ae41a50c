package trigger

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKey is returned by ParseVK for names it does not recognize.
var ErrUnknownKey = errors.New("trigger: unknown key")

// Windows virtual-key codes for the named keys.
var namedKeys = map[string]byte{
	"ESC":    0x1B,
	"ESCAPE": 0x1B,
	"SPACE":  0x20,
	"ENTER":  0x0D,
	"TAB":    0x09,
	"F10":    0x79,
	"F11":    0x7A,
	"F12":    0x7B,
}

// ParseVK converts a key token (e.g. "1", "F3", "R", "ESC") into a Windows
// virtual-key code. Recognizes F1..F12, digits, letters and a few named keys.
func ParseVK(key string) (byte, error) {
	k := strings.ToUpper(strings.TrimSpace(key))
	if vk, ok := namedKeys[k]; ok {
		return vk, nil
	}
	if len(k) == 2 && k[0] == 'F' { // F1-F9
		if n := int(k[1] - '0'); n >= 1 && n <= 9 {
			return byte(0x70 + (n - 1)), nil // VK_F1=0x70
		}
	}
	if len(k) == 1 {
		c := k[0]
		if (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			return c, nil // VK codes match ASCII
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKey, key)
}

// ParseVKs parses every key of keys.
func ParseVKs(keys []string) ([]byte, error) {
	out := make([]byte, 0, len(keys))
	for _, k := range keys {
		vk, err := ParseVK(k)
		if err != nil {
			return nil, err
		}
		out = append(out, vk)
	}
	return out, nil
}
