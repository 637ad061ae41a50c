//go:build !windows

package capture

import (
	"image"
	"image/draw"

	"github.com/vova616/screenshot"
)

// screenshotBackend captures through the X11/Quartz bindings of the screenshot
// package.
type screenshotBackend struct{}

func openPlatformBackend() (backend, error) {
	if _, err := screenshot.ScreenRect(); err != nil {
		return nil, err
	}
	return screenshotBackend{}, nil
}

func (screenshotBackend) close() error { return nil }

func (screenshotBackend) screenRect() (image.Rectangle, error) {
	return screenshot.ScreenRect()
}

func (screenshotBackend) captureInto(dst *image.RGBA, r image.Rectangle) error {
	img, err := screenshot.CaptureRect(r)
	if err != nil {
		return err
	}
	draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Src)
	return nil
}
