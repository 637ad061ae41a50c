package capture

import (
	"fmt"
	"image"
	"image/draw"
	"io"
	"log/slog"

	"github.com/disintegration/imaging"
)

// imageBackend serves grabs from a still image, treating its bounds as the
// screen. Used for offline scans of saved screenshots.
type imageBackend struct {
	img    image.Image
	bounds image.Rectangle
}

// NewImageSession returns a session whose screen is img. The image is read but
// never modified.
func NewImageSession(img image.Image, logger *slog.Logger) *Session {
	b := img.Bounds()
	return newSession(&imageBackend{img: img, bounds: image.Rect(0, 0, b.Dx(), b.Dy())}, logger)
}

// DecodeImageSession decodes a screenshot (PNG, JPEG, BMP, ...) and wraps it in a
// session. EXIF orientation is applied.
func DecodeImageSession(r io.Reader, logger *slog.Logger) (*Session, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode screenshot: %w", err)
	}
	return NewImageSession(img, logger), nil
}

func (b *imageBackend) screenRect() (image.Rectangle, error) { return b.bounds, nil }

func (b *imageBackend) captureInto(dst *image.RGBA, r image.Rectangle) error {
	draw.Draw(dst, dst.Bounds(), b.img, b.img.Bounds().Min.Add(r.Min), draw.Src)
	return nil
}

func (b *imageBackend) close() error { return nil }
