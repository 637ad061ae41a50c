package images

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// FileSink writes diagnostic images into Dir, replacing files of the same name.
// When MaxSide is positive, larger images are downscaled to fit before writing.
type FileSink struct {
	Dir     string
	MaxSide int
}

// Save encodes img in the format implied by name's extension.
func (s FileSink) Save(name string, img image.Image) error {
	if img == nil {
		return fmt.Errorf("save %s: nil image", name)
	}
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	if s.MaxSide > 0 {
		img = ScaleToFit(img, s.MaxSide, s.MaxSide)
	}
	if err := imaging.Save(img, filepath.Join(dir, name)); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return nil
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) Save(string, image.Image) error { return nil }

// ScaleToFit shrinks src so it fits within maxW x maxH preserving aspect ratio.
// If the source already fits, the original is returned.
func ScaleToFit(src image.Image, maxW, maxH int) image.Image {
	if src == nil {
		return nil
	}
	b := src.Bounds()
	if b.Dx() <= maxW && b.Dy() <= maxH {
		return src
	}
	return imaging.Fit(src, max(maxW, 1), max(maxH, 1), imaging.Box)
}
