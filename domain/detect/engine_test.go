package detect_test

import (
	"context"
	"image"
	"image/color"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soocke/hudscan/domain/capture"
	"github.com/soocke/hudscan/domain/detect"
)

type memSink struct {
	mu    sync.Mutex
	saved map[string]image.Rectangle
}

func (s *memSink) Save(name string, img image.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved == nil {
		s.saved = make(map[string]image.Rectangle)
	}
	s.saved[name] = img.Bounds()
	return nil
}

type staticTemplates map[string]image.Image

func (s staticTemplates) Paths() ([]string, error) {
	var out []string
	for _, p := range []string{"a.png", "b.png", "c.png"} {
		if _, ok := s[p]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s staticTemplates) Load(path string) (image.Image, error) { return s[path], nil }

// hudScreen renders a 400x200 screen with a 20px yellow border at (310,155)
// followed by a textured icon.
func hudScreen() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 400, 200))
	for y := 0; y < 200; y++ {
		for x := 0; x < 400; x++ {
			v := uint8((x*37 + y*91 + x*y*13) % 256)
			img.SetRGBA(x, y, color.RGBA{v, v, v, 255})
		}
	}
	for y := 155; y < 175; y++ {
		img.SetRGBA(310, y, color.RGBA{234, 255, 5, 255})
	}
	return img
}

func iconTemplate() image.Image {
	g := image.NewGray(image.Rect(0, 0, 30, 14))
	for y := 0; y < 14; y++ {
		for x := 0; x < 30; x++ {
			sx, sy := 322+x, 158+y
			g.SetGray(x, y, color.Gray{uint8((sx*37 + sy*91 + sx*sy*13) % 256)})
		}
	}
	return g
}

func TestEngine_RunCycle(t *testing.T) {
	session := capture.NewImageSession(hudScreen(), nil)
	defer session.Close()
	sink := &memSink{}
	eng := detect.NewEngine(detect.DefaultEngineOptions(), session, staticTemplates{"a.png": iconTemplate()}, sink, nil)

	out, err := eng.RunCycle(context.Background())
	require.NoError(t, err)

	_, perr := uuid.Parse(out.CycleID)
	assert.NoError(t, perr)
	assert.Equal(t, image.Pt(310, 155), out.Anchor)
	assert.Equal(t, image.Rect(310, 155, 510, 175), out.Region)
	assert.Equal(t, 1, out.Evaluated)
	assert.Equal(t, "a.png", out.Template)
	assert.Contains(t, []detect.Status{detect.StatusMatched, detect.StatusBelowThreshold}, out.Status)
	assert.GreaterOrEqual(t, out.Score, -1.0)
	assert.LessOrEqual(t, out.Score, 1.0+1e-9)

	// The crop is clipped to the 90px left of the screen edge; the detection area
	// starts 10px in and spans 45% of that width.
	assert.Equal(t, image.Rect(0, 0, 90, 20), sink.saved[detect.HUDImageName])
	assert.Equal(t, 40, sink.saved[detect.DetectionImageName].Dx())
	assert.Equal(t, 20, sink.saved[detect.DetectionImageName].Dy())
}

func TestEngine_TargetNotFound(t *testing.T) {
	blank := image.NewRGBA(image.Rect(0, 0, 400, 200))
	session := capture.NewImageSession(blank, nil)
	sink := &memSink{}
	eng := detect.NewEngine(detect.DefaultEngineOptions(), session, staticTemplates{"a.png": iconTemplate()}, sink, nil)

	out, err := eng.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, detect.StatusTargetNotFound, out.Status)
	assert.False(t, out.Found())
	assert.Empty(t, sink.saved)
}

func TestEngine_NoTemplates(t *testing.T) {
	session := capture.NewImageSession(hudScreen(), nil)
	eng := detect.NewEngine(detect.DefaultEngineOptions(), session, staticTemplates{}, nil, nil)

	out, err := eng.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, detect.StatusNoCandidates, out.Status)
	assert.Equal(t, detect.NoValidScale, out.Score)
	assert.Equal(t, image.Rect(310, 155, 510, 175), out.Region)
}

func TestEngine_ClosedSessionFails(t *testing.T) {
	session := capture.NewImageSession(hudScreen(), nil)
	require.NoError(t, session.Close())
	eng := detect.NewEngine(detect.DefaultEngineOptions(), session, staticTemplates{}, nil, nil)

	_, err := eng.RunCycle(context.Background())
	assert.ErrorIs(t, err, capture.ErrClosed)
}

func TestDetectionArea_Clamped(t *testing.T) {
	roi := image.NewRGBA(image.Rect(0, 0, 20, 10))
	area := detect.DetectionArea(roi, 5, 0.5)
	assert.Equal(t, image.Rect(5, 0, 15, 10), area.Bounds())

	empty := detect.DetectionArea(roi, 50, 0.5)
	assert.True(t, empty.Bounds().Empty())
}
