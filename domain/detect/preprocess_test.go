package detect

import (
	"image"
	"image/color"
	"testing"
)

func grayFill(w, h int, v uint8) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for i := range g.Pix {
		g.Pix[i] = v
	}
	return g
}

// texture returns a deterministic, high-variance gray pattern.
func texture(w, h int) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g.Pix[y*g.Stride+x] = uint8((x*37 + y*91 + x*y*13) % 256)
		}
	}
	return g
}

func TestNormalizeFrame_OpaqueCopy(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	src.SetNRGBA(1, 1, color.NRGBA{200, 100, 50, 255})
	src.SetNRGBA(2, 2, color.NRGBA{10, 20, 30, 0})
	out := NormalizeFrame(src)
	if out.Bounds() != image.Rect(0, 0, 4, 4) {
		t.Fatalf("bounds %v", out.Bounds())
	}
	if got := out.RGBAAt(1, 1); got != (color.RGBA{200, 100, 50, 255}) {
		t.Fatalf("pixel (1,1) = %v", got)
	}
	for i := 3; i < len(out.Pix); i += 4 {
		if out.Pix[i] != 255 {
			t.Fatalf("alpha at %d = %d", i, out.Pix[i])
		}
	}
	if NormalizeFrame(nil) != nil {
		t.Fatalf("nil input should yield nil")
	}
}

func TestErode3x3_MinimumSpreads(t *testing.T) {
	g := grayFill(5, 5, 200)
	g.Pix[2*g.Stride+2] = 10
	out := Erode3x3(g)
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			want := uint8(200)
			if x >= 1 && x <= 3 && y >= 1 && y <= 3 {
				want = 10
			}
			if got := out.GrayAt(x, y).Y; got != want {
				t.Fatalf("(%d,%d) = %d, want %d", x, y, got, want)
			}
		}
	}
	if g.Pix[0] != 200 || g.Pix[2*g.Stride+2] != 10 {
		t.Fatalf("input was modified")
	}
}

func TestErode3x3_BordersIgnoreOutside(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 3, 1))
	copy(g.Pix, []uint8{100, 50, 200})
	out := Erode3x3(g)
	for x, want := range []uint8{50, 50, 50} {
		if got := out.Pix[x]; got != want {
			t.Fatalf("x=%d got %d want %d", x, got, want)
		}
	}
	// An image of one bright pixel keeps its value: nothing outside counts as zero.
	single := grayFill(1, 1, 180)
	if got := Erode3x3(single).Pix[0]; got != 180 {
		t.Fatalf("single pixel eroded to %d", got)
	}
}

func TestPreprocessTemplate_SuppressesHighlights(t *testing.T) {
	g := grayFill(5, 5, 100)
	g.Pix[0] = 250
	out := PreprocessTemplate(g, 240)
	for _, p := range []image.Point{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
		if v := out.GrayAt(p.X, p.Y).Y; v != 0 {
			t.Fatalf("%v = %d, want 0", p, v)
		}
	}
	if v := out.GrayAt(4, 4).Y; v != 100 {
		t.Fatalf("far corner = %d, want 100", v)
	}
	// Exactly at the cutoff is kept.
	if v := PreprocessTemplate(grayFill(3, 3, 240), 240).Pix[4]; v != 240 {
		t.Fatalf("cutoff value suppressed: %d", v)
	}
}

func TestEqualizeHist_Constant(t *testing.T) {
	out := EqualizeHist(grayFill(6, 4, 77))
	for i, v := range out.Pix {
		if v != 77 {
			t.Fatalf("pixel %d = %d, want 77", i, v)
		}
	}
}

func TestEqualizeHist_TwoLevels(t *testing.T) {
	g := grayFill(4, 4, 10)
	for i := 8; i < 16; i++ {
		g.Pix[i] = 200
	}
	out := EqualizeHist(g)
	for i, v := range out.Pix {
		want := uint8(0)
		if i >= 8 {
			want = 255
		}
		if v != want {
			t.Fatalf("pixel %d = %d, want %d", i, v, want)
		}
	}
}

func TestPreprocessCapture_StretchesRange(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 16, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 16; x++ {
			v := uint8(60)
			if x >= 8 {
				v = 120
			}
			src.SetRGBA(x, y, color.RGBA{v, v, v, 255})
		}
	}
	out := PreprocessCapture(src)
	if out.Bounds() != image.Rect(0, 0, 16, 8) {
		t.Fatalf("bounds %v", out.Bounds())
	}
	lo, hi := uint8(255), uint8(0)
	for _, v := range out.Pix {
		lo, hi = min(lo, v), max(hi, v)
	}
	if lo != 0 || hi != 255 {
		t.Fatalf("expected full range after equalization, got [%d,%d]", lo, hi)
	}
	again := PreprocessCapture(src)
	for i := range out.Pix {
		if out.Pix[i] != again.Pix[i] {
			t.Fatalf("pipeline is not deterministic at %d", i)
		}
	}
}

func TestPreprocessCapture_Empty(t *testing.T) {
	out := PreprocessCapture(image.NewRGBA(image.Rectangle{}))
	if !out.Bounds().Empty() {
		t.Fatalf("expected empty output, got %v", out.Bounds())
	}
}

func TestResizeArea_Dimensions(t *testing.T) {
	src := texture(40, 20)
	out := ResizeArea(src, 10, 5)
	if out.Bounds() != image.Rect(0, 0, 10, 5) {
		t.Fatalf("bounds %v", out.Bounds())
	}
	same := ResizeArea(src, 40, 20)
	if same == src || same.Pix[7] != src.Pix[7] {
		t.Fatalf("identity resize should be an equal copy")
	}
}
