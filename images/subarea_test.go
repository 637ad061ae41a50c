package images

import (
	"image"
	"image/color"
	"testing"
)

func TestSubArea_SelectsColumns(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 100, 20))
	frame.SetRGBA(10, 3, color.RGBA{1, 2, 3, 255})
	sub, rect, err := SubArea(frame, 10, 45)
	if err != nil || sub == nil {
		t.Fatalf("expected sub area, got err=%v", err)
	}
	if rect != image.Rect(10, 0, 55, 20) {
		t.Fatalf("unexpected rect %v", rect)
	}
	if got := sub.RGBAAt(10, 3); got != (color.RGBA{1, 2, 3, 255}) {
		t.Fatalf("sub image does not share frame pixels: %v", got)
	}
}

func TestSubArea_ClampsNearEdge(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 30, 10))
	_, rect, err := SubArea(frame, 20, 50)
	if err != nil {
		t.Fatalf("sub area error: %v", err)
	}
	if rect.Max.X != 30 || rect.Dx() != 10 {
		t.Fatalf("expected clamp to frame edge, got %v", rect)
	}
}

func TestSubArea_PastEdgeIsEmpty(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 30, 10))
	sub, rect, err := SubArea(frame, 40, 5)
	if err != nil || sub == nil {
		t.Fatalf("unexpected err=%v", err)
	}
	if !rect.Empty() || !sub.Bounds().Empty() {
		t.Fatalf("expected empty area, got %v", rect)
	}
}

func TestSubArea_OffsetFrame(t *testing.T) {
	base := image.NewRGBA(image.Rect(0, 0, 50, 50))
	frame := base.SubImage(image.Rect(10, 10, 40, 30))
	sub, rect, _ := SubArea(frame, 5, 10)
	if rect != image.Rect(5, 0, 15, 20) {
		t.Fatalf("relative rect %v", rect)
	}
	if sub.Bounds() != image.Rect(15, 10, 25, 30) {
		t.Fatalf("absolute bounds %v", sub.Bounds())
	}
}

func TestSubArea_ConvertsOtherLayouts(t *testing.T) {
	frame := image.NewGray(image.Rect(0, 0, 8, 4))
	frame.SetGray(3, 1, color.Gray{200})
	sub, _, err := SubArea(frame, 2, 4)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if sub.Bounds() != image.Rect(0, 0, 4, 4) {
		t.Fatalf("bounds %v", sub.Bounds())
	}
	if got := sub.RGBAAt(1, 1); got != (color.RGBA{200, 200, 200, 255}) {
		t.Fatalf("pixel %v", got)
	}
}

func TestSubArea_NilFrame(t *testing.T) {
	if _, _, err := SubArea(nil, 0, 1); err == nil {
		t.Fatalf("expected error")
	}
}
