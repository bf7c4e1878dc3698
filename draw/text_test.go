package draw

import (
	"image"
	"testing"
)

func TestCaption(t *testing.T) {
	f, err := DefaultFont()
	if err != nil {
		t.Fatal(err)
	}

	if w := MeasureText(f, 16, "spin"); w <= 0 {
		t.Fatalf("expected positive text width, got %d", w)
	}
	if a, b := MeasureText(f, 16, "spin"), MeasureText(f, 16, "spinning"); a >= b {
		t.Errorf("expected longer text to be wider, got %d >= %d", a, b)
	}

	img := image.NewRGBA(image.Rect(0, 0, 120, 40))
	if err = Caption(img, f, 16, 24, on, "hello"); err != nil {
		t.Fatal(err)
	}
	var painted int
	for _, v := range img.Pix {
		if v != 0 {
			painted++
		}
	}
	if painted == 0 {
		t.Error("expected caption to paint pixels")
	}
}
