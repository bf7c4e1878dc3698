package pixel

import (
	"image/color"
	"testing"
)

func TestPrimaries(t *testing.T) {
	var (
		red   = color.RGBA{R: 0xff, A: 0xff}
		green = color.RGBA{G: 0xff, A: 0xff}
		blue  = color.RGBA{B: 0xff, A: 0xff}
	)
	tests := []struct {
		Format           Format
		Red, Green, Blue uint16
	}{
		{FormatCRGB15, 0x7c00, 0x03e0, 0x001f},
		{FormatCRGB16, 0xf800, 0x07e0, 0x001f},
		{FormatCBGR15, 0x001f, 0x03e0, 0x7c00},
		{FormatCBGR16, 0x001f, 0x07e0, 0xf800},
	}
	for _, test := range tests {
		t.Run(test.Format.String(), func(it *testing.T) {
			if v := test.Format.Encode(red); v != test.Red {
				it.Errorf("expected red to be %#04x, got %#04x", test.Red, v)
			}
			if v := test.Format.Encode(green); v != test.Green {
				it.Errorf("expected green to be %#04x, got %#04x", test.Green, v)
			}
			if v := test.Format.Encode(blue); v != test.Blue {
				it.Errorf("expected blue to be %#04x, got %#04x", test.Blue, v)
			}
			r, g, b, a := test.Format.Decode(test.Red).RGBA()
			if r != 0xffff || g != 0 || b != 0 || a != 0xffff {
				it.Errorf("expected decoded red, got %#04x %#04x %#04x %#04x", r, g, b, a)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	for _, f := range []Format{FormatCRGB16, FormatCBGR16} {
		t.Run(f.String(), func(it *testing.T) {
			for v := 0; v <= 0xffff; v++ {
				if w := f.Encode(f.Decode(uint16(v))); w != uint16(v) {
					it.Fatalf("expected %#04x, got %#04x", v, w)
				}
			}
		})
	}
	for _, f := range []Format{FormatCRGB15, FormatCBGR15} {
		t.Run(f.String(), func(it *testing.T) {
			for v := 0; v <= 0x7fff; v++ {
				if w := f.Encode(f.Decode(uint16(v))); w != uint16(v) {
					it.Fatalf("expected %#04x, got %#04x", v, w)
				}
			}
		})
	}
}

func TestAlphaIgnored(t *testing.T) {
	if v := FormatCRGB16.Encode(color.Transparent); v != 0 {
		t.Errorf("expected transparent to encode as black, got %#04x", v)
	}
	if _, _, _, a := FormatCRGB16.Decode(0).RGBA(); a != 0xffff {
		t.Errorf("expected decoded pixels to be opaque, got alpha %#04x", a)
	}
}

func TestFormat(t *testing.T) {
	for _, f := range []Format{FormatCRGB15, FormatCRGB16, FormatCBGR15, FormatCBGR16} {
		if v := f.BytesPerPixel(); v != 2 {
			t.Errorf("%s: expected 2 bytes per pixel, got %d", f, v)
		}
		if v := FormatOf(f.Model()); v != f {
			t.Errorf("%s: expected FormatOf to return %s, got %s", f, f, v)
		}
	}
	if v := UnknownFormat.BytesPerPixel(); v != 0 {
		t.Errorf("expected 0 bytes per pixel for unknown format, got %d", v)
	}
	if v := FormatOf(color.RGBAModel); v != UnknownFormat {
		t.Errorf("expected unknown format for RGBA model, got %s", v)
	}
}
