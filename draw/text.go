package draw

import (
	"image"
	"image/color"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// DefaultFont parses the Go Regular TrueType font.
func DefaultFont() (*truetype.Font, error) {
	return truetype.Parse(goregular.TTF)
}

// Text draws s with f at size points, with the baseline origin at pt. Glyphs are
// clipped to dst.
func Text(dst Image, f *truetype.Font, size float64, pt image.Point, c color.Color, s string) error {
	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(f)
	ctx.SetFontSize(size)
	ctx.SetClip(dst.Bounds())
	ctx.SetDst(dst)
	ctx.SetSrc(image.NewUniform(c))
	ctx.SetHinting(font.HintingFull)

	_, err := ctx.DrawString(s, freetype.Pt(pt.X, pt.Y))
	return err
}

// MeasureText returns the advance width of s in pixels.
func MeasureText(f *truetype.Font, size float64, s string) int {
	face := truetype.NewFace(f, &truetype.Options{
		Size: size,
		DPI:  72,
	})
	defer face.Close()

	return font.MeasureString(face, s).Ceil()
}

// Caption draws s horizontally centered in dst with the baseline at y.
func Caption(dst Image, f *truetype.Font, size float64, y int, c color.Color, s string) error {
	var (
		b = dst.Bounds()
		w = MeasureText(f, size, s)
		x = b.Min.X + (b.Dx()-w)/2
	)
	return Text(dst, f, size, image.Pt(x, y), c, s)
}
