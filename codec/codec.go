// Package codec decodes stored image resources into images.
//
// PNG, JPEG and GIF are decoded by the standard library, BMP, TIFF and WebP
// by golang.org/x/image.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF
	_ "image/jpeg" // register JPEG
	_ "image/png"  // register PNG

	_ "golang.org/x/image/bmp"  // register BMP
	_ "golang.org/x/image/tiff" // register TIFF
	_ "golang.org/x/image/webp" // register WebP
)

// ErrDecode is returned for malformed or unsupported image data.
var ErrDecode = errors.New("codec: can't decode image")

// Decoder turns encoded image data into an image.
type Decoder interface {
	// Decode returns the image and the name of its format.
	Decode(data []byte) (image.Image, string, error)
}

type standard struct{}

// Standard decodes all registered image formats.
var Standard Decoder = standard{}

func (standard) Decode(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: no data", ErrDecode)
	}
	img, name, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if img.Bounds().Empty() {
		return nil, name, fmt.Errorf("%w: empty %s image", ErrDecode, name)
	}
	return img, name, nil
}

// Config returns the dimensions and color model of the encoded image without
// decoding its pixels.
func Config(data []byte) (image.Config, string, error) {
	config, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return config, "", fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return config, name, nil
}
