//go:build !linux

package framebuffer

import "github.com/BeatGlow/compositor/display"

func Open(_ string) (display.Display, error) {
	return nil, ErrNotSupported
}
