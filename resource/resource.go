// Package resource provides the image resources of the application.
package resource

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sync"
)

// Errors
var (
	ErrNotFound = errors.New("resource: not found")
	ErrClosed   = errors.New("resource: provider is not open")
)

// Background is the id of the default background image.
const Background = "background"

// Extensions are tried in order when an id is given without extension.
var Extensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp"}

//go:embed assets
var assets embed.FS

// Provider gives access to encoded image resources.
type Provider interface {
	// Open initializes the provider; it must be called before Image.
	Open() error

	// Close releases the provider.
	Close() error

	// Image returns the encoded image with the given id.
	Image(id string) ([]byte, error)
}

// Bundle is a Provider backed by a file system.
type Bundle struct {
	fsys  fs.FS
	mu    sync.Mutex
	open  bool
	cache map[string][]byte
}

// New returns a bundle that reads images from fsys.
func New(fsys fs.FS) *Bundle {
	return &Bundle{fsys: fsys}
}

// Dir returns a bundle that reads images from the directory at name.
func Dir(name string) *Bundle {
	return New(os.DirFS(name))
}

// Default returns a bundle with the embedded images.
func Default() *Bundle {
	sub, err := fs.Sub(assets, "assets")
	if err != nil {
		panic(err)
	}
	return New(sub)
}

func (b *Bundle) Open() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.open = true
	b.cache = make(map[string][]byte)
	return nil
}

func (b *Bundle) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.open = false
	b.cache = nil
	return nil
}

func (b *Bundle) Image(id string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.open {
		return nil, ErrClosed
	}
	if data, ok := b.cache[id]; ok {
		return data, nil
	}

	names := []string{id}
	if path.Ext(id) == "" {
		names = names[:0]
		for _, ext := range Extensions {
			names = append(names, id+ext)
		}
	}
	for _, name := range names {
		data, err := fs.ReadFile(b.fsys, name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		} else if err != nil {
			return nil, fmt.Errorf("resource: reading %q: %w", name, err)
		}
		b.cache[id] = data
		return data, nil
	}
	return nil, fmt.Errorf("%w: image %q", ErrNotFound, id)
}

// Interface checks.
var (
	_ Provider = (*Bundle)(nil)
)
