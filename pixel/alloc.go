package pixel

import (
	"errors"
	"fmt"
	"sync"
)

// ErrOutOfMemory is returned when an allocator cannot satisfy a request.
var ErrOutOfMemory = errors.New("pixel: out of memory")

// Allocator hands out memory the display controller can read from.
type Allocator interface {
	// Alloc returns a zeroed slice of exactly size bytes.
	Alloc(size int) ([]byte, error)

	// Free returns memory obtained from Alloc.
	Free([]byte)
}

type heap struct{}

// Heap allocates from the Go heap without limit.
var Heap Allocator = heap{}

func (heap) Alloc(size int) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("%w: negative size %d", ErrOutOfMemory, size)
	}
	return make([]byte, size), nil
}

func (heap) Free([]byte) {}

// Pool is a fixed capacity allocator, modelled after the DMA capable region of
// an embedded device.
type Pool struct {
	mu       sync.Mutex
	capacity int
	used     int
	peak     int
}

// NewPool returns a pool of capacity bytes.
func NewPool(capacity int) *Pool {
	return &Pool{capacity: capacity}
}

func (p *Pool) Alloc(size int) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if size < 0 || p.used+size > p.capacity {
		return nil, fmt.Errorf("%w: %d bytes requested, %d of %d available", ErrOutOfMemory, size, p.capacity-p.used, p.capacity)
	}
	p.used += size
	if p.used > p.peak {
		p.peak = p.used
	}
	b := make([]byte, size)
	return b[:size:size], nil
}

func (p *Pool) Free(b []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.used -= len(b); p.used < 0 {
		p.used = 0
	}
}

// Capacity is the pool size in bytes.
func (p *Pool) Capacity() int {
	return p.capacity
}

// Used is the number of bytes currently handed out.
func (p *Pool) Used() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.used
}

// Peak is the highest number of bytes handed out at once.
func (p *Pool) Peak() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.peak
}
