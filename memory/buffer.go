package memory

import (
	"go.uber.org/zap"

	"github.com/wippyai/linmem"
)

// DefaultMaxPages is the page limit used when a config leaves MaxPages at 0.
// One page short of 4 GiB so that Size fits in a uint32.
const DefaultMaxPages = 65535

// BufferConfig configures a Buffer.
type BufferConfig struct {
	// InitialPages is the starting size in 64 KiB pages.
	InitialPages uint32

	// MaxPages caps Grow. 0 means DefaultMaxPages.
	MaxPages uint32
}

// Buffer is linear memory backed by a Go byte slice.
type Buffer struct {
	flat
	maxPages uint32
}

// NewBuffer creates a zero-filled buffer.
func NewBuffer(cfg BufferConfig) *Buffer {
	maxPages := cfg.MaxPages
	if maxPages == 0 {
		maxPages = DefaultMaxPages
	}
	return &Buffer{
		flat:     flat{data: make([]byte, uint64(cfg.InitialPages)*linmem.PageSize)},
		maxPages: maxPages,
	}
}

// NewBufferFrom wraps existing bytes without copying. Grow rounds the size
// up to whole pages.
func NewBufferFrom(data []byte) *Buffer {
	return &Buffer{flat: flat{data: data}, maxPages: DefaultMaxPages}
}

// Bytes returns the current backing slice.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Pages returns the size in whole pages, rounding up.
func (b *Buffer) Pages() uint32 {
	return uint32((uint64(len(b.data)) + linmem.PageSize - 1) / linmem.PageSize)
}

// Grow extends the buffer by deltaPages zero-filled pages.
func (b *Buffer) Grow(deltaPages uint32) (uint32, bool) {
	prev := b.Pages()
	next := uint64(prev) + uint64(deltaPages)
	if next > uint64(b.maxPages) {
		Logger().Debug("buffer grow refused",
			zap.Uint32("pages", prev),
			zap.Uint32("delta", deltaPages),
			zap.Uint32("max", b.maxPages))
		return prev, false
	}
	grown := make([]byte, next*linmem.PageSize)
	copy(grown, b.data)
	b.data = grown
	Logger().Debug("buffer grown", zap.Uint32("pages", uint32(next)))
	return prev, true
}

var (
	_ linmem.Memory      = (*Buffer)(nil)
	_ linmem.MemorySizer = (*Buffer)(nil)
	_ linmem.Grower      = (*Buffer)(nil)
)
