//go:build unix

package memory

import (
	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/wippyai/linmem"
	"github.com/wippyai/linmem/errors"
)

// MmapConfig configures an Mmap memory.
type MmapConfig struct {
	// InitialPages is the starting size in 64 KiB pages. 0 means 1.
	InitialPages uint32

	// MaxPages caps Grow. 0 means DefaultMaxPages.
	MaxPages uint32
}

// Mmap is linear memory backed by an anonymous private mapping, outside
// the Go heap. Close releases the mapping.
type Mmap struct {
	flat
	maxPages uint32
}

// NewMmap maps a zero-filled anonymous region.
func NewMmap(cfg MmapConfig) (*Mmap, error) {
	pages := cfg.InitialPages
	if pages == 0 {
		pages = 1
	}
	maxPages := cfg.MaxPages
	if maxPages == 0 {
		maxPages = DefaultMaxPages
	}
	if pages > maxPages {
		return nil, errors.InvalidInput(errors.PhaseMemory, "initial pages exceed max pages")
	}
	data, err := mapPages(pages)
	if err != nil {
		return nil, err
	}
	return &Mmap{flat: flat{data: data}, maxPages: maxPages}, nil
}

func mapPages(pages uint32) ([]byte, error) {
	data, err := unix.Mmap(-1, 0, int(uint64(pages)*linmem.PageSize),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseMemory, errors.KindOutOfMemory, err, "mmap")
	}
	return data, nil
}

// Pages returns the mapped size in pages.
func (m *Mmap) Pages() uint32 {
	return uint32(uint64(len(m.data)) / linmem.PageSize)
}

// Grow maps a larger region, copies the contents and unmaps the old one.
func (m *Mmap) Grow(deltaPages uint32) (uint32, bool) {
	prev := m.Pages()
	if m.data == nil {
		return prev, false
	}
	next := uint64(prev) + uint64(deltaPages)
	if next > uint64(m.maxPages) {
		return prev, false
	}
	if deltaPages == 0 {
		return prev, true
	}
	grown, err := mapPages(uint32(next))
	if err != nil {
		Logger().Warn("mmap grow failed", zap.Uint32("pages", uint32(next)), zap.Error(err))
		return prev, false
	}
	copy(grown, m.data)
	if err := unix.Munmap(m.data); err != nil {
		Logger().Warn("munmap failed", zap.Error(err))
	}
	m.data = grown
	return prev, true
}

// Close unmaps the region. Further accesses fail as out of bounds.
func (m *Mmap) Close() error {
	if m.data == nil {
		return nil
	}
	err := unix.Munmap(m.data)
	m.data = nil
	if err != nil {
		return errors.Wrap(errors.PhaseMemory, errors.KindInvalidInput, err, "munmap")
	}
	return nil
}

var (
	_ linmem.Memory      = (*Mmap)(nil)
	_ linmem.MemorySizer = (*Mmap)(nil)
	_ linmem.Grower      = (*Mmap)(nil)
)
