package alloc

import (
	"slices"

	"github.com/wippyai/linmem"
	"github.com/wippyai/linmem/errors"
)

// Arena bump-allocates from one block of a parent allocator. Individual
// frees are no-ops; memory is reclaimed with Restore, Reset or Close.
type Arena struct {
	parent linmem.Allocator
	buf    linmem.Pointer
	idx    uint32
	cap    uint32
}

// NewArena reserves capacity bytes from a.
func NewArena(a linmem.Allocator, capacity uint32) (*Arena, error) {
	buf := a.Alloc(capacity)
	if buf.IsNull() {
		return nil, errors.OutOfMemory(errors.PhaseAlloc, capacity)
	}
	return &Arena{parent: a, buf: buf, cap: capacity}, nil
}

// Memory returns the parent's memory.
func (a *Arena) Memory() linmem.Memory {
	return a.parent.Memory()
}

// Cap returns the arena capacity in bytes.
func (a *Arena) Cap() uint32 {
	return a.cap
}

// Used returns the bytes handed out so far, including alignment padding.
func (a *Arena) Used() uint32 {
	return a.idx
}

// Alloc returns size bytes aligned to Alignment, or Null when the arena is
// full or closed. The bytes are not cleared.
func (a *Arena) Alloc(size uint32) linmem.Pointer {
	if a.buf.IsNull() {
		return linmem.Null
	}
	n := (uint64(size) + Alignment - 1) &^ (Alignment - 1)
	if uint64(a.idx)+n > uint64(a.cap) {
		return linmem.Null
	}
	ptr := a.buf + linmem.Pointer(a.idx)
	a.idx += uint32(n)
	return ptr
}

// Realloc allocates size bytes and copies what fits from ptr. The old
// allocation stays reserved until the arena is rewound.
func (a *Arena) Realloc(ptr linmem.Pointer, size uint32) linmem.Pointer {
	if ptr.IsNull() {
		return a.Alloc(size)
	}
	if !a.owns(ptr) {
		return linmem.Null
	}
	oldEnd := a.buf + linmem.Pointer(a.idx)
	moved := a.Alloc(size)
	if moved.IsNull() {
		return linmem.Null
	}
	mem := a.Memory()
	data, err := mem.Read(uint32(ptr), min(size, uint32(oldEnd-ptr)))
	if err == nil {
		err = mem.Write(uint32(moved), slices.Clone(data))
	}
	if err != nil {
		a.idx = uint32(oldEnd - a.buf)
		return linmem.Null
	}
	return moved
}

// Free accepts any pointer handed out by the arena and does nothing.
func (a *Arena) Free(ptr linmem.Pointer) error {
	if ptr.IsNull() {
		return errors.NullPointerFree(errors.PhaseAlloc)
	}
	if !a.owns(ptr) {
		return errors.New(errors.PhaseAlloc, errors.KindInvalidInput).
			Value(ptr).
			Detail("%s is outside the arena", ptr).
			Build()
	}
	return nil
}

// SavePoint returns the current fill level.
func (a *Arena) SavePoint() uint32 {
	return a.idx
}

// Restore rewinds the arena to a save point. Allocations made after the save
// point become invalid.
func (a *Arena) Restore(sp uint32) error {
	if sp > a.idx {
		return errors.New(errors.PhaseAlloc, errors.KindInvalidInput).
			Value(sp).
			Detail("save point %d is ahead of the arena (%d used)", sp, a.idx).
			Build()
	}
	a.idx = sp
	return nil
}

// Reset rewinds the arena to empty.
func (a *Arena) Reset() {
	a.idx = 0
}

// Close returns the block to the parent allocator. Closing twice is a no-op.
func (a *Arena) Close() error {
	if a.buf.IsNull() {
		return nil
	}
	err := a.parent.Free(a.buf)
	a.buf = linmem.Null
	a.idx = 0
	a.cap = 0
	return err
}

func (a *Arena) owns(ptr linmem.Pointer) bool {
	return !a.buf.IsNull() && ptr >= a.buf && ptr < a.buf+linmem.Pointer(a.idx)
}

var _ linmem.Allocator = (*Arena)(nil)
