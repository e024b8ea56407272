package alloc

import (
	"fmt"
	"math"
	"slices"

	"go.uber.org/zap"

	"github.com/wippyai/linmem"
	"github.com/wippyai/linmem/errors"
	"github.com/wippyai/linmem/layout"
	"github.com/wippyai/linmem/view"
)

// Alignment of every payload returned by Heap and Arena.
const Alignment = 8

// BlockHeader precedes every heap payload.
var BlockHeader = view.MustDefine("BlockHeader",
	layout.F("next", layout.KindPointer),
	layout.F("prev", layout.KindPointer),
	layout.F("size", layout.KindSizeT),
	layout.F("padding", layout.KindSizeT),
)

var headerSize = BlockHeader.Sizeof()

// HeapConfig configures a Heap.
type HeapConfig struct {
	// Start is the first byte of the heap region. Values below Alignment are
	// raised to Alignment so that no block sits at the null address.
	Start linmem.Pointer

	// End is one past the last byte of the region. 0 means the current size
	// of the memory, which must then implement linmem.MemorySizer.
	End linmem.Pointer

	// MaxPages caps growth of the underlying memory. 0 means the memory's own
	// limit. Growth only happens when End is the end of the memory.
	MaxPages uint32
}

// HeapStats describes heap occupancy.
type HeapStats struct {
	// Blocks is the number of live allocations.
	Blocks int
	// InUse is the sum of requested payload sizes.
	InUse uint32
	// Reserved is the sum of block sizes including headers and padding.
	Reserved uint32
	// Capacity is the size of the heap region.
	Capacity uint32
}

// Heap is a first-fit allocator over a region of linear memory.
type Heap struct {
	mem      linmem.Memory
	start    linmem.Pointer
	end      linmem.Pointer
	head     linmem.Pointer
	maxPages uint32
}

// NewHeap creates an empty heap over [cfg.Start, cfg.End) of mem.
func NewHeap(mem linmem.Memory, cfg HeapConfig) (*Heap, error) {
	start, err := linmem.AlignUp(uint32(max(cfg.Start, Alignment)), Alignment)
	if err != nil {
		return nil, err
	}
	end := cfg.End
	if end == 0 {
		sizer, ok := mem.(linmem.MemorySizer)
		if !ok {
			return nil, errors.InvalidInput(errors.PhaseConfig, "heap end is required when the memory size is unknown")
		}
		end = linmem.Pointer(sizer.Size())
	}
	if uint64(end) < uint64(start)+uint64(headerSize) {
		return nil, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Detail("heap region [%s, %s) is too small", linmem.Pointer(start), end).
			Build()
	}
	return &Heap{
		mem:      mem,
		start:    linmem.Pointer(start),
		end:      end,
		maxPages: cfg.MaxPages,
	}, nil
}

// Memory returns the managed memory.
func (h *Heap) Memory() linmem.Memory {
	return h.mem
}

// Start returns the first address of the heap region.
func (h *Heap) Start() linmem.Pointer {
	return h.start
}

// End returns one past the last address of the heap region.
func (h *Heap) End() linmem.Pointer {
	return h.end
}

// Alloc returns a zero-filled payload of size bytes, or Null when no space is
// left.
func (h *Heap) Alloc(size uint32) linmem.Pointer {
	ptr, err := h.alloc(size)
	if err != nil {
		Logger().Warn("heap allocation failed", zap.Uint32("size", size), zap.Error(err))
		return linmem.Null
	}
	return ptr
}

// Realloc moves ptr to a block of size bytes, copying the smaller of the old
// and new payload sizes. Realloc(Null, size) is Alloc(size). On failure the
// old block is left intact and Null is returned.
func (h *Heap) Realloc(ptr linmem.Pointer, size uint32) linmem.Pointer {
	if ptr.IsNull() {
		return h.Alloc(size)
	}
	old, err := h.payloadSize(ptr)
	if err != nil {
		Logger().Warn("heap realloc of unknown block", zap.Stringer("ptr", ptr), zap.Error(err))
		return linmem.Null
	}
	moved := h.Alloc(size)
	if moved.IsNull() {
		return linmem.Null
	}
	data, err := h.mem.Read(uint32(ptr), min(old, size))
	if err == nil {
		err = h.mem.Write(uint32(moved), slices.Clone(data))
	}
	if err == nil {
		err = h.Free(ptr)
	}
	if err != nil {
		Logger().Warn("heap realloc copy failed", zap.Stringer("ptr", ptr), zap.Error(err))
		_ = h.Free(moved)
		return linmem.Null
	}
	return moved
}

// Free releases the block holding ptr.
func (h *Heap) Free(ptr linmem.Pointer) error {
	if ptr.IsNull() {
		return errors.NullPointerFree(errors.PhaseAlloc)
	}
	at, err := h.lookup(ptr)
	if err != nil {
		return err
	}
	hdr := h.header(at)
	prev, err := hdr.Pointer("prev")
	if err != nil {
		return err
	}
	next, err := hdr.Pointer("next")
	if err != nil {
		return err
	}
	if prev.IsNull() {
		h.head = next
	} else if err := h.header(prev).SetPointer("next", next); err != nil {
		return err
	}
	if !next.IsNull() {
		if err := h.header(next).SetPointer("prev", prev); err != nil {
			return err
		}
	}
	return nil
}

// Stats walks the block list.
func (h *Heap) Stats() (HeapStats, error) {
	st := HeapStats{Capacity: uint32(h.end - h.start)}
	err := h.walk(func(at linmem.Pointer, hdr *view.View) (bool, error) {
		size, err := hdr.SizeT("size")
		if err != nil {
			return false, err
		}
		pad, err := hdr.SizeT("padding")
		if err != nil {
			return false, err
		}
		st.Blocks++
		st.Reserved += size
		st.InUse += size - headerSize - pad
		return true, nil
	})
	return st, err
}

func (h *Heap) alloc(size uint32) (linmem.Pointer, error) {
	total64 := (uint64(headerSize) + uint64(size) + Alignment - 1) &^ (Alignment - 1)
	if total64 > math.MaxUint32 {
		return linmem.Null, errors.OutOfMemory(errors.PhaseAlloc, size)
	}
	total := uint32(total64)

	at, prev, next, err := h.findSpace(total)
	if err != nil {
		return linmem.Null, err
	}
	if at.IsNull() && h.grow(total) {
		at, prev, next, err = h.findSpace(total)
		if err != nil {
			return linmem.Null, err
		}
	}
	if at.IsNull() {
		return linmem.Null, errors.OutOfMemory(errors.PhaseAlloc, size)
	}

	hdr := h.header(at)
	for _, set := range []func() error{
		func() error { return hdr.SetPointer("next", next) },
		func() error { return hdr.SetPointer("prev", prev) },
		func() error { return hdr.SetSizeT("size", total) },
		func() error { return hdr.SetSizeT("padding", total-headerSize-size) },
		func() error { return h.mem.Write(uint32(at)+headerSize, make([]byte, total-headerSize)) },
	} {
		if err := set(); err != nil {
			return linmem.Null, err
		}
	}

	if prev.IsNull() {
		h.head = at
	} else if err := h.header(prev).SetPointer("next", at); err != nil {
		return linmem.Null, err
	}
	if !next.IsNull() {
		if err := h.header(next).SetPointer("prev", at); err != nil {
			return linmem.Null, err
		}
	}
	return at + linmem.Pointer(headerSize), nil
}

// findSpace returns the first gap of at least total bytes and the blocks
// around it. at is Null when nothing fits.
func (h *Heap) findSpace(total uint32) (at, prev, next linmem.Pointer, err error) {
	fits := func(from, to linmem.Pointer) bool {
		return uint64(from)+uint64(total) <= uint64(to)
	}
	if h.head.IsNull() {
		if fits(h.start, h.end) {
			return h.start, linmem.Null, linmem.Null, nil
		}
		return linmem.Null, linmem.Null, linmem.Null, nil
	}
	if fits(h.start, h.head) {
		return h.start, linmem.Null, h.head, nil
	}

	err = h.walk(func(cur linmem.Pointer, hdr *view.View) (bool, error) {
		size, err := hdr.SizeT("size")
		if err != nil {
			return false, err
		}
		following, err := hdr.Pointer("next")
		if err != nil {
			return false, err
		}
		limit := following
		if following.IsNull() {
			limit = h.end
		}
		gap := cur + linmem.Pointer(size)
		if fits(gap, limit) {
			at, prev, next = gap, cur, following
			return false, nil
		}
		return true, nil
	})
	return at, prev, next, err
}

// grow extends the memory so that a block of total bytes fits past the
// current end.
func (h *Heap) grow(total uint32) bool {
	g, ok := h.mem.(linmem.Grower)
	if !ok {
		return false
	}
	sizer, ok := h.mem.(linmem.MemorySizer)
	if !ok || uint32(h.end) != sizer.Size() {
		return false
	}
	delta := uint32((uint64(total) + linmem.PageSize - 1) / linmem.PageSize)
	pages := sizer.Size() / linmem.PageSize
	if h.maxPages != 0 && uint64(pages)+uint64(delta) > uint64(h.maxPages) {
		Logger().Debug("heap growth capped",
			zap.Uint32("pages", pages),
			zap.Uint32("delta", delta),
			zap.Uint32("max", h.maxPages))
		return false
	}
	if _, ok := g.Grow(delta); !ok {
		return false
	}
	end := linmem.Pointer(sizer.Size())
	if end <= h.end {
		return false
	}
	h.end = end
	Logger().Debug("heap grown", zap.Uint32("delta", delta), zap.Stringer("end", end))
	return true
}

// lookup returns the header address of a live payload pointer.
func (h *Heap) lookup(ptr linmem.Pointer) (linmem.Pointer, error) {
	unknown := errors.New(errors.PhaseAlloc, errors.KindInvalidInput).
		Value(ptr).
		Detail("%s is not a live heap block", ptr).
		Build()
	if uint64(ptr) < uint64(h.start)+uint64(headerSize) || ptr >= h.end {
		return linmem.Null, unknown
	}
	want := ptr - linmem.Pointer(headerSize)
	found := false
	err := h.walk(func(at linmem.Pointer, _ *view.View) (bool, error) {
		found = at == want
		return !found && at < want, nil
	})
	if err != nil {
		return linmem.Null, err
	}
	if !found {
		return linmem.Null, unknown
	}
	return want, nil
}

func (h *Heap) payloadSize(ptr linmem.Pointer) (uint32, error) {
	at, err := h.lookup(ptr)
	if err != nil {
		return 0, err
	}
	hdr := h.header(at)
	size, err := hdr.SizeT("size")
	if err != nil {
		return 0, err
	}
	pad, err := hdr.SizeT("padding")
	if err != nil {
		return 0, err
	}
	return size - headerSize - pad, nil
}

// walk visits blocks in address order until fn returns false.
func (h *Heap) walk(fn func(at linmem.Pointer, hdr *view.View) (bool, error)) error {
	limit := uint64(h.end-h.start)/uint64(headerSize) + 1
	cur := h.head
	for hops := uint64(0); !cur.IsNull(); hops++ {
		if hops > limit || cur < h.start || cur >= h.end {
			return errors.InvalidData(errors.PhaseAlloc, []string{BlockHeader.Name()},
				fmt.Sprintf("corrupted block list at %s", cur))
		}
		hdr := h.header(cur)
		more, err := fn(cur, hdr)
		if err != nil || !more {
			return err
		}
		if cur, err = hdr.Pointer("next"); err != nil {
			return err
		}
	}
	return nil
}

func (h *Heap) header(at linmem.Pointer) *view.View {
	return BlockHeader.At(h.mem, at).View()
}

var _ linmem.Allocator = (*Heap)(nil)
