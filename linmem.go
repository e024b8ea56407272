package linmem

import (
	"fmt"

	"github.com/wippyai/linmem/layout"
)

// Pointer is an offset into linear memory. Null (0) is never a valid allocation.
type Pointer uint32

// Null is the reserved null pointer.
const Null Pointer = 0

// PageSize is the growth unit of linear memory (one wasm page).
const PageSize = 65536

// IsNull reports whether p is the null sentinel.
func (p Pointer) IsNull() bool {
	return p == Null
}

func (p Pointer) String() string {
	return fmt.Sprintf("0x%08x", uint32(p))
}

// Memory represents linear memory. Implementations resolve the backing
// buffer on every call, so growth is observed immediately.
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
	ReadU8(offset uint32) (uint8, error)
	ReadU16(offset uint32) (uint16, error)
	ReadU32(offset uint32) (uint32, error)
	ReadU64(offset uint32) (uint64, error)
	WriteU8(offset uint32, value uint8) error
	WriteU16(offset uint32, value uint16) error
	WriteU32(offset uint32, value uint32) error
	WriteU64(offset uint32, value uint64) error
}

// MemorySizer provides the current size of linear memory in bytes.
type MemorySizer interface {
	Size() uint32
}

// Grower is implemented by memories that can grow by whole pages.
// It returns the previous size in pages.
type Grower interface {
	Grow(deltaPages uint32) (previousPages uint32, ok bool)
}

// Allocator allocates blocks in linear memory.
// Alloc and Realloc return Null when the request cannot be satisfied.
// Free returns a NullPointerFree error for Null.
type Allocator interface {
	Alloc(size uint32) Pointer
	Realloc(ptr Pointer, size uint32) Pointer
	Free(ptr Pointer) error
	Memory() Memory
}

// AlignUp rounds n up to a multiple of alignment, which must be a power of two.
func AlignUp(n, alignment uint32) (uint32, error) {
	return layout.AlignUp(n, alignment)
}
