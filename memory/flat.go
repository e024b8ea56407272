package memory

import (
	"encoding/binary"

	"github.com/wippyai/linmem/errors"
)

// flat implements the linmem.Memory accessors over a Go byte slice.
// Owners swap data on growth.
type flat struct {
	data []byte
}

func (f *flat) span(offset, length uint32) ([]byte, error) {
	end := uint64(offset) + uint64(length)
	if end > uint64(len(f.data)) {
		return nil, errors.MemoryAccess(offset, length, uint32(len(f.data)))
	}
	return f.data[offset:end:end], nil
}

// Size returns the memory size in bytes.
func (f *flat) Size() uint32 {
	return uint32(len(f.data))
}

// Read returns a slice aliasing memory.
func (f *flat) Read(offset uint32, length uint32) ([]byte, error) {
	return f.span(offset, length)
}

// Write copies data into memory.
func (f *flat) Write(offset uint32, data []byte) error {
	b, err := f.span(offset, uint32(len(data)))
	if err != nil {
		return err
	}
	copy(b, data)
	return nil
}

// ReadU8 reads an unsigned 8-bit value.
func (f *flat) ReadU8(offset uint32) (uint8, error) {
	b, err := f.span(offset, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadU16 reads an unsigned 16-bit little-endian value.
func (f *flat) ReadU16(offset uint32) (uint16, error) {
	b, err := f.span(offset, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadU32 reads an unsigned 32-bit little-endian value.
func (f *flat) ReadU32(offset uint32) (uint32, error) {
	b, err := f.span(offset, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadU64 reads an unsigned 64-bit little-endian value.
func (f *flat) ReadU64(offset uint32) (uint64, error) {
	b, err := f.span(offset, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// WriteU8 writes an unsigned 8-bit value.
func (f *flat) WriteU8(offset uint32, value uint8) error {
	b, err := f.span(offset, 1)
	if err != nil {
		return err
	}
	b[0] = value
	return nil
}

// WriteU16 writes an unsigned 16-bit little-endian value.
func (f *flat) WriteU16(offset uint32, value uint16) error {
	b, err := f.span(offset, 2)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(b, value)
	return nil
}

// WriteU32 writes an unsigned 32-bit little-endian value.
func (f *flat) WriteU32(offset uint32, value uint32) error {
	b, err := f.span(offset, 4)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b, value)
	return nil
}

// WriteU64 writes an unsigned 64-bit little-endian value.
func (f *flat) WriteU64(offset uint32, value uint64) error {
	b, err := f.span(offset, 8)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(b, value)
	return nil
}
