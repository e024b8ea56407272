package memory

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/linmem"
	"github.com/wippyai/linmem/errors"
)

// Wazero adapts a wazero api.Memory to linmem.Memory. The guest may grow
// the memory at any time; every call goes through api.Memory, which always
// sees the current buffer.
type Wazero struct {
	Mem api.Memory
}

// WrapWazero wraps a wazero api.Memory. It returns nil for a nil memory.
func WrapWazero(mem api.Memory) *Wazero {
	if mem == nil {
		return nil
	}
	return &Wazero{Mem: mem}
}

func (m *Wazero) oob(offset, length uint32) error {
	return errors.MemoryAccess(offset, length, m.Mem.Size())
}

// Size returns the memory size in bytes.
func (m *Wazero) Size() uint32 {
	return m.Mem.Size()
}

// Grow forwards to api.Memory.Grow.
func (m *Wazero) Grow(deltaPages uint32) (uint32, bool) {
	return m.Mem.Grow(deltaPages)
}

// Read reads bytes from memory.
func (m *Wazero) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := m.Mem.Read(offset, length)
	if !ok {
		return nil, m.oob(offset, length)
	}
	return data, nil
}

// Write writes bytes to memory.
func (m *Wazero) Write(offset uint32, data []byte) error {
	if !m.Mem.Write(offset, data) {
		return m.oob(offset, uint32(len(data)))
	}
	return nil
}

// ReadU8 reads an unsigned 8-bit value.
func (m *Wazero) ReadU8(offset uint32) (uint8, error) {
	v, ok := m.Mem.ReadByte(offset)
	if !ok {
		return 0, m.oob(offset, 1)
	}
	return v, nil
}

// ReadU16 reads an unsigned 16-bit little-endian value.
func (m *Wazero) ReadU16(offset uint32) (uint16, error) {
	v, ok := m.Mem.ReadUint16Le(offset)
	if !ok {
		return 0, m.oob(offset, 2)
	}
	return v, nil
}

// ReadU32 reads an unsigned 32-bit little-endian value.
func (m *Wazero) ReadU32(offset uint32) (uint32, error) {
	v, ok := m.Mem.ReadUint32Le(offset)
	if !ok {
		return 0, m.oob(offset, 4)
	}
	return v, nil
}

// ReadU64 reads an unsigned 64-bit little-endian value.
func (m *Wazero) ReadU64(offset uint32) (uint64, error) {
	v, ok := m.Mem.ReadUint64Le(offset)
	if !ok {
		return 0, m.oob(offset, 8)
	}
	return v, nil
}

// WriteU8 writes an unsigned 8-bit value.
func (m *Wazero) WriteU8(offset uint32, value uint8) error {
	if !m.Mem.WriteByte(offset, value) {
		return m.oob(offset, 1)
	}
	return nil
}

// WriteU16 writes an unsigned 16-bit little-endian value.
func (m *Wazero) WriteU16(offset uint32, value uint16) error {
	if !m.Mem.WriteUint16Le(offset, value) {
		return m.oob(offset, 2)
	}
	return nil
}

// WriteU32 writes an unsigned 32-bit little-endian value.
func (m *Wazero) WriteU32(offset uint32, value uint32) error {
	if !m.Mem.WriteUint32Le(offset, value) {
		return m.oob(offset, 4)
	}
	return nil
}

// WriteU64 writes an unsigned 64-bit little-endian value.
func (m *Wazero) WriteU64(offset uint32, value uint64) error {
	if !m.Mem.WriteUint64Le(offset, value) {
		return m.oob(offset, 8)
	}
	return nil
}

// WazeroConfig configures a standalone wazero memory.
type WazeroConfig struct {
	// InitialPages is the minimum memory size in pages. 0 means 1.
	InitialPages uint32

	// MaxPages sets the memory's declared maximum and the runtime limit.
	// 0 leaves the maximum undeclared.
	MaxPages uint32
}

// WazeroMemory is a wasm linear memory owned by a private wazero runtime
// that hosts a memory-only module.
type WazeroMemory struct {
	*Wazero
	runtime wazero.Runtime
}

// NewWazeroMemory compiles and instantiates a module that only exports a
// memory, giving hosts a real wasm linear memory without a guest program.
func NewWazeroMemory(ctx context.Context, cfg WazeroConfig) (*WazeroMemory, error) {
	pages := cfg.InitialPages
	if pages == 0 {
		pages = 1
	}
	if cfg.MaxPages > 0 && pages > cfg.MaxPages {
		return nil, errors.InvalidInput(errors.PhaseLoad, "initial pages exceed max pages")
	}

	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg.MaxPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MaxPages)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)

	mod, err := rt.Instantiate(ctx, memoryModule(pages, cfg.MaxPages))
	if err != nil {
		_ = rt.Close(ctx)
		return nil, errors.Load("instantiate memory module", err)
	}
	mem := mod.ExportedMemory("memory")
	if mem == nil {
		_ = rt.Close(ctx)
		return nil, errors.NotFound(errors.PhaseLoad, "exported memory", "memory")
	}
	return &WazeroMemory{Wazero: WrapWazero(mem), runtime: rt}, nil
}

// Close releases the runtime and its memory.
func (w *WazeroMemory) Close(ctx context.Context) error {
	return w.runtime.Close(ctx)
}

// memoryModule encodes a wasm binary with one memory exported as "memory".
func memoryModule(minPages, maxPages uint32) []byte {
	limits := []byte{0x00}
	limits = appendULEB128(limits, minPages)
	if maxPages > 0 {
		limits[0] = 0x01
		limits = appendULEB128(limits, maxPages)
	}
	memSection := append([]byte{0x01}, limits...)

	exportSection := []byte{0x01, 0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00}

	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	out = append(out, 0x05)
	out = appendULEB128(out, uint32(len(memSection)))
	out = append(out, memSection...)
	out = append(out, 0x07)
	out = appendULEB128(out, uint32(len(exportSection)))
	out = append(out, exportSection...)
	return out
}

func appendULEB128(b []byte, v uint32) []byte {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			c |= 0x80
		}
		b = append(b, c)
		if v == 0 {
			return b
		}
	}
}

var (
	_ linmem.Memory      = (*Wazero)(nil)
	_ linmem.MemorySizer = (*Wazero)(nil)
	_ linmem.Grower      = (*Wazero)(nil)
)
