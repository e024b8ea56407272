package alloc

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/linmem"
	"github.com/wippyai/linmem/errors"
	"github.com/wippyai/linmem/memory"
)

// Default export names of the guest allocator.
const (
	DefaultAllocName   = "dieq_alloc"
	DefaultReallocName = "dieq_realloc"
	DefaultFreeName    = "dieq_free"
	DefaultSetupName   = "dieq_global_setup"
	DefaultMemoryName  = "memory"
)

// ExportedConfig names the guest exports. Empty fields use the defaults.
type ExportedConfig struct {
	AllocName   string
	ReallocName string
	FreeName    string
	// SetupName is optional; Setup fails when the module does not export it.
	SetupName  string
	MemoryName string
}

func (c ExportedConfig) withDefaults() ExportedConfig {
	def := func(v, d string) string {
		if v == "" {
			return d
		}
		return v
	}
	return ExportedConfig{
		AllocName:   def(c.AllocName, DefaultAllocName),
		ReallocName: def(c.ReallocName, DefaultReallocName),
		FreeName:    def(c.FreeName, DefaultFreeName),
		SetupName:   def(c.SetupName, DefaultSetupName),
		MemoryName:  def(c.MemoryName, DefaultMemoryName),
	}
}

// Exported allocates through functions exported by a wasm module.
// Calls are serialized because a module instance is single-threaded.
type Exported struct {
	ctx     context.Context
	mem     *memory.Wazero
	alloc   api.Function
	realloc api.Function
	free    api.Function
	setup   api.Function
	cfg     ExportedConfig
	mu      sync.Mutex
}

// NewExported binds the allocator exports of mod. ctx is used for every
// call into the module.
func NewExported(ctx context.Context, mod api.Module, cfg ExportedConfig) (*Exported, error) {
	cfg = cfg.withDefaults()

	mem := mod.ExportedMemory(cfg.MemoryName)
	if mem == nil {
		return nil, errors.NotFound(errors.PhaseLoad, "memory", cfg.MemoryName)
	}
	e := &Exported{
		ctx:   ctx,
		mem:   memory.WrapWazero(mem),
		setup: mod.ExportedFunction(cfg.SetupName),
		cfg:   cfg,
	}
	for _, fn := range []struct {
		dst  *api.Function
		name string
	}{
		{&e.alloc, cfg.AllocName},
		{&e.realloc, cfg.ReallocName},
		{&e.free, cfg.FreeName},
	} {
		*fn.dst = mod.ExportedFunction(fn.name)
		if *fn.dst == nil {
			return nil, errors.NotFound(errors.PhaseLoad, "function", fn.name)
		}
	}
	return e, nil
}

// Memory returns the module's exported memory.
func (e *Exported) Memory() linmem.Memory {
	return e.mem
}

// Setup calls the guest's heap setup export with the heap bounds.
func (e *Exported) Setup(heapBase, heapEnd linmem.Pointer) error {
	if e.setup == nil {
		return errors.NotFound(errors.PhaseLoad, "function", e.cfg.SetupName)
	}
	_, err := e.call(e.setup, e.cfg.SetupName, uint64(heapBase), uint64(heapEnd))
	return err
}

// Alloc calls the guest allocator. Call failures are logged and reported as
// Null.
func (e *Exported) Alloc(size uint32) linmem.Pointer {
	ptr, err := e.call(e.alloc, e.cfg.AllocName, api.EncodeU32(size))
	if err != nil {
		Logger().Warn("guest alloc failed", zap.Uint32("size", size), zap.Error(err))
		return linmem.Null
	}
	return ptr
}

// Realloc calls the guest reallocator.
func (e *Exported) Realloc(ptr linmem.Pointer, size uint32) linmem.Pointer {
	moved, err := e.call(e.realloc, e.cfg.ReallocName, uint64(ptr), api.EncodeU32(size))
	if err != nil {
		Logger().Warn("guest realloc failed",
			zap.Stringer("ptr", ptr),
			zap.Uint32("size", size),
			zap.Error(err))
		return linmem.Null
	}
	return moved
}

// Free calls the guest free. Null is rejected without calling the guest.
func (e *Exported) Free(ptr linmem.Pointer) error {
	if ptr.IsNull() {
		return errors.NullPointerFree(errors.PhaseAlloc)
	}
	_, err := e.call(e.free, e.cfg.FreeName, uint64(ptr))
	return err
}

func (e *Exported) call(fn api.Function, name string, params ...uint64) (linmem.Pointer, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	results, err := fn.Call(e.ctx, params...)
	if err != nil {
		return linmem.Null, errors.CallFailed(name, err)
	}
	if len(results) == 0 {
		return linmem.Null, nil
	}
	return linmem.Pointer(api.DecodeU32(results[0])), nil
}

var _ linmem.Allocator = (*Exported)(nil)
