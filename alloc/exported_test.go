package alloc

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/linmem"
	lmerrors "github.com/wippyai/linmem/errors"
	"github.com/wippyai/linmem/list"
	"github.com/wippyai/linmem/memory"
)

// guestFunc stands in for an exported wasm function.
type guestFunc struct {
	api.Function
	calls [][]uint64
	call  func(params []uint64) ([]uint64, error)
}

func (f *guestFunc) Call(_ context.Context, params ...uint64) ([]uint64, error) {
	f.calls = append(f.calls, params)
	return f.call(params)
}

// guestModule exposes a real wazero memory and fake function exports.
type guestModule struct {
	api.Module
	mem   api.Memory
	funcs map[string]*guestFunc
}

func (m *guestModule) ExportedMemory(name string) api.Memory {
	if name != DefaultMemoryName {
		return nil
	}
	return m.mem
}

func (m *guestModule) ExportedFunction(name string) api.Function {
	f, ok := m.funcs[name]
	if !ok {
		return nil
	}
	return f
}

// newGuest builds a module whose allocator exports are served by a Heap over
// the module's own memory, the way a guest linking the C allocator would.
func newGuest(t *testing.T) (*guestModule, *Heap) {
	t.Helper()
	ctx := context.Background()
	wm, err := memory.NewWazeroMemory(ctx, memory.WazeroConfig{InitialPages: 1, MaxPages: 2})
	require.NoError(t, err)
	t.Cleanup(func() { _ = wm.Close(ctx) })

	heap, err := NewHeap(wm, HeapConfig{Start: 1024})
	require.NoError(t, err)

	ptr := func(p linmem.Pointer) []uint64 { return []uint64{api.EncodeU32(uint32(p))} }
	mod := &guestModule{
		mem: wm.Mem,
		funcs: map[string]*guestFunc{
			DefaultAllocName: {call: func(p []uint64) ([]uint64, error) {
				return ptr(heap.Alloc(api.DecodeU32(p[0]))), nil
			}},
			DefaultReallocName: {call: func(p []uint64) ([]uint64, error) {
				return ptr(heap.Realloc(linmem.Pointer(api.DecodeU32(p[0])), api.DecodeU32(p[1]))), nil
			}},
			DefaultFreeName: {call: func(p []uint64) ([]uint64, error) {
				return nil, heap.Free(linmem.Pointer(api.DecodeU32(p[0])))
			}},
		},
	}
	return mod, heap
}

func TestExportedAllocator(t *testing.T) {
	mod, heap := newGuest(t)
	e, err := NewExported(context.Background(), mod, ExportedConfig{})
	require.NoError(t, err)

	p := e.Alloc(12)
	require.False(t, p.IsNull())
	assert.GreaterOrEqual(t, uint32(p), uint32(heap.Start()))
	assert.Equal(t, []uint64{12}, mod.funcs[DefaultAllocName].calls[0])

	require.NoError(t, e.Memory().WriteU32(uint32(p), 0xDEADBEEF))
	q := e.Realloc(p, 32)
	require.False(t, q.IsNull())
	v, err := e.Memory().ReadU32(uint32(q))
	require.NoError(t, err)
	assert.Equal(t, uint32(0xDEADBEEF), v)

	require.NoError(t, e.Free(q))
	err = e.Free(q)
	assert.True(t, errors.Is(err, lmerrors.ErrCallFailed))
	assert.True(t, errors.Is(err, lmerrors.ErrInvalidInput), "guest error is the cause")

	assert.True(t, errors.Is(e.Free(linmem.Null), lmerrors.ErrNullPointerFree))
	assert.Len(t, mod.funcs[DefaultFreeName].calls, 2, "null is not forwarded")
}

func TestExportedBuildsGuestLists(t *testing.T) {
	mod, _ := newGuest(t)
	e, err := NewExported(context.Background(), mod, ExportedConfig{})
	require.NoError(t, err)

	l, err := list.NewIntList(e)
	require.NoError(t, err)
	for _, v := range []int32{10, 20, 30} {
		require.NoError(t, l.Append(v))
	}

	// read back through the raw wazero memory
	mem := memory.WrapWazero(mod.mem)
	back := list.IntListAt(mem, nil, l.Ptr())
	values, err := back.Values()
	require.NoError(t, err)
	assert.Equal(t, []int32{10, 20, 30}, values)
}

func TestExportedSetup(t *testing.T) {
	mod, _ := newGuest(t)
	e, err := NewExported(context.Background(), mod, ExportedConfig{})
	require.NoError(t, err)
	assert.True(t, errors.Is(e.Setup(1024, 4096), lmerrors.ErrNotFound))

	setup := &guestFunc{call: func([]uint64) ([]uint64, error) { return nil, nil }}
	mod.funcs["heap_init"] = setup
	e, err = NewExported(context.Background(), mod, ExportedConfig{SetupName: "heap_init"})
	require.NoError(t, err)
	require.NoError(t, e.Setup(1024, 4096))
	assert.Equal(t, [][]uint64{{1024, 4096}}, setup.calls)
}

func TestExportedCallFailure(t *testing.T) {
	mod, _ := newGuest(t)
	mod.funcs[DefaultAllocName].call = func([]uint64) ([]uint64, error) {
		return nil, errors.New("unreachable")
	}
	e, err := NewExported(context.Background(), mod, ExportedConfig{})
	require.NoError(t, err)
	assert.True(t, e.Alloc(8).IsNull())

	_, err = list.NewIntList(e)
	assert.True(t, errors.Is(err, lmerrors.ErrOutOfMemory))
}

func TestExportedMissingExports(t *testing.T) {
	mod, _ := newGuest(t)
	delete(mod.funcs, DefaultReallocName)
	_, err := NewExported(context.Background(), mod, ExportedConfig{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, lmerrors.ErrNotFound))
	assert.Contains(t, err.Error(), DefaultReallocName)

	mod, _ = newGuest(t)
	_, err = NewExported(context.Background(), mod, ExportedConfig{MemoryName: "heap"})
	assert.True(t, errors.Is(err, lmerrors.ErrNotFound))

	mod, _ = newGuest(t)
	_, err = NewExported(context.Background(), mod, ExportedConfig{AllocName: "malloc"})
	assert.Contains(t, err.Error(), "malloc")
}
