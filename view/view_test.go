package view

import (
	"errors"
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/linmem"
	lmerrors "github.com/wippyai/linmem/errors"
	"github.com/wippyai/linmem/layout"
	"github.com/wippyai/linmem/memory"
)

var allKinds = MustDefine("AllKinds",
	layout.F("b", layout.KindBool),
	layout.F("c", layout.KindChar),
	layout.F("i", layout.KindInt),
	layout.F("f", layout.KindFloat),
	layout.F("s", layout.KindSizeT),
	layout.F("p", layout.KindPointer),
	layout.F("ll", layout.KindLongLong),
	layout.F("ull", layout.KindULongLong),
	layout.F("d", layout.KindDouble),
)

func newInstance(t *testing.T, base linmem.Pointer) (*memory.Buffer, *Instance) {
	t.Helper()
	mem := memory.NewBuffer(memory.BufferConfig{InitialPages: 1})
	return mem, allKinds.At(mem, base)
}

func TestTypeMetadata(t *testing.T) {
	assert.Equal(t, "AllKinds", allKinds.Name())
	// b0 c1 i4 f8 s12 p16 ll24 ull32 d40
	assert.Equal(t, uint32(48), allKinds.Sizeof())

	want := map[string]uint32{"b": 0, "c": 1, "i": 4, "f": 8, "s": 12, "p": 16, "ll": 24, "ull": 32, "d": 40}
	for name, off := range want {
		got, err := allKinds.Offsetof(name)
		require.NoError(t, err)
		assert.Equal(t, off, got, name)
	}

	_, err := allKinds.Offsetof("nope")
	assert.True(t, errors.Is(err, lmerrors.ErrFieldUnknown))
}

func TestDefineErrorPath(t *testing.T) {
	_, err := Define("Broken", layout.F("x", layout.KindInt), layout.F("x", layout.KindInt))
	require.Error(t, err)
	assert.True(t, errors.Is(err, lmerrors.ErrDuplicateField))
	assert.Contains(t, err.Error(), "Broken")

	assert.Panics(t, func() {
		MustDefine("Broken", layout.F("y", layout.KindInvalid))
	})
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		field  string
		values []any
	}{
		{"b", []any{true, false}},
		{"c", []any{int8(0), int8(1), int8(127)}},
		{"i", []any{int32(0), int32(-1), int32(math.MaxInt32), int32(math.MinInt32), int32(34)}},
		{"f", []any{float32(0), float32(1.5), float32(-3.25), float32(math.MaxFloat32)}},
		{"s", []any{uint32(0), uint32(math.MaxUint32), uint32(12345)}},
		{"p", []any{linmem.Null, linmem.Pointer(0x10), linmem.Pointer(math.MaxUint32)}},
		{"ll", []any{int64(0), int64(math.MinInt64), int64(math.MaxInt64), int64(-42)}},
		{"ull", []any{uint64(0), uint64(math.MaxUint64), uint64(1) << 40}},
		{"d", []any{float64(0), math.Pi, -1e300, math.SmallestNonzeroFloat64}},
	}

	_, inst := newInstance(t, 64)
	v := inst.View()
	for _, tc := range tests {
		t.Run(tc.field, func(t *testing.T) {
			for _, want := range tc.values {
				require.NoError(t, v.Set(tc.field, want))
				got, err := inst.Read(tc.field)
				require.NoError(t, err)
				assert.Equal(t, want, got)

				viaView, err := v.Get(tc.field)
				require.NoError(t, err)
				assert.Equal(t, want, viaView)
			}
		})
	}
}

func TestTypedAccessors(t *testing.T) {
	_, inst := newInstance(t, 128)
	v := inst.View()

	require.NoError(t, v.SetBool("b", true))
	require.NoError(t, v.SetChar("c", 65))
	require.NoError(t, v.SetInt("i", -7))
	require.NoError(t, v.SetFloat("f", 2.5))
	require.NoError(t, v.SetSizeT("s", 99))
	require.NoError(t, v.SetPointer("p", 0x200))
	require.NoError(t, v.SetLongLong("ll", -1<<40))
	require.NoError(t, v.SetULongLong("ull", 1<<63))
	require.NoError(t, v.SetDouble("d", 0.125))

	b, err := v.Bool("b")
	require.NoError(t, err)
	assert.True(t, b)
	c, err := v.Char("c")
	require.NoError(t, err)
	assert.Equal(t, int8(65), c)
	i, err := v.Int("i")
	require.NoError(t, err)
	assert.Equal(t, int32(-7), i)
	f, err := v.Float("f")
	require.NoError(t, err)
	assert.Equal(t, float32(2.5), f)
	s, err := v.SizeT("s")
	require.NoError(t, err)
	assert.Equal(t, uint32(99), s)
	p, err := v.Pointer("p")
	require.NoError(t, err)
	assert.Equal(t, linmem.Pointer(0x200), p)
	ll, err := v.LongLong("ll")
	require.NoError(t, err)
	assert.Equal(t, int64(-1<<40), ll)
	ull, err := v.ULongLong("ull")
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<63), ull)
	d, err := v.Double("d")
	require.NoError(t, err)
	assert.Equal(t, 0.125, d)

	snap, err := v.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"b": true, "c": int8(65), "i": int32(-7), "f": float32(2.5), "s": uint32(99),
		"p": linmem.Pointer(0x200), "ll": int64(-1 << 40), "ull": uint64(1 << 63), "d": 0.125,
	}, snap)
}

func TestBinaryEncoding(t *testing.T) {
	mem, inst := newInstance(t, 0x100)
	v := inst.View()

	require.NoError(t, v.SetInt("i", 0x01020304))
	raw, err := mem.Read(0x104, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, raw, "int is little-endian")

	require.NoError(t, v.SetBool("b", true))
	bb, _ := mem.ReadU8(0x100)
	assert.Equal(t, uint8(1), bb)

	// any byte other than 1 reads as false
	require.NoError(t, mem.WriteU8(0x100, 2))
	b, err := v.Bool("b")
	require.NoError(t, err)
	assert.False(t, b)

	// char is signed on read
	require.NoError(t, mem.WriteU8(0x101, 0xFF))
	c, err := inst.Read("c")
	require.NoError(t, err)
	assert.Equal(t, int8(-1), c)
}

func TestCharClamp(t *testing.T) {
	mem, inst := newInstance(t, 0)
	v := inst.View()

	tests := []struct {
		in   any
		want uint8
	}{
		{300, 255},
		{255, 255},
		{200, 200},
		{-5, 0},
		{int64(math.MinInt64), 0},
		{uint64(math.MaxUint64), 255},
		{float64(1000), 255},
		{float64(-1), 0},
		{int8(12), 12},
	}
	for _, tc := range tests {
		require.NoError(t, v.Set("c", tc.in), "%v", tc.in)
		got, _ := mem.ReadU8(1)
		assert.Equal(t, tc.want, got, "Set(c, %v)", tc.in)
	}

	require.NoError(t, v.SetChar("c", 1000))
	got, _ := mem.ReadU8(1)
	assert.Equal(t, uint8(255), got)
	require.NoError(t, v.SetChar("c", -1000))
	got, _ = mem.ReadU8(1)
	assert.Equal(t, uint8(0), got)
}

func TestDynamicCoercion(t *testing.T) {
	_, inst := newInstance(t, 0)
	v := inst.View()

	require.NoError(t, v.Set("i", 34))
	got, _ := v.Int("i")
	assert.Equal(t, int32(34), got)

	require.NoError(t, v.Set("i", float64(-12)), "integral float accepted")
	got, _ = v.Int("i")
	assert.Equal(t, int32(-12), got)

	require.NoError(t, v.Set("s", uint8(9)))
	s, _ := v.SizeT("s")
	assert.Equal(t, uint32(9), s)

	require.NoError(t, v.Set("p", 0x40), "plain integers are valid pointers")
	p, _ := v.Pointer("p")
	assert.Equal(t, linmem.Pointer(0x40), p)

	require.NoError(t, v.Set("ll", big.NewInt(-99)))
	ll, _ := v.LongLong("ll")
	assert.Equal(t, int64(-99), ll)

	huge := new(big.Int).SetUint64(math.MaxUint64)
	require.NoError(t, v.Set("ull", huge))
	ull, _ := v.ULongLong("ull")
	assert.Equal(t, uint64(math.MaxUint64), ull)

	require.NoError(t, v.Set("d", float32(0.5)))
	d, _ := v.Double("d")
	assert.Equal(t, 0.5, d)

	require.NoError(t, v.Set("f", 0.25))
	f, _ := v.Float("f")
	assert.Equal(t, float32(0.25), f)
}

func TestTypeMismatchLeavesMemory(t *testing.T) {
	mem, inst := newInstance(t, 0)
	v := inst.View()

	require.NoError(t, v.Set("b", true))
	require.NoError(t, v.Set("c", 7))
	require.NoError(t, v.Set("i", 11))
	require.NoError(t, v.Set("f", float32(1)))
	require.NoError(t, v.Set("s", 13))
	require.NoError(t, v.Set("p", linmem.Pointer(17)))
	require.NoError(t, v.Set("ll", int64(19)))
	require.NoError(t, v.Set("ull", uint64(23)))
	require.NoError(t, v.Set("d", 29.0))

	before, err := mem.Read(0, allKinds.Sizeof())
	require.NoError(t, err)
	before = append([]byte(nil), before...)

	bad := []struct {
		field string
		value any
	}{
		{"b", 1},
		{"b", "true"},
		{"c", 1.5},
		{"c", "a"},
		{"i", 1.5},
		{"i", math.NaN()},
		{"i", math.Inf(1)},
		{"i", int64(math.MaxInt32) + 1},
		{"i", uint32(math.MaxUint32)},
		{"i", "1"},
		{"i", nil},
		{"s", -1},
		{"s", uint64(1) << 32},
		{"p", -4},
		{"p", 2.5},
		{"ll", 5},
		{"ll", uint64(5)},
		{"ll", new(big.Int).Lsh(big.NewInt(1), 64)},
		{"ll", (*big.Int)(nil)},
		{"ull", 5},
		{"ull", int64(5)},
		{"ull", big.NewInt(-1)},
		{"f", 1},
		{"f", 1e300},
		{"d", 1},
		{"d", int64(1)},
	}
	for _, tc := range bad {
		err := v.Set(tc.field, tc.value)
		assert.Truef(t, errors.Is(err, lmerrors.ErrTypeMismatch), "Set(%s, %#v) err = %v", tc.field, tc.value, err)
	}

	after, err := mem.Read(0, allKinds.Sizeof())
	require.NoError(t, err)
	assert.Equal(t, before, after, "failed writes must not touch memory")
}

func TestTypedKindMismatch(t *testing.T) {
	_, inst := newInstance(t, 0)
	v := inst.View()

	_, err := v.Int("s")
	assert.True(t, errors.Is(err, lmerrors.ErrTypeMismatch))
	assert.True(t, errors.Is(v.SetPointer("i", 4), lmerrors.ErrTypeMismatch))
	_, err = v.Double("f")
	assert.True(t, errors.Is(err, lmerrors.ErrTypeMismatch))
	assert.True(t, errors.Is(v.SetBool("c", true), lmerrors.ErrTypeMismatch))
}

func TestUnknownField(t *testing.T) {
	_, inst := newInstance(t, 0)
	v := inst.View()

	_, err := inst.Read("missing")
	assert.True(t, errors.Is(err, lmerrors.ErrFieldUnknown))
	assert.True(t, errors.Is(v.Set("missing", 1), lmerrors.ErrFieldUnknown))
	_, err = v.Bool("missing")
	assert.True(t, errors.Is(err, lmerrors.ErrFieldUnknown))
	assert.True(t, errors.Is(v.SetDouble("missing", 1), lmerrors.ErrFieldUnknown))
}

func TestViewIsLive(t *testing.T) {
	mem, inst := newInstance(t, 32)
	v := inst.View()

	require.NoError(t, mem.WriteU32(32+4, 5))
	i, err := v.Int("i")
	require.NoError(t, err)
	assert.Equal(t, int32(5), i)

	require.NoError(t, mem.WriteU32(32+4, 6))
	i, err = v.Int("i")
	require.NoError(t, err)
	assert.Equal(t, int32(6), i, "no caching")

	// growth replaces the backing slice; the view keeps working
	_, ok := mem.Grow(1)
	require.True(t, ok)
	require.NoError(t, v.SetInt("i", 8))
	raw, _ := mem.ReadU32(32 + 4)
	assert.Equal(t, uint32(8), raw)
}

func TestOutOfBounds(t *testing.T) {
	mem := memory.NewBufferFrom(make([]byte, 16))
	inst := allKinds.At(mem, 8)

	_, err := inst.Read("d")
	assert.True(t, errors.Is(err, lmerrors.ErrOutOfBounds))
	assert.True(t, errors.Is(inst.View().SetDouble("d", 1), lmerrors.ErrOutOfBounds))

	top := allKinds.At(mem, linmem.Pointer(math.MaxUint32-4))
	_, err = top.Read("d")
	assert.True(t, errors.Is(err, lmerrors.ErrOutOfBounds), "address overflow")
}

type fakeAlloc struct {
	mem  linmem.Memory
	next linmem.Pointer
	fail bool
}

func (a *fakeAlloc) Alloc(size uint32) linmem.Pointer {
	if a.fail {
		return linmem.Null
	}
	p := a.next
	a.next += linmem.Pointer((size + 7) &^ 7)
	return p
}

func (a *fakeAlloc) Realloc(linmem.Pointer, uint32) linmem.Pointer { return linmem.Null }
func (a *fakeAlloc) Free(linmem.Pointer) error                     { return nil }
func (a *fakeAlloc) Memory() linmem.Memory                          { return a.mem }

func TestTypeNew(t *testing.T) {
	mem := memory.NewBuffer(memory.BufferConfig{InitialPages: 1})
	raw := mem.Bytes()
	for i := range raw[:256] {
		raw[i] = 0xAA
	}
	a := &fakeAlloc{mem: mem, next: 16}

	inst, err := allKinds.New(a)
	require.NoError(t, err)
	assert.Equal(t, linmem.Pointer(16), inst.Ptr())
	assert.Same(t, allKinds, inst.Type())

	snap, err := inst.View().Snapshot()
	require.NoError(t, err)
	assert.Equal(t, false, snap["b"])
	assert.Equal(t, uint64(0), snap["ull"])
	assert.Equal(t, byte(0xAA), raw[15], "bytes before the instance untouched")

	a.fail = true
	_, err = allKinds.New(a)
	assert.True(t, errors.Is(err, lmerrors.ErrOutOfMemory))
}
