package view

import (
	"math"
	"math/big"

	"fortio.org/safecast"

	"github.com/wippyai/linmem"
	"github.com/wippyai/linmem/layout"
)

// codec decodes and encodes one primitive kind. coerce validates a host
// value and returns its canonical Go representation; store expects the
// canonical form.
type codec struct {
	goType string
	decode func(mem linmem.Memory, off uint32) (any, error)
	coerce func(v any) (any, bool)
	store  func(mem linmem.Memory, off uint32, v any) error
}

var codecs = buildCodecs()

func buildCodecs() [layout.KindDouble + 1]codec {
	var table [layout.KindDouble + 1]codec
	for _, k := range layout.Kinds() {
		table[k] = codecFor(k)
	}
	return table
}

func codecFor(k layout.Kind) codec {
	switch k {
	case layout.KindBool:
		return codec{
			goType: "bool",
			decode: func(mem linmem.Memory, off uint32) (any, error) {
				b, err := mem.ReadU8(off)
				return b == 1, err
			},
			coerce: func(v any) (any, bool) {
				b, ok := v.(bool)
				return b, ok
			},
			store: func(mem linmem.Memory, off uint32, v any) error {
				return mem.WriteU8(off, boolByte(v.(bool)))
			},
		}
	case layout.KindChar:
		return codec{
			goType: "int8",
			decode: func(mem linmem.Memory, off uint32) (any, error) {
				b, err := mem.ReadU8(off)
				return int8(b), err
			},
			coerce: func(v any) (any, bool) {
				return clampChar(v)
			},
			store: func(mem linmem.Memory, off uint32, v any) error {
				return mem.WriteU8(off, v.(uint8))
			},
		}
	case layout.KindInt:
		return codec{
			goType: "int32",
			decode: func(mem linmem.Memory, off uint32) (any, error) {
				u, err := mem.ReadU32(off)
				return int32(u), err
			},
			coerce: func(v any) (any, bool) {
				return convertInteger[int32](v)
			},
			store: func(mem linmem.Memory, off uint32, v any) error {
				return mem.WriteU32(off, uint32(v.(int32)))
			},
		}
	case layout.KindSizeT:
		return codec{
			goType: "uint32",
			decode: func(mem linmem.Memory, off uint32) (any, error) {
				return mem.ReadU32(off)
			},
			coerce: func(v any) (any, bool) {
				return convertInteger[uint32](v)
			},
			store: func(mem linmem.Memory, off uint32, v any) error {
				return mem.WriteU32(off, v.(uint32))
			},
		}
	case layout.KindPointer:
		return codec{
			goType: "linmem.Pointer",
			decode: func(mem linmem.Memory, off uint32) (any, error) {
				u, err := mem.ReadU32(off)
				return linmem.Pointer(u), err
			},
			coerce: func(v any) (any, bool) {
				if p, ok := v.(linmem.Pointer); ok {
					return p, true
				}
				u, ok := convertInteger[uint32](v)
				return linmem.Pointer(u), ok
			},
			store: func(mem linmem.Memory, off uint32, v any) error {
				return mem.WriteU32(off, uint32(v.(linmem.Pointer)))
			},
		}
	case layout.KindLongLong:
		return codec{
			goType: "int64",
			decode: func(mem linmem.Memory, off uint32) (any, error) {
				u, err := mem.ReadU64(off)
				return int64(u), err
			},
			coerce: func(v any) (any, bool) {
				switch x := v.(type) {
				case int64:
					return x, true
				case *big.Int:
					if x != nil && x.IsInt64() {
						return x.Int64(), true
					}
				}
				return nil, false
			},
			store: func(mem linmem.Memory, off uint32, v any) error {
				return mem.WriteU64(off, uint64(v.(int64)))
			},
		}
	case layout.KindULongLong:
		return codec{
			goType: "uint64",
			decode: func(mem linmem.Memory, off uint32) (any, error) {
				return mem.ReadU64(off)
			},
			coerce: func(v any) (any, bool) {
				switch x := v.(type) {
				case uint64:
					return x, true
				case *big.Int:
					if x != nil && x.IsUint64() {
						return x.Uint64(), true
					}
				}
				return nil, false
			},
			store: func(mem linmem.Memory, off uint32, v any) error {
				return mem.WriteU64(off, v.(uint64))
			},
		}
	case layout.KindFloat:
		return codec{
			goType: "float32",
			decode: func(mem linmem.Memory, off uint32) (any, error) {
				u, err := mem.ReadU32(off)
				return math.Float32frombits(u), err
			},
			coerce: func(v any) (any, bool) {
				switch x := v.(type) {
				case float32:
					return x, true
				case float64:
					if math.IsNaN(x) || math.IsInf(x, 0) || math.Abs(x) <= math.MaxFloat32 {
						return float32(x), true
					}
				}
				return nil, false
			},
			store: func(mem linmem.Memory, off uint32, v any) error {
				return mem.WriteU32(off, math.Float32bits(v.(float32)))
			},
		}
	case layout.KindDouble:
		return codec{
			goType: "float64",
			decode: func(mem linmem.Memory, off uint32) (any, error) {
				u, err := mem.ReadU64(off)
				return math.Float64frombits(u), err
			},
			coerce: func(v any) (any, bool) {
				switch x := v.(type) {
				case float64:
					return x, true
				case float32:
					return float64(x), true
				}
				return nil, false
			},
			store: func(mem linmem.Memory, off uint32, v any) error {
				return mem.WriteU64(off, math.Float64bits(v.(float64)))
			},
		}
	case layout.KindInvalid:
	}
	return codec{}
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

type numClass uint8

const (
	numNone numClass = iota
	numSigned
	numUnsigned
	numFloat
)

// number is a host integer or float widened to 64 bits.
type number struct {
	i     int64
	u     uint64
	f     float64
	class numClass
}

func classify(v any) number {
	switch x := v.(type) {
	case int:
		return number{i: int64(x), class: numSigned}
	case int8:
		return number{i: int64(x), class: numSigned}
	case int16:
		return number{i: int64(x), class: numSigned}
	case int32:
		return number{i: int64(x), class: numSigned}
	case int64:
		return number{i: x, class: numSigned}
	case uint:
		return number{u: uint64(x), class: numUnsigned}
	case uint8:
		return number{u: uint64(x), class: numUnsigned}
	case uint16:
		return number{u: uint64(x), class: numUnsigned}
	case uint32:
		return number{u: uint64(x), class: numUnsigned}
	case uint64:
		return number{u: x, class: numUnsigned}
	case linmem.Pointer:
		return number{u: uint64(x), class: numUnsigned}
	case float32:
		return number{f: float64(x), class: numFloat}
	case float64:
		return number{f: x, class: numFloat}
	}
	return number{}
}

func integral(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0) && math.Trunc(f) == f
}

// convertInteger accepts any Go integer, or a finite integral float, that
// fits in T.
func convertInteger[T int32 | uint32](v any) (T, bool) {
	n := classify(v)
	var (
		out T
		err error
	)
	switch n.class {
	case numSigned:
		out, err = safecast.Convert[T](n.i)
	case numUnsigned:
		out, err = safecast.Convert[T](n.u)
	case numFloat:
		if !integral(n.f) {
			return 0, false
		}
		out, err = safecast.Convert[T](n.f)
	default:
		return 0, false
	}
	return out, err == nil
}

// clampChar saturates an integral value into [0, 255].
func clampChar(v any) (any, bool) {
	n := classify(v)
	switch n.class {
	case numSigned:
		return uint8(min(max(n.i, 0), 255)), true
	case numUnsigned:
		return uint8(min(n.u, 255)), true
	case numFloat:
		if !integral(n.f) {
			return nil, false
		}
		return uint8(min(max(n.f, 0), 255)), true
	}
	return nil, false
}
