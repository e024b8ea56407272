package layout

import (
	"strings"

	"github.com/wippyai/linmem/errors"
)

// Kind is a primitive field kind.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindChar
	KindInt
	KindFloat
	KindSizeT
	KindPointer
	KindLongLong
	KindULongLong
	KindDouble
)

var kindNames = [...]string{
	KindInvalid:   "invalid",
	KindBool:      "bool",
	KindChar:      "char",
	KindInt:       "int",
	KindFloat:     "float",
	KindSizeT:     "size_t",
	KindPointer:   "pointer",
	KindLongLong:  "long long",
	KindULongLong: "unsigned long long",
	KindDouble:    "double",
}

// Kinds lists every valid kind in table order.
func Kinds() []Kind {
	return []Kind{
		KindBool, KindChar, KindInt, KindFloat, KindSizeT,
		KindPointer, KindLongLong, KindULongLong, KindDouble,
	}
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Valid reports whether k is one of the primitive kinds.
func (k Kind) Valid() bool {
	return k > KindInvalid && k <= KindDouble
}

// Size returns the byte size of k, or 0 for an invalid kind.
func (k Kind) Size() uint32 {
	switch k {
	case KindBool, KindChar:
		return 1
	case KindInt, KindFloat, KindSizeT, KindPointer:
		return 4
	case KindLongLong, KindULongLong, KindDouble:
		return 8
	case KindInvalid:
		return 0
	}
	return 0
}

// Align returns the alignment of k, which is its size.
func (k Kind) Align() uint32 {
	return k.Size()
}

// SizeOfKind returns the byte size of k or an UnknownKind error.
func SizeOfKind(k Kind) (uint32, error) {
	if !k.Valid() {
		return 0, errors.UnknownKind(errors.PhaseLayout, nil, k.String())
	}
	return k.Size(), nil
}

// ParseKind maps a kind name such as "unsigned long long" to its Kind.
// Runs of whitespace inside the name are treated as a single space.
func ParseKind(name string) (Kind, error) {
	normalized := strings.Join(strings.Fields(name), " ")
	for _, k := range Kinds() {
		if kindNames[k] == normalized {
			return k, nil
		}
	}
	return KindInvalid, errors.UnknownKind(errors.PhaseLayout, nil, name)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, errors.UnknownKind(errors.PhaseLayout, nil, k.String())
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
