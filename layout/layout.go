package layout

import (
	"github.com/wippyai/linmem/errors"
)

// Field is a named field descriptor.
type Field struct {
	Name string
	Kind Kind
}

// F is shorthand for Field{Name: name, Kind: kind}.
func F(name string, kind Kind) Field {
	return Field{Name: name, Kind: kind}
}

// FieldInfo is a field together with its computed offset.
type FieldInfo struct {
	Field
	Offset uint32
}

// Layout is an ordered, validated list of fields with precomputed offsets.
// A Layout is immutable and safe for concurrent use.
type Layout struct {
	index  map[string]int
	fields []FieldInfo
	size   uint32
	align  uint32
}

// New validates fields and computes their offsets.
// Names must be identifiers and unique within the layout.
func New(fields ...Field) (*Layout, error) {
	l := &Layout{
		index:  make(map[string]int, len(fields)),
		fields: make([]FieldInfo, len(fields)),
		align:  1,
	}

	for i, f := range fields {
		if !isIdent(f.Name) {
			return nil, errors.New(errors.PhaseLayout, errors.KindInvalidInput).
				Path(f.Name).
				Detail("field name %q is not an identifier", f.Name).
				Build()
		}
		if _, dup := l.index[f.Name]; dup {
			return nil, errors.DuplicateField(errors.PhaseLayout, nil, f.Name)
		}
		if !f.Kind.Valid() {
			return nil, errors.UnknownKind(errors.PhaseLayout, []string{f.Name}, f.Kind.String())
		}
		l.index[f.Name] = i
		if a := f.Kind.Align(); a > l.align {
			l.align = a
		}
	}

	size, err := accumulate(fields, func(i int, offset uint32) bool {
		l.fields[i] = FieldInfo{Field: fields[i], Offset: offset}
		return true
	})
	if err != nil {
		return nil, err
	}
	l.size = size
	return l, nil
}

// Must is like New but panics on error. Intended for package-level declarations.
func Must(fields ...Field) *Layout {
	l, err := New(fields...)
	if err != nil {
		panic(err)
	}
	return l
}

// Size returns the total size: the end offset of the last field.
func (l *Layout) Size() uint32 {
	return l.size
}

// Align returns the largest field alignment (1 for an empty layout).
func (l *Layout) Align() uint32 {
	return l.align
}

// Stride returns Size rounded up to Align, the distance between adjacent
// elements of an array of this struct.
func (l *Layout) Stride() uint32 {
	return alignTo(l.size, l.align)
}

// Len returns the number of fields.
func (l *Layout) Len() int {
	return len(l.fields)
}

// At returns the i-th field in declaration order.
func (l *Layout) At(i int) FieldInfo {
	return l.fields[i]
}

// Fields returns a copy of all fields with offsets, in declaration order.
func (l *Layout) Fields() []FieldInfo {
	out := make([]FieldInfo, len(l.fields))
	copy(out, l.fields)
	return out
}

// Lookup returns the named field.
func (l *Layout) Lookup(name string) (FieldInfo, bool) {
	i, ok := l.index[name]
	if !ok {
		return FieldInfo{}, false
	}
	return l.fields[i], true
}

// OffsetOf returns the byte offset of the named field.
func (l *Layout) OffsetOf(name string) (uint32, error) {
	fi, ok := l.Lookup(name)
	if !ok {
		return 0, errors.FieldUnknown(errors.PhaseLayout, nil, name)
	}
	return fi.Offset, nil
}

// SizeOf computes the total size of an unvalidated field list.
func SizeOf(fields []Field) (uint32, error) {
	return accumulate(fields, func(int, uint32) bool { return true })
}

// OffsetOf replays the accumulation over an unvalidated field list and
// returns the offset of the first field called name.
func OffsetOf(fields []Field, name string) (uint32, error) {
	var (
		found  bool
		offset uint32
	)
	_, err := accumulate(fields, func(i int, off uint32) bool {
		if fields[i].Name == name {
			found, offset = true, off
			return false
		}
		return true
	})
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, errors.FieldUnknown(errors.PhaseLayout, nil, name)
	}
	return offset, nil
}

// accumulate walks fields in order, padding the running size to each
// field's own alignment before visiting it. visit returning false stops
// the walk. The result is the running size after the last visited field.
func accumulate(fields []Field, visit func(i int, offset uint32) bool) (uint32, error) {
	var size uint32
	for i, f := range fields {
		s, err := SizeOfKind(f.Kind)
		if err != nil {
			return 0, err
		}
		if i > 0 {
			if size, err = AlignUp(size, f.Kind.Align()); err != nil {
				return 0, err
			}
		}
		if !visit(i, size) {
			return size, nil
		}
		size += s
	}
	return size, nil
}

func isIdent(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
