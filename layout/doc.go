// Package layout computes sizes, alignments and field offsets of C-style
// struct declarations over a fixed set of primitive kinds.
//
// # Layout Rules
//
//   - Primitives: size equals alignment (bool/char=1, int/float/size_t/pointer=4,
//     long long/unsigned long long/double=8)
//   - Structs: fields laid out in declaration order; each field past the
//     first starts at the running size rounded up to its own alignment
//   - No trailing padding: Size is the end of the last field. Stride adds
//     the padding needed to place structs back to back.
//
// # Usage
//
//	l, err := layout.New(
//	    layout.F("next", layout.KindPointer),
//	    layout.F("value", layout.KindInt),
//	)
//	// l.Size() == 8, l.OffsetOf("value") == 4
package layout
