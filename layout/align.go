package layout

import (
	"math"

	"github.com/wippyai/linmem/errors"
)

// IsPowerOfTwo reports whether n is a non-zero power of two.
func IsPowerOfTwo(n uint32) bool {
	return n != 0 && n&(n-1) == 0
}

// AlignUp returns the smallest multiple of alignment that is >= n.
// alignment must be a power of two.
func AlignUp(n, alignment uint32) (uint32, error) {
	if !IsPowerOfTwo(alignment) {
		return 0, errors.InvalidAlignment(errors.PhaseLayout, alignment)
	}
	if n > math.MaxUint32-(alignment-1) {
		return 0, errors.New(errors.PhaseLayout, errors.KindOutOfBounds).
			Value(n).
			Detail("aligning %d to %d overflows uint32", n, alignment).
			Build()
	}
	return alignTo(n, alignment), nil
}

// alignTo assumes a power-of-two alignment.
func alignTo(n, alignment uint32) uint32 {
	return (n + alignment - 1) &^ (alignment - 1)
}
