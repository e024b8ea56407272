// Package view binds struct layouts to linear memory.
//
// A Type is a named layout. Type.At binds it to a (memory, pointer) pair,
// producing an Instance; nothing is read until a field is accessed, and
// every access decodes or encodes the current bytes.
//
//	node := view.MustDefine("IntNode",
//	    layout.F("next", layout.KindPointer),
//	    layout.F("value", layout.KindInt),
//	)
//	inst := node.At(mem, ptr)
//	v, err := inst.Read("value")          // int32
//	err = inst.View().SetInt("value", 42) // typed
//	err = inst.View().Set("value", 42)    // dynamic, validated
//
// Host representations per kind:
//
//	bool                 bool
//	char                 int8 (writes clamp to [0, 255])
//	int                  int32
//	size_t               uint32
//	pointer              linmem.Pointer
//	long long            int64 or *big.Int
//	unsigned long long   uint64 or *big.Int
//	float                float32
//	double               float64
//
// A value of the wrong shape fails with errors.KindTypeMismatch and leaves
// memory untouched. Views do not check the struct against the memory size;
// the Memory implementation reports out-of-range access.
package view
