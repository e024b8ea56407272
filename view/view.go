package view

import (
	"fmt"

	"github.com/wippyai/linmem"
	"github.com/wippyai/linmem/errors"
	"github.com/wippyai/linmem/layout"
)

// View is a live accessor over an Instance. Getters decode the current
// bytes; setters validate, then encode.
type View struct {
	inst *Instance
}

// Instance returns the viewed instance.
func (v *View) Instance() *Instance {
	return v.inst
}

// Get decodes a field, like Instance.Read.
func (v *View) Get(field string) (any, error) {
	return v.inst.Read(field)
}

// Set validates value against the field's kind and stores it.
func (v *View) Set(field string, value any) error {
	fi, off, err := v.inst.locate(field, errors.PhaseEncode)
	if err != nil {
		return err
	}
	c := codecs[fi.Kind]
	canonical, ok := c.coerce(value)
	if !ok {
		return v.mismatch(field, value, fi.Kind)
	}
	return c.store(v.inst.mem, off, canonical)
}

// Snapshot decodes every field into a map keyed by field name.
func (v *View) Snapshot() (map[string]any, error) {
	l := v.inst.typ.layout
	out := make(map[string]any, l.Len())
	for idx := 0; idx < l.Len(); idx++ {
		name := l.At(idx).Name
		val, err := v.inst.Read(name)
		if err != nil {
			return nil, err
		}
		out[name] = val
	}
	return out, nil
}

func (v *View) mismatch(field string, value any, kind layout.Kind) error {
	return errors.New(errors.PhaseEncode, errors.KindTypeMismatch).
		Path(v.inst.typ.name, field).
		GoType(goTypeName(value)).
		CType(kind.String()).
		Value(value).
		Detail("expected %s", codecs[kind].goType).
		Build()
}

// typed resolves a field and checks it has the kind the accessor serves.
func (v *View) typed(field string, want layout.Kind, phase errors.Phase) (uint32, error) {
	fi, off, err := v.inst.locate(field, phase)
	if err != nil {
		return 0, err
	}
	if fi.Kind != want {
		return 0, errors.New(phase, errors.KindTypeMismatch).
			Path(v.inst.typ.name, field).
			GoType(codecs[want].goType).
			CType(fi.Kind.String()).
			Detail("%s accessor used on %s field", want, fi.Kind).
			Build()
	}
	return off, nil
}

// Bool reads a bool field.
func (v *View) Bool(field string) (bool, error) {
	off, err := v.typed(field, layout.KindBool, errors.PhaseDecode)
	if err != nil {
		return false, err
	}
	b, err := v.inst.mem.ReadU8(off)
	return b == 1, err
}

// SetBool writes a bool field.
func (v *View) SetBool(field string, value bool) error {
	off, err := v.typed(field, layout.KindBool, errors.PhaseEncode)
	if err != nil {
		return err
	}
	return v.inst.mem.WriteU8(off, boolByte(value))
}

// Char reads a char field as a signed byte.
func (v *View) Char(field string) (int8, error) {
	off, err := v.typed(field, layout.KindChar, errors.PhaseDecode)
	if err != nil {
		return 0, err
	}
	b, err := v.inst.mem.ReadU8(off)
	return int8(b), err
}

// SetChar writes a char field, clamping value into [0, 255].
func (v *View) SetChar(field string, value int) error {
	off, err := v.typed(field, layout.KindChar, errors.PhaseEncode)
	if err != nil {
		return err
	}
	return v.inst.mem.WriteU8(off, uint8(min(max(value, 0), 255)))
}

// Int reads an int field.
func (v *View) Int(field string) (int32, error) {
	off, err := v.typed(field, layout.KindInt, errors.PhaseDecode)
	if err != nil {
		return 0, err
	}
	u, err := v.inst.mem.ReadU32(off)
	return int32(u), err
}

// SetInt writes an int field.
func (v *View) SetInt(field string, value int32) error {
	off, err := v.typed(field, layout.KindInt, errors.PhaseEncode)
	if err != nil {
		return err
	}
	return v.inst.mem.WriteU32(off, uint32(value))
}

// SizeT reads a size_t field.
func (v *View) SizeT(field string) (uint32, error) {
	off, err := v.typed(field, layout.KindSizeT, errors.PhaseDecode)
	if err != nil {
		return 0, err
	}
	return v.inst.mem.ReadU32(off)
}

// SetSizeT writes a size_t field.
func (v *View) SetSizeT(field string, value uint32) error {
	off, err := v.typed(field, layout.KindSizeT, errors.PhaseEncode)
	if err != nil {
		return err
	}
	return v.inst.mem.WriteU32(off, value)
}

// Pointer reads a pointer field.
func (v *View) Pointer(field string) (linmem.Pointer, error) {
	off, err := v.typed(field, layout.KindPointer, errors.PhaseDecode)
	if err != nil {
		return linmem.Null, err
	}
	u, err := v.inst.mem.ReadU32(off)
	return linmem.Pointer(u), err
}

// SetPointer writes a pointer field.
func (v *View) SetPointer(field string, value linmem.Pointer) error {
	off, err := v.typed(field, layout.KindPointer, errors.PhaseEncode)
	if err != nil {
		return err
	}
	return v.inst.mem.WriteU32(off, uint32(value))
}

// LongLong reads a long long field.
func (v *View) LongLong(field string) (int64, error) {
	off, err := v.typed(field, layout.KindLongLong, errors.PhaseDecode)
	if err != nil {
		return 0, err
	}
	u, err := v.inst.mem.ReadU64(off)
	return int64(u), err
}

// SetLongLong writes a long long field.
func (v *View) SetLongLong(field string, value int64) error {
	off, err := v.typed(field, layout.KindLongLong, errors.PhaseEncode)
	if err != nil {
		return err
	}
	return v.inst.mem.WriteU64(off, uint64(value))
}

// ULongLong reads an unsigned long long field.
func (v *View) ULongLong(field string) (uint64, error) {
	off, err := v.typed(field, layout.KindULongLong, errors.PhaseDecode)
	if err != nil {
		return 0, err
	}
	return v.inst.mem.ReadU64(off)
}

// SetULongLong writes an unsigned long long field.
func (v *View) SetULongLong(field string, value uint64) error {
	off, err := v.typed(field, layout.KindULongLong, errors.PhaseEncode)
	if err != nil {
		return err
	}
	return v.inst.mem.WriteU64(off, value)
}

// Float reads a float field.
func (v *View) Float(field string) (float32, error) {
	val, err := v.decodeTyped(field, layout.KindFloat)
	if err != nil {
		return 0, err
	}
	return val.(float32), nil
}

// SetFloat writes a float field.
func (v *View) SetFloat(field string, value float32) error {
	return v.storeTyped(field, layout.KindFloat, value)
}

// Double reads a double field.
func (v *View) Double(field string) (float64, error) {
	val, err := v.decodeTyped(field, layout.KindDouble)
	if err != nil {
		return 0, err
	}
	return val.(float64), nil
}

// SetDouble writes a double field.
func (v *View) SetDouble(field string, value float64) error {
	return v.storeTyped(field, layout.KindDouble, value)
}

func (v *View) decodeTyped(field string, kind layout.Kind) (any, error) {
	off, err := v.typed(field, kind, errors.PhaseDecode)
	if err != nil {
		return nil, err
	}
	return codecs[kind].decode(v.inst.mem, off)
}

func (v *View) storeTyped(field string, kind layout.Kind, value any) error {
	off, err := v.typed(field, kind, errors.PhaseEncode)
	if err != nil {
		return err
	}
	return codecs[kind].store(v.inst.mem, off, value)
}

func goTypeName(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}
