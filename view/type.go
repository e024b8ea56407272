package view

import (
	"github.com/wippyai/linmem"
	"github.com/wippyai/linmem/errors"
	"github.com/wippyai/linmem/layout"
)

// Type is a named struct layout that can be bound to memory.
// A Type is immutable and safe for concurrent use.
type Type struct {
	layout *layout.Layout
	name   string
}

// Define validates fields and returns a Type.
func Define(name string, fields ...layout.Field) (*Type, error) {
	l, err := layout.New(fields...)
	if err != nil {
		if e, ok := err.(*errors.Error); ok {
			e.Path = append([]string{name}, e.Path...)
		}
		return nil, err
	}
	return &Type{name: name, layout: l}, nil
}

// MustDefine is like Define but panics on error.
func MustDefine(name string, fields ...layout.Field) *Type {
	t, err := Define(name, fields...)
	if err != nil {
		panic(err)
	}
	return t
}

// FromLayout names an existing layout.
func FromLayout(name string, l *layout.Layout) *Type {
	return &Type{name: name, layout: l}
}

// Name returns the struct name.
func (t *Type) Name() string {
	return t.name
}

// Layout returns the underlying layout.
func (t *Type) Layout() *layout.Layout {
	return t.layout
}

// Sizeof returns the struct size in bytes.
func (t *Type) Sizeof() uint32 {
	return t.layout.Size()
}

// Offsetof returns the byte offset of a field.
func (t *Type) Offsetof(field string) (uint32, error) {
	fi, ok := t.layout.Lookup(field)
	if !ok {
		return 0, errors.FieldUnknown(errors.PhaseLayout, []string{t.name}, field)
	}
	return fi.Offset, nil
}

// At binds the type to ptr in mem. No memory is accessed.
func (t *Type) At(mem linmem.Memory, ptr linmem.Pointer) *Instance {
	return &Instance{typ: t, mem: mem, ptr: ptr}
}

// New allocates a zero-filled instance from a.
func (t *Type) New(a linmem.Allocator) (*Instance, error) {
	size := t.Sizeof()
	ptr := a.Alloc(size)
	if ptr.IsNull() {
		return nil, errors.OutOfMemory(errors.PhaseAlloc, size)
	}
	inst := t.At(a.Memory(), ptr)
	if err := inst.Zero(); err != nil {
		return nil, err
	}
	return inst, nil
}

// Instance is a Type bound to a pointer in memory. It owns no memory.
type Instance struct {
	typ *Type
	mem linmem.Memory
	ptr linmem.Pointer
}

// Type returns the instance's type.
func (i *Instance) Type() *Type {
	return i.typ
}

// Ptr returns the base pointer.
func (i *Instance) Ptr() linmem.Pointer {
	return i.ptr
}

// Memory returns the bound memory.
func (i *Instance) Memory() linmem.Memory {
	return i.mem
}

// Read decodes a field.
func (i *Instance) Read(field string) (any, error) {
	fi, off, err := i.locate(field, errors.PhaseDecode)
	if err != nil {
		return nil, err
	}
	return codecs[fi.Kind].decode(i.mem, off)
}

// View returns live accessors for the instance's fields.
func (i *Instance) View() *View {
	return &View{inst: i}
}

// Zero clears the struct's bytes.
func (i *Instance) Zero() error {
	return i.mem.Write(uint32(i.ptr), make([]byte, i.typ.Sizeof()))
}

// locate resolves a field to its absolute offset.
func (i *Instance) locate(field string, phase errors.Phase) (layout.FieldInfo, uint32, error) {
	fi, ok := i.typ.layout.Lookup(field)
	if !ok {
		return fi, 0, errors.FieldUnknown(phase, []string{i.typ.name}, field)
	}
	abs := uint64(i.ptr) + uint64(fi.Offset)
	if abs+uint64(fi.Kind.Size()) > 1<<32 {
		return fi, 0, errors.New(phase, errors.KindOutOfBounds).
			Path(i.typ.name, field).
			Detail("field at %s+%d overflows the address space", i.ptr, fi.Offset).
			Build()
	}
	return fi, uint32(abs), nil
}
