package schema

import "github.com/wippyai/linmem/view"

// StructInfo is the computed layout of a struct, for reports.
type StructInfo struct {
	Name   string      `json:"name"`
	Size   uint32      `json:"size"`
	Align  uint32      `json:"align"`
	Stride uint32      `json:"stride"`
	Fields []FieldInfo `json:"fields"`
}

// FieldInfo is the computed placement of one field.
type FieldInfo struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Offset uint32 `json:"offset"`
	Size   uint32 `json:"size"`
}

// Describe computes the layout report of t.
func Describe(t *view.Type) StructInfo {
	l := t.Layout()
	info := StructInfo{
		Name:   t.Name(),
		Size:   l.Size(),
		Align:  l.Align(),
		Stride: l.Stride(),
		Fields: make([]FieldInfo, 0, l.Len()),
	}
	for _, fi := range l.Fields() {
		info.Fields = append(info.Fields, FieldInfo{
			Name:   fi.Name,
			Kind:   fi.Kind.String(),
			Offset: fi.Offset,
			Size:   fi.Kind.Size(),
		})
	}
	return info
}

// Describe computes the layout report of every struct in order.
func (s *Schema) Describe() []StructInfo {
	out := make([]StructInfo, 0, len(s.types))
	for _, t := range s.types {
		out = append(out, Describe(t))
	}
	return out
}
