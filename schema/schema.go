package schema

import (
	"bytes"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/linmem/errors"
	"github.com/wippyai/linmem/layout"
	"github.com/wippyai/linmem/view"
)

// Format is a schema file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

var jsonConfig = jsoniter.Config{
	OnlyTaggedField:       true,
	CaseSensitive:         true,
	DisallowUnknownFields: true,
}.Froze()

// File is the on-disk form of a schema.
type File struct {
	Structs []Struct `yaml:"structs" json:"structs"`
}

// Struct declares one struct.
type Struct struct {
	Name   string  `yaml:"name" json:"name"`
	Fields []Field `yaml:"fields" json:"fields"`
}

// Field declares one struct field.
type Field struct {
	Name string `yaml:"name" json:"name"`
	Kind string `yaml:"kind" json:"kind"`
}

// Schema is a validated, ordered set of struct types.
type Schema struct {
	types  []*view.Type
	byName map[string]*view.Type
}

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", errors.Unsupported(errors.PhaseConfig, "schema file extension "+filepath.Ext(path))
}

// Load reads and compiles a schema file.
func Load(path string) (*Schema, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Cause(err).
			Detail("read schema %s", path).
			Build()
	}
	return Parse(data, format)
}

// Parse decodes and compiles schema data.
func Parse(data []byte, format Format) (*Schema, error) {
	var f File
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && !stderrors.Is(err, io.EOF) {
			return nil, errors.ParseFailed("yaml schema", err)
		}
	case FormatJSON:
		if err := jsonConfig.Unmarshal(data, &f); err != nil {
			return nil, errors.ParseFailed("json schema", err)
		}
	default:
		return nil, errors.Unsupported(errors.PhaseConfig, "schema format "+string(format))
	}
	return Compile(f)
}

// Compile validates every struct declaration.
func Compile(f File) (*Schema, error) {
	types := make([]*view.Type, 0, len(f.Structs))
	for _, st := range f.Structs {
		if st.Name == "" {
			return nil, errors.InvalidInput(errors.PhaseConfig, "struct without a name")
		}
		fields := make([]layout.Field, 0, len(st.Fields))
		for _, fd := range st.Fields {
			kind, err := layout.ParseKind(fd.Kind)
			if err != nil {
				return nil, errors.UnknownKind(errors.PhaseConfig, []string{st.Name, fd.Name}, fd.Kind)
			}
			fields = append(fields, layout.F(fd.Name, kind))
		}
		t, err := view.Define(st.Name, fields...)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return New(types...)
}

// New builds a schema from already defined types. Names must be unique.
func New(types ...*view.Type) (*Schema, error) {
	s := &Schema{byName: make(map[string]*view.Type, len(types))}
	for _, t := range types {
		if _, dup := s.byName[t.Name()]; dup {
			return nil, errors.New(errors.PhaseConfig, errors.KindDuplicateField).
				Path(t.Name()).
				Detail("struct %q declared twice", t.Name()).
				Build()
		}
		s.types = append(s.types, t)
		s.byName[t.Name()] = t
	}
	return s, nil
}

// Types returns the structs in declaration order.
func (s *Schema) Types() []*view.Type {
	out := make([]*view.Type, len(s.types))
	copy(out, s.types)
	return out
}

// Lookup finds a struct by name.
func (s *Schema) Lookup(name string) (*view.Type, bool) {
	t, ok := s.byName[name]
	return t, ok
}

// File converts the schema back to its on-disk form.
func (s *Schema) File() File {
	f := File{Structs: make([]Struct, 0, len(s.types))}
	for _, t := range s.types {
		st := Struct{Name: t.Name()}
		for _, fi := range t.Layout().Fields() {
			st.Fields = append(st.Fields, Field{Name: fi.Name, Kind: fi.Kind.String()})
		}
		f.Structs = append(f.Structs, st)
	}
	return f
}

// Encode writes the schema in the given format.
func (s *Schema) Encode(format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(s.File())
	case FormatJSON:
		return jsonConfig.MarshalIndent(s.File(), "", "  ")
	}
	return nil, errors.Unsupported(errors.PhaseConfig, "schema format "+string(format))
}
