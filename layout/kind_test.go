package layout

import (
	"errors"
	"testing"

	lmerrors "github.com/wippyai/linmem/errors"
)

func TestKindTable(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		size uint32
	}{
		{"bool", KindBool, 1},
		{"char", KindChar, 1},
		{"int", KindInt, 4},
		{"float", KindFloat, 4},
		{"size_t", KindSizeT, 4},
		{"pointer", KindPointer, 4},
		{"long long", KindLongLong, 8},
		{"unsigned long long", KindULongLong, 8},
		{"double", KindDouble, 8},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.kind.String(); got != tc.name {
				t.Errorf("String() = %q, want %q", got, tc.name)
			}
			size, err := SizeOfKind(tc.kind)
			if err != nil {
				t.Fatalf("SizeOfKind: %v", err)
			}
			if size != tc.size {
				t.Errorf("size: got %d, want %d", size, tc.size)
			}
			if tc.kind.Align() != tc.size {
				t.Errorf("align: got %d, want %d", tc.kind.Align(), tc.size)
			}
			parsed, err := ParseKind(tc.name)
			if err != nil {
				t.Fatalf("ParseKind: %v", err)
			}
			if parsed != tc.kind {
				t.Errorf("ParseKind(%q) = %v", tc.name, parsed)
			}
		})
	}

	if len(Kinds()) != len(tests) {
		t.Errorf("Kinds() has %d entries, want %d", len(Kinds()), len(tests))
	}
}

func TestParseKindWhitespace(t *testing.T) {
	k, err := ParseKind("  unsigned   long long ")
	if err != nil {
		t.Fatalf("ParseKind: %v", err)
	}
	if k != KindULongLong {
		t.Errorf("got %v, want unsigned long long", k)
	}
}

func TestUnknownKind(t *testing.T) {
	for _, name := range []string{"short", "", "u32", "Int"} {
		if _, err := ParseKind(name); !errors.Is(err, lmerrors.ErrUnknownKind) {
			t.Errorf("ParseKind(%q) err = %v, want unknown kind", name, err)
		}
	}

	if _, err := SizeOfKind(KindInvalid); !errors.Is(err, lmerrors.ErrUnknownKind) {
		t.Errorf("SizeOfKind(invalid) err = %v", err)
	}
	if _, err := SizeOfKind(Kind(200)); !errors.Is(err, lmerrors.ErrUnknownKind) {
		t.Errorf("SizeOfKind(200) err = %v", err)
	}
	if Kind(200).String() != "unknown" {
		t.Errorf("String() = %q", Kind(200).String())
	}
}

func TestKindText(t *testing.T) {
	var k Kind
	if err := k.UnmarshalText([]byte("size_t")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if k != KindSizeT {
		t.Errorf("got %v", k)
	}
	text, err := KindDouble.MarshalText()
	if err != nil || string(text) != "double" {
		t.Errorf("MarshalText = %q, %v", text, err)
	}
	if _, err := KindInvalid.MarshalText(); err == nil {
		t.Error("expected error marshaling invalid kind")
	}
}
