package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	jsoniter "github.com/json-iterator/go"

	"github.com/wippyai/linmem/schema"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#87CEEB")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// renderer styles output only when writing to a terminal.
type renderer struct {
	styled bool
}

func (r renderer) title(s string) string {
	if !r.styled {
		return s
	}
	return titleStyle.Render(s)
}

func (r renderer) value(s string) string {
	if !r.styled {
		return s
	}
	return valueStyle.Render(s)
}

func (r renderer) muted(s string) string {
	if !r.styled {
		return s
	}
	return mutedStyle.Render(s)
}

func (r renderer) structTable(info schema.StructInfo) string {
	t := table.New().Headers("FIELD", "KIND", "OFFSET", "SIZE")
	if r.styled {
		t = t.Border(lipgloss.RoundedBorder()).
			StyleFunc(func(row, _ int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				return cellStyle
			})
	} else {
		t = t.Border(lipgloss.ASCIIBorder()).
			StyleFunc(func(_, _ int) lipgloss.Style { return cellStyle })
	}
	for _, f := range info.Fields {
		t.Row(f.Name, f.Kind, strconv.FormatUint(uint64(f.Offset), 10), strconv.FormatUint(uint64(f.Size), 10))
	}

	heading := fmt.Sprintf("%s  size=%d align=%d stride=%d", info.Name, info.Size, info.Align, info.Stride)
	return r.title(heading) + "\n" + t.String()
}

// listLine renders one list as "name: 0x0001 -> 0x0002".
func (r renderer) listLine(name string, values []int32) string {
	if len(values) == 0 {
		return name + ": " + r.muted("(empty)")
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = r.value(fmt.Sprintf("0x%04x", uint32(v)))
	}
	return name + ": " + strings.Join(parts, " -> ")
}

var jsonOut = jsoniter.Config{
	OnlyTaggedField: true,
	CaseSensitive:   true,
}.Froze()

func writeJSON(w io.Writer, v any) error {
	data, err := jsonOut.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
