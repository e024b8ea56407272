package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wippyai/linmem"
	"github.com/wippyai/linmem/alloc"
	"github.com/wippyai/linmem/list"
	"github.com/wippyai/linmem/memory"
)

// backing is a growable memory the demo can build a heap over.
type backing interface {
	linmem.Memory
	linmem.MemorySizer
	linmem.Grower
}

func openBacking(ctx context.Context, name string, maxPages uint32) (backing, func() error, error) {
	switch name {
	case "buffer":
		return memory.NewBuffer(memory.BufferConfig{InitialPages: 1, MaxPages: maxPages}), func() error { return nil }, nil
	case "mmap":
		return openMmap(maxPages)
	case "wazero":
		m, err := memory.NewWazeroMemory(ctx, memory.WazeroConfig{InitialPages: 1, MaxPages: maxPages})
		if err != nil {
			return nil, nil, err
		}
		return m, func() error { return m.Close(ctx) }, nil
	}
	return nil, nil, fmt.Errorf("unknown backend %q (want buffer, mmap or wazero)", name)
}

func runDemo(ctx context.Context, out io.Writer, r renderer, backend string, maxPages uint32, lists [][]int32) (err error) {
	mem, release, err := openBacking(ctx, backend, maxPages)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := release(); err == nil {
			err = cerr
		}
	}()

	heap, err := alloc.NewHeap(mem, alloc.HeapConfig{MaxPages: maxPages})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "sizeof(IntNode) = %d\n", list.IntNodeType.Sizeof())
	fmt.Fprintf(out, "sizeof(List) = %d\n", list.HeaderType.Sizeof())
	lenOff, err := list.HeaderType.Offsetof("len")
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "offsetof(List, len) = %d\n\n", lenOff)

	outer, err := list.NewListList(heap)
	if err != nil {
		return err
	}
	for _, values := range lists {
		inner, err := list.NewIntList(heap)
		if err != nil {
			return err
		}
		for _, v := range values {
			if err := inner.Append(v); err != nil {
				return err
			}
		}
		if err := outer.AppendList(inner); err != nil {
			return err
		}
	}

	inner, err := outer.Lists()
	if err != nil {
		return err
	}
	fmt.Fprintln(out, r.title(fmt.Sprintf("%s memory, lists at %s", backend, outer.Ptr())))
	for i, l := range inner {
		values, err := l.Values()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, r.listLine(fmt.Sprintf("Listx%02x", i), values))
	}

	st, err := heap.Stats()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nheap: %d blocks, %d bytes in use, %d reserved, %d capacity\n",
		st.Blocks, st.InUse, st.Reserved, st.Capacity)
	return nil
}

func parseLists(args []string) ([][]int32, error) {
	lists := make([][]int32, 0, len(args))
	for _, arg := range args {
		values := []int32{}
		for _, field := range strings.Split(arg, ",") {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			v, err := parseValue(field)
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
		lists = append(lists, values)
	}
	return lists, nil
}

// parseValue accepts decimal, 0x-prefixed hex and b-prefixed binary.
func parseValue(s string) (int32, error) {
	var (
		n   int64
		err error
	)
	switch {
	case strings.HasPrefix(s, "0x"):
		n, err = strconv.ParseInt(s[2:], 16, 32)
	case strings.HasPrefix(s, "b"):
		n, err = strconv.ParseInt(s[1:], 2, 32)
	default:
		n, err = strconv.ParseInt(s, 10, 32)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid list value %q: %w", s, err)
	}
	return int32(n), nil
}
