// Package linmem provides typed struct views and intrusive linked lists over
// a flat, externally owned byte buffer ("linear memory").
//
// Data lives at raw uint32 offsets inside the buffer. Callers declare C-style
// struct layouts, bind them to an offset, and read or write fields through a
// view that decodes and encodes bytes on every access.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	linmem/          Root package with Pointer, Memory and Allocator interfaces
//	├── layout/      Primitive kinds, alignment, struct size and offset calculation
//	├── view/        Struct types bound to memory: Read, Set, typed accessors
//	├── list/        Intrusive singly-linked lists (IntList, ListList)
//	├── memory/      Memory backends: Go slice, anonymous mmap, wazero
//	├── alloc/       Allocators: first-fit heap, arena, wasm-exported functions
//	├── schema/      YAML/JSON struct declarations
//	├── errors/      Structured error types
//	└── cmd/         structinfo layout inspection tool
//
// # Quick Start
//
//	mem := memory.NewBuffer(memory.BufferConfig{InitialPages: 1})
//	heap, err := alloc.NewHeap(mem, alloc.HeapConfig{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	l, err := list.NewIntList(heap)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, v := range []int32{10, 20, 30} {
//	    if err := l.Append(v); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//	vals, _ := l.Values() // [10 20 30]
//
// # Binary Layout
//
// Field order is declaration order. Each field past the first starts at the
// running size rounded up to its own kind's alignment. Multi-byte scalars are
// little-endian, bool occupies one byte, pointers are uint32 offsets with 0
// reserved as null.
//
// # Thread Safety
//
// Nothing in the core locks. Views, lists, Buffer and Heap must be used by a
// single goroutine, or access must be synchronized by the caller.
package linmem
