// Package alloc provides linmem.Allocator implementations.
//
// Heap is a first-fit allocator that keeps its block list inside the memory it
// manages, so a guest program sees the same bookkeeping the host does:
//
//	+----------------------------+------------------------+
//	| next | prev | size | pad   | payload (8-aligned)    |
//	+----------------------------+------------------------+
//	  4      4      4      4       size - 16 - pad bytes
//
// Blocks are ordered by address. Free unlinks a block; the gap it leaves is
// reused by later allocations that fit. When the region is exhausted and the
// memory implements linmem.Grower, the heap grows the memory by whole pages.
//
// Arena bump-allocates from a single block obtained from another allocator
// and supports save points for scratch allocations.
//
// Exported forwards to allocation functions exported by a wasm module, so host
// code can build structures with the guest's own allocator.
//
// None of the allocators except Exported are safe for concurrent use.
package alloc
