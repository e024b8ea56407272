// Package memory provides linear memory backends implementing linmem.Memory.
//
// # Backends
//
//	buf := memory.NewBuffer(memory.BufferConfig{InitialPages: 1})  // Go slice
//	mm, err := memory.NewMmap(memory.MmapConfig{InitialPages: 4})  // anonymous mmap (unix)
//	w := memory.WrapWazero(instance.Memory())                      // wazero api.Memory
//
// Every backend resolves its byte storage on each access, so growth through
// Grow is observed by views created earlier. Slices returned by Read alias
// the memory and are only valid until the next Grow.
//
// Out-of-range accesses return an errors.KindOutOfBounds error instead of
// panicking.
package memory
