// Package errors provides structured error types for the linmem library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the field path, the Go value type and the primitive
// kind involved, plus a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseEncode, errors.KindTypeMismatch).
//		Path("IntNode", "value").
//		GoType("string").
//		CType("int").
//		Detail("cannot store string in int field").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.TypeMismatch(errors.PhaseEncode, path, "string", "int")
//	err := errors.OutOfMemory(errors.PhaseList, 8)
//
// Kind-only sentinels (ErrOutOfMemory, ErrTypeMismatch, ...) match any phase
// with errors.Is.
package errors
