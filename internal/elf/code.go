package elf

import "github.com/binlens/elfcore/internal/chunk"

// Code is the polymorphic contract any executable-file model satisfies.
// Elf is the sole implementor specified here; other binary formats (PE,
// Mach-O) would each provide their own Code implementation behind the same
// three operations.
type Code interface {
	// GetFunctionOffset resolves name to its virtual address. ok is false
	// when no such function exists; this is a lookup miss, not an error.
	GetFunctionOffset(name string) (addr uint64, ok bool)

	// GetFunctionChunk resolves name to the chunk of bytes backing its
	// body. ok is false when no such function exists.
	GetFunctionChunk(name string) (c chunk.Chunk, ok bool)

	// Destroy releases all resources owned by the Code implementation.
	// After Destroy, the implementation must not be used again.
	Destroy()
}

var _ Code = (*Elf)(nil)
