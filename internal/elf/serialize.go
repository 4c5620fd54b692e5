package elf

import (
	"github.com/binlens/elfcore/internal/chunk"
	elferrors "github.com/binlens/elfcore/internal/errors"
)

// Serialize reconstructs the full file image: the original region's bytes
// with the ELF header, section header table, and program header table
// overwritten from this Elf's current in-memory fields. When no mutation
// has occurred, the result is byte-identical to the region Parse consumed.
func (e *Elf) Serialize() (chunk.Chunk, error) {
	src := e.region.Chunk().Bytes()
	out := make([]byte, len(src))
	copy(out, src)

	copy(out[0:EhdrSize], e.header.serialize().Bytes())

	for i, s := range e.sections {
		off := e.header.Shoff + uint64(i)*ShdrSize
		if off+ShdrSize > uint64(len(out)) {
			return chunk.Chunk{}, elferrors.OutOfRange(off, ShdrSize, uint64(len(out)))
		}

		copy(out[off:off+ShdrSize], s.Serialize().Bytes())
	}

	for i, p := range e.programHeaders {
		off := e.header.Phoff + uint64(i)*PhdrSize
		if off+PhdrSize > uint64(len(out)) {
			return chunk.Chunk{}, elferrors.OutOfRange(off, PhdrSize, uint64(len(out)))
		}

		copy(out[off:off+PhdrSize], p.Serialize().Bytes())
	}

	return chunk.New(out), nil
}
