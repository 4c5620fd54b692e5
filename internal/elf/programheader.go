package elf

import (
	"encoding/binary"

	"github.com/binlens/elfcore/internal/chunk"
	elferrors "github.com/binlens/elfcore/internal/errors"
)

// ProgramHeader is a typed wrapper over one Elf64_Phdr record.
type ProgramHeader struct {
	Type   uint32 // p_type
	Flags  uint32 // p_flags
	Offset uint64 // p_offset
	VAddr  uint64 // p_vaddr
	PAddr  uint64 // p_paddr
	FileSz uint64 // p_filesz
	MemSz  uint64 // p_memsz
	Align  uint64 // p_align
}

// ProgramHeaderFromBytes parses a 56-byte Elf64_Phdr record from c.
func ProgramHeaderFromBytes(c chunk.Chunk) (ProgramHeader, error) {
	if c.Len() < PhdrSize {
		return ProgramHeader{}, elferrors.InvalidFormat("truncated program header")
	}

	b := c.Bytes()

	return ProgramHeader{
		Type:   binary.LittleEndian.Uint32(b[0:]),
		Flags:  binary.LittleEndian.Uint32(b[4:]),
		Offset: binary.LittleEndian.Uint64(b[8:]),
		VAddr:  binary.LittleEndian.Uint64(b[16:]),
		PAddr:  binary.LittleEndian.Uint64(b[24:]),
		FileSz: binary.LittleEndian.Uint64(b[32:]),
		MemSz:  binary.LittleEndian.Uint64(b[40:]),
		Align:  binary.LittleEndian.Uint64(b[48:]),
	}, nil
}

// Serialize writes p back to a fixed-size, owned PhdrSize-byte chunk.
func (p ProgramHeader) Serialize() chunk.Chunk {
	b := make([]byte, PhdrSize)
	binary.LittleEndian.PutUint32(b[0:], p.Type)
	binary.LittleEndian.PutUint32(b[4:], p.Flags)
	binary.LittleEndian.PutUint64(b[8:], p.Offset)
	binary.LittleEndian.PutUint64(b[16:], p.VAddr)
	binary.LittleEndian.PutUint64(b[24:], p.PAddr)
	binary.LittleEndian.PutUint64(b[32:], p.FileSz)
	binary.LittleEndian.PutUint64(b[40:], p.MemSz)
	binary.LittleEndian.PutUint64(b[48:], p.Align)

	return chunk.New(b)
}
