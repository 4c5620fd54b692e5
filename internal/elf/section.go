package elf

import (
	"encoding/binary"

	"github.com/binlens/elfcore/internal/chunk"
	elferrors "github.com/binlens/elfcore/internal/errors"
)

// Section is a typed wrapper over one Elf64_Shdr record. It never holds a
// back-reference to its owning Elf or Region; chunk vending always goes
// through the owning Elf (see DESIGN.md, §9 of the spec).
type Section struct {
	Name      uint32 // sh_name: byte index into .shstrtab
	Type      uint32 // sh_type
	Flags     uint64 // sh_flags
	Addr      uint64 // sh_addr
	Offset    uint64 // sh_offset
	Size      uint64 // sh_size
	Link      uint32 // sh_link
	Info      uint32 // sh_info
	AddrAlign uint64 // sh_addralign
	EntSize   uint64 // sh_entsize
}

// SectionFromBytes parses a 64-byte Elf64_Shdr record from c.
func SectionFromBytes(c chunk.Chunk) (Section, error) {
	if c.Len() < ShdrSize {
		return Section{}, elferrors.InvalidFormat("truncated section header")
	}

	b := c.Bytes()

	return Section{
		Name:      binary.LittleEndian.Uint32(b[0:]),
		Type:      binary.LittleEndian.Uint32(b[4:]),
		Flags:     binary.LittleEndian.Uint64(b[8:]),
		Addr:      binary.LittleEndian.Uint64(b[16:]),
		Offset:    binary.LittleEndian.Uint64(b[24:]),
		Size:      binary.LittleEndian.Uint64(b[32:]),
		Link:      binary.LittleEndian.Uint32(b[40:]),
		Info:      binary.LittleEndian.Uint32(b[44:]),
		AddrAlign: binary.LittleEndian.Uint64(b[48:]),
		EntSize:   binary.LittleEndian.Uint64(b[56:]),
	}, nil
}

// Serialize writes s back to a fixed-size, owned ShdrSize-byte chunk.
func (s Section) Serialize() chunk.Chunk {
	b := make([]byte, ShdrSize)
	binary.LittleEndian.PutUint32(b[0:], s.Name)
	binary.LittleEndian.PutUint32(b[4:], s.Type)
	binary.LittleEndian.PutUint64(b[8:], s.Flags)
	binary.LittleEndian.PutUint64(b[16:], s.Addr)
	binary.LittleEndian.PutUint64(b[24:], s.Offset)
	binary.LittleEndian.PutUint64(b[32:], s.Size)
	binary.LittleEndian.PutUint32(b[40:], s.Link)
	binary.LittleEndian.PutUint32(b[44:], s.Info)
	binary.LittleEndian.PutUint64(b[48:], s.AddrAlign)
	binary.LittleEndian.PutUint64(b[56:], s.EntSize)

	return chunk.New(b)
}

// ContainsAddr reports whether the virtual address addr falls within the
// section's mapped range [sh_addr, sh_addr+sh_size).
func (s Section) ContainsAddr(addr uint64) bool {
	if s.Size == 0 {
		return false
	}

	return addr >= s.Addr && addr < s.Addr+s.Size
}
