package elf

import "encoding/binary"

// Sym mirrors Elf64_Sym: a single .symtab/.dynsym entry.
type Sym struct {
	Name  uint32 // st_name
	Info  uint8  // st_info
	Other uint8  // st_other
	Shndx uint16 // st_shndx
	Value uint64 // st_value
	Size  uint64 // st_size
}

func parseSym(b []byte) Sym {
	return Sym{
		Name:  binary.LittleEndian.Uint32(b[0:]),
		Info:  b[4],
		Other: b[5],
		Shndx: binary.LittleEndian.Uint16(b[6:]),
		Value: binary.LittleEndian.Uint64(b[8:]),
		Size:  binary.LittleEndian.Uint64(b[16:]),
	}
}

func serializeSym(s Sym) []byte {
	b := make([]byte, SymSize)
	binary.LittleEndian.PutUint32(b[0:], s.Name)
	b[4] = s.Info
	b[5] = s.Other
	binary.LittleEndian.PutUint16(b[6:], s.Shndx)
	binary.LittleEndian.PutUint64(b[8:], s.Value)
	binary.LittleEndian.PutUint64(b[16:], s.Size)

	return b
}

// Rela mirrors Elf64_Rela: a single .rela.dyn/.rela.plt entry.
type Rela struct {
	Offset uint64 // r_offset
	Info   uint64 // r_info
	Addend int64  // r_addend
}

func parseRela(b []byte) Rela {
	return Rela{
		Offset: binary.LittleEndian.Uint64(b[0:]),
		Info:   binary.LittleEndian.Uint64(b[8:]),
		Addend: int64(binary.LittleEndian.Uint64(b[16:])),
	}
}

func serializeRela(r Rela) []byte {
	b := make([]byte, RelaSize)
	binary.LittleEndian.PutUint64(b[0:], r.Offset)
	binary.LittleEndian.PutUint64(b[8:], r.Info)
	binary.LittleEndian.PutUint64(b[16:], uint64(r.Addend))

	return b
}
