package elf

import (
	"encoding/binary"

	"github.com/binlens/elfcore/internal/chunk"
	elferrors "github.com/binlens/elfcore/internal/errors"
)

// Ehdr mirrors the fixed-size fields of Elf64_Ehdr that this toolkit cares
// about; e_ident beyond EI_MAG/EI_CLASS/EI_DATA is preserved verbatim but
// not individually modeled.
type Ehdr struct {
	Ident     [16]byte
	Type      uint16
	Machine   uint16
	Version   uint32
	Entry     uint64
	Phoff     uint64
	Shoff     uint64
	Flags     uint32
	Ehsize    uint16
	Phentsize uint16
	Phnum     uint16
	Shentsize uint16
	Shnum     uint16
	Shstrndx  uint16
}

// parseEhdr reads an Elf64_Ehdr from the start of c and validates the
// magic and class/data fields required for a 64-bit little-endian object.
func parseEhdr(c chunk.Chunk) (Ehdr, error) {
	if c.Len() < EhdrSize {
		return Ehdr{}, elferrors.InvalidFormat("truncated ELF header")
	}

	b := c.Bytes()

	var ident [16]byte
	copy(ident[:], b[0:16])

	if ident[eiMag0] != elfMagic[0] || ident[eiMag1] != elfMagic[1] ||
		ident[eiMag2] != elfMagic[2] || ident[eiMag3] != elfMagic[3] {
		return Ehdr{}, elferrors.InvalidFormat("bad ELF magic")
	}

	if ident[eiClass] != elfClass64 {
		return Ehdr{}, elferrors.InvalidFormat("not a 64-bit ELF class")
	}

	if ident[eiData] != elfData2LSB {
		return Ehdr{}, elferrors.InvalidFormat("not little-endian ELF data encoding")
	}

	h := Ehdr{
		Ident:     ident,
		Type:      binary.LittleEndian.Uint16(b[16:]),
		Machine:   binary.LittleEndian.Uint16(b[18:]),
		Version:   binary.LittleEndian.Uint32(b[20:]),
		Entry:     binary.LittleEndian.Uint64(b[24:]),
		Phoff:     binary.LittleEndian.Uint64(b[32:]),
		Shoff:     binary.LittleEndian.Uint64(b[40:]),
		Flags:     binary.LittleEndian.Uint32(b[48:]),
		Ehsize:    binary.LittleEndian.Uint16(b[52:]),
		Phentsize: binary.LittleEndian.Uint16(b[54:]),
		Phnum:     binary.LittleEndian.Uint16(b[56:]),
		Shentsize: binary.LittleEndian.Uint16(b[58:]),
		Shnum:     binary.LittleEndian.Uint16(b[60:]),
		Shstrndx:  binary.LittleEndian.Uint16(b[62:]),
	}

	if h.Shnum > 0 && h.Shentsize != ShdrSize {
		return Ehdr{}, elferrors.InvalidFormat("unexpected e_shentsize")
	}

	if h.Phnum > 0 && h.Phentsize != PhdrSize {
		return Ehdr{}, elferrors.InvalidFormat("unexpected e_phentsize")
	}

	return h, nil
}

// serialize writes h back to a fixed-size, owned EhdrSize-byte chunk.
func (h Ehdr) serialize() chunk.Chunk {
	b := make([]byte, EhdrSize)
	copy(b[0:16], h.Ident[:])
	binary.LittleEndian.PutUint16(b[16:], h.Type)
	binary.LittleEndian.PutUint16(b[18:], h.Machine)
	binary.LittleEndian.PutUint32(b[20:], h.Version)
	binary.LittleEndian.PutUint64(b[24:], h.Entry)
	binary.LittleEndian.PutUint64(b[32:], h.Phoff)
	binary.LittleEndian.PutUint64(b[40:], h.Shoff)
	binary.LittleEndian.PutUint32(b[48:], h.Flags)
	binary.LittleEndian.PutUint16(b[52:], h.Ehsize)
	binary.LittleEndian.PutUint16(b[54:], h.Phentsize)
	binary.LittleEndian.PutUint16(b[56:], h.Phnum)
	binary.LittleEndian.PutUint16(b[58:], h.Shentsize)
	binary.LittleEndian.PutUint16(b[60:], h.Shnum)
	binary.LittleEndian.PutUint16(b[62:], h.Shstrndx)

	return chunk.New(b)
}
