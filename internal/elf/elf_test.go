package elf

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/binlens/elfcore/internal/chunk"
	"github.com/binlens/elfcore/internal/region"
	"github.com/binlens/elfcore/internal/testrunner/assert"
)

// textAddr/textSize/mainValue/mainSize describe the synthetic .text
// section and "main" symbol shared by the scenarios below.
const (
	textAddr  = uint64(0x401000)
	textSize  = uint64(0x40)
	mainValue = uint64(0x401000)
	mainSize  = uint64(32)
)

// buildSyntheticElf assembles a minimal statically-linked-looking ELF64
// image with sections "", .text, .rela.plt, .shstrtab, .symtab, .strtab and
// one STT_FUNC symbol named "main", mirroring the S1/S2/S5 scenarios.
func buildSyntheticElf(t *testing.T) []byte {
	t.Helper()

	textData := make([]byte, textSize)
	for i := range textData {
		textData[i] = byte(i)
	}

	relaBuf := &bytes.Buffer{}
	writeRela(relaBuf, 0x401020, relaInfo(0, R_X86_64_JUMP_SLOT), 0)

	shstr := newStrtabBuilder()
	nameNull := shstr.add("")
	nameText := shstr.add(".text")
	nameRela := shstr.add(".rela.plt")
	nameShstr := shstr.add(".shstrtab")
	nameSymtab := shstr.add(".symtab")
	nameStrtab := shstr.add(".strtab")

	strtab := newStrtabBuilder()
	strtab.add("")
	mainNameOff := strtab.add("main")

	symBuf := &bytes.Buffer{}
	writeSym(symBuf, 0, 0, 0, 0, 0, 0) // reserved null symbol
	writeSym(symBuf, mainNameOff, (1<<4)|STT_FUNC, 0, 1 /* .text index */, mainValue, mainSize)

	file := &bytes.Buffer{}
	file.Write(make([]byte, EhdrSize)) // placeholder, patched below

	textOff := uint64(file.Len())
	file.Write(textData)

	relaOff := uint64(file.Len())
	file.Write(relaBuf.Bytes())

	shstrOff := uint64(file.Len())
	file.Write(shstr.bytes())

	symtabOff := uint64(file.Len())
	file.Write(symBuf.Bytes())

	strtabOff := uint64(file.Len())
	file.Write(strtab.bytes())

	shoff := uint64(file.Len())

	sections := []Section{
		{}, // null
		{Name: nameText, Type: SHT_PROGBITS, Addr: textAddr, Offset: textOff, Size: textSize, AddrAlign: 1},
		{Name: nameRela, Type: SHT_RELA, Offset: relaOff, Size: uint64(relaBuf.Len()), Link: 4, EntSize: RelaSize, AddrAlign: 8},
		{Name: nameShstr, Type: SHT_STRTAB, Offset: shstrOff, Size: uint64(shstr.len()), AddrAlign: 1},
		{Name: nameSymtab, Type: SHT_SYMTAB, Offset: symtabOff, Size: uint64(symBuf.Len()), Link: 5, EntSize: SymSize, AddrAlign: 8},
		{Name: nameStrtab, Type: SHT_STRTAB, Offset: strtabOff, Size: uint64(strtab.len()), AddrAlign: 1},
	}

	for _, s := range sections {
		file.Write(s.Serialize().Bytes())
	}

	_ = nameNull

	raw := file.Bytes()

	ehdr := Ehdr{
		Ident:     identBytes(),
		Type:      2, // ET_EXEC
		Machine:   62,
		Version:   1,
		Shoff:     shoff,
		Ehsize:    EhdrSize,
		Shentsize: ShdrSize,
		Shnum:     uint16(len(sections)),
		Shstrndx:  3,
	}
	copy(raw[0:EhdrSize], ehdr.serialize().Bytes())

	return raw
}

func identBytes() [16]byte {
	var b [16]byte
	b[0], b[1], b[2], b[3] = 0x7f, 'E', 'L', 'F'
	b[4] = 2 // ELFCLASS64
	b[5] = 1 // ELFDATA2LSB
	b[6] = 1

	return b
}

func relaInfo(sym uint32, typ uint32) uint64 {
	return uint64(sym)<<32 | uint64(typ)
}

func writeRela(w *bytes.Buffer, offset uint64, info uint64, addend int64) {
	b := make([]byte, RelaSize)
	binary.LittleEndian.PutUint64(b[0:], offset)
	binary.LittleEndian.PutUint64(b[8:], info)
	binary.LittleEndian.PutUint64(b[16:], uint64(addend))
	w.Write(b)
}

func writeSym(w *bytes.Buffer, name uint32, info uint8, other uint8, shndx uint16, value, size uint64) {
	b := make([]byte, SymSize)
	binary.LittleEndian.PutUint32(b[0:], name)
	b[4] = info
	b[5] = other
	binary.LittleEndian.PutUint16(b[6:], shndx)
	binary.LittleEndian.PutUint64(b[8:], value)
	binary.LittleEndian.PutUint64(b[16:], size)
	w.Write(b)
}

type strtabBuilder struct {
	buf *bytes.Buffer
}

func newStrtabBuilder() *strtabBuilder {
	return &strtabBuilder{buf: &bytes.Buffer{}}
}

func (s *strtabBuilder) add(name string) uint32 {
	off := uint32(s.buf.Len())
	s.buf.WriteString(name)
	s.buf.WriteByte(0)

	return off
}

func (s *strtabBuilder) bytes() []byte { return s.buf.Bytes() }
func (s *strtabBuilder) len() int      { return s.buf.Len() }

func parseSynthetic(t *testing.T) *Elf {
	t.Helper()

	raw := buildSyntheticElf(t)
	r := region.Empty(0)
	r.Append(raw)

	e, err := Parse(chunk.New([]byte("elf64")), r)
	assert.NoError(t, err)

	return e
}

// S1 — parse a minimal static ELF and resolve .text by name.
func TestS1ParseMinimalStaticElf(t *testing.T) {
	e := parseSynthetic(t)

	s, ok := e.GetSectionByName(".text")
	assert.True(t, ok)

	name, ok := e.GetSectionName(s)
	assert.True(t, ok)
	assert.Equal(t, ".text", name)
}

// S2 — function resolution.
func TestS2FunctionResolution(t *testing.T) {
	e := parseSynthetic(t)

	addr, ok := e.GetFunctionOffset("main")
	assert.True(t, ok)
	assert.Equal(t, mainValue, addr)

	fc, ok := e.GetFunctionChunk("main")
	assert.True(t, ok)
	assert.Equal(t, int(mainSize), fc.Len())

	text, ok := e.GetSectionByName(".text")
	assert.True(t, ok)

	textData, err := e.GetSectionDataChunk(text)
	assert.NoError(t, err)

	head, err := textData.Slice(0, int(mainSize))
	assert.NoError(t, err)
	assert.True(t, fc.Equal(head))
}

// S3 — missing function.
func TestS3MissingFunction(t *testing.T) {
	e := parseSynthetic(t)

	_, ok := e.GetFunctionOffset("nope")
	assert.False(t, ok)
}

// S4 — section tag mapping.
func TestS4SectionTagMapping(t *testing.T) {
	e := parseSynthetic(t)

	symtab, ok := e.GetSectionByName(".symtab")
	assert.True(t, ok)
	assert.Equal(t, DT_SYMTAB, e.GetSectionTag(symtab))

	text, ok := e.GetSectionByName(".text")
	assert.True(t, ok)
	assert.Equal(t, int64(0), e.GetSectionTag(text))

	assert.True(t, IsSectionTagDPtr(DT_SYMTAB))
	assert.False(t, IsSectionTagDPtr(999))
}

// S5 — section-offset propagation into .rela.plt.
func TestS5SectionOffsetPropagation(t *testing.T) {
	e := parseSynthetic(t)

	text, ok := e.GetSectionByName(".text")
	assert.True(t, ok)

	assert.NoError(t, e.UpdateSymbolsOffsets(text, 16))

	rela, ok := e.GetSectionByName(".rela.plt")
	assert.True(t, ok)

	data, err := e.GetSectionDataChunk(rela)
	assert.NoError(t, err)

	entry, err := data.Slice(0, RelaSize)
	assert.NoError(t, err)

	r := parseRela(entry.Bytes())
	assert.Equal(t, uint64(0x401030), r.Offset)
}

// Quantified invariant 1 & property 3: shnum bookkeeping and
// round-trip serialization of an unmutated parse.
func TestShnumAndRoundTrip(t *testing.T) {
	raw := buildSyntheticElf(t)
	r := region.Empty(0)
	r.Append(raw)

	e, err := Parse(chunk.Empty, r)
	assert.NoError(t, err)
	assert.Equal(t, len(e.Sections()), int(e.Header().Shnum))

	out, err := e.Serialize()
	assert.NoError(t, err)
	assert.True(t, out.Equal(chunk.New(raw)))
}

// Quantified invariant 4: name -> section -> name round trip for a unique name.
func TestGetSectionByNameRoundTrip(t *testing.T) {
	e := parseSynthetic(t)

	s, ok := e.GetSectionByName(".strtab")
	assert.True(t, ok)

	name, ok := e.GetSectionName(s)
	assert.True(t, ok)

	again, ok := e.GetSectionByName(name)
	assert.True(t, ok)
	assert.True(t, again == s)
}

func TestAddAndRemoveSectionPreservesShnum(t *testing.T) {
	raw := buildSyntheticElf(t)
	r := region.Empty(0)
	r.Append(raw)

	e, err := Parse(chunk.Empty, r)
	assert.NoError(t, err)
	before := len(e.Sections())

	newSec := Section{Type: SHT_PROGBITS, Name: 0, Offset: uint64(r.Len()), Size: 0}
	assert.NoError(t, e.AddSection(newSec))
	assert.Equal(t, before+1, len(e.Sections()))
	assert.Equal(t, before+1, int(e.Header().Shnum))

	assert.NoError(t, e.RemoveSection(newSec))
	assert.Equal(t, before, len(e.Sections()))
	assert.Equal(t, before, int(e.Header().Shnum))

	// Property 5: after add then remove of the same section, the region is
	// bit-identical to the original.
	out, err := e.Serialize()
	assert.NoError(t, err)
	assert.True(t, out.Equal(chunk.New(raw)))
}

func TestRemoveShstrtabFails(t *testing.T) {
	e := parseSynthetic(t)

	shstrtab, ok := e.GetSectionByName(".shstrtab")
	assert.True(t, ok)

	err := e.RemoveSection(shstrtab)
	assert.Error(t, err)
	assert.Equal(t, len(e.Sections()), int(e.Header().Shnum))
}

func TestParseRejectsBadMagic(t *testing.T) {
	raw := buildSyntheticElf(t)
	raw[0] = 0x00

	r := region.Empty(0)
	r.Append(raw)

	_, err := Parse(chunk.Empty, r)
	assert.Error(t, err)
}

func TestCheckModelVersion(t *testing.T) {
	e := parseSynthetic(t)

	ok, err := e.CheckModelVersion("^1.0.0")
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.CheckModelVersion("^2.0.0")
	assert.NoError(t, err)
	assert.False(t, ok)
}
