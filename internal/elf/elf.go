// Package elf implements the ELF object model: a typed, mutable,
// round-trippable in-memory representation of a 64-bit ELF file. Elf is the
// sole Code implementation specified here (see code.go).
package elf

import (
	semver "github.com/Masterminds/semver/v3"

	"github.com/binlens/elfcore/internal/chunk"
	elferrors "github.com/binlens/elfcore/internal/errors"
	"github.com/binlens/elfcore/internal/region"
)

// ModelVersion is the current version of this in-memory object model's
// wire-compatible shape, checked with CheckModelVersion.
const ModelVersion = "1.0.0"

// Elf owns a Region plus the section/program-header tables and
// shstrtab/strtab cache parsed from it. It is the concrete Code
// implementation for this toolkit.
type Elf struct {
	region         *region.Region
	typeTag        chunk.Chunk
	header         Ehdr
	sections       []Section
	programHeaders []ProgramHeader
	shstrtabIdx    int // -1 when no cached .shstrtab
	strtabIdx      int // -1 when no cached .strtab
	destroyed      bool
}

// Parse reads an Elf64_Ehdr from the start of r and builds the section and
// program-header tables it describes. typeTag is an opaque, caller-supplied
// discriminator chunk stored verbatim; this toolkit does
// not interpret it, since Elf is presently the only Code implementation.
//
// Structural parse failures are fatal: Parse returns an error and no
// partial Elf is observable.
func Parse(typeTag chunk.Chunk, r *region.Region) (*Elf, error) {
	headerChunk, err := r.ChunkAt(0, EhdrSize)
	if err != nil {
		return nil, elferrors.InvalidFormat("truncated ELF header")
	}

	header, err := parseEhdr(headerChunk)
	if err != nil {
		return nil, err
	}

	sections := make([]Section, 0, header.Shnum)

	for i := uint16(0); i < header.Shnum; i++ {
		off := header.Shoff + uint64(i)*ShdrSize

		c, err := r.ChunkAt(off, ShdrSize)
		if err != nil {
			return nil, elferrors.InvalidFormat("section header table exceeds region")
		}

		s, err := SectionFromBytes(c)
		if err != nil {
			return nil, err
		}

		if s.Type != SHT_NOBITS && s.Size > 0 {
			if _, err := r.ChunkAt(s.Offset, s.Size); err != nil {
				return nil, elferrors.InvalidFormat("section data exceeds region")
			}
		}

		sections = append(sections, s)
	}

	programHeaders := make([]ProgramHeader, 0, header.Phnum)

	for i := uint16(0); i < header.Phnum; i++ {
		off := header.Phoff + uint64(i)*PhdrSize

		c, err := r.ChunkAt(off, PhdrSize)
		if err != nil {
			return nil, elferrors.InvalidFormat("program header table exceeds region")
		}

		p, err := ProgramHeaderFromBytes(c)
		if err != nil {
			return nil, err
		}

		programHeaders = append(programHeaders, p)
	}

	shstrtabIdx := -1

	if header.Shnum > 0 {
		if int(header.Shstrndx) >= len(sections) {
			return nil, elferrors.InvalidFormat("e_shstrndx out of range")
		}

		if sections[header.Shstrndx].Type != SHT_STRTAB {
			return nil, elferrors.InvalidFormat("e_shstrndx does not reference a string table")
		}

		shstrtabIdx = int(header.Shstrndx)
	}

	e := &Elf{
		region:         r,
		typeTag:        typeTag,
		header:         header,
		sections:       sections,
		programHeaders: programHeaders,
		shstrtabIdx:    shstrtabIdx,
		strtabIdx:      -1,
	}

	for i, s := range sections {
		if i == shstrtabIdx || s.Type != SHT_STRTAB {
			continue
		}

		if name, ok := e.GetSectionName(s); ok && name == ".strtab" {
			e.strtabIdx = i

			break
		}
	}

	return e, nil
}

// TypeTag returns the opaque format-discriminator chunk this Elf was
// constructed with.
func (e *Elf) TypeTag() chunk.Chunk {
	return e.typeTag
}

// Sections returns the ordered section list. Callers must not mutate the
// returned slice in place; use AddSection/RemoveSection.
func (e *Elf) Sections() []Section {
	return e.sections
}

// ProgramHeaders returns the ordered program-header list.
func (e *Elf) ProgramHeaders() []ProgramHeader {
	return e.programHeaders
}

// Header returns a copy of the parsed Elf64_Ehdr fields.
func (e *Elf) Header() Ehdr {
	return e.header
}

// GetSectionName resolves s's sh_name through the cached .shstrtab. ok is
// false when there is no cached string table or the offset is invalid.
func (e *Elf) GetSectionName(s Section) (string, bool) {
	if e.shstrtabIdx < 0 {
		return "", false
	}

	shstrtab := e.sections[e.shstrtabIdx]

	data, err := e.GetSectionDataChunk(shstrtab)
	if err != nil {
		return "", false
	}

	if int(s.Name) >= data.Len() {
		return "", false
	}

	return cStringAt(data, s.Name), true
}

// GetSectionByName scans the section list in insertion order and returns
// the first section whose resolved name matches name. Empty-name sections
// are skipped.
func (e *Elf) GetSectionByName(name string) (Section, bool) {
	for _, s := range e.sections {
		n, ok := e.GetSectionName(s)
		if !ok || n == "" {
			continue
		}

		if n == name {
			return s, true
		}
	}

	return Section{}, false
}

// GetSectionDataChunk returns the chunk of bytes backing s. Sections of
// type SHT_NOBITS have no file backing and always return the empty chunk.
func (e *Elf) GetSectionDataChunk(s Section) (chunk.Chunk, error) {
	if s.Type == SHT_NOBITS {
		return chunk.Empty, nil
	}

	return e.region.ChunkAt(s.Offset, s.Size)
}

// GetProgramHeaderDataChunk returns the chunk of bytes backing p's file
// image ([p_offset, p_offset+p_filesz)).
func (e *Elf) GetProgramHeaderDataChunk(p ProgramHeader) (chunk.Chunk, error) {
	return e.region.ChunkAt(p.Offset, p.FileSz)
}

// GetFunctionOffset resolves name to a STT_FUNC symbol's st_value by
// scanning .symtab/.strtab. ok is false when .symtab is absent or no
// matching function symbol exists — a lookup miss, not an error.
func (e *Elf) GetFunctionOffset(name string) (uint64, bool) {
	sym, ok := e.findFuncSymbol(name)
	if !ok {
		return 0, false
	}

	return sym.Value, true
}

// GetFunctionChunk resolves name the same way as GetFunctionOffset, then
// locates the section whose virtual range contains the symbol's address
// and returns the st_size-length sub-chunk starting at the intra-section
// offset.
func (e *Elf) GetFunctionChunk(name string) (chunk.Chunk, bool) {
	sym, ok := e.findFuncSymbol(name)
	if !ok {
		return chunk.Chunk{}, false
	}

	for _, s := range e.sections {
		if !s.ContainsAddr(sym.Value) {
			continue
		}

		data, err := e.GetSectionDataChunk(s)
		if err != nil {
			return chunk.Chunk{}, false
		}

		intraOffset := sym.Value - s.Addr

		c, err := data.Slice(int(intraOffset), int(sym.Size))
		if err != nil {
			return chunk.Chunk{}, false
		}

		return c, true
	}

	return chunk.Chunk{}, false
}

// Destroy releases the Elf's reference to its Region, sections, and
// program headers, in reverse order of construction. Chunks vended before
// Destroy carried a logical borrow that ends here.
func (e *Elf) Destroy() {
	e.programHeaders = nil
	e.sections = nil
	e.region = nil
	e.destroyed = true
}

// CheckModelVersion reports whether ModelVersion satisfies the given
// semver constraint (e.g. "^1.0.0"), for tooling that embeds this object
// model and wants to guard against an incompatible future shape.
func (e *Elf) CheckModelVersion(constraint string) (bool, error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, err
	}

	v, err := semver.NewVersion(ModelVersion)
	if err != nil {
		return false, err
	}

	return c.Check(v), nil
}

func (e *Elf) findSymtabSection() (Section, bool) {
	for _, s := range e.sections {
		if s.Type == SHT_SYMTAB {
			return s, true
		}
	}

	return Section{}, false
}

func (e *Elf) strtabSection() (Section, bool) {
	if e.strtabIdx < 0 {
		return Section{}, false
	}

	return e.sections[e.strtabIdx], true
}

func (e *Elf) findFuncSymbol(name string) (Sym, bool) {
	symtab, ok := e.findSymtabSection()
	if !ok {
		return Sym{}, false
	}

	strtab, ok := e.strtabSection()
	if !ok {
		return Sym{}, false
	}

	symData, err := e.GetSectionDataChunk(symtab)
	if err != nil {
		return Sym{}, false
	}

	strData, err := e.GetSectionDataChunk(strtab)
	if err != nil {
		return Sym{}, false
	}

	count := symData.Len() / SymSize
	for i := 0; i < count; i++ {
		rec, err := symData.Slice(i*SymSize, SymSize)
		if err != nil {
			break
		}

		sym := parseSym(rec.Bytes())
		if ELF64_ST_TYPE(sym.Info) != STT_FUNC {
			continue
		}

		if cStringAt(strData, sym.Name) == name {
			return sym, true
		}
	}

	return Sym{}, false
}

func cStringAt(c chunk.Chunk, offset uint32) string {
	b := c.Bytes()
	if int(offset) >= len(b) {
		return ""
	}

	end := int(offset)
	for end < len(b) && b[end] != 0 {
		end++
	}

	return string(b[offset:end])
}
