package elf

import elferrors "github.com/binlens/elfcore/internal/errors"

// AddSection appends s to the section list and bumps e_shnum. The caller
// is responsible for having already placed s's backing bytes in the
// region and computed its sh_offset; this component never chooses layout
// (see spec Open Question (a)).
func (e *Elf) AddSection(s Section) error {
	e.sections = append(e.sections, s)
	e.header.Shnum = uint16(len(e.sections))

	return nil
}

// RemoveSection removes the first section equal to target from the
// section list and decrements e_shnum. It fails with Failed, leaving the
// Elf unchanged, if target is the cached .shstrtab — removing it would
// violate the invariant that e_shstrndx indexes a live string table.
//
// Removal does not renumber other sections' sh_link/sh_info fields (spec
// Open Question (b)): this is a known limitation, not an oversight.
func (e *Elf) RemoveSection(target Section) error {
	idx, ok := e.indexOfSection(target)
	if !ok {
		return elferrors.Failed("section not present in this Elf")
	}

	if idx == e.shstrtabIdx {
		return elferrors.Failed("cannot remove the active .shstrtab section")
	}

	e.sections = append(e.sections[:idx], e.sections[idx+1:]...)
	e.header.Shnum = uint16(len(e.sections))

	if e.shstrtabIdx > idx {
		e.shstrtabIdx--
		e.header.Shstrndx = uint16(e.shstrtabIdx)
	}

	if e.strtabIdx == idx {
		e.strtabIdx = -1
	} else if e.strtabIdx > idx {
		e.strtabIdx--
	}

	return nil
}

// UpdateSymbolsOffsets is the single point of truth for keeping dynamic
// linkage tables coherent under a layout edit to target: it adds delta to
// every .symtab entry's st_value whose st_shndx refers to target, and to
// every .rela.dyn/.rela.plt entry's r_offset that lies within target's
// virtual range. R_X86_64_RELATIVE entries additionally have their
// r_addend adjusted by delta.
//
// Callers invoke this directly after splicing target's backing bytes
// within the Region (see Region.SpliceInsert/SpliceRemove); AddSection and
// RemoveSection do not call it implicitly, since neither changes any
// section's byte offset on its own.
func (e *Elf) UpdateSymbolsOffsets(target Section, delta int64) error {
	idx, ok := e.indexOfSection(target)
	if !ok {
		return elferrors.Failed("section not present in this Elf")
	}

	if symtab, ok := e.findSymtabSection(); ok {
		if err := e.patchSymtabValues(symtab, uint16(idx), delta); err != nil {
			return err
		}
	}

	for _, relaName := range []string{".rela.dyn", ".rela.plt"} {
		relaSec, ok := e.GetSectionByName(relaName)
		if !ok {
			continue
		}

		if err := e.patchRelaOffsets(relaSec, target, delta); err != nil {
			return err
		}
	}

	return nil
}

func (e *Elf) indexOfSection(target Section) (int, bool) {
	for i, s := range e.sections {
		if s == target {
			return i, true
		}
	}

	return -1, false
}

func (e *Elf) patchSymtabValues(symtab Section, shndx uint16, delta int64) error {
	count := int(symtab.Size / SymSize)

	for i := 0; i < count; i++ {
		recOff := symtab.Offset + uint64(i)*SymSize

		rec, err := e.region.ChunkAt(recOff, SymSize)
		if err != nil {
			return err
		}

		sym := parseSym(rec.Bytes())
		if sym.Shndx != shndx {
			continue
		}

		sym.Value = uint64(int64(sym.Value) + delta)

		if err := e.region.WriteAt(recOff, serializeSym(sym)); err != nil {
			return err
		}
	}

	return nil
}

func (e *Elf) patchRelaOffsets(relaSec, target Section, delta int64) error {
	count := int(relaSec.Size / RelaSize)

	for i := 0; i < count; i++ {
		recOff := relaSec.Offset + uint64(i)*RelaSize

		rec, err := e.region.ChunkAt(recOff, RelaSize)
		if err != nil {
			return err
		}

		rela := parseRela(rec.Bytes())
		if !target.ContainsAddr(rela.Offset) {
			continue
		}

		rela.Offset = uint64(int64(rela.Offset) + delta)

		if ELF64_R_TYPE(rela.Info) == R_X86_64_RELATIVE {
			rela.Addend += delta
		}

		if err := e.region.WriteAt(recOff, serializeRela(rela)); err != nil {
			return err
		}
	}

	return nil
}
