package elf

// sectionNameToTag maps a section's conventional name to its dynamic-table
// tag, per the System V gABI's customary section/tag pairing.
var sectionNameToTag = map[string]int64{
	".init":          DT_INIT,
	".fini":          DT_FINI,
	".hash":          DT_HASH,
	".strtab":        DT_STRTAB,
	".symtab":        DT_SYMTAB,
	".rela.dyn":      DT_RELA,
	".rela.plt":      DT_JMPREL,
	".init_array":    DT_INIT_ARRAY,
	".fini_array":    DT_FINI_ARRAY,
	".preinit_array": DT_PREINIT_ARRAY,
}

// dPtrTags are tags whose .d_un is interpreted as an address (d_ptr), per
// the gABI's d_ptr/d_val partition of the dynamic table.
var dPtrTags = map[int64]bool{
	DT_HASH:          true,
	DT_STRTAB:        true,
	DT_SYMTAB:        true,
	DT_RELA:          true,
	DT_INIT:          true,
	DT_FINI:          true,
	DT_JMPREL:        true,
	DT_INIT_ARRAY:    true,
	DT_FINI_ARRAY:    true,
	DT_PREINIT_ARRAY: true,
}

// GetSectionTag maps s's resolved name to its conventional dynamic-table
// tag. It returns 0 when there is no mapping, or s has no resolvable name.
func (e *Elf) GetSectionTag(s Section) int64 {
	name, ok := e.GetSectionName(s)
	if !ok {
		return 0
	}

	return sectionNameToTag[name]
}

// IsSectionTagDPtr reports whether tag's .d_un field is interpreted as an
// address (d_ptr) rather than a plain value (d_val).
func IsSectionTagDPtr(tag int64) bool {
	return dPtrTags[tag]
}
