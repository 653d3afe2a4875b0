package elf

// Relocation is one decoded SHT_RELA or SHT_REL entry.
type Relocation struct {
	Index     int
	Off       uint64
	Info      uint64
	Sym       uint32
	Type      uint32
	Addend    int64
	HasAddend bool
}

// RelocationTable is the decoded content of one relocation section.
type RelocationTable struct {
	Section     *SectionHeader
	Relocations []Relocation
	Diagnostics []Diagnostic
}

// SplitRelocationInfo splits r_info into symbol index and relocation type.
// ELF64 keeps the type in the low 32 bits, ELF32 in the low 8 bits.
func SplitRelocationInfo(class Class, info uint64) (sym, typ uint32) {
	if class == Class64 {
		return uint32(info >> 32), uint32(info)
	}
	return uint32(info >> 8), uint32(info & 0xff)
}

// RelocationInfo is the inverse of SplitRelocationInfo.
func RelocationInfo(class Class, sym, typ uint32) uint64 {
	if class == Class64 {
		return uint64(sym)<<32 | uint64(typ)
	}
	return uint64(sym)<<8 | uint64(typ&0xff)
}

// DecodeRelocations decodes the relocation section idx. withAddend selects
// the SHT_RELA record layout; otherwise entries carry no addend field.
func DecodeRelocations(c *Container, sections *SectionTable, idx int, withAddend bool) (*RelocationTable, error) {
	sec := sections.Section(idx)
	if sec == nil {
		return nil, newDecodeError(KindOutOfBounds, 0, "section index %d outside %d sections", idx, len(sections.Sections))
	}
	t := &RelocationTable{Section: sec}

	entsize := c.Layout.RelocationSize(withAddend)
	n := entryCount(sec, entsize, &t.Diagnostics)
	if err := tableBounds(c, sec.Off, entsize, n); err != nil {
		return nil, err
	}

	t.Relocations = make([]Relocation, 0, n)
	for i := uint64(0); i < n; i++ {
		f := c.Layout.fields(c.Reader, sec.Off+i*entsize)
		r := Relocation{Index: int(i), HasAddend: withAddend}
		r.Off = f.addr()
		r.Info = f.addr()
		if withAddend {
			if c.Layout.Class == Class64 {
				r.Addend = int64(f.xword())
			} else {
				r.Addend = int64(int32(f.word()))
			}
		}
		if f.err != nil {
			return nil, f.err
		}
		r.Sym, r.Type = SplitRelocationInfo(c.Layout.Class, r.Info)
		t.Relocations = append(t.Relocations, r)
	}
	return t, nil
}
