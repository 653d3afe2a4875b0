package elf

// Symbol is one decoded symbol table entry.
type Symbol struct {
	Index        int
	NameOff      uint32
	Name         string
	NameResolved bool
	Value        uint64
	Size         uint64
	Info         uint8
	Other        uint8
	Shndx        uint16
}

// Bind returns the binding in the high nibble of st_info.
func (s Symbol) Bind() SymBind { return SymBind(s.Info >> 4) }

// Type returns the symbol type in the low nibble of st_info.
func (s Symbol) Type() SymType { return SymType(s.Info & 0xf) }

// Visibility returns the low two bits of st_other.
func (s Symbol) Visibility() SymVis { return SymVis(s.Other & 0x3) }

// SymbolInfo packs a binding and type back into an st_info byte.
func SymbolInfo(bind SymBind, typ SymType) uint8 {
	return uint8(bind)<<4 | uint8(typ)&0xf
}

// SymbolTable is the decoded content of one SHT_SYMTAB or SHT_DYNSYM section.
type SymbolTable struct {
	Section     *SectionHeader
	Strings     *SectionHeader
	Symbols     []Symbol
	Diagnostics []Diagnostic
}

// entryCount returns how many whole entries of entsize fit in size and
// records a diagnostic when bytes are left over.
func entryCount(s *SectionHeader, entsize uint64, diags *[]Diagnostic) uint64 {
	if s.Entsize != 0 && s.Entsize != entsize {
		*diags = append(*diags, inconsistency(s.Index, s.Off,
			"sh_entsize %d, expected %d", s.Entsize, entsize))
	}
	n := s.Size / entsize
	if rem := s.Size % entsize; rem != 0 {
		*diags = append(*diags, inconsistency(s.Index, s.Off,
			"size %d is not a multiple of entry size %d, ignoring %d trailing bytes", s.Size, entsize, rem))
	}
	return n
}

// DecodeSymbols decodes the symbol table in section idx. Names come from the
// string table named by the section's sh_link; when that table is missing
// or unusable the names stay unresolved.
func DecodeSymbols(c *Container, sections *SectionTable, idx int) (*SymbolTable, error) {
	sec := sections.Section(idx)
	if sec == nil {
		return nil, newDecodeError(KindOutOfBounds, 0, "section index %d outside %d sections", idx, len(sections.Sections))
	}
	t := &SymbolTable{Section: sec}

	var strtab *StringTable
	if link := sections.Section(int(sec.Link)); link != nil && link.Type == SHT_STRTAB {
		if data, err := c.SectionData(link); err == nil {
			t.Strings = link
			strtab = NewStringTable(data)
		}
	}
	if strtab == nil {
		t.Diagnostics = append(t.Diagnostics, unresolvable(sec.Index, sec.Off,
			"sh_link %d does not name a usable string table", sec.Link))
	}

	entsize := c.Layout.SymbolSize()
	n := entryCount(sec, entsize, &t.Diagnostics)
	if err := tableBounds(c, sec.Off, entsize, n); err != nil {
		return nil, err
	}

	t.Symbols = make([]Symbol, 0, n)
	for i := uint64(0); i < n; i++ {
		sym, err := decodeSymbol(c, sec.Off+i*entsize)
		if err != nil {
			return nil, err
		}
		sym.Index = int(i)
		switch {
		case sym.NameOff == 0:
			sym.NameResolved = true
		case strtab != nil:
			if name, ok := strtab.Lookup(sym.NameOff); ok {
				sym.Name = name
				sym.NameResolved = true
			} else {
				t.Diagnostics = append(t.Diagnostics, unresolvable(sec.Index, uint64(sym.NameOff),
					"symbol %d name offset %d outside string table", i, sym.NameOff))
			}
		}
		t.Symbols = append(t.Symbols, sym)
	}
	return t, nil
}

func decodeSymbol(c *Container, off uint64) (Symbol, error) {
	var s Symbol
	f := c.Layout.fields(c.Reader, off)
	s.NameOff = f.word()
	if c.Layout.Class == Class64 {
		s.Info = f.u8()
		s.Other = f.u8()
		s.Shndx = f.half()
		s.Value = f.xword()
		s.Size = f.xword()
	} else {
		s.Value = uint64(f.word())
		s.Size = uint64(f.word())
		s.Info = f.u8()
		s.Other = f.u8()
		s.Shndx = f.half()
	}
	return s, f.err
}
