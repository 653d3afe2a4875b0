package elf

import "fmt"

// SectionHeader is one section descriptor. Name holds the resolved name, or
// is empty with NameResolved false when the name table was unusable.
type SectionHeader struct {
	Index        int
	NameOff      uint32
	Name         string
	NameResolved bool
	Type         SectionType
	Flags        SectionFlag
	Addr         uint64
	Off          uint64
	Size         uint64
	Link         uint32
	Info         uint32
	Addralign    uint64
	Entsize      uint64
}

// DisplayName returns the resolved name or the raw sh_name offset.
func (s *SectionHeader) DisplayName() string {
	if s.NameResolved {
		return s.Name
	}
	return fmt.Sprintf("%d", s.NameOff)
}

// SectionTable is the ordered section header table. Index 0 is the
// reserved null section whenever shnum is non-zero.
type SectionTable struct {
	Sections    []*SectionHeader
	Diagnostics []Diagnostic
}

// Section returns the section at idx, or nil when idx is out of range.
func (t *SectionTable) Section(idx int) *SectionHeader {
	if idx < 0 || idx >= len(t.Sections) {
		return nil
	}
	return t.Sections[idx]
}

// ByType returns the sections of the given type in table order.
func (t *SectionTable) ByType(typ SectionType) []*SectionHeader {
	var out []*SectionHeader
	for _, s := range t.Sections {
		if s.Type == typ {
			out = append(out, s)
		}
	}
	return out
}

// DecodeSectionHeaders decodes the shnum descriptors at shoff and resolves
// their names through section shstrndx.
func DecodeSectionHeaders(c *Container, h *FileHeader) (*SectionTable, error) {
	t := &SectionTable{}
	if h.Shnum == 0 {
		return t, nil
	}

	want := c.Layout.SectionHeaderSize()
	stride := uint64(h.Shentsize)
	if stride != want {
		t.Diagnostics = append(t.Diagnostics, inconsistency(-1, h.Shoff,
			"section header entry size %d, expected %d for %s", h.Shentsize, want, c.Layout.Class))
		if stride < want {
			stride = want
		}
	}
	if err := tableBounds(c, h.Shoff, stride, uint64(h.Shnum)); err != nil {
		return nil, err
	}

	t.Sections = make([]*SectionHeader, 0, h.Shnum)
	for i := 0; i < int(h.Shnum); i++ {
		s, err := decodeSectionHeader(c, h.Shoff+uint64(i)*stride)
		if err != nil {
			return nil, err
		}
		s.Index = i
		t.Sections = append(t.Sections, s)
	}

	t.resolveNames(c, int(h.Shstrndx))
	return t, nil
}

func decodeSectionHeader(c *Container, off uint64) (*SectionHeader, error) {
	s := &SectionHeader{}
	f := c.Layout.fields(c.Reader, off)
	s.NameOff = f.word()
	s.Type = SectionType(f.word())
	s.Flags = SectionFlag(f.addr())
	s.Addr = f.addr()
	s.Off = f.addr()
	s.Size = f.addr()
	s.Link = f.word()
	s.Info = f.word()
	s.Addralign = f.addr()
	s.Entsize = f.addr()
	return s, f.err
}

// resolveNames fills in section names from the section-name string table.
// An unusable table leaves every name unresolved.
func (t *SectionTable) resolveNames(c *Container, shstrndx int) {
	names := t.Section(shstrndx)
	if names == nil {
		t.Diagnostics = append(t.Diagnostics, unresolvable(-1, 0,
			"section name table index %d outside %d sections", shstrndx, len(t.Sections)))
		return
	}
	if names.Type != SHT_STRTAB {
		t.Diagnostics = append(t.Diagnostics, unresolvable(shstrndx, names.Off,
			"section name table has type %s", names.Type))
		return
	}
	data, err := c.Reader.Bytes(names.Off, names.Size)
	if err != nil {
		t.Diagnostics = append(t.Diagnostics, unresolvable(shstrndx, names.Off,
			"section name table lies outside the file"))
		return
	}

	strtab := NewStringTable(data)
	for _, s := range t.Sections {
		name, ok := strtab.Lookup(s.NameOff)
		if !ok {
			t.Diagnostics = append(t.Diagnostics, unresolvable(s.Index, uint64(s.NameOff),
				"name offset %d outside section name table of %d bytes", s.NameOff, len(data)))
			continue
		}
		s.Name = name
		s.NameResolved = true
	}
}

// SectionData returns the section's bytes. SHT_NOBITS sections occupy no file
// space and yield an empty slice.
func (c *Container) SectionData(s *SectionHeader) ([]byte, error) {
	if s.Type == SHT_NOBITS {
		return nil, nil
	}
	return c.Reader.Bytes(s.Off, s.Size)
}
