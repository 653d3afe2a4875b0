package elf

// ProgramHeader is one segment descriptor.
type ProgramHeader struct {
	Type   ProgType
	Flags  uint32
	Off    uint64
	Vaddr  uint64
	Paddr  uint64
	Filesz uint64
	Memsz  uint64
	Align  uint64
}

// ProgramTable is the decoded program header table.
type ProgramTable struct {
	Entries     []ProgramHeader
	Diagnostics []Diagnostic
}

// DecodeProgramHeaders decodes the phnum segment descriptors at phoff.
// A phentsize different from the class-expected size is reported and the
// entries are still read with the class layout, stepping by phentsize.
func DecodeProgramHeaders(c *Container, h *FileHeader) (*ProgramTable, error) {
	t := &ProgramTable{}
	if h.Phnum == 0 {
		return t, nil
	}

	want := c.Layout.ProgramHeaderSize()
	stride := uint64(h.Phentsize)
	if stride != want {
		t.Diagnostics = append(t.Diagnostics, inconsistency(-1, h.Phoff,
			"program header entry size %d, expected %d for %s", h.Phentsize, want, c.Layout.Class))
		if stride < want {
			stride = want
		}
	}
	if err := tableBounds(c, h.Phoff, stride, uint64(h.Phnum)); err != nil {
		return nil, err
	}

	t.Entries = make([]ProgramHeader, 0, h.Phnum)
	for i := uint64(0); i < uint64(h.Phnum); i++ {
		p, err := decodeProgramHeader(c, h.Phoff+i*stride)
		if err != nil {
			return nil, err
		}
		t.Entries = append(t.Entries, p)
	}
	return t, nil
}

func decodeProgramHeader(c *Container, off uint64) (ProgramHeader, error) {
	var p ProgramHeader
	f := c.Layout.fields(c.Reader, off)
	p.Type = ProgType(f.word())
	if c.Layout.Class == Class64 {
		p.Flags = f.word()
		p.Off = f.xword()
		p.Vaddr = f.xword()
		p.Paddr = f.xword()
		p.Filesz = f.xword()
		p.Memsz = f.xword()
		p.Align = f.xword()
	} else {
		p.Off = uint64(f.word())
		p.Vaddr = uint64(f.word())
		p.Paddr = uint64(f.word())
		p.Filesz = uint64(f.word())
		p.Memsz = uint64(f.word())
		p.Flags = f.word()
		p.Align = uint64(f.word())
	}
	return p, f.err
}

// FlagString renders p_flags as R/W/E letters.
func (p ProgramHeader) FlagString() string {
	b := []byte{' ', ' ', ' '}
	if p.Flags&0x4 != 0 {
		b[0] = 'R'
	}
	if p.Flags&0x2 != 0 {
		b[1] = 'W'
	}
	if p.Flags&0x1 != 0 {
		b[2] = 'E'
	}
	return string(b)
}
