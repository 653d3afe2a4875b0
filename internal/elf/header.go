package elf

// FileHeader is the decoded ELF file header.
type FileHeader struct {
	Ident     [identSize]byte
	Type      FileType
	Machine   Machine
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

// DecodeHeader decodes the file header using the container's layout.
func DecodeHeader(c *Container) (*FileHeader, error) {
	if c.Size() < c.Layout.HeaderSize() {
		return nil, newDecodeError(KindTruncatedHeader, 0,
			"%s header needs %d bytes, file has %d", c.Layout.Class, c.Layout.HeaderSize(), c.Size())
	}

	h := &FileHeader{Ident: c.Ident}
	f := c.Layout.fields(c.Reader, identSize)
	h.Type = FileType(f.half())
	h.Machine = Machine(f.half())
	h.Version = f.word()
	h.Entry = f.addr()
	h.Phoff = f.addr()
	h.Shoff = f.addr()
	h.Flags = f.word()
	h.Ehsize = f.half()
	h.Phentsize = f.half()
	h.Phnum = f.half()
	h.Shentsize = f.half()
	h.Shnum = f.half()
	h.Shstrndx = f.half()
	if f.err != nil {
		return nil, f.err
	}
	return h, nil
}

// Class returns the class recorded in the identification bytes.
func (h *FileHeader) Class() Class { return Class(h.Ident[eiClass]) }

// Data returns the data encoding recorded in the identification bytes.
func (h *FileHeader) Data() Data { return Data(h.Ident[eiData]) }

// tableBounds checks that a table of num entries of entsize bytes at off lies
// inside the container.
func tableBounds(c *Container, off, entsize, num uint64) error {
	size := entsize * num
	end := off + size
	if end < off || end > c.Size() {
		return newDecodeError(KindOutOfBounds, off,
			"table of %d x %d bytes exceeds file size %d", num, entsize, c.Size())
	}
	return nil
}
