// Package elftest assembles small ELF images in memory for tests.
package elftest

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// Section types and other raw values used by fixtures.
const (
	SHTProgbits = 1
	SHTSymtab   = 2
	SHTStrtab   = 3
	SHTRela     = 4
	SHTNobits   = 8
	SHTRel      = 9
	SHTDynsym   = 11

	ETExec   = 2
	EMX86_64 = 62
	EM386    = 3
)

// Section describes one section of a fixture. Index 0 (null) and the
// trailing .shstrtab are added by Build.
type Section struct {
	Name    string
	Type    uint32
	Flags   uint64
	Addr    uint64
	Data    []byte
	Link    uint32
	Info    uint32
	Align   uint64
	Entsize uint64
	// Size overrides len(Data) when non-zero.
	Size uint64
	// Off overrides the computed data offset when non-zero.
	Off uint64
}

// Segment describes one program header.
type Segment struct {
	Type   uint32
	Flags  uint32
	Off    uint64
	Vaddr  uint64
	Paddr  uint64
	Filesz uint64
	Memsz  uint64
	Align  uint64
}

// Image is an ELF file under construction.
type Image struct {
	Is64      bool
	BigEndian bool
	Type      uint16
	Machine   uint16
	Entry     uint64
	Segments  []Segment
	Sections  []Section

	// Phentsize and Shentsize override the header fields when non-zero.
	Phentsize uint16
	Shentsize uint16
	// Shstrndx overrides the computed section name table index when set.
	Shstrndx *uint16
}

// New returns an empty executable image of the given class and byte order.
func New(is64, bigEndian bool) *Image {
	img := &Image{Is64: is64, BigEndian: bigEndian, Type: ETExec, Machine: EMX86_64}
	if !is64 {
		img.Machine = EM386
	}
	return img
}

// Order returns the image byte order.
func (img *Image) Order() binary.AppendByteOrder {
	if img.BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func (img *Image) pick(size32, size64 int) int {
	if img.Is64 {
		return size64
	}
	return size32
}

// ShstrndxValue is the index Build gives the section name table.
func (img *Image) ShstrndxValue() int {
	return len(img.Sections) + 1
}

// SectionIndex returns the final index of the named user section, or -1.
func (img *Image) SectionIndex(name string) int {
	for i, s := range img.Sections {
		if s.Name == name {
			return i + 1
		}
	}
	return -1
}

// Encoder appends fixed-width fields in one byte order.
type Encoder struct {
	Order binary.AppendByteOrder
	Is64  bool
	Buf   []byte
}

func (e *Encoder) U8(v uint8) { e.Buf = append(e.Buf, v) }

func (e *Encoder) Half(v uint16) { e.Buf = e.Order.AppendUint16(e.Buf, v) }

func (e *Encoder) Word(v uint32) { e.Buf = e.Order.AppendUint32(e.Buf, v) }

func (e *Encoder) Xword(v uint64) { e.Buf = e.Order.AppendUint64(e.Buf, v) }

// Addr appends a class-sized word.
func (e *Encoder) Addr(v uint64) {
	if e.Is64 {
		e.Xword(v)
	} else {
		e.Word(uint32(v))
	}
}

// PadTo appends zero bytes up to off.
func (e *Encoder) PadTo(off uint64) {
	for uint64(len(e.Buf)) < off {
		e.Buf = append(e.Buf, 0)
	}
}

func (img *Image) encoder() *Encoder {
	return &Encoder{Order: img.Order(), Is64: img.Is64}
}

func align8(v uint64) uint64 {
	return (v + 7) &^ 7
}

// Build lays out header, program headers, section data and the section
// header table, in that order.
func (img *Image) Build() []byte {
	names := []byte{0}
	nameOff := func(n string) uint32 {
		if n == "" {
			return 0
		}
		off := uint32(len(names))
		names = append(names, n...)
		names = append(names, 0)
		return off
	}

	secs := append([]Section{{}}, img.Sections...)
	nameOffs := make([]uint32, 0, len(secs)+1)
	for _, s := range secs {
		nameOffs = append(nameOffs, nameOff(s.Name))
	}
	nameOffs = append(nameOffs, nameOff(".shstrtab"))
	secs = append(secs, Section{Name: ".shstrtab", Type: SHTStrtab, Data: names, Align: 1})

	ehsize := uint64(img.pick(52, 64))
	phentsize := uint64(img.pick(32, 56))
	shentsize := uint64(img.pick(40, 64))

	var phoff uint64
	if len(img.Segments) > 0 {
		phoff = ehsize
	}
	cursor := ehsize + uint64(len(img.Segments))*phentsize
	offs := make([]uint64, len(secs))
	for i := 1; i < len(secs); i++ {
		cursor = align8(cursor)
		offs[i] = cursor
		cursor += uint64(len(secs[i].Data))
	}
	shoff := align8(cursor)

	e := img.encoder()
	class, data := byte(1), byte(1)
	if img.Is64 {
		class = 2
	}
	if img.BigEndian {
		data = 2
	}
	e.Buf = append(e.Buf, 0x7f, 'E', 'L', 'F', class, data, 1, 0)
	e.PadTo(16)

	hdrPhentsize, hdrShentsize := uint16(phentsize), uint16(shentsize)
	if img.Phentsize != 0 {
		hdrPhentsize = img.Phentsize
	}
	if img.Shentsize != 0 {
		hdrShentsize = img.Shentsize
	}
	shstrndx := uint16(len(secs) - 1)
	if img.Shstrndx != nil {
		shstrndx = *img.Shstrndx
	}

	e.Half(img.Type)
	e.Half(img.Machine)
	e.Word(1)
	e.Addr(img.Entry)
	e.Addr(phoff)
	e.Addr(shoff)
	e.Word(0)
	e.Half(uint16(ehsize))
	e.Half(hdrPhentsize)
	e.Half(uint16(len(img.Segments)))
	e.Half(hdrShentsize)
	e.Half(uint16(len(secs)))
	e.Half(shstrndx)

	for _, p := range img.Segments {
		e.Word(p.Type)
		if img.Is64 {
			e.Word(p.Flags)
			e.Xword(p.Off)
			e.Xword(p.Vaddr)
			e.Xword(p.Paddr)
			e.Xword(p.Filesz)
			e.Xword(p.Memsz)
			e.Xword(p.Align)
		} else {
			e.Word(uint32(p.Off))
			e.Word(uint32(p.Vaddr))
			e.Word(uint32(p.Paddr))
			e.Word(uint32(p.Filesz))
			e.Word(uint32(p.Memsz))
			e.Word(p.Flags)
			e.Word(uint32(p.Align))
		}
	}

	for i := 1; i < len(secs); i++ {
		e.PadTo(offs[i])
		e.Buf = append(e.Buf, secs[i].Data...)
	}
	e.PadTo(shoff)

	for i, s := range secs {
		off, size := offs[i], uint64(len(s.Data))
		if s.Off != 0 {
			off = s.Off
		}
		if s.Size != 0 {
			size = s.Size
		}
		e.Word(nameOffs[i])
		e.Word(s.Type)
		e.Addr(s.Flags)
		e.Addr(s.Addr)
		e.Addr(off)
		e.Addr(size)
		e.Word(s.Link)
		e.Word(s.Info)
		e.Addr(s.Align)
		e.Addr(s.Entsize)
	}
	return e.Buf
}

// Sym is one symbol table entry for EncodeSymbols.
type Sym struct {
	Name  uint32
	Value uint64
	Size  uint64
	Info  uint8
	Other uint8
	Shndx uint16
}

// EncodeSymbols encodes symbol entries in the image's class layout.
func (img *Image) EncodeSymbols(syms []Sym) []byte {
	e := img.encoder()
	for _, s := range syms {
		e.Word(s.Name)
		if img.Is64 {
			e.U8(s.Info)
			e.U8(s.Other)
			e.Half(s.Shndx)
			e.Xword(s.Value)
			e.Xword(s.Size)
		} else {
			e.Word(uint32(s.Value))
			e.Word(uint32(s.Size))
			e.U8(s.Info)
			e.U8(s.Other)
			e.Half(s.Shndx)
		}
	}
	return e.Buf
}

// Rel is one relocation entry for EncodeRelocations.
type Rel struct {
	Off    uint64
	Info   uint64
	Addend int64
}

// EncodeRelocations encodes relocation entries, with the addend field when
// withAddend is set.
func (img *Image) EncodeRelocations(rels []Rel, withAddend bool) []byte {
	e := img.encoder()
	for _, r := range rels {
		e.Addr(r.Off)
		e.Addr(r.Info)
		if withAddend {
			e.Addr(uint64(r.Addend))
		}
	}
	return e.Buf
}

// StringTable joins names into a NUL-separated table starting with an
// empty string, returning the table and each name's offset.
func StringTable(names ...string) ([]byte, []uint32) {
	buf := []byte{0}
	offs := make([]uint32, len(names))
	for i, n := range names {
		offs[i] = uint32(len(buf))
		buf = append(buf, n...)
		buf = append(buf, 0)
	}
	return buf, offs
}

// Sample returns an image with a program header, .text, .symtab, .strtab,
// .rela.text and a vendor-typed section.
func Sample(is64, bigEndian bool) *Image {
	img := New(is64, bigEndian)
	img.Entry = 0x401000

	strtab, offs := StringTable("main.c", "main", "helper", "_ZN3foo3barEv")
	syms := []Sym{
		{},
		{Name: offs[0], Info: 0x04, Shndx: 0xfff1},
		{Name: offs[1], Value: 0x401000, Size: 42, Info: 0x12, Shndx: 1},
		{Name: offs[2], Value: 0x40102a, Size: 8, Info: 0x22, Other: 2, Shndx: 1},
		{Name: offs[3], Value: 0x401032, Size: 4, Info: 0x12, Shndx: 1},
	}
	symsize := uint64(img.pick(16, 24))

	var relInfo uint64 = 2<<8 | 2
	if is64 {
		relInfo = 2<<32 | 2
	}
	rels := []Rel{{Off: 0x10, Info: relInfo, Addend: -4}}
	relsize := uint64(img.pick(12, 24))

	img.Segments = []Segment{{Type: 1, Flags: 5, Vaddr: 0x400000, Paddr: 0x400000, Filesz: 0x200, Memsz: 0x200, Align: 0x1000}}
	img.Sections = []Section{
		{Name: ".text", Type: SHTProgbits, Flags: 0x6, Addr: 0x401000, Data: []byte("\x55\x48\x89\xe5hello world\x00\xc3"), Align: 16},
		{Name: ".symtab", Type: SHTSymtab, Data: img.EncodeSymbols(syms), Link: 3, Info: 2, Align: 8, Entsize: symsize},
		{Name: ".strtab", Type: SHTStrtab, Data: strtab, Align: 1},
		{Name: ".rela.text", Type: SHTRela, Flags: 0x40, Data: img.EncodeRelocations(rels, true), Link: 2, Info: 1, Align: 8, Entsize: relsize},
		{Name: ".vendor", Type: 0x6fff4700, Data: []byte{0x00, 0x01, 0x7f, 'o', 'k'}, Align: 1},
	}
	return img
}

// WriteFile writes data to a file in a temporary directory and returns its
// path.
func WriteFile(t testing.TB, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write test binary: %v", err)
	}
	return path
}
