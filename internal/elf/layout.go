package elf

import (
	"encoding/binary"
	"fmt"
)

// Class is the EI_CLASS identification byte.
type Class byte

const (
	ClassNone Class = 0
	Class32   Class = 1
	Class64   Class = 2
)

func (c Class) String() string {
	switch c {
	case ClassNone:
		return "ELFCLASSNONE"
	case Class32:
		return "ELFCLASS32"
	case Class64:
		return "ELFCLASS64"
	}
	return fmt.Sprintf("ELFCLASS_UNKNOWN(%d)", byte(c))
}

// Bits returns 32 or 64, or 0 for an unrecognized class.
func (c Class) Bits() int {
	switch c {
	case Class32:
		return 32
	case Class64:
		return 64
	}
	return 0
}

// Data is the EI_DATA identification byte.
type Data byte

const (
	DataNone Data = 0
	Data2LSB Data = 1
	Data2MSB Data = 2
)

func (d Data) String() string {
	switch d {
	case DataNone:
		return "ELFDATANONE"
	case Data2LSB:
		return "ELFDATA2LSB"
	case Data2MSB:
		return "ELFDATA2MSB"
	}
	return fmt.Sprintf("ELFDATA_UNKNOWN(%d)", byte(d))
}

// Endianness returns "little" or "big".
func (d Data) Endianness() string {
	if d == Data2MSB {
		return "big"
	}
	return "little"
}

// Layout fixes the field widths and byte order used by every decoder.
type Layout struct {
	Class Class
	Data  Data
}

// ByteOrder returns the binary.ByteOrder matching the data encoding.
func (l Layout) ByteOrder() binary.ByteOrder {
	if l.Data == Data2MSB {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// AddrSize is the width of addresses, offsets and class-sized words.
func (l Layout) AddrSize() int {
	if l.Class == Class64 {
		return 8
	}
	return 4
}

// On-disk record sizes per class.
const (
	identSize = 16

	ehdrSize32 = 52
	ehdrSize64 = 64
	phdrSize32 = 32
	phdrSize64 = 56
	shdrSize32 = 40
	shdrSize64 = 64
	symSize32  = 16
	symSize64  = 24
	relSize32  = 8
	relSize64  = 16
	relaSize32 = 12
	relaSize64 = 24
)

func (l Layout) pick(size32, size64 uint64) uint64 {
	if l.Class == Class64 {
		return size64
	}
	return size32
}

// HeaderSize is the size of the ELF file header.
func (l Layout) HeaderSize() uint64 { return l.pick(ehdrSize32, ehdrSize64) }

// ProgramHeaderSize is the class-expected program header entry size.
func (l Layout) ProgramHeaderSize() uint64 { return l.pick(phdrSize32, phdrSize64) }

// SectionHeaderSize is the class-expected section header entry size.
func (l Layout) SectionHeaderSize() uint64 { return l.pick(shdrSize32, shdrSize64) }

// SymbolSize is the size of one symbol table entry.
func (l Layout) SymbolSize() uint64 { return l.pick(symSize32, symSize64) }

// RelocationSize is the size of one relocation entry, with or without addend.
func (l Layout) RelocationSize(withAddend bool) uint64 {
	if withAddend {
		return l.pick(relaSize32, relaSize64)
	}
	return l.pick(relSize32, relSize64)
}

func (l Layout) String() string {
	return fmt.Sprintf("%d-bit %s-endian", l.Class.Bits(), l.Data.Endianness())
}
