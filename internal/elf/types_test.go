package elf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "ET_DYN", FileType(3).String())
	assert.Equal(t, "ET_UNKNOWN(0xfe00)", FileType(0xfe00).String())
	assert.Equal(t, "EM_AARCH64", Machine(183).String())
	assert.Equal(t, "ELFOSABI_LINUX", OSABI(3).String())
	assert.Equal(t, "PT_GNU_STACK", ProgType(0x6474e551).String())
	assert.Equal(t, "SHT_GNU_HASH", SectionType(0x6ffffff6).String())
	assert.Equal(t, "STB_WEAK", SymBind(2).String())
	assert.Equal(t, "STT_UNKNOWN(0xf)", SymType(15).String())
	assert.Equal(t, "STV_PROTECTED", SymVis(3).String())
}

func TestSectionFlagLetters(t *testing.T) {
	tests := []struct {
		flags SectionFlag
		want  string
	}{
		{0, ""},
		{0x6, "AX"},
		{0x3, "WA"},
		{0x30, "MS"},
		{0x42, "AI"},
		{0x400 | 0x3, "WAT"},
		{0x00100000, "o"},
		{0x10000000, "p"},
		{0x8, "x"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.flags.Letters(), "flags %#x", uint64(tt.flags))
	}
}

func TestSectionIndexString(t *testing.T) {
	assert.Equal(t, "SHN_UNDEF", SectionIndexString(0))
	assert.Equal(t, "SHN_ABS", SectionIndexString(SHN_ABS))
	assert.Equal(t, "SHN_COMMON", SectionIndexString(SHN_COMMON))
	assert.Equal(t, "7", SectionIndexString(7))
}

func TestLayoutSizes(t *testing.T) {
	l32 := Layout{Class: Class32, Data: Data2LSB}
	l64 := Layout{Class: Class64, Data: Data2MSB}

	assert.Equal(t, uint64(52), l32.HeaderSize())
	assert.Equal(t, uint64(64), l64.HeaderSize())
	assert.Equal(t, uint64(32), l32.ProgramHeaderSize())
	assert.Equal(t, uint64(56), l64.ProgramHeaderSize())
	assert.Equal(t, uint64(40), l32.SectionHeaderSize())
	assert.Equal(t, uint64(64), l64.SectionHeaderSize())
	assert.Equal(t, uint64(16), l32.SymbolSize())
	assert.Equal(t, uint64(24), l64.SymbolSize())
	assert.Equal(t, uint64(8), l32.RelocationSize(false))
	assert.Equal(t, uint64(12), l32.RelocationSize(true))
	assert.Equal(t, uint64(16), l64.RelocationSize(false))
	assert.Equal(t, uint64(24), l64.RelocationSize(true))
	assert.Equal(t, "64-bit big-endian", l64.String())
}
