package elf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yifengyou/parser-elf/internal/elf/elftest"
)

func TestDecodeSectionHeaders(t *testing.T) {
	for _, is64 := range []bool{false, true} {
		for _, big := range []bool{false, true} {
			img := elftest.Sample(is64, big)
			c, h := decodeImage(t, img)

			table, err := DecodeSectionHeaders(c, h)
			require.NoError(t, err)
			assert.Empty(t, table.Diagnostics)
			require.Len(t, table.Sections, len(img.Sections)+2)

			null := table.Section(0)
			assert.Equal(t, SHT_NULL, null.Type)
			assert.Equal(t, "", null.Name)
			assert.True(t, null.NameResolved)

			names := make([]string, 0, len(table.Sections))
			for i, s := range table.Sections {
				assert.Equal(t, i, s.Index)
				names = append(names, s.Name)
			}
			assert.Equal(t, []string{"", ".text", ".symtab", ".strtab", ".rela.text", ".vendor", ".shstrtab"}, names)

			text := table.Section(img.SectionIndex(".text"))
			assert.Equal(t, SHT_PROGBITS, text.Type)
			assert.Equal(t, uint64(0x401000), text.Addr)
			assert.Equal(t, uint64(16), text.Addralign)
			assert.Equal(t, "AX", text.Flags.Letters())

			symtab := table.Section(img.SectionIndex(".symtab"))
			assert.Equal(t, uint32(img.SectionIndex(".strtab")), symtab.Link)
			assert.Equal(t, c.Layout.SymbolSize(), symtab.Entsize)

			assert.Len(t, table.ByType(SHT_STRTAB), 2)
			assert.Nil(t, table.Section(-1))
			assert.Nil(t, table.Section(len(table.Sections)))
		}
	}
}

func TestDecodeSectionHeadersUnresolvedNames(t *testing.T) {
	tests := []struct {
		name     string
		shstrndx uint16
	}{
		{"index past section array", 200},
		{"index of non string table", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := elftest.Sample(true, false)
			idx := tt.shstrndx
			img.Shstrndx = &idx
			c, h := decodeImage(t, img)

			table, err := DecodeSectionHeaders(c, h)
			require.NoError(t, err)
			require.Len(t, table.Sections, len(img.Sections)+2)

			for _, s := range table.Sections {
				assert.False(t, s.NameResolved)
				assert.Equal(t, "", s.Name)
			}
			text := table.Section(1)
			assert.Equal(t, "1", text.DisplayName())
			require.NotEmpty(t, table.Diagnostics)
			assert.Equal(t, KindUnresolvableReference, table.Diagnostics[0].Kind)
		})
	}
}

func TestDecodeSectionHeadersNameOffsetOutOfRange(t *testing.T) {
	img := elftest.New(false, true)
	img.Sections = []elftest.Section{{Name: ".data", Type: elftest.SHTProgbits, Data: []byte{1, 2, 3}}}
	data := img.Build()
	_, h := decodeImage(t, img)

	// sh_name of section 1 now points far past the name table.
	off := h.Shoff + uint64(h.Shentsize)
	copy(data[off:off+4], []byte{0, 0, 0x10, 0})
	c, err := Identify(data)
	require.NoError(t, err)

	table, err := DecodeSectionHeaders(c, h)
	require.NoError(t, err)
	assert.False(t, table.Section(1).NameResolved)
	assert.Equal(t, "4096", table.Section(1).DisplayName())
	assert.True(t, table.Section(2).NameResolved)
	assert.Equal(t, ".shstrtab", table.Section(2).Name)
}

func TestDecodeSectionHeadersEmptyAndTruncated(t *testing.T) {
	c, h := decodeImage(t, elftest.New(true, false))

	h.Shnum = 0
	table, err := DecodeSectionHeaders(c, h)
	require.NoError(t, err)
	assert.Empty(t, table.Sections)

	h.Shnum = 500
	_, err = DecodeSectionHeaders(c, h)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestSectionDataNobits(t *testing.T) {
	c, _ := decodeImage(t, elftest.New(true, false))

	data, err := c.SectionData(&SectionHeader{Type: SHT_NOBITS, Off: 1 << 40, Size: 1 << 20})
	require.NoError(t, err)
	assert.Empty(t, data)

	_, err = c.SectionData(&SectionHeader{Type: SHT_PROGBITS, Off: 1 << 40, Size: 16})
	assert.ErrorIs(t, err, ErrOutOfBounds)
}
