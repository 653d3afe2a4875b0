package elf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yifengyou/parser-elf/internal/elf/elftest"
)

func decodeSections(t *testing.T, img *elftest.Image) (*Container, *SectionTable) {
	t.Helper()
	c, h := decodeImage(t, img)
	sections, err := DecodeSectionHeaders(c, h)
	require.NoError(t, err)
	return c, sections
}

func TestDecodeSymbols(t *testing.T) {
	for _, is64 := range []bool{false, true} {
		for _, big := range []bool{false, true} {
			img := elftest.Sample(is64, big)
			c, sections := decodeSections(t, img)

			st, err := DecodeSymbols(c, sections, img.SectionIndex(".symtab"))
			require.NoError(t, err)
			assert.Empty(t, st.Diagnostics)
			require.NotNil(t, st.Strings)
			assert.Equal(t, ".strtab", st.Strings.Name)
			require.Len(t, st.Symbols, 5)

			null := st.Symbols[0]
			assert.True(t, null.NameResolved)
			assert.Equal(t, "", null.Name)
			assert.Equal(t, SymBind(0), null.Bind())

			file := st.Symbols[1]
			assert.Equal(t, "main.c", file.Name)
			assert.Equal(t, "STT_FILE", file.Type().String())
			assert.Equal(t, "SHN_ABS", SectionIndexString(file.Shndx))

			main := st.Symbols[2]
			assert.Equal(t, "main", main.Name)
			assert.Equal(t, uint64(0x401000), main.Value)
			assert.Equal(t, uint64(42), main.Size)
			assert.Equal(t, "STB_GLOBAL", main.Bind().String())
			assert.Equal(t, "STT_FUNC", main.Type().String())
			assert.Equal(t, "STV_DEFAULT", main.Visibility().String())
			assert.Equal(t, uint16(1), main.Shndx)

			helper := st.Symbols[3]
			assert.Equal(t, "STB_WEAK", helper.Bind().String())
			assert.Equal(t, "STV_HIDDEN", helper.Visibility().String())
			assert.Equal(t, uint64(0x40102a), helper.Value)

			assert.Equal(t, "_ZN3foo3barEv", st.Symbols[4].Name)
			for i, s := range st.Symbols {
				assert.Equal(t, i, s.Index)
			}
		}
	}
}

func TestSymbolInfoRoundTrip(t *testing.T) {
	for i := 0; i < 256; i++ {
		s := Symbol{Info: uint8(i)}
		assert.Equal(t, uint8(i), SymbolInfo(s.Bind(), s.Type()))
	}
}

func TestDecodeSymbolsTrailingBytes(t *testing.T) {
	img := elftest.New(true, false)
	strtab, offs := elftest.StringTable("only")
	data := img.EncodeSymbols([]elftest.Sym{{}, {Name: offs[0], Info: 0x11}})
	data = append(data, 0xaa, 0xbb, 0xcc)
	img.Sections = []elftest.Section{
		{Name: ".symtab", Type: elftest.SHTSymtab, Data: data, Link: 2, Entsize: 24},
		{Name: ".strtab", Type: elftest.SHTStrtab, Data: strtab},
	}
	c, sections := decodeSections(t, img)

	st, err := DecodeSymbols(c, sections, 1)
	require.NoError(t, err)
	require.Len(t, st.Symbols, 2)
	assert.Equal(t, "only", st.Symbols[1].Name)
	require.Len(t, st.Diagnostics, 1)
	assert.Equal(t, KindFormatInconsistency, st.Diagnostics[0].Kind)
	assert.Contains(t, st.Diagnostics[0].Message, "ignoring 3 trailing bytes")
}

func TestDecodeSymbolsUnresolvedNames(t *testing.T) {
	img := elftest.New(false, false)
	strtab, offs := elftest.StringTable("short")
	data := img.EncodeSymbols([]elftest.Sym{{}, {Name: offs[0]}, {Name: 500}})

	t.Run("bad link", func(t *testing.T) {
		img.Sections = []elftest.Section{
			{Name: ".symtab", Type: elftest.SHTSymtab, Data: data, Link: 9, Entsize: 16},
		}
		c, sections := decodeSections(t, img)

		st, err := DecodeSymbols(c, sections, 1)
		require.NoError(t, err)
		require.Len(t, st.Symbols, 3)
		assert.Nil(t, st.Strings)
		assert.True(t, st.Symbols[0].NameResolved)
		assert.False(t, st.Symbols[1].NameResolved)
		assert.False(t, st.Symbols[2].NameResolved)
		require.Len(t, st.Diagnostics, 1)
		assert.Equal(t, KindUnresolvableReference, st.Diagnostics[0].Kind)
	})

	t.Run("offset past table", func(t *testing.T) {
		img.Sections = []elftest.Section{
			{Name: ".symtab", Type: elftest.SHTSymtab, Data: data, Link: 2, Entsize: 16},
			{Name: ".strtab", Type: elftest.SHTStrtab, Data: strtab},
		}
		c, sections := decodeSections(t, img)

		st, err := DecodeSymbols(c, sections, 1)
		require.NoError(t, err)
		assert.Equal(t, "short", st.Symbols[1].Name)
		assert.False(t, st.Symbols[2].NameResolved)
		assert.Equal(t, uint32(500), st.Symbols[2].NameOff)
		require.Len(t, st.Diagnostics, 1)
		assert.Equal(t, KindUnresolvableReference, st.Diagnostics[0].Kind)
	})
}

func TestDecodeSymbolsErrors(t *testing.T) {
	img := elftest.New(true, false)
	img.Sections = []elftest.Section{
		{Name: ".symtab", Type: elftest.SHTSymtab, Data: make([]byte, 24), Size: 24 * 1000, Entsize: 24},
	}
	c, sections := decodeSections(t, img)

	_, err := DecodeSymbols(c, sections, 1)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	_, err = DecodeSymbols(c, sections, 42)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}
