package report

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yifengyou/parser-elf/internal/elf"
	"github.com/yifengyou/parser-elf/internal/elf/elftest"
	"github.com/yifengyou/parser-elf/internal/utils"
)

func newTestRenderer(opts Options) (*Renderer, *bytes.Buffer) {
	var logs bytes.Buffer
	logger := utils.NewLogger(utils.LoggerConfig{
		Level:  utils.LogLevelDebug,
		Format: utils.LogFormatText,
		Output: &logs,
	})
	return NewRenderer(opts, logger), &logs
}

func sampleContainer(t *testing.T, is64, big bool) *elf.Container {
	t.Helper()
	c, err := elf.Identify(elftest.Sample(is64, big).Build())
	require.NoError(t, err)
	return c
}

func containsLine(lines Lines, substr string) bool {
	for _, l := range lines {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

func TestInfo(t *testing.T) {
	r, logs := newTestRenderer(DefaultOptions())

	out, err := r.Info(sampleContainer(t, true, false))
	require.NoError(t, err)
	assert.Empty(t, logs.String())

	assert.Equal(t, "ELF Header:", out[0])
	assert.Equal(t, "ei_mag: [127, 69, 76, 70]", out[1])
	assert.Equal(t, "ei_class: ELFCLASS64", out[2])
	assert.Equal(t, "ei_data: ELFDATA2LSB", out[3])
	assert.Contains(t, out, "e_type:ET_EXEC # Type")
	assert.Contains(t, out, "e_machine:EM_X86_64 # Machine architecture")
	assert.Contains(t, out, "e_entry:0x401000 # Entry point address")
	assert.Contains(t, out, "e_shnum:7 # Number of section headers")
	assert.Contains(t, out, "e_shstrndx:6 # Section header string table index")
	assert.Contains(t, out, "ELF all section:")
	assert.True(t, containsLine(out, "p_type:PT_LOAD"))
	assert.True(t, containsLine(out, "p_flags:5   p_align:0X0000000000001000 flags:R E"))
	assert.True(t, containsLine(out, "-> parse name:.rela.text"))
	assert.True(t, containsLine(out, "sh_type:SHT_UNKNOWN(0x6fff4700)"))
	assert.True(t, containsLine(out, "flags:AX"))
	assert.Equal(t, Separator, out[len(out)-1])
	assert.Len(t, Separator, 128)
}

func TestInfoBigEndian32(t *testing.T) {
	r, _ := newTestRenderer(DefaultOptions())

	out, err := r.Info(sampleContainer(t, false, true))
	require.NoError(t, err)
	assert.Equal(t, "ei_class: ELFCLASS32", out[2])
	assert.Equal(t, "ei_data: ELFDATA2MSB", out[3])
	assert.Contains(t, out, "e_machine:EM_386 # Machine architecture")
}

func TestInfoTruncatedSectionTable(t *testing.T) {
	data := elftest.Sample(true, false).Build()
	c, err := elf.Identify(data[:len(data)-10])
	require.NoError(t, err)

	r, _ := newTestRenderer(DefaultOptions())
	out, err := r.Info(c)
	require.Error(t, err)
	assert.ErrorIs(t, err, elf.ErrOutOfBounds)
	// The header block is kept.
	assert.Contains(t, out, "ELF Header:")
}

func TestInfoBrokenProgramHeaderTable(t *testing.T) {
	data := elftest.Sample(true, false).Build()
	// e_phoff far past the end of the file.
	binary.LittleEndian.PutUint64(data[32:40], 1<<40)
	c, err := elf.Identify(data)
	require.NoError(t, err)

	r, logs := newTestRenderer(DefaultOptions())
	out, err := r.Info(c)
	require.NoError(t, err)

	assert.Contains(t, out, "ELF Header:")
	assert.Contains(t, out, "ELF Program header table:")
	assert.True(t, containsLine(out, "program header table: read out of bounds"))
	assert.False(t, containsLine(out, "p_type:"))
	assert.Contains(t, out, "ELF all section:")
	assert.Contains(t, out, "ELF section header table:")
	assert.True(t, containsLine(out, "-> parse name:.symtab"))
	assert.True(t, containsLine(out, "flags:AX"))
	assert.Contains(t, logs.String(), "program header table")
}

func TestInfoBrokenProgramAndSectionTables(t *testing.T) {
	data := elftest.Sample(true, false).Build()
	binary.LittleEndian.PutUint64(data[32:40], 1<<40)
	binary.LittleEndian.PutUint64(data[40:48], 1<<40)
	c, err := elf.Identify(data)
	require.NoError(t, err)

	r, _ := newTestRenderer(DefaultOptions())
	out, err := r.Info(c)
	require.Error(t, err)
	assert.ErrorIs(t, err, elf.ErrOutOfBounds)
	assert.Contains(t, err.Error(), "program header table")
	assert.Contains(t, err.Error(), "section header table")
	assert.Contains(t, out, "ELF Program header table:")
	assert.NotContains(t, out, "ELF section header table:")
}

func TestSymbol(t *testing.T) {
	r, _ := newTestRenderer(DefaultOptions())

	out, err := r.Symbol(sampleContainer(t, true, false))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out[0], "-> parse name:.symtab"))
	assert.True(t, containsLine(out, "entry number 5"))
	assert.True(t, containsLine(out, "symbol name:main st_name:"))
	assert.True(t, containsLine(out, "st_value: 0x401000 st_size:42 st_other:STV_DEFAULT bind:STB_GLOBAL sym_type:STT_FUNC st_shndx:1"))
	assert.True(t, containsLine(out, "st_other:STV_HIDDEN bind:STB_WEAK"))
	assert.True(t, containsLine(out, "sym_type:STT_FILE st_shndx:SHN_ABS"))
	assert.True(t, containsLine(out, "symbol name:_ZN3foo3barEv"))
	assert.Equal(t, Separator, out[len(out)-1])
}

func TestSymbolDemangle(t *testing.T) {
	opts := DefaultOptions()
	opts.Demangle = true
	r, _ := newTestRenderer(opts)

	out, err := r.Symbol(sampleContainer(t, false, false))
	require.NoError(t, err)
	assert.True(t, containsLine(out, "symbol name:foo::bar() st_name:"))
	assert.True(t, containsLine(out, "symbol name:main st_name:"))
}

func TestStringTables(t *testing.T) {
	r, _ := newTestRenderer(DefaultOptions())

	out, err := r.StringTables(sampleContainer(t, true, true))
	require.NoError(t, err)
	assert.True(t, containsLine(out, "-> parse name:.strtab"))
	assert.True(t, containsLine(out, "-> parse name:.shstrtab"))
	assert.Contains(t, out, "str from section .strtab SHT_STRTAB : 'main.c'")
	assert.Contains(t, out, "str from section .strtab SHT_STRTAB : 'helper'")
	assert.Contains(t, out, "str from section .shstrtab SHT_STRTAB : '.rela.text'")
	assert.True(t, containsLine(out, "00000000: 00 6d 61 69 6e 2e 63 00"))
}

func TestStringTablesStrictFallsBackToDump(t *testing.T) {
	img := elftest.New(true, false)
	img.Sections = []elftest.Section{
		{Name: ".strtab", Type: elftest.SHTStrtab, Data: []byte("\x00good\x00bad\xff\x00")},
	}
	c, err := elf.Identify(img.Build())
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.StringMode = elf.Strict
	r, logs := newTestRenderer(opts)

	out, err := r.StringTables(c)
	require.NoError(t, err)
	assert.Contains(t, out, "str from section .strtab SHT_STRTAB : 'good'")
	assert.Contains(t, out, "str from section .strtab SHT_STRTAB : 'bad'")
	assert.Contains(t, logs.String(), "section decode failed")

	r, _ = newTestRenderer(DefaultOptions())
	out, err = r.StringTables(c)
	require.NoError(t, err)
	assert.Contains(t, out, "str from section .strtab SHT_STRTAB : 'bad�'")
}

func TestSections(t *testing.T) {
	r, _ := newTestRenderer(DefaultOptions())

	out, err := r.Sections(sampleContainer(t, true, false))
	require.NoError(t, err)
	assert.Equal(t, "ELF all section:", out[0])
	assert.Contains(t, out, "-> parse name:.vendor sh_name:34 sh_type:SHT_UNKNOWN(0x6fff4700)")
	assert.True(t, containsLine(out, "00000000: 00 01 7f 6f 6b"))
	assert.True(t, containsLine(out, "size:5[0x5] entry number 2"))
	assert.Contains(t, out, "r_offset: 0x10 r_info: 0x200000002 r_addend: -0x4 r_info_sym: 0x2 r_info_type: 0x2 ")
	assert.True(t, containsLine(out, "str from section .text SHT_PROGBITS : 'UH"))
}

func TestSectionsLogsDiagnostics(t *testing.T) {
	img := elftest.New(true, false)
	syms := img.EncodeSymbols([]elftest.Sym{{}, {Name: 1}})
	img.Sections = []elftest.Section{
		{Name: ".symtab", Type: elftest.SHTSymtab, Data: append(syms, 1), Link: 7, Entsize: 24},
	}
	c, err := elf.Identify(img.Build())
	require.NoError(t, err)

	r, logs := newTestRenderer(DefaultOptions())
	out, err := r.Sections(c)
	require.NoError(t, err)
	assert.True(t, containsLine(out, "symbol name:<1> st_name:1"))
	assert.Contains(t, logs.String(), "ignoring 1 trailing bytes")
	assert.Contains(t, logs.String(), "component=elf")
}

func TestRendererErrors(t *testing.T) {
	data := elftest.Sample(false, false).Build()
	c, err := elf.Identify(data[:30])
	require.NoError(t, err)

	r, _ := newTestRenderer(DefaultOptions())
	for name, render := range map[string]func(*elf.Container) (Lines, error){
		"info":     r.Info,
		"symbol":   r.Symbol,
		"strtab":   r.StringTables,
		"sections": r.Sections,
	} {
		_, err := render(c)
		assert.ErrorIs(t, err, elf.ErrTruncatedHeader, name)
	}
}
