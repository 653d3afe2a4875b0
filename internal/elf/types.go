package elf

import "fmt"

func lookup(names map[uint32]string, v uint32, unknown string) string {
	if s, ok := names[v]; ok {
		return s
	}
	return fmt.Sprintf("%s(%#x)", unknown, v)
}

// OSABI is the EI_OSABI identification byte.
type OSABI uint8

var osabiNames = map[uint32]string{
	0: "ELFOSABI_SYSV", 1: "ELFOSABI_HPUX", 2: "ELFOSABI_NETBSD", 3: "ELFOSABI_LINUX",
	4: "ELFOSABI_HURD", 6: "ELFOSABI_SOLARIS", 7: "ELFOSABI_AIX", 8: "ELFOSABI_IRIX",
	9: "ELFOSABI_FREEBSD", 10: "ELFOSABI_TRU64", 11: "ELFOSABI_MODESTO", 12: "ELFOSABI_OPENBSD",
	13: "ELFOSABI_OPENVMS", 14: "ELFOSABI_NSK", 15: "ELFOSABI_AROS", 16: "ELFOSABI_FENIXOS",
	17: "ELFOSABI_CLOUDABI", 64: "ELFOSABI_ARM_AEABI", 97: "ELFOSABI_ARM", 255: "ELFOSABI_STANDALONE",
}

func (o OSABI) String() string { return lookup(osabiNames, uint32(o), "ELFOSABI_UNKNOWN") }

// FileType is e_type.
type FileType uint16

var fileTypeNames = map[uint32]string{
	0: "ET_NONE", 1: "ET_REL", 2: "ET_EXEC", 3: "ET_DYN", 4: "ET_CORE",
}

func (t FileType) String() string { return lookup(fileTypeNames, uint32(t), "ET_UNKNOWN") }

// Machine is e_machine.
type Machine uint16

var machineNames = map[uint32]string{
	0: "EM_NONE", 2: "EM_SPARC", 3: "EM_386", 4: "EM_68K", 8: "EM_MIPS",
	20: "EM_PPC", 21: "EM_PPC64", 22: "EM_S390", 40: "EM_ARM", 42: "EM_SH",
	43: "EM_SPARCV9", 50: "EM_IA_64", 62: "EM_X86_64", 183: "EM_AARCH64",
	243: "EM_RISCV", 247: "EM_BPF", 258: "EM_LOONGARCH",
}

func (m Machine) String() string { return lookup(machineNames, uint32(m), "EM_UNKNOWN") }

// ProgType is p_type.
type ProgType uint32

var progTypeNames = map[uint32]string{
	0: "PT_NULL", 1: "PT_LOAD", 2: "PT_DYNAMIC", 3: "PT_INTERP", 4: "PT_NOTE",
	5: "PT_SHLIB", 6: "PT_PHDR", 7: "PT_TLS",
	0x6474e550: "PT_GNU_EH_FRAME", 0x6474e551: "PT_GNU_STACK",
	0x6474e552: "PT_GNU_RELRO", 0x6474e553: "PT_GNU_PROPERTY",
}

func (t ProgType) String() string { return lookup(progTypeNames, uint32(t), "PT_UNKNOWN") }

// SectionType is sh_type.
type SectionType uint32

const (
	SHT_NULL     SectionType = 0
	SHT_PROGBITS SectionType = 1
	SHT_SYMTAB   SectionType = 2
	SHT_STRTAB   SectionType = 3
	SHT_RELA     SectionType = 4
	SHT_HASH     SectionType = 5
	SHT_DYNAMIC  SectionType = 6
	SHT_NOTE     SectionType = 7
	SHT_NOBITS   SectionType = 8
	SHT_REL      SectionType = 9
	SHT_SHLIB    SectionType = 10
	SHT_DYNSYM   SectionType = 11
)

var sectionTypeNames = map[uint32]string{
	0: "SHT_NULL", 1: "SHT_PROGBITS", 2: "SHT_SYMTAB", 3: "SHT_STRTAB", 4: "SHT_RELA",
	5: "SHT_HASH", 6: "SHT_DYNAMIC", 7: "SHT_NOTE", 8: "SHT_NOBITS", 9: "SHT_REL",
	10: "SHT_SHLIB", 11: "SHT_DYNSYM", 14: "SHT_INIT_ARRAY", 15: "SHT_FINI_ARRAY",
	16: "SHT_PREINIT_ARRAY", 17: "SHT_GROUP", 18: "SHT_SYMTAB_SHNDX",
	0x6ffffff5: "SHT_GNU_ATTRIBUTES", 0x6ffffff6: "SHT_GNU_HASH", 0x6ffffff7: "SHT_GNU_LIBLIST",
	0x6ffffffd: "SHT_GNU_verdef", 0x6ffffffe: "SHT_GNU_verneed", 0x6fffffff: "SHT_GNU_versym",
	0x70000001: "SHT_ARM_EXIDX", 0x70000003: "SHT_ARM_ATTRIBUTES",
}

func (t SectionType) String() string { return lookup(sectionTypeNames, uint32(t), "SHT_UNKNOWN") }

// SectionFlag is sh_flags.
type SectionFlag uint64

var sectionFlagLetters = []struct {
	bit    SectionFlag
	letter byte
}{
	{0x1, 'W'}, {0x2, 'A'}, {0x4, 'X'}, {0x10, 'M'}, {0x20, 'S'}, {0x40, 'I'},
	{0x80, 'L'}, {0x100, 'O'}, {0x200, 'G'}, {0x400, 'T'}, {0x800, 'C'},
	{0x80000000, 'E'},
}

// Letters renders the flags the way readelf's section listing does.
func (f SectionFlag) Letters() string {
	var out []byte
	rest := f
	for _, fl := range sectionFlagLetters {
		if f&fl.bit != 0 {
			out = append(out, fl.letter)
			rest &^= fl.bit
		}
	}
	if rest&0x0ff00000 != 0 {
		out = append(out, 'o')
	}
	if rest&0xf0000000 != 0 {
		out = append(out, 'p')
	}
	if rest&^0xfff00000 != 0 {
		out = append(out, 'x')
	}
	return string(out)
}

// SymBind is the high nibble of st_info.
type SymBind uint8

var symBindNames = map[uint32]string{
	0: "STB_LOCAL", 1: "STB_GLOBAL", 2: "STB_WEAK", 10: "STB_GNU_UNIQUE",
}

func (b SymBind) String() string { return lookup(symBindNames, uint32(b), "STB_UNKNOWN") }

// SymType is the low nibble of st_info.
type SymType uint8

var symTypeNames = map[uint32]string{
	0: "STT_NOTYPE", 1: "STT_OBJECT", 2: "STT_FUNC", 3: "STT_SECTION",
	4: "STT_FILE", 5: "STT_COMMON", 6: "STT_TLS", 10: "STT_GNU_IFUNC",
}

func (t SymType) String() string { return lookup(symTypeNames, uint32(t), "STT_UNKNOWN") }

// SymVis is the low two bits of st_other.
type SymVis uint8

var symVisNames = map[uint32]string{
	0: "STV_DEFAULT", 1: "STV_INTERNAL", 2: "STV_HIDDEN", 3: "STV_PROTECTED",
}

func (v SymVis) String() string { return lookup(symVisNames, uint32(v), "STV_UNKNOWN") }

// Special section indexes.
const (
	SHN_UNDEF  = 0
	SHN_ABS    = 0xfff1
	SHN_COMMON = 0xfff2
	SHN_XINDEX = 0xffff
)

// SectionIndexString renders st_shndx, naming the reserved values.
func SectionIndexString(idx uint16) string {
	switch idx {
	case SHN_UNDEF:
		return "SHN_UNDEF"
	case SHN_ABS:
		return "SHN_ABS"
	case SHN_COMMON:
		return "SHN_COMMON"
	case SHN_XINDEX:
		return "SHN_XINDEX"
	}
	return fmt.Sprintf("%d", idx)
}
