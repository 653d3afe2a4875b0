package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yifengyou/parser-elf/internal/elf"
)

// Info renders the file header, program headers, the section listing and
// the section header table. A broken program header table is reported in
// place and does not stop the section tables. Lines rendered before a fatal
// error are returned together with it.
func (r *Renderer) Info(c *elf.Container) (Lines, error) {
	var out Lines
	h, err := elf.DecodeHeader(c)
	if err != nil {
		return out, err
	}
	out.addAll(r.header(c, h))

	phdrs, phErr := elf.DecodeProgramHeaders(c, h)
	if phErr != nil {
		phErr = fmt.Errorf("program header table: %w", phErr)
		r.logger.WithComponent("elf").Warnf("%v", phErr)
		out.add("ELF Program header table:")
		out.add("%s", phErr)
		out.add("%s", Separator)
	} else {
		r.warn(phdrs.Diagnostics)
		out.addAll(r.programHeaders(phdrs))
	}

	sections, err := elf.DecodeSectionHeaders(c, h)
	if err != nil {
		err = fmt.Errorf("section header table: %w", err)
		if phErr != nil {
			return out, errors.Join(phErr, err)
		}
		return out, err
	}
	r.warn(sections.Diagnostics)

	out.add("ELF all section:")
	for _, s := range sections.Sections {
		out.add("%s", sectionBanner(s))
	}
	out.add("%s", Separator)
	out.addAll(r.sectionHeaders(sections))
	return out, nil
}

func versionString(v uint32) string {
	if v == 1 {
		return "EV_CURRENT"
	}
	return fmt.Sprintf("EV_NONE(%d)", v)
}

func (r *Renderer) header(c *elf.Container, h *elf.FileHeader) Lines {
	var out Lines
	mag := make([]string, len(elf.Magic))
	for i := range mag {
		mag[i] = fmt.Sprintf("%d", h.Ident[i])
	}
	out.add("ELF Header:")
	out.add("ei_mag: [%s]", strings.Join(mag, ", "))
	out.add("ei_class: %s", c.Layout.Class)
	out.add("ei_data: %s", c.Layout.Data)
	out.add("ei_version: %s", versionString(uint32(c.Version)))
	out.add("ei_osabi: %s", c.OSABI)
	out.add("ei_abiversion: %d", c.ABIVersion)
	out.add("e_type:%s # Type", h.Type)
	out.add("e_machine:%s # Machine architecture", h.Machine)
	out.add("e_version:%s # Version", versionString(h.Version))
	out.add("e_entry:%#x # Entry point address", h.Entry)
	out.add("e_phoff:%d(%#x)(bytes into file) # Start of program headers", h.Phoff, h.Phoff)
	out.add("e_shoff:%d(%#x)(bytes into file) # Start of section headers", h.Shoff, h.Shoff)
	out.add("e_flags:%d # Flags", h.Flags)
	out.add("e_ehsize:%d (bytes) # Size of this header", h.Ehsize)
	out.add("e_phentsize:%d (bytes) # Size of program headers", h.Phentsize)
	out.add("e_phnum:%d # Number of program headers", h.Phnum)
	out.add("e_shentsize:%d (bytes) # Size of section headers", h.Shentsize)
	out.add("e_shnum:%d # Number of section headers", h.Shnum)
	out.add("e_shstrndx:%d # Section header string table index", h.Shstrndx)
	out.add("%s", Separator)
	return out
}

func (r *Renderer) programHeaders(t *elf.ProgramTable) Lines {
	var out Lines
	out.add("ELF Program header table:")
	for _, p := range t.Entries {
		out.add("p_type:%-9s p_offset:%-9d p_vaddr:0X%016X p_paddr:0X%016X p_filesz:%-9d p_memsz:%-9d p_flags:%-3d p_align:0X%016X flags:%s",
			p.Type, p.Off, p.Vaddr, p.Paddr, p.Filesz, p.Memsz, p.Flags, p.Align, p.FlagString())
	}
	out.add("%s", Separator)
	return out
}

func (r *Renderer) sectionHeaders(t *elf.SectionTable) Lines {
	var out Lines
	out.add("ELF section header table:")
	for _, s := range t.Sections {
		name := fmt.Sprintf("%s(%d)", s.DisplayName(), s.NameOff)
		size := fmt.Sprintf("%d(%.3fMB)", s.Size, float64(s.Size)/1024/1024)
		out.add("sh_name:%-33ssh_size:%-23ssh_type:%-13s sh_flags:%-3d sh_addr:0X%016X sh_offset:0X%016X sh_link:%-3d sh_info:%-6d sh_addralign:%-5d sh_entsize:%d flags:%s",
			name, size, s.Type, uint64(s.Flags), s.Addr, s.Off, s.Link, s.Info, s.Addralign, s.Entsize, s.Flags.Letters())
	}
	out.add("%s", Separator)
	return out
}
