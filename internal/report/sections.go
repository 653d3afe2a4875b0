package report

import (
	"errors"

	"github.com/yifengyou/parser-elf/internal/elf"
)

// Symbol renders every symbol table of the file.
func (r *Renderer) Symbol(c *elf.Container) (Lines, error) {
	var out Lines
	_, sections, err := r.decodeTables(c)
	if err != nil {
		return out, err
	}
	for _, s := range sections.Sections {
		if elf.Route(s.Type, r.opts.Dispatch) != elf.PayloadSymbols {
			continue
		}
		out.add("%s", sectionBanner(s))
		out.addAll(r.sectionPayload(c, sections, s))
	}
	out.add("%s", Separator)
	return out, nil
}

// StringTables renders every string table of the file.
func (r *Renderer) StringTables(c *elf.Container) (Lines, error) {
	var out Lines
	_, sections, err := r.decodeTables(c)
	if err != nil {
		return out, err
	}
	for _, s := range sections.ByType(elf.SHT_STRTAB) {
		out.add("%s", sectionBanner(s))
		out.addAll(r.sectionPayload(c, sections, s))
	}
	out.add("%s", Separator)
	return out, nil
}

// Sections renders the payload of every section through the dispatcher.
func (r *Renderer) Sections(c *elf.Container) (Lines, error) {
	var out Lines
	_, sections, err := r.decodeTables(c)
	if err != nil {
		return out, err
	}
	out.add("ELF all section:")
	for _, s := range sections.Sections {
		out.add("-> parse name:%s sh_name:%d sh_type:%s", s.DisplayName(), s.NameOff, s.Type)
		out.addAll(r.sectionPayload(c, sections, s))
	}
	out.add("%s", Separator)
	return out, nil
}

// sectionPayload dispatches one section. A failure is reported inline so
// the remaining sections are still rendered.
func (r *Renderer) sectionPayload(c *elf.Container, sections *elf.SectionTable, s *elf.SectionHeader) Lines {
	var out Lines
	p, err := elf.Dispatch(c, sections, s.Index, r.opts.Dispatch)
	if err != nil {
		r.logger.WithComponent("elf").WithField("section", s.Index).Warnf("section decode failed: %v", err)
		if errors.Is(err, elf.ErrInvalidString) {
			out.addAll(r.dumpSection(c, s))
			return out
		}
		out.add("section %s: %v", s.DisplayName(), err)
		return out
	}
	r.warn(p.Diagnostics())

	switch p.Kind {
	case elf.PayloadSymbols:
		out.addAll(r.symbols(p.Symbols))
	case elf.PayloadStrings:
		out.addAll(r.stringTable(s, p))
	case elf.PayloadRelocations:
		out.addAll(r.relocations(p.Relocations))
	default:
		out.addAll(r.dump(s, p.Data))
	}
	return out
}

func (r *Renderer) symbols(t *elf.SymbolTable) Lines {
	var out Lines
	s := t.Section
	out.add("%s entry number %d", sectionExtent(s), len(t.Symbols))
	for _, sym := range t.Symbols {
		out.add("symbol from section %s %s - symbol name:%s st_name:%d st_value: 0x%x st_size:%d st_other:%s bind:%s sym_type:%s st_shndx:%s",
			s.DisplayName(), s.Type, r.symbolName(sym), sym.NameOff, sym.Value, sym.Size,
			sym.Visibility(), sym.Bind(), sym.Type(), elf.SectionIndexString(sym.Shndx))
	}
	return out
}

func (r *Renderer) stringTable(s *elf.SectionHeader, p *elf.Payload) Lines {
	var out Lines
	out.add("Hexdump String Table Contents %s %s:", s.DisplayName(), s.Type)
	out.add("%s", sectionExtent(s))
	out.addAll(r.dumper.Dump(p.Data))
	out.add("String Table Contents %s %s:", s.DisplayName(), s.Type)
	out.add("%s entry number %d", sectionExtent(s), elf.NewStringTable(p.Data).Segments())
	for _, e := range p.Strings {
		out.add("str from section %s %s : '%s'", s.DisplayName(), s.Type, e.Value)
	}
	return out
}

func (r *Renderer) relocations(t *elf.RelocationTable) Lines {
	var out Lines
	out.add("%s entry number %d", sectionExtent(t.Section), len(t.Relocations))
	for _, rel := range t.Relocations {
		if rel.HasAddend {
			out.add("r_offset: %#x r_info: %#x r_addend: %#x r_info_sym: %#x r_info_type: %#x ",
				rel.Off, rel.Info, rel.Addend, rel.Sym, rel.Type)
		} else {
			out.add("r_offset: %#x r_info: %#x r_info_sym: %#x r_info_type: %#x ",
				rel.Off, rel.Info, rel.Sym, rel.Type)
		}
	}
	return out
}

func (r *Renderer) dumpSection(c *elf.Container, s *elf.SectionHeader) Lines {
	data, err := c.SectionData(s)
	if err != nil {
		return Lines{"section " + s.DisplayName() + ": " + err.Error()}
	}
	return r.dump(s, data)
}

// dump is the generic path: hex dump followed by printable strings.
func (r *Renderer) dump(s *elf.SectionHeader, data []byte) Lines {
	var out Lines
	out.add("Hexdump String Table Contents %s %s:", s.DisplayName(), s.Type)
	out.add("%s", sectionExtent(s))
	out.addAll(r.dumper.Dump(data))
	out.add("String Table Contents %s %s:", s.DisplayName(), s.Type)
	out.add("%s entry number %d", sectionExtent(s), elf.NewStringTable(data).Segments())
	for _, str := range elf.PrintableStrings(data) {
		out.add("str from section %s %s : '%s'", s.DisplayName(), s.Type, str)
	}
	return out
}
