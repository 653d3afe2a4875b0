package elf

// PayloadKind tags the decoder a section was routed to.
type PayloadKind int

const (
	PayloadDump PayloadKind = iota
	PayloadSymbols
	PayloadStrings
	PayloadRelocations
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadSymbols:
		return "symbols"
	case PayloadStrings:
		return "strings"
	case PayloadRelocations:
		return "relocations"
	}
	return "dump"
}

// DispatchOptions widens the default routing.
type DispatchOptions struct {
	// Rel routes SHT_REL sections to the relocation decoder.
	Rel bool
	// DynSym routes SHT_DYNSYM sections to the symbol decoder.
	DynSym bool
	// StringMode applies to string table sections.
	StringMode StringMode
}

// Payload is the decoded content of one section. Exactly one of the typed
// fields is set, matching Kind; Dump sections carry the raw bytes in Data.
type Payload struct {
	Kind        PayloadKind
	Section     *SectionHeader
	Symbols     *SymbolTable
	Strings     []StringEntry
	Relocations *RelocationTable
	Data        []byte
}

// Route picks the payload kind for a section type.
func Route(typ SectionType, opts DispatchOptions) PayloadKind {
	switch typ {
	case SHT_SYMTAB:
		return PayloadSymbols
	case SHT_DYNSYM:
		if opts.DynSym {
			return PayloadSymbols
		}
	case SHT_STRTAB:
		return PayloadStrings
	case SHT_RELA:
		return PayloadRelocations
	case SHT_REL:
		if opts.Rel {
			return PayloadRelocations
		}
	}
	return PayloadDump
}

// Dispatch decodes section idx with the decoder its type routes to. Any
// type without a dedicated decoder, including unknown vendor types, goes to
// the dump path.
func Dispatch(c *Container, sections *SectionTable, idx int, opts DispatchOptions) (*Payload, error) {
	sec := sections.Section(idx)
	if sec == nil {
		return nil, newDecodeError(KindOutOfBounds, 0, "section index %d outside %d sections", idx, len(sections.Sections))
	}
	p := &Payload{Kind: Route(sec.Type, opts), Section: sec}

	var err error
	switch p.Kind {
	case PayloadSymbols:
		p.Symbols, err = DecodeSymbols(c, sections, idx)
	case PayloadRelocations:
		p.Relocations, err = DecodeRelocations(c, sections, idx, sec.Type == SHT_RELA)
	case PayloadStrings:
		if p.Data, err = c.SectionData(sec); err == nil {
			p.Strings, err = NewStringTable(p.Data).Entries(opts.StringMode)
		}
	default:
		p.Data, err = c.SectionData(sec)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Diagnostics returns the non-fatal findings recorded for the payload.
func (p *Payload) Diagnostics() []Diagnostic {
	switch {
	case p.Symbols != nil:
		return p.Symbols.Diagnostics
	case p.Relocations != nil:
		return p.Relocations.Diagnostics
	}
	return nil
}
