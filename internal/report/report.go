package report

import (
	"fmt"
	"strings"

	"github.com/ianlancetaylor/demangle"
	"github.com/sirupsen/logrus"

	"github.com/yifengyou/parser-elf/internal/elf"
	"github.com/yifengyou/parser-elf/internal/utils"
)

// Separator closes every report block.
var Separator = strings.Repeat("-", 128)

// Options controls rendering.
type Options struct {
	DumpWidth       int
	DumpPlaceholder byte
	StringMode      elf.StringMode
	Demangle        bool
	Dispatch        elf.DispatchOptions
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		DumpWidth:       elf.DefaultDumpWidth,
		DumpPlaceholder: '.',
		StringMode:      elf.BestEffort,
	}
}

// Renderer turns decoded ELF structures into report lines.
type Renderer struct {
	opts   Options
	dumper *elf.HexDumper
	logger *utils.Logger
}

// NewRenderer creates a renderer. Diagnostics are logged through logger.
func NewRenderer(opts Options, logger *utils.Logger) *Renderer {
	if logger == nil {
		logger = utils.NewDefaultLogger()
	}
	opts.Dispatch.StringMode = opts.StringMode
	return &Renderer{
		opts:   opts,
		dumper: elf.NewHexDumper(opts.DumpWidth, opts.DumpPlaceholder),
		logger: logger,
	}
}

// Lines accumulates report output.
type Lines []string

func (l *Lines) add(format string, args ...interface{}) {
	*l = append(*l, fmt.Sprintf(format, args...))
}

func (l *Lines) addAll(lines []string) {
	*l = append(*l, lines...)
}

func (r *Renderer) warn(diags []elf.Diagnostic) {
	for _, d := range diags {
		r.logger.WithComponent("elf").WithFields(logrus.Fields{
			"kind":    d.Kind,
			"section": d.Section,
			"offset":  fmt.Sprintf("%#x", d.Offset),
		}).Warn(d.Message)
	}
}

// decodeTables decodes the header and section table shared by every mode.
func (r *Renderer) decodeTables(c *elf.Container) (*elf.FileHeader, *elf.SectionTable, error) {
	h, err := elf.DecodeHeader(c)
	if err != nil {
		return nil, nil, err
	}
	sections, err := elf.DecodeSectionHeaders(c, h)
	if err != nil {
		return h, nil, err
	}
	r.warn(sections.Diagnostics)
	return h, sections, nil
}

func (r *Renderer) symbolName(sym elf.Symbol) string {
	if !sym.NameResolved {
		return fmt.Sprintf("<%d>", sym.NameOff)
	}
	if r.opts.Demangle && sym.Name != "" {
		return demangle.Filter(sym.Name)
	}
	return sym.Name
}

func sectionBanner(s *elf.SectionHeader) string {
	return fmt.Sprintf("-> parse name:%-25s sh_name:%-6d sh_type:%s", s.DisplayName(), s.NameOff, s.Type)
}

func sectionExtent(s *elf.SectionHeader) string {
	return fmt.Sprintf("section offset:%d[%#x] size:%d[%#x]", s.Off, s.Off, s.Size, s.Size)
}
