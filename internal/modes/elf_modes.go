package modes

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/yifengyou/parser-elf/internal/archive"
	"github.com/yifengyou/parser-elf/internal/elf"
	"github.com/yifengyou/parser-elf/internal/report"
)

// renderFunc produces the report lines of one mode for a decoded container
type renderFunc func(r *report.Renderer, c *elf.Container) (report.Lines, error)

// target resolves path and starts the result with the "Target elf file"
// banner. ok is false when the file does not exist.
func target(mode, path string) (res ModeResult, abs string, ok bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	res = ModeResult{Mode: mode, Path: abs, Status: StatusOK}
	res.Lines = append(res.Lines, fmt.Sprintf("Target elf file: %s", abs))

	if _, err := os.Stat(abs); err != nil {
		res.Status = StatusNotFound
		res.Error = fmt.Errorf("%w: %s", elf.ErrFileNotFound, abs)
		res.Message = "Target elf file does not found!"
		res.Lines = append(res.Lines, res.Message)
		return res, abs, false
	}
	return res, abs, true
}

// fail records a decode failure as the single descriptive line
func (res *ModeResult) fail(err error) {
	res.Status = StatusError
	res.Error = err
	res.Message = fmt.Sprintf("An error occurred: %v", err)
	res.Lines = append(res.Lines, res.Message)
}

// ELFMode decodes the input as an ELF file and renders one report
type ELFMode struct {
	name        string
	description string
	renderer    *report.Renderer
	render      renderFunc
}

// Name returns the mode name
func (m *ELFMode) Name() string { return m.name }

// Description returns the mode description
func (m *ELFMode) Description() string { return m.description }

// Execute reads the file in full, identifies it and renders the report
func (m *ELFMode) Execute(ctx context.Context, path string) (res ModeResult) {
	start := time.Now()
	res, abs, ok := target(m.name, path)
	defer func() { res.Duration = time.Since(start) }()
	if !ok {
		return res
	}

	c, err := elf.Open(abs)
	if err != nil {
		if errors.Is(err, elf.ErrFileNotFound) {
			res.Status = StatusNotFound
		}
		res.fail(err)
		return res
	}

	lines, err := m.render(m.renderer, c)
	res.Lines = append(res.Lines, lines...)
	if err != nil {
		res.fail(err)
	}
	return res
}

// NewInfoMode creates the "info" mode
func NewInfoMode(r *report.Renderer) *ELFMode {
	return &ELFMode{
		name:        "info",
		description: "info elf file",
		renderer:    r,
		render:      (*report.Renderer).Info,
	}
}

// NewSymbolMode creates the "symbol" mode
func NewSymbolMode(r *report.Renderer) *ELFMode {
	return &ELFMode{
		name:        "symbol",
		description: "symbol elf file",
		renderer:    r,
		render:      (*report.Renderer).Symbol,
	}
}

// NewStrtableMode creates the "strtable" mode
func NewStrtableMode(r *report.Renderer) *ELFMode {
	return &ELFMode{
		name:        "strtable",
		description: "strtable elf file",
		renderer:    r,
		render:      (*report.Renderer).StringTables,
	}
}

// NewSectionsMode creates the "sections" mode
func NewSectionsMode(r *report.Renderer) *ELFMode {
	return &ELFMode{
		name:        "sections",
		description: "dump the contents of every section",
		renderer:    r,
		render:      (*report.Renderer).Sections,
	}
}

// VmlinuxMode is a placeholder for kernel image parsing
type VmlinuxMode struct{}

func (VmlinuxMode) Name() string        { return "vmlinux" }
func (VmlinuxMode) Description() string { return "linux kernel vmlinux parser" }

// Execute only reports that vmlinux parsing is not implemented
func (m VmlinuxMode) Execute(ctx context.Context, path string) ModeResult {
	res, _, ok := target(m.Name(), path)
	if ok {
		res.Lines = append(res.Lines, "todo do_handle_vmlinux")
	}
	return res
}

// BuiltinMode lists thin archive members with the external ar tool
type BuiltinMode struct {
	lister *archive.Lister
}

// NewBuiltinMode creates the "builtin" mode
func NewBuiltinMode(lister *archive.Lister) *BuiltinMode {
	return &BuiltinMode{lister: lister}
}

func (m *BuiltinMode) Name() string        { return "builtin" }
func (m *BuiltinMode) Description() string { return "linux kernel built-in parser(thin archive)" }

// Execute relays the ar listing verbatim
func (m *BuiltinMode) Execute(ctx context.Context, path string) (res ModeResult) {
	start := time.Now()
	res, abs, ok := target(m.Name(), path)
	defer func() { res.Duration = time.Since(start) }()
	if !ok {
		return res
	}

	listing, err := m.lister.List(ctx, abs)
	if err != nil {
		res.Status = StatusError
		res.Error = err
		res.Message = err.Error()
		res.Lines = append(res.Lines, res.Message)
		return res
	}
	res.Lines = append(res.Lines, listing.Lines()...)
	return res
}

// DefaultRegistry registers every mode in help order
func DefaultRegistry(r *report.Renderer, lister *archive.Lister) (*Registry, error) {
	registry := NewRegistry()
	all := []Mode{
		NewInfoMode(r),
		NewSymbolMode(r),
		NewStrtableMode(r),
		NewSectionsMode(r),
		VmlinuxMode{},
		NewBuiltinMode(lister),
	}
	for _, mode := range all {
		if err := registry.Register(mode); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
