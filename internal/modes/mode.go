package modes

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Mode is one report the tool can produce for an input file
type Mode interface {
	// Name returns the subcommand name (e.g., "info")
	Name() string

	// Description returns a one-line description for help output
	Description() string

	// Execute produces the report for the file at path
	Execute(ctx context.Context, path string) ModeResult
}

// ModeStatus represents the outcome of running a mode on one file
type ModeStatus string

const (
	StatusOK       ModeStatus = "ok"
	StatusError    ModeStatus = "error"
	StatusNotFound ModeStatus = "not_found"
)

// ModeResult contains the output of a mode execution
type ModeResult struct {
	Mode     string        `json:"mode"`
	Path     string        `json:"path"`
	Status   ModeStatus    `json:"status"`
	Lines    []string      `json:"lines"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
	Error    error         `json:"-"`
}

// Registry manages the available modes in registration order
type Registry struct {
	modes map[string]Mode
	order []string
}

// NewRegistry creates a new mode registry
func NewRegistry() *Registry {
	return &Registry{
		modes: make(map[string]Mode),
	}
}

// Register adds a mode to the registry
func (r *Registry) Register(mode Mode) error {
	if _, exists := r.modes[mode.Name()]; exists {
		return fmt.Errorf("mode %q already registered", mode.Name())
	}
	r.modes[mode.Name()] = mode
	r.order = append(r.order, mode.Name())
	return nil
}

// Get retrieves a mode by name
func (r *Registry) Get(name string) (Mode, bool) {
	mode, exists := r.modes[name]
	return mode, exists
}

// List returns all registered modes
func (r *Registry) List() []Mode {
	modes := make([]Mode, 0, len(r.order))
	for _, name := range r.order {
		modes = append(modes, r.modes[name])
	}
	return modes
}

// Report contains the results of running one mode over several files
type Report struct {
	Mode    string        `json:"mode"`
	Results []ModeResult  `json:"results"`
	Summary ReportSummary `json:"summary"`
}

// ReportSummary contains summary statistics for a report
type ReportSummary struct {
	Total    int `json:"total"`
	OK       int `json:"ok"`
	Errors   int `json:"errors"`
	NotFound int `json:"not_found"`
}

// WriteTo writes every result's lines in input order
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, res := range r.Results {
		for _, line := range res.Lines {
			n, err := fmt.Fprintln(w, line)
			total += int64(n)
			if err != nil {
				return total, err
			}
		}
	}
	return total, nil
}
