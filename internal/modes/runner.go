package modes

import (
	"context"
	"fmt"
	"sync"

	"github.com/yifengyou/parser-elf/internal/utils"
)

// Runner executes a mode over input files
type Runner struct {
	registry *Registry
	workers  int
	logger   *utils.Logger
}

// NewRunner creates a new runner decoding up to workers files at once
func NewRunner(registry *Registry, workers int, logger *utils.Logger) *Runner {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = utils.NewDefaultLogger()
	}
	return &Runner{
		registry: registry,
		workers:  workers,
		logger:   logger,
	}
}

// Run executes the named mode against every path. Each file is decoded
// independently; results keep the order of paths.
func (r *Runner) Run(ctx context.Context, name string, paths []string) (*Report, error) {
	mode, exists := r.registry.Get(name)
	if !exists {
		return nil, fmt.Errorf("unknown mode: %s", name)
	}

	results := make([]ModeResult, len(paths))
	sem := make(chan struct{}, r.workers)
	var wg sync.WaitGroup

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, err
		}
		select {
		case <-ctx.Done():
			wg.Wait()
			return nil, ctx.Err()
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = mode.Execute(ctx, path)
			r.logger.WithFile("runner", path).WithField("mode", name).
				Debugf("finished with status %s in %v", results[i].Status, results[i].Duration)
		}(i, path)
	}
	wg.Wait()

	return &Report{
		Mode:    name,
		Results: results,
		Summary: r.calculateSummary(results),
	}, nil
}

// calculateSummary calculates summary statistics from mode results
func (r *Runner) calculateSummary(results []ModeResult) ReportSummary {
	summary := ReportSummary{Total: len(results)}

	for _, result := range results {
		switch result.Status {
		case StatusOK:
			summary.OK++
		case StatusError:
			summary.Errors++
		case StatusNotFound:
			summary.NotFound++
		}
	}

	return summary
}
