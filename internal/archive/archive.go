// Package archive lists the members of (thin) archives by running the
// external ar tool and relaying its output.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Lister runs `ar -tOv` against an archive.
type Lister struct {
	ArPath  string
	Timeout time.Duration
}

// NewLister creates a lister for the given ar binary.
func NewLister(arPath string, timeout time.Duration) *Lister {
	if arPath == "" {
		arPath = "ar"
	}
	return &Lister{ArPath: arPath, Timeout: timeout}
}

// Listing is the verbatim member listing of one archive.
type Listing struct {
	Path    string
	Members []string
}

// Lines renders the listing with its header and member count.
func (l *Listing) Lines() []string {
	out := make([]string, 0, len(l.Members)+2)
	out = append(out, fmt.Sprintf("Members of thin archive '%s':", l.Path))
	out = append(out, l.Members...)
	out = append(out, fmt.Sprintf("Total number: %d", len(l.Members)))
	return out
}

// List runs ar on path. A non-zero exit is returned as an error carrying
// ar's stderr.
func (l *Lister) List(ctx context.Context, path string) (*Listing, error) {
	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, l.ArPath, "-tOv", path)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("Error listing archive members: %s", msg)
	}

	listing := &Listing{Path: path}
	text := strings.TrimRight(stdout.String(), "\n")
	if text != "" {
		listing.Members = strings.Split(text, "\n")
	}
	return listing, nil
}
