// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rename gives files carrying a placeholder extension the extension
// of their detected image format.
package rename

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"

	"github.com/pdiddy/imgtools/internal/fsutil"
	"github.com/pdiddy/imgtools/internal/signature"
	"github.com/pdiddy/imgtools/pkg/types"
)

// DefaultPlaceholder marks files whose type is unknown.
const DefaultPlaceholder = ".undefined"

// Status is the outcome of processing one candidate file.
type Status string

const (
	StatusUndetermined Status = "undetermined"
	StatusPlanned      Status = "planned"
	StatusRenamed      Status = "renamed"
	StatusFailed       Status = "failed"
)

// Decision records what happened (or would happen) to one file.
type Decision struct {
	Source string `yaml:"source"`
	Ext    string `yaml:"ext,omitempty"`
	Target string `yaml:"target,omitempty"`
	Status Status `yaml:"status"`
	Error  string `yaml:"error,omitempty"`
}

// Options selects the directory and mode for RenameDir.
type Options struct {
	// Dir is the directory scanned (non-recursively) for candidates.
	Dir string

	// Placeholder is the extension of candidate files (default ".undefined").
	Placeholder string

	// DryRun reports decisions without touching the filesystem.
	DryRun bool
}

// BatchResult holds the outcome of a rename run. Types counts the detected
// extension of every successfully processed file.
type BatchResult struct {
	Renamed     int             `yaml:"renamed"`
	Failed      int             `yaml:"failed"`
	DryRun      bool            `yaml:"dry_run"`
	Interrupted bool            `yaml:"interrupted"`
	Types       map[string]int  `yaml:"types,omitempty"`
	Decisions   []Decision      `yaml:"decisions,omitempty"`
	Failures    []types.Failure `yaml:"failures,omitempty"`
}

// Total returns the number of candidate files processed.
func (r BatchResult) Total() int {
	return r.Renamed + r.Failed
}

// HasFailures reports whether any file could not be detected or renamed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Plan detects the type of path and chooses its new name. The target is
// path with its extension replaced, or the first free "<stem>_N<ext>" when
// that name exists on disk or is already claimed in this run. The chosen
// target is added to claims.
func Plan(fsys afero.Fs, path string, claims fsutil.Claims) Decision {
	d := Decision{Source: path}

	ext, err := signature.DetectFile(fsys, path)
	if err != nil {
		d.Status = StatusUndetermined
		if errors.Is(err, signature.ErrUndetermined) {
			d.Error = fmt.Sprintf("could not detect image type: %s", filepath.Base(path))
		} else {
			d.Error = err.Error()
		}
		return d
	}

	stem, _ := fsutil.SplitName(filepath.Base(path))
	d.Ext = ext
	d.Target = fsutil.UniquePath(fsys, filepath.Dir(path), stem, ext, claims)
	d.Status = StatusPlanned
	return d
}

// Apply performs a planned rename. Decisions that are not planned are
// returned unchanged.
func Apply(fsys afero.Fs, d Decision) Decision {
	if d.Status != StatusPlanned {
		return d
	}
	if err := fsys.Rename(d.Source, d.Target); err != nil {
		d.Status = StatusFailed
		d.Error = fmt.Sprintf("failed to rename %s: %v", filepath.Base(d.Source), err)
		return d
	}
	d.Status = StatusRenamed
	return d
}

// RenameDir processes every placeholder file in opts.Dir, printing
// per-file status to w and returning a summary. Each file is detected once;
// the type breakdown reuses that detection. An invalid directory is returned
// as an error before any work starts. A cancelled ctx stops the run between
// files and the result is marked Interrupted.
func RenameDir(ctx context.Context, fsys afero.Fs, opts Options, w io.Writer) (BatchResult, error) {
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if opts.Placeholder == "" {
		opts.Placeholder = DefaultPlaceholder
	}

	if err := fsutil.ValidateDir(fsys, opts.Dir); err != nil {
		return BatchResult{}, err
	}
	candidates, err := fsutil.ListByExt(fsys, opts.Dir, opts.Placeholder)
	if err != nil {
		return BatchResult{}, err
	}
	if len(candidates) == 0 {
		fmt.Fprintf(w, "No %s files found in '%s'\n", opts.Placeholder, opts.Dir)
		return BatchResult{DryRun: opts.DryRun}, nil
	}

	fmt.Fprintf(w, "Found %d %s file(s) in '%s'\n", len(candidates), opts.Placeholder, opts.Dir)
	if opts.DryRun {
		fmt.Fprintln(w, "DRY RUN MODE - no files will be renamed")
	}

	result := BatchResult{DryRun: opts.DryRun, Types: map[string]int{}}
	claims := fsutil.NewClaims()
	for _, path := range candidates {
		if ctx.Err() != nil {
			result.Interrupted = true
			break
		}
		d := Plan(fsys, path, claims)
		if !opts.DryRun {
			d = Apply(fsys, d)
		}
		result.Decisions = append(result.Decisions, d)

		switch d.Status {
		case StatusPlanned:
			fmt.Fprintf(w, "would rename: %s -> %s\n", filepath.Base(d.Source), filepath.Base(d.Target))
		case StatusRenamed:
			fmt.Fprintf(w, "renamed: %s -> %s\n", filepath.Base(d.Source), filepath.Base(d.Target))
		default:
			fmt.Fprintf(w, "failed:  %s\n", d.Error)
			result.Failed++
			result.Failures = append(result.Failures, types.Failure{Item: d.Source, Error: d.Error})
			continue
		}
		result.Renamed++
		result.Types[d.Ext]++
	}

	if result.Interrupted {
		fmt.Fprintln(w, "\nRename interrupted; reporting partial progress.")
	}
	fmt.Fprintf(w, "\nBatch summary: %d renamed, %d failed (total: %d)\n",
		result.Renamed, result.Failed, result.Total())
	if len(result.Types) > 0 {
		fmt.Fprintln(w, "\nDetected file types:")
		exts := make([]string, 0, len(result.Types))
		for ext := range result.Types {
			exts = append(exts, ext)
		}
		sort.Strings(exts)
		for _, ext := range exts {
			fmt.Fprintf(w, "  %s: %d file(s)\n", ext, result.Types[ext])
		}
	}
	return result, nil
}
