// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert re-encodes every image of one format in a directory into
// another format, optionally removing the originals.
package convert

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/pdiddy/imgtools/internal/fsutil"
	"github.com/pdiddy/imgtools/pkg/types"
)

const (
	// DefaultFrom is the source extension converted when none is configured.
	DefaultFrom = ".webp"
	// DefaultTo is the target extension written when none is configured.
	DefaultTo = ".png"
)

// Converter decodes an image from r and writes it to w in its target format.
type Converter interface {
	Convert(r io.Reader, w io.Writer) error
}

// Options selects the directory and formats for ConvertDir.
type Options struct {
	// Dir is the directory scanned (non-recursively) for source files.
	Dir string

	// From is the source extension, matched exactly (e.g. ".webp").
	From string

	// To is the target extension (e.g. ".png").
	To string

	// Delete removes each source file after its conversion is saved.
	Delete bool
}

func (o Options) withDefaults() Options {
	if o.Dir == "" {
		o.Dir = "."
	}
	if o.From == "" {
		o.From = DefaultFrom
	}
	if o.To == "" {
		o.To = DefaultTo
	}
	return o
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted   int             `yaml:"converted"`
	Failed      int             `yaml:"failed"`
	Deleted     int             `yaml:"deleted"`
	Interrupted bool            `yaml:"interrupted"`
	Outputs     []string        `yaml:"outputs,omitempty"`
	Failures    []types.Failure `yaml:"failures,omitempty"`
}

// Total returns the number of files processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Failed
}

// HasFailures reports whether any file failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// ConvertFile converts src into a file with the same base name and the To
// extension, next to src. The output is written atomically, so a failed
// conversion leaves no partial file. The source is removed only after the
// output is saved and only when del is set.
func ConvertFile(c Converter, fsys afero.Fs, src, to string, del bool) (dst string, deleted bool, err error) {
	dir := filepath.Dir(src)
	stem, _ := fsutil.SplitName(filepath.Base(src))
	name := stem + to
	dst = filepath.Join(dir, name)

	in, err := fsys.Open(src)
	if err != nil {
		return "", false, fmt.Errorf("opening %s: %w", src, err)
	}
	err = fsutil.WriteAtomic(fsys, dir, name, func(w io.Writer) error {
		return c.Convert(in, w)
	})
	in.Close()
	if err != nil {
		return "", false, err
	}

	if del {
		if err := fsys.Remove(src); err != nil {
			return dst, false, fmt.Errorf("converted to %s but could not delete source: %w", name, err)
		}
		deleted = true
	}
	return dst, deleted, nil
}

// ConvertDir converts every opts.From file in opts.Dir, printing per-file
// status to w and returning a summary. An invalid directory is returned as an
// error before any work starts; per-file failures are counted and reported
// without stopping the batch. A cancelled ctx stops the batch between files
// and the result is marked Interrupted.
func ConvertDir(ctx context.Context, c Converter, fsys afero.Fs, opts Options, w io.Writer) (BatchResult, error) {
	opts = opts.withDefaults()
	if opts.From == opts.To {
		return BatchResult{}, fmt.Errorf("source and target extension are both %s", opts.From)
	}

	if err := fsutil.ValidateDir(fsys, opts.Dir); err != nil {
		return BatchResult{}, err
	}
	sources, err := fsutil.ListByExt(fsys, opts.Dir, opts.From)
	if err != nil {
		return BatchResult{}, err
	}
	if len(sources) == 0 {
		fmt.Fprintf(w, "No %s files found in '%s'\n", opts.From, opts.Dir)
		return BatchResult{}, nil
	}

	fmt.Fprintf(w, "Found %d %s file(s) in '%s'\n", len(sources), opts.From, opts.Dir)
	if opts.Delete {
		fmt.Fprintf(w, "Original %s files will be DELETED after conversion\n", opts.From)
	}

	var result BatchResult
	for _, src := range sources {
		if ctx.Err() != nil {
			result.Interrupted = true
			break
		}
		name := filepath.Base(src)
		dst, deleted, err := ConvertFile(c, fsys, src, opts.To, opts.Delete)
		if dst != "" {
			result.Outputs = append(result.Outputs, dst)
		}
		if err != nil {
			fmt.Fprintf(w, "failed:    %s (%v)\n", name, err)
			result.Failed++
			result.Failures = append(result.Failures, types.Failure{Item: src, Error: err.Error()})
			continue
		}
		result.Converted++
		if deleted {
			result.Deleted++
			fmt.Fprintf(w, "converted: %s -> %s (source deleted)\n", name, filepath.Base(dst))
		} else {
			fmt.Fprintf(w, "converted: %s -> %s\n", name, filepath.Base(dst))
		}
	}
	if result.Interrupted {
		fmt.Fprintln(w, "\nConversion interrupted; reporting partial progress.")
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d failed (total: %d)\n",
		result.Converted, result.Failed, result.Total())
	return result, nil
}
