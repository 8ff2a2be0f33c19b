// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fsutil holds the directory scanning, collision-safe naming and
// atomic write helpers shared by the fetch, convert and rename stages.
package fsutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// DirError reports a target directory that is missing or not a directory.
type DirError struct {
	Dir    string // Directory as given by the user
	Reason string // Human-readable explanation
	Err    error  // Underlying error, if any
}

func (e *DirError) Error() string {
	return fmt.Sprintf("directory '%s' %s", e.Dir, e.Reason)
}

func (e *DirError) Unwrap() error {
	return e.Err
}

// ValidateDir checks that dir exists and is a directory.
func ValidateDir(fsys afero.Fs, dir string) error {
	fi, err := fsys.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return &DirError{Dir: dir, Reason: "not found", Err: err}
		}
		return &DirError{Dir: dir, Reason: "is not accessible", Err: err}
	}
	if !fi.IsDir() {
		return &DirError{Dir: dir, Reason: "is not a directory"}
	}
	return nil
}

// ListByExt returns the regular files directly under dir whose extension is
// exactly ext, sorted by name. Subdirectories are not descended into.
func ListByExt(fsys afero.Fs, dir, ext string) ([]string, error) {
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if !e.Mode().IsRegular() {
			continue
		}
		if filepath.Ext(e.Name()) != ext {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// SplitName splits a file name into stem and extension ("a.tar.gz" -> "a.tar", ".gz").
func SplitName(name string) (stem, ext string) {
	ext = filepath.Ext(name)
	return strings.TrimSuffix(name, ext), ext
}

// Claims records target paths handed out during a single run, so that
// decisions not yet applied to disk (dry runs) still avoid each other.
// The zero value is not usable; use NewClaims.
type Claims map[string]struct{}

// NewClaims returns an empty claim set.
func NewClaims() Claims {
	return make(Claims)
}

// Has reports whether path has been claimed.
func (c Claims) Has(path string) bool {
	if c == nil {
		return false
	}
	_, ok := c[path]
	return ok
}

// Claim marks path as taken.
func (c Claims) Claim(path string) {
	if c != nil {
		c[path] = struct{}{}
	}
}

// UniquePath returns dir/stem+ext, or the first dir/stem_N+ext (N = 1, 2, ...)
// that neither exists in fsys nor is present in claims. A nil claims set only
// checks the filesystem. The returned path is claimed before returning.
func UniquePath(fsys afero.Fs, dir, stem, ext string, claims Claims) string {
	candidate := filepath.Join(dir, stem+ext)
	for n := 1; taken(fsys, candidate, claims); n++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, n, ext))
	}
	claims.Claim(candidate)
	return candidate
}

func taken(fsys afero.Fs, path string, claims Claims) bool {
	if claims.Has(path) {
		return true
	}
	if _, err := fsys.Stat(path); err == nil || !os.IsNotExist(err) {
		return true
	}
	return false
}

// WriteAtomic writes a file named name in dir by streaming into a hidden
// temporary file in the same directory and renaming it into place once write
// succeeds. On any error the temporary file is removed and no file named name
// is created or modified.
func WriteAtomic(fsys afero.Fs, dir, name string, write func(w io.Writer) error) error {
	tmp, err := afero.TempFile(fsys, dir, "."+name+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	writeErr := write(tmp)
	closeErr := tmp.Close()
	if writeErr != nil {
		fsys.Remove(tmpPath)
		return writeErr
	}
	if closeErr != nil {
		fsys.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := fsys.Rename(tmpPath, filepath.Join(dir, name)); err != nil {
		fsys.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
