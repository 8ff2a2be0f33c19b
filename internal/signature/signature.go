// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package signature identifies image formats from the leading bytes of a file.
package signature

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
)

// HeaderLen is the number of leading bytes inspected by DetectFile.
const HeaderLen = 12

// ErrUndetermined is returned by DetectFile when no signature matches.
var ErrUndetermined = errors.New("could not detect image type")

// Matcher reports whether a file header belongs to a format.
type Matcher func(header []byte) bool

// Signature pairs a matcher with the canonical extension of its format.
type Signature struct {
	// Name is a human-readable format name (e.g. "TIFF (little-endian)").
	Name string

	// Ext is the canonical extension including the leading dot.
	Ext string

	// Match decides whether a header belongs to this format.
	Match Matcher
}

// Prefix matches headers that start with p. Headers shorter than p never match.
func Prefix(p []byte) Matcher {
	return func(header []byte) bool {
		return bytes.HasPrefix(header, p)
	}
}

// PrefixAndContains matches headers that start with prefix and also contain
// marker anywhere in the header window.
func PrefixAndContains(prefix, marker []byte) Matcher {
	return func(header []byte) bool {
		return bytes.HasPrefix(header, prefix) && bytes.Contains(header, marker)
	}
}

// table is tried in order; the first match wins.
var table = []Signature{
	{Name: "JPEG", Ext: ".jpg", Match: Prefix([]byte{0xFF, 0xD8, 0xFF})},
	{Name: "PNG", Ext: ".png", Match: Prefix([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A})},
	{Name: "GIF87a", Ext: ".gif", Match: Prefix([]byte("GIF87a"))},
	{Name: "GIF89a", Ext: ".gif", Match: Prefix([]byte("GIF89a"))},
	// RIFF alone also covers WAV and AVI; only WEBP in the header confirms WebP.
	{Name: "WebP", Ext: ".webp", Match: PrefixAndContains([]byte("RIFF"), []byte("WEBP"))},
	{Name: "BMP", Ext: ".bmp", Match: Prefix([]byte("BM"))},
	{Name: "ICO", Ext: ".ico", Match: Prefix([]byte{0x00, 0x00, 0x01, 0x00})},
	{Name: "CUR", Ext: ".cur", Match: Prefix([]byte{0x00, 0x00, 0x02, 0x00})},
	{Name: "TIFF (little-endian)", Ext: ".tif", Match: Prefix([]byte{'I', 'I', 0x2A, 0x00})},
	{Name: "TIFF (big-endian)", Ext: ".tif", Match: Prefix([]byte{'M', 'M', 0x00, 0x2A})},
}

// Table returns a copy of the signature table in match order.
func Table() []Signature {
	out := make([]Signature, len(table))
	copy(out, table)
	return out
}

// Detect returns the extension of the first signature matching header.
// The boolean is false when the header is undetermined.
func Detect(header []byte) (string, bool) {
	if len(header) > HeaderLen {
		header = header[:HeaderLen]
	}
	for _, s := range table {
		if s.Match(header) {
			return s.Ext, true
		}
	}
	return "", false
}

// DetectFile reads up to HeaderLen bytes of path and detects its format.
// It returns ErrUndetermined when no signature matches.
func DetectFile(fsys afero.Fs, path string) (string, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	header := make([]byte, HeaderLen)
	n, err := io.ReadFull(f, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading header of %s: %w", path, err)
	}

	ext, ok := Detect(header[:n])
	if !ok {
		return "", ErrUndetermined
	}
	return ext, nil
}
