// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// DownloadRecord is one row of the fetch input table.
type DownloadRecord struct {
	// Index is the 1-based data row number (the header row is not counted).
	Index int `json:"index" yaml:"index"`

	// URL is the trimmed value of the URL column; empty rows are skipped.
	URL string `json:"url" yaml:"url"`
}

// SavedFile records a successful download.
type SavedFile struct {
	URL   string `json:"url" yaml:"url"`
	Path  string `json:"path" yaml:"path"`
	Bytes int64  `json:"bytes" yaml:"bytes"`
}

// Failure records a per-item error. Item is a URL for fetch and a file path
// for convert and rename.
type Failure struct {
	Item  string `json:"item" yaml:"item"`
	Error string `json:"error" yaml:"error"`
}
