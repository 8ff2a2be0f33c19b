// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pdiddy/imgtools/pkg/types"
)

// DefaultURLColumn is the CSV header of the column holding image URLs.
const DefaultURLColumn = "file_url"

// MissingColumnError reports an input table without the required URL column.
type MissingColumnError struct {
	Column string   // Required column name
	Found  []string // Header columns actually present
}

func (e *MissingColumnError) Error() string {
	if len(e.Found) == 0 {
		return fmt.Sprintf("CSV file must have a '%s' column (no header row found)", e.Column)
	}
	return fmt.Sprintf("CSV file must have a '%s' column; found columns: %s", e.Column, strings.Join(e.Found, ", "))
}

// ReadTableFile opens path and parses it with ReadTable.
func ReadTableFile(path, column string) ([]types.DownloadRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("CSV file '%s' not found", path)
		}
		return nil, fmt.Errorf("opening CSV file: %w", err)
	}
	defer f.Close()
	return ReadTable(f, column)
}

// ReadTable parses a CSV table with a header row and returns one record per
// data row. Records keep their row number even when the URL is empty, so the
// caller can report skipped rows. Columns other than column are ignored.
func ReadTable(r io.Reader, column string) ([]types.DownloadRecord, error) {
	if column == "" {
		column = DefaultURLColumn
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &MissingColumnError{Column: column}
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	col := -1
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		h = strings.TrimSpace(h)
		header[i] = h
		if h == column && col < 0 {
			col = i
		}
	}
	if col < 0 {
		return nil, &MissingColumnError{Column: column, Found: header}
	}

	var records []types.DownloadRecord
	for index := 1; ; index++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row %d: %w", index, err)
		}
		var url string
		if col < len(row) {
			url = strings.TrimSpace(row[col])
		}
		records = append(records, types.DownloadRecord{Index: index, URL: url})
	}
	return records, nil
}
