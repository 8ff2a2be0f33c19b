// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/imgtools/pkg/types"
)

func TestReadTable(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []types.DownloadRecord
	}{
		{
			name:  "single column",
			input: "file_url\nhttps://a/1.png\nhttps://a/2.png\n",
			want: []types.DownloadRecord{
				{Index: 1, URL: "https://a/1.png"},
				{Index: 2, URL: "https://a/2.png"},
			},
		},
		{
			name:  "other columns ignored and values trimmed",
			input: "id,file_url,tag\n1,  https://a/1.png  ,cat\n2,https://a/2.png,dog\n",
			want: []types.DownloadRecord{
				{Index: 1, URL: "https://a/1.png"},
				{Index: 2, URL: "https://a/2.png"},
			},
		},
		{
			name:  "empty and short rows keep numbering",
			input: "id,file_url\n1,\n2,   \n3\n4,https://a/4.png\n",
			want: []types.DownloadRecord{
				{Index: 1, URL: ""},
				{Index: 2, URL: ""},
				{Index: 3, URL: ""},
				{Index: 4, URL: "https://a/4.png"},
			},
		},
		{
			name:  "byte order mark on header",
			input: "\ufefffile_url\nhttps://a/1.png\n",
			want:  []types.DownloadRecord{{Index: 1, URL: "https://a/1.png"}},
		},
		{
			name:  "header only",
			input: "file_url\n",
			want:  nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadTable(strings.NewReader(tt.input), "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadTable_MissingColumn(t *testing.T) {
	_, err := ReadTable(strings.NewReader("url,name\nhttps://a/1.png,x\n"), DefaultURLColumn)
	require.Error(t, err)

	var mc *MissingColumnError
	require.True(t, errors.As(err, &mc))
	assert.Equal(t, "file_url", mc.Column)
	assert.Equal(t, []string{"url", "name"}, mc.Found)
	assert.Contains(t, err.Error(), "found columns: url, name")
}

func TestReadTable_EmptyInput(t *testing.T) {
	_, err := ReadTable(strings.NewReader(""), DefaultURLColumn)
	var mc *MissingColumnError
	require.True(t, errors.As(err, &mc))
	assert.Empty(t, mc.Found)
}

func TestReadTable_CustomColumn(t *testing.T) {
	got, err := ReadTable(strings.NewReader("image\nhttps://a/1.png\n"), "image")
	require.NoError(t, err)
	assert.Equal(t, []types.DownloadRecord{{Index: 1, URL: "https://a/1.png"}}, got)
}

func TestReadTableFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "images.csv")
	require.NoError(t, os.WriteFile(path, []byte("file_url\nhttps://a/1.png\n"), 0o644))

	got, err := ReadTableFile(path, DefaultURLColumn)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = ReadTableFile(filepath.Join(dir, "missing.csv"), DefaultURLColumn)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
