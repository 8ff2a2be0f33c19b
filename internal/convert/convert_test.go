// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/imgtools/internal/fsutil"
)

// fakeConverter implements Converter for testing. It copies input to output
// or returns an error, depending on configuration.
type fakeConverter struct {
	err error
}

func (f *fakeConverter) Convert(r io.Reader, w io.Writer) error {
	if f.err != nil {
		return f.err
	}
	_, err := io.Copy(w, r)
	return err
}

// corruptWebP has a valid RIFF/WEBP header but no decodable payload.
var corruptWebP = []byte("RIFF\x10\x00\x00\x00WEBPVP8 garbage!")

func writeFile(t *testing.T, fsys afero.Fs, path string, data []byte) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fsys, path, data, 0o644))
}

func gifBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewPaletted(image.Rect(0, 0, 4, 3), color.Palette{color.Black, color.White})
	img.SetColorIndex(1, 1, 1)
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestConvertDir_FakeConverter(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/img/a.webp", []byte("a"))
	writeFile(t, fsys, "/img/b.webp", []byte("b"))
	writeFile(t, fsys, "/img/c.jpg", []byte("c"))

	var log bytes.Buffer
	result, err := ConvertDir(context.Background(), &fakeConverter{}, fsys, Options{Dir: "/img"}, &log)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Converted)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, []string{"/img/a.png", "/img/b.png"}, result.Outputs)

	for _, name := range []string{"a.webp", "b.webp", "a.png", "b.png", "c.jpg"} {
		ok, err := afero.Exists(fsys, filepath.Join("/img", name))
		require.NoError(t, err)
		assert.True(t, ok, "%s should exist", name)
	}
	assert.Contains(t, log.String(), "Found 2 .webp file(s) in '/img'")
	assert.Contains(t, log.String(), "converted: a.webp -> a.png")
	assert.Contains(t, log.String(), "Batch summary: 2 converted, 0 failed (total: 2)")
}

func TestConvertDir_DeleteAfterSuccess(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/img/a.webp", []byte("a"))

	var log bytes.Buffer
	result, err := ConvertDir(context.Background(), &fakeConverter{}, fsys, Options{Dir: "/img", Delete: true}, &log)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Converted)
	assert.Equal(t, 1, result.Deleted)
	ok, _ := afero.Exists(fsys, "/img/a.webp")
	assert.False(t, ok, "source should be deleted")
	ok, _ = afero.Exists(fsys, "/img/a.png")
	assert.True(t, ok)
	assert.Contains(t, log.String(), "DELETED")
	assert.Contains(t, log.String(), "(source deleted)")
}

func TestConvertDir_CorruptSourceKeptEvenWithDelete(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/img/bad.webp", corruptWebP)

	conv, err := NewImageConverter(".png")
	require.NoError(t, err)

	var log bytes.Buffer
	result, err := ConvertDir(context.Background(), conv, fsys, Options{Dir: "/img", Delete: true}, &log)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Converted)
	assert.Equal(t, 1, result.Failed)
	assert.True(t, result.HasFailures())
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "/img/bad.webp", result.Failures[0].Item)

	data, err := afero.ReadFile(fsys, "/img/bad.webp")
	require.NoError(t, err, "source must not be deleted on failure")
	assert.Equal(t, corruptWebP, data, "source must be unmodified")

	entries, err := afero.ReadDir(fsys, "/img")
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no output or temp file should remain")
	assert.Contains(t, log.String(), "failed:")
}

func TestConvertDir_FailureDoesNotAbortBatch(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/img/a.gif", gifBytes(t))
	writeFile(t, fsys, "/img/b.gif", []byte("not a gif"))
	writeFile(t, fsys, "/img/c.gif", gifBytes(t))

	conv, err := NewImageConverter(".png")
	require.NoError(t, err)

	var log bytes.Buffer
	result, err := ConvertDir(context.Background(), conv, fsys, Options{Dir: "/img", From: ".gif", To: ".png"}, &log)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Converted)
	assert.Equal(t, 1, result.Failed)

	f, err := fsys.Open("/img/c.png")
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())
}

func TestConvertDir_NoMatches(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/img/a.png", []byte("a"))

	var log bytes.Buffer
	result, err := ConvertDir(context.Background(), &fakeConverter{}, fsys, Options{Dir: "/img"}, &log)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Total())
	assert.Equal(t, "No .webp files found in '/img'\n", log.String())
}

func TestConvertDir_InvalidDir(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/file.webp", []byte("a"))

	_, err := ConvertDir(context.Background(), &fakeConverter{}, fsys, Options{Dir: "/missing"}, io.Discard)
	var de *fsutil.DirError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "not found", de.Reason)

	_, err = ConvertDir(context.Background(), &fakeConverter{}, fsys, Options{Dir: "/file.webp"}, io.Discard)
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "is not a directory", de.Reason)
}

func TestConvertDir_SameExtension(t *testing.T) {
	_, err := ConvertDir(context.Background(), &fakeConverter{}, afero.NewMemMapFs(), Options{Dir: "/", From: ".png", To: ".png"}, io.Discard)
	require.Error(t, err)
}

func TestConvertFile_ConverterError(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/img/a.webp", []byte("a"))

	boom := errors.New("decoder crashed")
	_, deleted, err := ConvertFile(&fakeConverter{err: boom}, fsys, "/img/a.webp", ".png", true)
	assert.ErrorIs(t, err, boom)
	assert.False(t, deleted)

	ok, _ := afero.Exists(fsys, "/img/a.webp")
	assert.True(t, ok)
	ok, _ = afero.Exists(fsys, "/img/a.png")
	assert.False(t, ok)
}

func TestNewImageConverter(t *testing.T) {
	for _, ext := range []string{".png", ".jpg", ".jpeg", ".gif", ".tif", ".bmp", "PNG"} {
		_, err := NewImageConverter(ext)
		assert.NoError(t, err, "ext %s", ext)
	}
	_, err := NewImageConverter(".webp")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unsupported target format"))
}

// cancelAfterConverter converts normally, then cancels the batch context.
type cancelAfterConverter struct {
	fakeConverter
	cancel context.CancelFunc
}

func (c *cancelAfterConverter) Convert(r io.Reader, w io.Writer) error {
	defer c.cancel()
	return c.fakeConverter.Convert(r, w)
}

func TestConvertDir_InterruptedBetweenFiles(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/img/a.webp", []byte("a"))
	writeFile(t, fsys, "/img/b.webp", []byte("b"))
	writeFile(t, fsys, "/img/c.webp", []byte("c"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var log bytes.Buffer
	result, err := ConvertDir(ctx, &cancelAfterConverter{cancel: cancel}, fsys, Options{Dir: "/img", Delete: true}, &log)
	require.NoError(t, err)

	assert.True(t, result.Interrupted)
	assert.Equal(t, 1, result.Converted)
	assert.Equal(t, 0, result.Failed, "interruption is not a failure")

	ok, err := afero.Exists(fsys, "/img/a.png")
	require.NoError(t, err)
	assert.True(t, ok)
	for _, name := range []string{"/img/b.webp", "/img/c.webp"} {
		ok, err := afero.Exists(fsys, name)
		require.NoError(t, err)
		assert.True(t, ok, "%s must be left untouched", name)
	}
	ok, err = afero.Exists(fsys, "/img/b.png")
	require.NoError(t, err)
	assert.False(t, ok)

	out := log.String()
	assert.Contains(t, out, "interrupted; reporting partial progress")
	assert.Contains(t, out, "Batch summary: 1 converted, 0 failed (total: 1)")
}
