// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch downloads images listed in a CSV table into a local directory.
package fetch

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"

	"github.com/pdiddy/imgtools/internal/fsutil"
	"github.com/pdiddy/imgtools/internal/httputil"
	"github.com/pdiddy/imgtools/internal/logctx"
	"github.com/pdiddy/imgtools/pkg/types"
)

const (
	// DefaultOutputDir is where downloads land when no directory is configured.
	DefaultOutputDir = "downloaded_images"

	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "imgtools/0.1"
	defaultExt       = ".jpg"
	urlDisplayLen    = 60
)

// contentTypeExt maps response media types to file extensions for URLs
// whose path carries no extension.
var contentTypeExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

// StatusError reports a non-2xx response that survived the retry policy.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d %s from %s", e.StatusCode, http.StatusText(e.StatusCode), e.URL)
}

// BatchResult holds the outcome of a batch fetch run.
type BatchResult struct {
	Downloaded  int               `yaml:"downloaded"`
	Skipped     int               `yaml:"skipped"`
	Failed      int               `yaml:"failed"`
	Interrupted bool              `yaml:"interrupted"`
	Saved       []types.SavedFile `yaml:"saved,omitempty"`
	Failures    []types.Failure   `yaml:"failures,omitempty"`
}

// Total returns the number of rows processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Skipped + r.Failed
}

// HasFailures reports whether any download failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Fetcher downloads URLs one at a time into OutputDir.
type Fetcher struct {
	client    *http.Client
	policy    httputil.RetryPolicy
	fs        afero.Fs
	outputDir string
	userAgent string
}

// New creates a Fetcher from cfg, writing through fsys. Zero-valued settings
// fall back to a 30s timeout, the default retry policy, "downloaded_images"
// and the imgtools User-Agent.
func New(cfg types.FetchConfig, fsys afero.Fs) *Fetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	policy := httputil.DefaultRetryPolicy()
	if cfg.MaxRetries > 0 {
		policy.MaxRetries = cfg.MaxRetries
	}
	if cfg.RetryBaseDelay > 0 {
		policy.BaseDelay = cfg.RetryBaseDelay
	}
	outputDir := cfg.OutputDir
	if outputDir == "" {
		outputDir = DefaultOutputDir
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		policy:    policy,
		fs:        fsys,
		outputDir: outputDir,
		userAgent: ua,
	}
}

// Policy returns the retry policy used for each request.
func (f *Fetcher) Policy() httputil.RetryPolicy {
	return f.policy
}

// OutputDir returns the directory downloads are written to.
func (f *Fetcher) OutputDir() string {
	return f.outputDir
}

// EnsureOutputDir creates the output directory if it does not exist.
func (f *Fetcher) EnsureOutputDir() error {
	if err := f.fs.MkdirAll(f.outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", f.outputDir, err)
	}
	return nil
}

// FetchBatch downloads every record in order, printing per-row status to w
// and returning a summary. Rows with an empty URL are skipped. A failed row
// never stops the batch; a cancelled ctx does, and the result is marked
// Interrupted.
func (f *Fetcher) FetchBatch(ctx context.Context, records []types.DownloadRecord, w io.Writer) BatchResult {
	var result BatchResult
	for _, rec := range records {
		if ctx.Err() != nil {
			result.Interrupted = true
			break
		}
		if rec.URL == "" {
			fmt.Fprintf(w, "row %d: skipping empty URL\n", rec.Index)
			result.Skipped++
			continue
		}

		fmt.Fprintf(w, "[%d] downloading: %s\n", rec.Index, truncate(rec.URL, urlDisplayLen))
		saved, err := f.FetchOne(ctx, rec)
		if err != nil {
			if ctx.Err() != nil {
				result.Interrupted = true
				break
			}
			fmt.Fprintf(w, "     failed: %v\n", err)
			result.Failed++
			result.Failures = append(result.Failures, types.Failure{Item: rec.URL, Error: err.Error()})
			continue
		}
		fmt.Fprintf(w, "     saved: %s (%s)\n", filepath.Base(saved.Path), humanize.Bytes(uint64(saved.Bytes)))
		result.Downloaded++
		result.Saved = append(result.Saved, saved)
	}

	if result.Interrupted {
		fmt.Fprintln(w, "\nDownload interrupted; reporting partial progress.")
	}
	fmt.Fprintf(w, "\nBatch summary: %d downloaded, %d skipped, %d failed (total: %d)\n",
		result.Downloaded, result.Skipped, result.Failed, result.Total())
	if len(result.Failures) > 0 {
		fmt.Fprintln(w, "\nFailed downloads:")
		for _, fl := range result.Failures {
			fmt.Fprintf(w, "  - %s\n    error: %s\n", fl.Item, fl.Error)
		}
	}
	return result
}

// FetchOne downloads a single record into the output directory under a
// collision-free name. Nothing is written unless the final response is 2xx
// and the body is read completely.
func (f *Fetcher) FetchOne(ctx context.Context, rec types.DownloadRecord) (types.SavedFile, error) {
	logger := logctx.LoggerFromContext(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rec.URL, nil)
	if err != nil {
		return types.SavedFile{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := httputil.Do(ctx, f.client, req, f.policy)
	if err != nil {
		return types.SavedFile{}, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return types.SavedFile{}, &StatusError{URL: rec.URL, StatusCode: resp.StatusCode}
	}

	name := FilenameFromURL(rec.URL, rec.Index)
	if !strings.Contains(name, ".") {
		name += ExtensionForContentType(resp.Header.Get("Content-Type"))
	}
	stem, ext := fsutil.SplitName(name)
	target := fsutil.UniquePath(f.fs, f.outputDir, stem, ext, nil)

	var n int64
	err = fsutil.WriteAtomic(f.fs, f.outputDir, filepath.Base(target), func(dst io.Writer) error {
		var copyErr error
		n, copyErr = io.Copy(dst, resp.Body)
		if copyErr != nil {
			return fmt.Errorf("writing download: %w", copyErr)
		}
		return nil
	})
	if err != nil {
		return types.SavedFile{}, err
	}

	logger.Debug("saved download", "url", rec.URL, "path", target, "bytes", n)
	return types.SavedFile{URL: rec.URL, Path: target, Bytes: n}, nil
}

// FilenameFromURL returns the last path segment of rawURL. When the segment
// is missing or has no '.', it returns "image_NNNN" built from index. A path
// ending in '/' has an empty last segment.
func FilenameFromURL(rawURL string, index int) string {
	var name string
	if u, err := url.Parse(rawURL); err == nil && !strings.HasSuffix(u.Path, "/") {
		name = path.Base(u.Path)
	}
	switch name {
	case "", ".", "..", "/":
		name = ""
	}
	if name == "" || !strings.Contains(name, ".") {
		return fmt.Sprintf("image_%04d", index)
	}
	return name
}

// ExtensionForContentType maps a Content-Type header to an extension,
// ignoring media type parameters. Unknown types yield ".jpg".
func ExtensionForContentType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.TrimSpace(contentType)
	}
	if ext, ok := contentTypeExt[strings.ToLower(mediaType)]; ok {
		return ext
	}
	return defaultExt
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
