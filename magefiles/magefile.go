//go:build mage

// Package main contains Mage build targets for imgtools developer tooling.
package main

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "imgtools"
	cmdPkg  = "./cmd/imgtools"
	cfgFile = "imgtools.yaml"
)

// Default is the target run when mage is invoked without arguments.
var Default = Build

// sampleConfig is written by Init. Every key is optional.
const sampleConfig = `# imgtools configuration. Flags and IMGTOOLS_* environment
# variables override these values.
log_level: warn
fetch:
  output_dir: downloaded_images
  url_column: file_url
  timeout: 30s
  max_retries: 3
  retry_base_delay: 1s
convert:
  from: .webp
  to: .png
rename:
  placeholder: .undefined
`

// Init writes a sample imgtools.yaml into the working directory unless one
// already exists.
func Init() error {
	if _, err := os.Stat(cfgFile); err == nil {
		fmt.Printf("%s already exists, leaving it alone.\n", cfgFile)
		return nil
	}
	if err := os.WriteFile(cfgFile, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", cfgFile, err)
	}
	fmt.Printf("Wrote %s\n", cfgFile)
	return nil
}

// Build compiles the CLI binary into bin/. The version is taken from
// VERSION in the environment when set.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	ldflags := ""
	if v := os.Getenv("VERSION"); v != "" {
		ldflags = "-X main.version=" + v
	}
	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Check runs vet and the tests, then builds.
func Check() {
	mg.SerialDeps(Vet, Test, Build)
}

// Vet runs go vet over the module.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Clean removes build output.
func Clean() error {
	fmt.Printf("Removing %s\n", binDir)
	return sh.Rm(binDir)
}

// Stats prints project metrics: Go production/test LOC and documentation word count.
func Stats() error {
	prodLines, testLines, err := countGoLines(".")
	if err != nil {
		return err
	}
	docWords, err := countDocWords(".")
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %s\n", humanize.Comma(int64(prodLines)))
	fmt.Printf("Lines of code (Go, tests):      %s\n", humanize.Comma(int64(testLines)))
	fmt.Printf("Words (documentation):          %s\n", humanize.Comma(int64(docWords)))
	return nil
}

// skipDir reports whether a directory is excluded from Stats.
func skipDir(name string) bool {
	return name != "." && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == binDir)
}

// countGoLines walks root and counts non-blank lines in production and test
// Go files.
func countGoLines(root string) (prod, test int, err error) {
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		n := 0
		sc := bufio.NewScanner(bytes.NewReader(data))
		for sc.Scan() {
			if strings.TrimSpace(sc.Text()) != "" {
				n++
			}
		}
		if strings.HasSuffix(path, "_test.go") {
			test += n
		} else {
			prod += n
		}
		return nil
	})
	return prod, test, err
}

// countDocWords counts words in top-level Markdown files.
func countDocWords(root string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(root, "*.md"))
	if err != nil {
		return 0, err
	}
	total := 0
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return 0, fmt.Errorf("reading %s: %w", path, err)
		}
		total += len(strings.Fields(string(data)))
	}
	return total, nil
}
