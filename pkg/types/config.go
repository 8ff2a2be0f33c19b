// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds configuration and record types shared by the CLI and stages.
package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout bounds each individual HTTP request, including reading the body.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "imgtools/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries is the number of retries for transient failures (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// RetryBaseDelay is the wait before the first retry; it doubles on each
	// following retry (default 1s).
	RetryBaseDelay time.Duration `json:"retry_base_delay" yaml:"retry_base_delay" mapstructure:"retry_base_delay"`
}

// FetchConfig holds settings for the fetch stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// OutputDir is the directory downloaded images are written to
	// (default "downloaded_images").
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// URLColumn is the CSV header naming the URL column (default "file_url").
	URLColumn string `json:"url_column" yaml:"url_column" mapstructure:"url_column"`
}

// ConvertConfig holds settings for the convert stage.
type ConvertConfig struct {
	// From is the source extension including the dot (default ".webp").
	From string `json:"from" yaml:"from" mapstructure:"from"`

	// To is the target extension including the dot (default ".png").
	To string `json:"to" yaml:"to" mapstructure:"to"`
}

// RenameConfig holds settings for the rename stage.
type RenameConfig struct {
	// Placeholder is the extension marking files of unknown type
	// (default ".undefined").
	Placeholder string `json:"placeholder" yaml:"placeholder" mapstructure:"placeholder"`
}

// Config groups all stage configurations, as read from imgtools.yaml.
type Config struct {
	LogLevel string        `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
	Fetch    FetchConfig   `json:"fetch" yaml:"fetch" mapstructure:"fetch"`
	Convert  ConvertConfig `json:"convert" yaml:"convert" mapstructure:"convert"`
	Rename   RenameConfig  `json:"rename" yaml:"rename" mapstructure:"rename"`
}
