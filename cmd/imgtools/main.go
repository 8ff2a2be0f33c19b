// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the imgtools CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/imgtools/internal/convert"
	"github.com/pdiddy/imgtools/internal/fetch"
	"github.com/pdiddy/imgtools/internal/logctx"
	"github.com/pdiddy/imgtools/internal/rename"
	"github.com/pdiddy/imgtools/internal/report"
	"github.com/pdiddy/imgtools/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the imgtools CLI.
var rootCmd = &cobra.Command{
	Use:   "imgtools",
	Short: "Bulk image download and file hygiene utilities",
	Long: `imgtools bundles three independent utilities for working with folders of
images:

  fetch    download every image listed in a CSV file's file_url column
  convert  re-encode all .webp images in a directory as .png
  rename   detect the real type of .undefined files and fix their extension

The utilities share nothing but the filesystem: the fetch output directory can
be fed to convert and rename.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger := logctx.New(os.Stderr, viper.GetString("log_level"))
		if used := viper.ConfigFileUsed(); used != "" {
			logger.Debug("using config file", "path", used)
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		cmd.SetContext(logctx.WithLogger(ctx, logger))
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./imgtools.yaml or ~/.config/imgtools/imgtools.yaml)")
	rootCmd.PersistentFlags().String("log-level", "warn", "diagnostic log level: debug, info, warn, error")
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	viper.SetDefault("fetch.output_dir", fetch.DefaultOutputDir)
	viper.SetDefault("fetch.url_column", fetch.DefaultURLColumn)
	viper.SetDefault("convert.from", convert.DefaultFrom)
	viper.SetDefault("convert.to", convert.DefaultTo)
	viper.SetDefault("rename.placeholder", rename.DefaultPlaceholder)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("imgtools")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "imgtools"))
		}
	}

	viper.SetEnvPrefix("IMGTOOLS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			fmt.Fprintln(os.Stderr, "warning: could not read config file:", err)
		}
	}
}

// loadConfig assembles the effective configuration. Flags bound to viper
// keys take precedence over the environment, which takes precedence over
// the config file.
func loadConfig() types.Config {
	return types.Config{
		LogLevel: viper.GetString("log_level"),
		Fetch: types.FetchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:        viper.GetDuration("fetch.timeout"),
				UserAgent:      viper.GetString("fetch.user_agent"),
				MaxRetries:     viper.GetInt("fetch.max_retries"),
				RetryBaseDelay: viper.GetDuration("fetch.retry_base_delay"),
			},
			OutputDir: viper.GetString("fetch.output_dir"),
			URLColumn: viper.GetString("fetch.url_column"),
		},
		Convert: types.ConvertConfig{
			From: viper.GetString("convert.from"),
			To:   viper.GetString("convert.to"),
		},
		Rename: types.RenameConfig{
			Placeholder: viper.GetString("rename.placeholder"),
		},
	}
}

// targetDir returns the optional positional directory argument, or ".".
func targetDir(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return "."
}

// writeReport writes result to the path given by --report, if any.
func writeReport(cmd *cobra.Command, command string, result any) error {
	path, _ := cmd.Flags().GetString("report")
	if path == "" {
		return nil
	}
	if err := report.Write(path, command, result); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", path)
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
