// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/imgtools/internal/fetch"
	"github.com/pdiddy/imgtools/internal/logctx"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <csv-file>",
	Short: "Download images listed in a CSV file",
	Long: `Fetch reads the file_url column of a CSV file and downloads every URL, in
row order, into the output directory (default "downloaded_images"). Rows with
an empty URL are skipped. Transient failures (429, 500, 502, 503, 504 and
connection errors) are retried with exponential backoff. Existing files are
never overwritten: a colliding name gets a numeric suffix.

A failed download is reported and the batch continues. Interrupting the run
prints a summary of partial progress.`,
	Example: `  imgtools fetch images.csv
  imgtools fetch images.csv --output-dir photos --max-retries 5
  imgtools fetch images.csv --report fetch.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().String("output-dir", "", "directory downloads are written to (default \"downloaded_images\")")
	fetchCmd.Flags().String("url-column", "", "CSV column holding the image URLs (default \"file_url\")")
	fetchCmd.Flags().Duration("timeout", 0, "per-request HTTP timeout (default 30s)")
	fetchCmd.Flags().String("user-agent", "", "User-Agent header sent with each request")
	fetchCmd.Flags().Int("max-retries", 0, "retries per URL on transient failures (default 3)")
	fetchCmd.Flags().Duration("retry-base-delay", 0, "initial retry backoff, doubled per attempt (default 1s)")
	fetchCmd.Flags().String("report", "", "write the batch result as YAML to this file")

	viper.BindPFlag("fetch.output_dir", fetchCmd.Flags().Lookup("output-dir"))
	viper.BindPFlag("fetch.url_column", fetchCmd.Flags().Lookup("url-column"))
	viper.BindPFlag("fetch.timeout", fetchCmd.Flags().Lookup("timeout"))
	viper.BindPFlag("fetch.user_agent", fetchCmd.Flags().Lookup("user-agent"))
	viper.BindPFlag("fetch.max_retries", fetchCmd.Flags().Lookup("max-retries"))
	viper.BindPFlag("fetch.retry_base_delay", fetchCmd.Flags().Lookup("retry-base-delay"))

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	cfg := loadConfig().Fetch

	records, err := fetch.ReadTableFile(args[0], cfg.URLColumn)
	if err != nil {
		return err
	}

	f := fetch.New(cfg, afero.NewOsFs())
	if err := f.EnsureOutputDir(); err != nil {
		return err
	}
	logctx.LoggerFromContext(ctx).Info("fetch configured",
		"rows", len(records),
		"output_dir", f.OutputDir(),
		"max_retries", f.Policy().MaxRetries,
		"retry_base_delay", f.Policy().BaseDelay)

	fmt.Fprintf(out, "Reading URLs from: %s\n", args[0])
	fmt.Fprintf(out, "Downloading images to: %s\n\n", f.OutputDir())

	result := f.FetchBatch(ctx, records, out)
	return writeReport(cmd, "fetch", result)
}
