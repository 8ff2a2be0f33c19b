// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/imgtools/internal/convert"
	"github.com/pdiddy/imgtools/internal/logctx"
)

var convertCmd = &cobra.Command{
	Use:   "convert [directory]",
	Short: "Convert WebP images in a directory to PNG",
	Long: `Convert re-encodes every .webp file in the directory (default: the current
directory, not recursive) as a .png file with the same stem. An existing PNG
with that name is replaced. With --delete, each source file is removed only
after its PNG has been written. A file that cannot be decoded is reported and
left in place.`,
	Example: `  imgtools convert
  imgtools convert ./images
  imgtools convert ./images --delete
  imgtools convert -d ./images`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().BoolP("delete", "d", false, "delete each source file after a successful conversion")
	convertCmd.Flags().String("from", "", "source extension (default \".webp\")")
	convertCmd.Flags().String("to", "", "target extension (default \".png\")")
	convertCmd.Flags().String("report", "", "write the batch result as YAML to this file")

	viper.BindPFlag("convert.from", convertCmd.Flags().Lookup("from"))
	viper.BindPFlag("convert.to", convertCmd.Flags().Lookup("to"))

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	cfg := loadConfig().Convert
	del, _ := cmd.Flags().GetBool("delete")

	opts := convert.Options{
		Dir:    targetDir(args),
		From:   cfg.From,
		To:     cfg.To,
		Delete: del,
	}

	c, err := convert.NewImageConverter(opts.To)
	if err != nil {
		return err
	}
	logctx.LoggerFromContext(cmd.Context()).Info("convert configured",
		"dir", opts.Dir, "from", opts.From, "to", opts.To, "delete", opts.Delete)

	result, err := convert.ConvertDir(cmd.Context(), c, afero.NewOsFs(), opts, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	return writeReport(cmd, "convert", result)
}
