// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/imgtools/internal/logctx"
	"github.com/pdiddy/imgtools/internal/rename"
)

var renameCmd = &cobra.Command{
	Use:   "rename [directory]",
	Short: "Fix the extension of .undefined files by sniffing their contents",
	Long: `Rename reads the first bytes of every .undefined file in the directory
(default: the current directory, not recursive) and renames it with the
extension of the detected image format: JPEG, PNG, GIF, WebP, BMP, ICO, CUR or
TIFF. Files whose type cannot be determined are reported and left alone. A
name that is already taken gets a numeric suffix (photo_1.png, photo_2.png).

With --dry-run nothing is renamed; the planned renames are printed instead.`,
	Example: `  imgtools rename ./images --dry-run
  imgtools rename ./images
  imgtools rename ./images -n --report plan.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRename,
}

func init() {
	renameCmd.Flags().BoolP("dry-run", "n", false, "show planned renames without changing anything")
	renameCmd.Flags().String("placeholder", "", "extension of files to inspect (default \".undefined\")")
	renameCmd.Flags().String("report", "", "write the decisions as YAML to this file")

	viper.BindPFlag("rename.placeholder", renameCmd.Flags().Lookup("placeholder"))

	rootCmd.AddCommand(renameCmd)
}

func runRename(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	opts := rename.Options{
		Dir:         targetDir(args),
		Placeholder: loadConfig().Rename.Placeholder,
		DryRun:      dryRun,
	}
	logctx.LoggerFromContext(cmd.Context()).Info("rename configured",
		"dir", opts.Dir, "placeholder", opts.Placeholder, "dry_run", opts.DryRun)

	result, err := rename.RenameDir(cmd.Context(), afero.NewOsFs(), opts, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	return writeReport(cmd, "rename", result)
}
