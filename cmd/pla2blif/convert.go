package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pla2blif/internal/convert"
)

// convertFlagKeys maps config keys to the flags shared by convert and watch.
var convertFlagKeys = map[string]string{
	"convert.source_dir":  "source-dir",
	"convert.dest_dir":    "dest-dir",
	"convert.extension":   "extension",
	"convert.comment":     "comment",
	"convert.infer_names": "infer-names",
}

var convertCmd = &cobra.Command{
	Use:   "convert [sources...]",
	Short: "Convert PLA sources to BLIF",
	Long: `Convert reads PLA truth tables and writes one BLIF file per source into the
destination directory, named after the source base name. Without arguments
every file with the source extension in the source directory is converted;
dotfiles are ignored.

Outputs that are newer than their source are skipped unless --force is given.
A failing source does not stop the batch unless --fail-fast is set; the
command exits non-zero when any source failed.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := bindFlags(cmd.Flags(), convertFlagKeys); err != nil {
			return err
		}
		return bindFlags(cmd.Flags(), map[string]string{
			"convert.force":     "force",
			"convert.fail_fast": "fail-fast",
			"convert.jobs":      "jobs",
		})
	},
	RunE: runConvert,
}

func init() {
	addSourceFlags(convertCmd)
	convertCmd.Flags().Bool("force", false, "convert sources even when their output is up to date")
	convertCmd.Flags().Bool("fail-fast", false, "stop after the first failing source")
	convertCmd.Flags().Int("jobs", 1, "number of sources converted concurrently")
	convertCmd.Flags().Bool("no-index", false, "do not record this run in the conversion index")
	convertCmd.Flags().String("report", "", "write a YAML report of the run to this path")

	rootCmd.AddCommand(convertCmd)
}

// addSourceFlags registers the flags convert and watch share.
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().String("source-dir", "pla", "directory holding PLA sources")
	cmd.Flags().String("dest-dir", "blif", "directory receiving BLIF output")
	cmd.Flags().String("extension", ".pla", "source file extension used when listing the source directory")
	cmd.Flags().String("comment", convert.DefaultComment, "text of the header comment in each BLIF file")
	cmd.Flags().Bool("infer-names", false, "derive variable names from .i/.o when .ilb/.ob are missing")
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	src := convert.DirSource{Dir: cfg.Convert.SourceDir, Extension: cfg.Convert.Extension}
	names := args
	if len(names) == 0 {
		names, err = src.List()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "no %s sources in %s\n", cfg.Convert.Extension, cfg.Convert.SourceDir)
			return nil
		}
	} else {
		// Explicit arguments are paths, not names inside the source directory.
		src.Dir = ""
	}

	dst := convert.DirDestination{Dir: cfg.Convert.DestDir}
	c := convert.New(src, dst, convert.OptionsFrom(cfg.Convert), logger)
	result := c.ConvertBatch(cmd.Context(), names, cmd.OutOrStdout())

	if path, _ := cmd.Flags().GetString("report"); path != "" {
		if err := result.WriteReport(path); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
	}

	if noIndex, _ := cmd.Flags().GetBool("no-index"); cfg.Index.Enabled && !noIndex {
		if err := recordRun(cmd.Context(), cfg, result); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: could not record run in index: %v\n", err)
		}
	}

	if result.HasFailures() {
		return fmt.Errorf("%d of %d sources failed", result.Failed, result.Total())
	}
	return nil
}
