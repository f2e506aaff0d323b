package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pla2blif/internal/convert"
	"github.com/pdiddy/pla2blif/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reconvert PLA sources as they change",
	Long: `Watch converts any out-of-date sources in the source directory, then keeps
running and reconverts each source whenever it is created or written.
Stop it with Ctrl-C.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := bindFlags(cmd.Flags(), convertFlagKeys); err != nil {
			return err
		}
		return bindFlags(cmd.Flags(), map[string]string{"watch.debounce": "debounce"})
	},
	RunE: runWatch,
}

func init() {
	addSourceFlags(watchCmd)
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "quiet period before a changed source is reconverted")
	watchCmd.Flags().Bool("no-index", false, "do not record conversions in the conversion index")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	noIndex, _ := cmd.Flags().GetBool("no-index")
	record := cfg.Index.Enabled && !noIndex

	src := convert.DirSource{Dir: cfg.Convert.SourceDir, Extension: cfg.Convert.Extension}
	dst := convert.DirDestination{Dir: cfg.Convert.DestDir}
	opts := convert.OptionsFrom(cfg.Convert)
	opts.FailFast = false

	names, err := src.List()
	if err != nil {
		return err
	}
	if len(names) > 0 {
		result := convert.New(src, dst, opts, logger).ConvertBatch(ctx, names, out)
		if record {
			if err := recordRun(ctx, cfg, result); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: could not record run in index: %v\n", err)
			}
		}
	}

	opts.Force = true
	opts.Jobs = 1
	forced := convert.New(src, dst, opts, logger)

	w := &watch.Watcher{
		Dir:       cfg.Convert.SourceDir,
		Extension: cfg.Convert.Extension,
		Debounce:  cfg.Watch.Debounce,
		Log:       logger,
	}
	fmt.Fprintf(out, "Watching %s for changes (Ctrl-C to stop)\n", cfg.Convert.SourceDir)
	return w.Run(ctx, func(name string) {
		result := forced.ConvertBatch(ctx, []string{name}, io.Discard)
		for _, conv := range result.Conversions {
			convert.PrintStatus(out, conv)
		}
		if record {
			if err := recordRun(ctx, cfg, result); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: could not record run in index: %v\n", err)
			}
		}
	})
}
