package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pla2blif/internal/convert"
	"github.com/pdiddy/pla2blif/internal/index"
	"github.com/pdiddy/pla2blif/pkg/types"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "List recorded convert runs and their conversions",
	Long: `Index queries the conversion index written by convert and watch. Without
flags it lists recent runs. With --run it lists the conversions of one run
("latest" selects the most recent); --status and --model filter conversions
across runs. --export writes the selected conversions to export.yaml and
export.json next to the database.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd.Flags(), map[string]string{
			"convert.dest_dir": "dest-dir",
			"index.path":       "index-path",
		})
	},
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().String("dest-dir", "blif", "output directory whose default index is used")
	indexCmd.Flags().String("index-path", "", "index database (default: <dest-dir>/.index/pla2blif.db)")
	indexCmd.Flags().String("run", "", `run ID whose conversions to list, or "latest"`)
	indexCmd.Flags().String("status", "", "filter conversions by status: converted, skipped, failed, canceled")
	indexCmd.Flags().String("model", "", "filter conversions by model name")
	indexCmd.Flags().Int("limit", 20, "maximum number of rows")
	indexCmd.Flags().Bool("json", false, "print results as JSON")
	indexCmd.Flags().Bool("export", false, "export the selected conversions to YAML and JSON files")

	rootCmd.AddCommand(indexCmd)
}

func indexPath(cfg types.Config) string {
	if cfg.Index.Path != "" {
		return cfg.Index.Path
	}
	return index.DefaultPath(cfg.Convert.DestDir)
}

func openIndex(cfg types.Config) (*index.Store, error) {
	return index.NewStore(indexPath(cfg))
}

// recordRun stores a batch result in the index.
func recordRun(ctx context.Context, cfg types.Config, result convert.BatchResult) error {
	store, err := openIndex(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	return store.RecordRun(ctx, index.Run{
		ID:          result.RunID,
		StartedAt:   result.StartedAt,
		FinishedAt:  result.FinishedAt,
		SourceDir:   cfg.Convert.SourceDir,
		DestDir:     cfg.Convert.DestDir,
		Converted:   result.Converted,
		Skipped:     result.Skipped,
		Failed:      result.Failed,
		Canceled:    result.Canceled,
		Conversions: result.Conversions,
	})
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if _, err := os.Stat(indexPath(cfg)); err != nil {
		return fmt.Errorf("no index at %s: run convert first", indexPath(cfg))
	}
	store, err := openIndex(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	flags := cmd.Flags()
	runID, _ := flags.GetString("run")
	status, _ := flags.GetString("status")
	model, _ := flags.GetString("model")
	limit, _ := flags.GetInt("limit")
	asJSON, _ := flags.GetBool("json")
	export, _ := flags.GetBool("export")
	out := cmd.OutOrStdout()

	if runID == "latest" {
		latest, err := store.LatestRun(ctx)
		if err != nil {
			return err
		}
		runID = latest.ID
	}

	opts := index.QueryOptions{
		RunID:      runID,
		Status:     types.ConversionStatus(status),
		Model:      model,
		MaxResults: limit,
	}

	if export {
		yamlPath, err := store.ExportYAML(ctx, opts)
		if err != nil {
			return err
		}
		jsonPath, err := store.ExportJSON(ctx, opts)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Exported to %s and %s\n", yamlPath, jsonPath)
		return nil
	}

	if runID == "" && status == "" && model == "" {
		runs, err := store.Runs(ctx, limit)
		if err != nil {
			return err
		}
		if asJSON {
			return writeJSON(out, runs)
		}
		printRuns(out, runs)
		return nil
	}

	convs, err := store.Conversions(ctx, opts)
	if err != nil {
		return err
	}
	if asJSON {
		return writeJSON(out, convs)
	}
	printConversions(out, convs)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printRuns(w io.Writer, runs []index.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tCONVERTED\tSKIPPED\tFAILED\tCANCELED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\n", r.ID, r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Converted, r.Skipped, r.Failed, r.Canceled)
	}
	tw.Flush()
}

func printConversions(w io.Writer, convs []index.Conversion) {
	if len(convs) == 0 {
		fmt.Fprintln(w, "No matching conversions.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tSTATUS\tINPUTS\tOUTPUTS\tROWS\tMINTERMS\tERROR")
	for _, c := range convs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%s\n", c.Source, c.Status,
			c.Inputs, c.Outputs, c.Rows, c.Minterms, c.Error)
	}
	tw.Flush()
}
