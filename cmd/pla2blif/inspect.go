package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pla2blif/internal/blif"
	"github.com/pdiddy/pla2blif/internal/convert"
	"github.com/pdiddy/pla2blif/internal/pla"
	"github.com/pdiddy/pla2blif/pkg/types"
)

// inspection is the YAML summary printed by inspect.
type inspection struct {
	Source           string   `yaml:"source"`
	Model            string   `yaml:"model"`
	Inputs           []string `yaml:"inputs"`
	Outputs          []string `yaml:"outputs"`
	CanonicalInputs  []string `yaml:"canonical_inputs"`
	CanonicalOutputs []string `yaml:"canonical_outputs"`
	DeclaredInputs   int      `yaml:"declared_inputs,omitempty"`
	DeclaredOutputs  int      `yaml:"declared_outputs,omitempty"`
	DeclaredProducts int      `yaml:"declared_products,omitempty"`
	Rows             int      `yaml:"rows"`
	Minterms         []int    `yaml:"minterms_per_output,omitempty"`
	Error            string   `yaml:"error,omitempty"`
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.pla>",
	Short: "Summarize a PLA source or print its BLIF",
	Long: `Inspect parses one PLA source and prints a YAML summary: the declared and
canonical variable names, the row count, and the number of minterms each
output block would list. With --blif the BLIF text is printed instead of
the summary, without writing any file.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd.Flags(), map[string]string{
			"convert.comment":     "comment",
			"convert.infer_names": "infer-names",
		})
	},
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().Bool("blif", false, "print the BLIF text instead of the summary")
	inspectCmd.Flags().String("comment", convert.DefaultComment, "text of the BLIF header comment")
	inspectCmd.Flags().Bool("infer-names", false, "derive variable names from .i/.o when .ilb/.ob are missing")

	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path := args[0]

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %w", types.ErrSourceUnreadable, err)
	}
	defer f.Close()

	c, err := pla.Parse(f, pla.Options{Source: path, InferNames: cfg.Convert.InferNames})
	if err != nil {
		return err
	}
	canon := pla.Canonicalize(c)
	model := convert.ModelName(path)
	m, buildErr := blif.Build(canon, model, cfg.Convert.Comment)

	if asBLIF, _ := cmd.Flags().GetBool("blif"); asBLIF {
		if buildErr != nil {
			return buildErr
		}
		_, err := m.WriteTo(cmd.OutOrStdout())
		return err
	}

	in := inspection{
		Source:           path,
		Model:            model,
		Inputs:           c.Inputs,
		Outputs:          c.Outputs,
		CanonicalInputs:  canon.Inputs,
		CanonicalOutputs: canon.Outputs,
		DeclaredInputs:   c.DeclaredInputs,
		DeclaredOutputs:  c.DeclaredOutputs,
		DeclaredProducts: c.DeclaredProducts,
		Rows:             len(c.Rows),
	}
	if buildErr != nil {
		in.Error = buildErr.Error()
	} else {
		for _, b := range m.Blocks {
			in.Minterms = append(in.Minterms, len(b.Minterms))
		}
	}

	data, err := yaml.Marshal(&in)
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
