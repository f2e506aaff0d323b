// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"
)

const examplePLA = `# example
.i 2
.o 1
.ilb a b
.ob x
00 1
01 0
10 1
11 0
.e
`

// execute runs the CLI with args and returns its combined output. Flag
// values are reset first because cobra keeps them across executions.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// workspace creates pla/ with the given sources and returns the pla and blif dirs.
func workspace(t *testing.T, sources map[string]string) (string, string) {
	t.Helper()
	root := t.TempDir()
	plaDir := filepath.Join(root, "pla")
	require.NoError(t, os.MkdirAll(plaDir, 0o755))
	for name, text := range sources {
		require.NoError(t, os.WriteFile(filepath.Join(plaDir, name), []byte(text), 0o644))
	}
	return plaDir, filepath.Join(root, "blif")
}

func TestConvertCommand(t *testing.T) {
	plaDir, blifDir := workspace(t, map[string]string{"ex.pla": examplePLA, ".DS_Store": "x"})
	report := filepath.Join(t.TempDir(), "report.yaml")

	out, err := execute(t, "convert", "--source-dir", plaDir, "--dest-dir", blifDir, "--comment", "cli", "--report", report)
	require.NoError(t, err, out)
	assert.Contains(t, out, "converted: ex.pla")
	assert.Contains(t, out, "Batch summary: 1 converted, 0 skipped, 0 failed, 0 canceled (total: 1)")

	data, err := os.ReadFile(filepath.Join(blifDir, "ex.blif"))
	require.NoError(t, err)
	assert.Equal(t, "# cli\n.model ex\n.inputs i0 i1\n.outputs o0\n.names i0 i1 o0\n00 1\n10 1\n.end\n", string(data))

	_, err = os.Stat(filepath.Join(blifDir, ".index", "pla2blif.db"))
	assert.NoError(t, err, "run should be recorded in the index")
	_, err = os.Stat(report)
	assert.NoError(t, err)

	out, err = execute(t, "convert", "--source-dir", plaDir, "--dest-dir", blifDir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "skipped: ex.pla (up to date)")

	out, err = execute(t, "convert", "--source-dir", plaDir, "--dest-dir", blifDir, "--force", "--no-index")
	require.NoError(t, err, out)
	assert.Contains(t, out, "converted: ex.pla")
}

func TestConvertCommand_ExplicitPaths(t *testing.T) {
	plaDir, blifDir := workspace(t, map[string]string{"a.pla": examplePLA, "b.pla": examplePLA})

	out, err := execute(t, "convert", "--dest-dir", blifDir, "--no-index", filepath.Join(plaDir, "b.pla"))
	require.NoError(t, err, out)

	_, err = os.Stat(filepath.Join(blifDir, "b.blif"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(blifDir, "a.blif"))
	assert.True(t, os.IsNotExist(err))
}

func TestConvertCommand_Failure(t *testing.T) {
	plaDir, blifDir := workspace(t, map[string]string{
		"good.pla": examplePLA,
		"bad.pla":  ".ilb a\n.ob x y\n0 1\n",
	})

	out, err := execute(t, "convert", "--source-dir", plaDir, "--dest-dir", blifDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 sources failed")
	assert.Contains(t, out, "failed:  bad.pla (")
	assert.Contains(t, out, "malformed row")

	_, err = os.Stat(filepath.Join(blifDir, "good.blif"))
	assert.NoError(t, err, "a failure must not stop the rest of the batch")
	_, err = os.Stat(filepath.Join(blifDir, "bad.blif"))
	assert.True(t, os.IsNotExist(err))

	out, err = execute(t, "index", "--dest-dir", blifDir, "--status", "failed", "--json")
	require.NoError(t, err, out)
	var convs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &convs))
	require.Len(t, convs, 1)
	assert.Equal(t, "bad.pla", convs[0]["source"])
	assert.Equal(t, "malformed_row", convs[0]["error_kind"])
}

func TestIndexCommand(t *testing.T) {
	plaDir, blifDir := workspace(t, map[string]string{"ex.pla": examplePLA})

	_, err := execute(t, "index", "--dest-dir", blifDir)
	require.Error(t, err)

	_, err = execute(t, "convert", "--source-dir", plaDir, "--dest-dir", blifDir)
	require.NoError(t, err)

	out, err := execute(t, "index", "--dest-dir", blifDir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "RUN")
	assert.Contains(t, out, "CONVERTED")

	out, err = execute(t, "index", "--dest-dir", blifDir, "--run", "latest")
	require.NoError(t, err, out)
	assert.Contains(t, out, "ex.pla")
	assert.Contains(t, out, "converted")

	out, err = execute(t, "index", "--dest-dir", blifDir, "--export")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Exported to")
	_, err = os.Stat(filepath.Join(blifDir, ".index", "export.yaml"))
	assert.NoError(t, err)
}

func TestInspectCommand(t *testing.T) {
	plaDir, _ := workspace(t, map[string]string{"ex.pla": examplePLA})
	path := filepath.Join(plaDir, "ex.pla")

	out, err := execute(t, "inspect", path)
	require.NoError(t, err, out)

	var in inspection
	require.NoError(t, yaml.Unmarshal([]byte(out), &in))
	assert.Equal(t, "ex", in.Model)
	assert.Equal(t, []string{"a", "b"}, in.Inputs)
	assert.Equal(t, []string{"i0", "i1"}, in.CanonicalInputs)
	assert.Equal(t, []string{"o0"}, in.CanonicalOutputs)
	assert.Equal(t, 4, in.Rows)
	assert.Equal(t, []int{2}, in.Minterms)
	assert.Equal(t, 2, in.DeclaredInputs)

	out, err = execute(t, "inspect", "--blif", "--comment", "peek", path)
	require.NoError(t, err, out)
	assert.Equal(t, "# peek\n.model ex\n.inputs i0 i1\n.outputs o0\n.names i0 i1 o0\n00 1\n10 1\n.end\n", out)

	_, err = execute(t, "inspect", filepath.Join(plaDir, "missing.pla"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source unreadable")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "pla2blif dev\n", out)
}
