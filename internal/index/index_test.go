// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pla2blif/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(DefaultPath(filepath.Join(t.TempDir(), "blif")))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRun(id string, started time.Time, convs ...types.Conversion) Run {
	r := Run{
		ID:          id,
		StartedAt:   started,
		FinishedAt:  started.Add(time.Second),
		SourceDir:   "pla",
		DestDir:     "blif",
		Conversions: convs,
	}
	for _, c := range convs {
		switch c.Status {
		case types.ConversionDone:
			r.Converted++
		case types.ConversionSkipped:
			r.Skipped++
		case types.ConversionFailed:
			r.Failed++
		case types.ConversionCanceled:
			r.Canceled++
		}
	}
	return r
}

var t0 = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func done(model string, minterms int) types.Conversion {
	return types.Conversion{
		Source: model + ".pla", Model: model, Destination: model + ".blif",
		Status: types.ConversionDone, Inputs: 2, Outputs: 1, Rows: 4, Minterms: minterms,
		ConvertedAt: t0,
	}
}

func failed(model string) types.Conversion {
	return types.Conversion{
		Source: model + ".pla", Model: model, Destination: model + ".blif",
		Status: types.ConversionFailed, ErrorKind: types.KindMalformedRow,
		Error: model + ".pla:3: malformed row", ConvertedAt: t0,
	}
}

func TestNewStore_CreatesDirectory(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "blif")
	store, err := NewStore(DefaultPath(dest))
	require.NoError(t, err)
	defer store.Close()

	_, err = os.Stat(filepath.Join(dest, ".index", "pla2blif.db"))
	assert.NoError(t, err)
	assert.Equal(t, DefaultPath(dest), store.Path())
}

func TestRecordRun_Runs(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	_, err := store.LatestRun(ctx)
	assert.ErrorIs(t, err, ErrNoRuns)

	require.NoError(t, store.RecordRun(ctx, sampleRun("run-1", t0, done("adder", 3), failed("mux"))))
	require.NoError(t, store.RecordRun(ctx, sampleRun("run-2", t0.Add(time.Hour), done("adder", 3))))

	runs, err := store.Runs(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)
	assert.Equal(t, "run-1", runs[1].ID)
	assert.Equal(t, 1, runs[1].Converted)
	assert.Equal(t, 1, runs[1].Failed)
	assert.Equal(t, t0, runs[1].StartedAt)
	assert.Equal(t, "pla", runs[1].SourceDir)
	assert.Empty(t, runs[1].Conversions)

	latest, err := store.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-2", latest.ID)

	limited, err := store.Runs(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestRecordRun_DuplicateIDRollsBack(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordRun(ctx, sampleRun("dup", t0, done("a", 1))))
	err := store.RecordRun(ctx, sampleRun("dup", t0, done("b", 1)))
	require.Error(t, err)

	convs, err := store.Conversions(ctx, QueryOptions{})
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, "a", convs[0].Model)
}

func TestConversions_Filters(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordRun(ctx, sampleRun("run-1", t0, done("adder", 3), failed("mux"), done("xor", 2))))
	require.NoError(t, store.RecordRun(ctx, sampleRun("run-2", t0.Add(time.Minute), done("adder", 5))))

	tests := []struct {
		name       string
		opts       QueryOptions
		wantModels []string
		wantRuns   []string
	}{
		{
			name:       "all runs, newest first",
			opts:       QueryOptions{},
			wantModels: []string{"adder", "adder", "mux", "xor"},
			wantRuns:   []string{"run-2", "run-1", "run-1", "run-1"},
		},
		{
			name:       "single run keeps source order",
			opts:       QueryOptions{RunID: "run-1"},
			wantModels: []string{"adder", "mux", "xor"},
			wantRuns:   []string{"run-1", "run-1", "run-1"},
		},
		{
			name:       "by status",
			opts:       QueryOptions{Status: types.ConversionFailed},
			wantModels: []string{"mux"},
			wantRuns:   []string{"run-1"},
		},
		{
			name:       "by model",
			opts:       QueryOptions{Model: "adder"},
			wantModels: []string{"adder", "adder"},
			wantRuns:   []string{"run-2", "run-1"},
		},
		{
			name:       "max results",
			opts:       QueryOptions{MaxResults: 1},
			wantModels: []string{"adder"},
			wantRuns:   []string{"run-2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Conversions(ctx, tt.opts)
			require.NoError(t, err)
			var models, runs []string
			for _, c := range got {
				models = append(models, c.Model)
				runs = append(runs, c.RunID)
			}
			assert.Equal(t, tt.wantModels, models)
			assert.Equal(t, tt.wantRuns, runs)
		})
	}

	failures, err := store.Conversions(ctx, QueryOptions{Status: types.ConversionFailed})
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, types.KindMalformedRow, failures[0].ErrorKind)
	assert.Equal(t, "mux.pla:3: malformed row", failures[0].Error)
	assert.Equal(t, t0, failures[0].ConvertedAt)
}

func TestExport(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	require.NoError(t, store.RecordRun(ctx, sampleRun("run-1", t0, done("adder", 3), failed("mux"))))

	yamlPath, err := store.ExportYAML(ctx, QueryOptions{})
	require.NoError(t, err)
	data, err := os.ReadFile(yamlPath)
	require.NoError(t, err)
	var fromYAML []map[string]any
	require.NoError(t, yaml.Unmarshal(data, &fromYAML))
	require.Len(t, fromYAML, 2)
	assert.Equal(t, "run-1", fromYAML[0]["run_id"])
	assert.Equal(t, "adder", fromYAML[0]["model"])

	jsonPath, err := store.ExportJSON(ctx, QueryOptions{Status: types.ConversionFailed})
	require.NoError(t, err)
	data, err = os.ReadFile(jsonPath)
	require.NoError(t, err)
	var fromJSON []map[string]any
	require.NoError(t, json.Unmarshal(data, &fromJSON))
	require.Len(t, fromJSON, 1)
	assert.Equal(t, "mux", fromJSON[0]["model"])
	assert.Equal(t, "malformed_row", fromJSON[0]["error_kind"])
}
