// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert drives PLA-to-BLIF conversion over named sources and
// destinations, one circuit per source.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/pla2blif/internal/blif"
	"github.com/pdiddy/pla2blif/internal/pla"
	"github.com/pdiddy/pla2blif/pkg/types"
)

// blifExt is appended to the model name to form the destination name.
const blifExt = ".blif"

// DefaultComment is the header comment used when none is configured.
const DefaultComment = "Generated by pla2blif"

// Source provides PLA text by name.
type Source interface {
	// ReadLines returns the full contents of the named source split into lines.
	ReadLines(name string) ([]string, error)

	// ModTime returns the last modification time of the named source.
	ModTime(name string) (time.Time, error)
}

// Destination accepts BLIF text by name.
type Destination interface {
	// WriteLines stores lines under name. A failed write must not leave a
	// partial file under name.
	WriteLines(name string, lines []string) error

	// ModTime returns the last modification time of the named output, or an
	// error wrapping fs.ErrNotExist when it has not been written.
	ModTime(name string) (time.Time, error)
}

// Options controls conversion.
type Options struct {
	// Comment is the text of the "# ..." header line.
	Comment string

	// Force converts sources even when their output is up to date.
	Force bool

	// FailFast cancels sources that have not started once one source fails.
	// Without it every source is attempted and failures are reported together.
	FailFast bool

	// Jobs is the number of sources converted concurrently; values below 1 mean 1.
	Jobs int

	// InferNames is passed through to the parser.
	InferNames bool
}

// OptionsFrom maps the convert configuration section onto Options.
func OptionsFrom(cfg types.ConversionConfig) Options {
	return Options{
		Comment:    cfg.Comment,
		Force:      cfg.Force,
		FailFast:   cfg.FailFast,
		Jobs:       cfg.Jobs,
		InferNames: cfg.InferNames,
	}
}

// Converter converts sources from a Source into a Destination.
type Converter struct {
	src  Source
	dst  Destination
	opts Options
	log  *zap.Logger
	now  func() time.Time
}

// New creates a Converter. A nil logger discards diagnostics.
func New(src Source, dst Destination, opts Options, log *zap.Logger) *Converter {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Comment == "" {
		opts.Comment = DefaultComment
	}
	if opts.Jobs < 1 {
		opts.Jobs = 1
	}
	return &Converter{src: src, dst: dst, opts: opts, log: log, now: time.Now}
}

// ModelName derives the BLIF model name from a source name: its base name
// without the extension.
func ModelName(source string) string {
	base := filepath.Base(source)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ConvertSource converts one source. It returns the conversion record and,
// for failures, the error that caused them. Skipped sources are not errors.
func (c *Converter) ConvertSource(name string) (types.Conversion, error) {
	model := ModelName(name)
	conv := types.Conversion{
		Source:      name,
		Model:       model,
		Destination: model + blifExt,
	}
	log := c.log.With(zap.String("source", name))

	if !c.opts.Force && c.upToDate(name, conv.Destination) {
		log.Debug("output up to date", zap.String("destination", conv.Destination))
		conv.Status = types.ConversionSkipped
		return conv, nil
	}

	lines, err := c.src.ReadLines(name)
	if err != nil {
		return c.fail(conv, fmt.Errorf("%w: %s: %w", types.ErrSourceUnreadable, name, err))
	}

	circuit := pla.Canonicalize(pla.ParseLines(lines, pla.Options{
		Source:     name,
		InferNames: c.opts.InferNames,
	}))
	log.Debug("parsed", zap.String("circuit", pla.String(circuit)))

	m, err := blif.Build(circuit, model, c.opts.Comment)
	if err != nil {
		var pe *types.ParseError
		if errors.As(err, &pe) {
			pe.Source = name
		}
		return c.fail(conv, err)
	}

	if err := c.dst.WriteLines(conv.Destination, m.Lines()); err != nil {
		return c.fail(conv, fmt.Errorf("%w: %s: %w", types.ErrDestinationWrite, conv.Destination, err))
	}

	conv.Status = types.ConversionDone
	conv.Inputs = len(circuit.Inputs)
	conv.Outputs = len(circuit.Outputs)
	conv.Rows = len(circuit.Rows)
	conv.Minterms = m.Minterms()
	conv.ConvertedAt = c.now().UTC()
	log.Debug("converted", zap.String("destination", conv.Destination), zap.Int("minterms", conv.Minterms))
	return conv, nil
}

func (c *Converter) fail(conv types.Conversion, err error) (types.Conversion, error) {
	conv.Status = types.ConversionFailed
	conv.ErrorKind = types.KindOf(err)
	conv.Error = err.Error()
	conv.ConvertedAt = c.now().UTC()
	return conv, err
}

// upToDate reports whether dest exists and is no older than source.
func (c *Converter) upToDate(source, dest string) bool {
	srcTime, err := c.src.ModTime(source)
	if err != nil {
		return false
	}
	dstTime, err := c.dst.ModTime(dest)
	if err != nil {
		return false
	}
	return !dstTime.Before(srcTime)
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	// RunID identifies the run in reports and the conversion index.
	RunID string

	StartedAt  time.Time
	FinishedAt time.Time

	Converted int
	Skipped   int
	Failed    int
	Canceled  int

	// Conversions holds one record per source, in the order the sources were given.
	Conversions []types.Conversion
}

// Total returns the total number of sources in the batch.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed + r.Canceled
}

// HasFailures reports whether any source failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// ConvertBatch converts names, up to Options.Jobs at a time, then prints one
// status line per source to w in input order followed by a summary.
// Cancelling ctx marks sources that have not started as canceled.
func (c *Converter) ConvertBatch(ctx context.Context, names []string, w io.Writer) BatchResult {
	result := BatchResult{
		RunID:       uuid.NewString(),
		StartedAt:   c.now().UTC(),
		Conversions: make([]types.Conversion, len(names)),
	}
	c.log.Info("batch started", zap.String("run_id", result.RunID), zap.Int("sources", len(names)), zap.Int("jobs", c.opts.Jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Jobs)
	for i, name := range names {
		i, name := i, name
		if gctx.Err() != nil {
			result.Conversions[i] = canceled(name)
			continue
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				result.Conversions[i] = canceled(name)
				return nil
			}
			conv, err := c.ConvertSource(name)
			result.Conversions[i] = conv
			if err != nil {
				c.log.Warn("conversion failed", zap.String("source", name), zap.Error(err))
				if c.opts.FailFast {
					return err
				}
			}
			return nil
		})
	}
	// Failures are already recorded per source.
	_ = g.Wait()

	for _, conv := range result.Conversions {
		switch conv.Status {
		case types.ConversionDone:
			result.Converted++
		case types.ConversionSkipped:
			result.Skipped++
		case types.ConversionFailed:
			result.Failed++
		case types.ConversionCanceled:
			result.Canceled++
		}
		PrintStatus(w, conv)
	}
	result.FinishedAt = c.now().UTC()

	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed, %d canceled (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Canceled, result.Total())
	c.log.Info("batch finished", zap.String("run_id", result.RunID), zap.Int("failed", result.Failed))
	return result
}

// PrintStatus writes the one-line status of conv to w.
func PrintStatus(w io.Writer, conv types.Conversion) {
	switch conv.Status {
	case types.ConversionDone:
		fmt.Fprintf(w, "converted: %s\n", conv.Source)
	case types.ConversionSkipped:
		fmt.Fprintf(w, "skipped: %s (up to date)\n", conv.Source)
	case types.ConversionFailed:
		fmt.Fprintf(w, "failed:  %s (%s)\n", conv.Source, conv.Error)
	case types.ConversionCanceled:
		fmt.Fprintf(w, "canceled: %s\n", conv.Source)
	}
}

func canceled(name string) types.Conversion {
	model := ModelName(name)
	return types.Conversion{
		Source:      name,
		Model:       model,
		Destination: model + blifExt,
		Status:      types.ConversionCanceled,
	}
}
