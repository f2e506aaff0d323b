// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pla reads PLA truth-table sources into types.Circuit values and
// assigns canonical positional variable names.
package pla

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pdiddy/pla2blif/pkg/types"
)

// maxLineLen bounds a single source line. Wide truth tables with hundreds of
// inputs stay well below it.
const maxLineLen = 1 << 20

// Options controls parsing.
type Options struct {
	// Source names the input in error messages.
	Source string

	// InferNames synthesizes variable names from the .i and .o counts when
	// the source has no .ilb or .ob directive.
	InferNames bool
}

// Parse reads a PLA source from r. Read failures wrap types.ErrSourceUnreadable.
func Parse(r io.Reader, opts Options) (types.Circuit, error) {
	p := newParser(opts)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineLen)
	n := 0
	for sc.Scan() {
		n++
		p.line(n, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return types.Circuit{}, &types.ParseError{
			Source: opts.Source,
			Detail: fmt.Sprintf("after line %d: %v", n, err),
			Err:    types.ErrSourceUnreadable,
		}
	}
	return p.finish(), nil
}

// ParseLines parses a PLA source that has already been split into lines.
func ParseLines(lines []string, opts Options) types.Circuit {
	p := newParser(opts)
	for i, l := range lines {
		p.line(i+1, l)
	}
	return p.finish()
}

type parser struct {
	opts Options
	c    types.Circuit
}

func newParser(opts Options) *parser {
	return &parser{opts: opts}
}

func (p *parser) line(n int, text string) {
	text = strings.TrimRight(text, "\r")
	if text == "" {
		return
	}
	switch text[0] {
	case '#':
		return
	case '.':
		p.directive(text)
		return
	}
	p.row(n, text)
}

// directive handles a dot line. The first token is the keyword itself; the
// remaining tokens are its arguments.
func (p *parser) directive(text string) {
	fields := strings.Fields(text)
	keyword, args := fields[0], fields[1:]
	switch keyword {
	case ".ilb":
		p.c.Inputs = append([]string{}, args...)
	case ".ob":
		p.c.Outputs = append([]string{}, args...)
	case ".i":
		p.c.DeclaredInputs = count(args)
	case ".o":
		p.c.DeclaredOutputs = count(args)
	case ".p":
		p.c.DeclaredProducts = count(args)
	}
}

// row splits a data line on tabs when it has any, otherwise on spaces.
// Lines with fewer than two tokens are not rows.
func (p *parser) row(n int, text string) {
	sep := " "
	if strings.Contains(text, "\t") {
		sep = "\t"
	}
	var tokens []string
	for _, tok := range strings.Split(text, sep) {
		if tok = strings.TrimSpace(tok); tok != "" {
			tokens = append(tokens, tok)
		}
	}
	if len(tokens) < 2 {
		return
	}
	p.c.Rows = append(p.c.Rows, types.Row{Inputs: tokens[0], Outputs: tokens[1], Line: n})
}

func (p *parser) finish() types.Circuit {
	if p.opts.InferNames {
		if p.c.Inputs == nil && p.c.DeclaredInputs > 0 {
			p.c.Inputs = CanonicalNames(InputPrefix, make([]string, p.c.DeclaredInputs))
		}
		if p.c.Outputs == nil && p.c.DeclaredOutputs > 0 {
			p.c.Outputs = CanonicalNames(OutputPrefix, make([]string, p.c.DeclaredOutputs))
		}
	}
	return p.c
}

// count returns the integer argument of a .i/.o/.p directive, or 0 when it is
// missing or not a non-negative integer.
func count(args []string) int {
	if len(args) == 0 {
		return 0
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// String summarizes a circuit for log lines.
func String(c types.Circuit) string {
	return fmt.Sprintf("%d inputs, %d outputs, %d rows", len(c.Inputs), len(c.Outputs), len(c.Rows))
}
