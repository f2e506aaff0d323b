// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package blif renders circuits as BLIF netlists. Each output variable gets
// its own .names block listing every asserted truth-table row literally; no
// don't-care compression is performed.
package blif

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/pla2blif/pkg/types"
)

// Block is the single-output cover of one .names section.
type Block struct {
	// Output is the variable the block drives.
	Output string

	// Minterms holds the input bitstrings for which Output is 1, in row order.
	Minterms []string
}

// Model is a fully built BLIF model, ready to be written.
type Model struct {
	Name    string
	Comment string
	Inputs  []string
	Outputs []string
	Blocks  []Block
}

// Build assembles the BLIF model for c. Every row must carry a bit for every
// declared output; a shorter row fails with types.ErrMalformedRow and no model
// is returned.
func Build(c types.Circuit, name, comment string) (*Model, error) {
	m := &Model{
		Name:    name,
		Comment: comment,
		Inputs:  c.Inputs,
		Outputs: c.Outputs,
		Blocks:  make([]Block, len(c.Outputs)),
	}
	for col, out := range c.Outputs {
		b := Block{Output: out}
		for _, r := range c.Rows {
			if len(r.Outputs) <= col {
				return nil, &types.ParseError{
					Line:   r.Line,
					Detail: fmt.Sprintf("output bits %q have no column %d (%d outputs declared)", r.Outputs, col, len(c.Outputs)),
					Err:    types.ErrMalformedRow,
				}
			}
			if r.Outputs[col] == '1' {
				b.Minterms = append(b.Minterms, r.Inputs)
			}
		}
		m.Blocks[col] = b
	}
	return m, nil
}

// Render builds the model for c and returns its text as lines.
func Render(c types.Circuit, name, comment string) ([]string, error) {
	m, err := Build(c, name, comment)
	if err != nil {
		return nil, err
	}
	return m.Lines(), nil
}

// Minterms returns the number of minterm lines across all blocks.
func (m *Model) Minterms() int {
	n := 0
	for _, b := range m.Blocks {
		n += len(b.Minterms)
	}
	return n
}

// Lines returns the BLIF text, one element per line, without newlines.
func (m *Model) Lines() []string {
	lines := make([]string, 0, 5+len(m.Blocks)+m.Minterms())
	lines = append(lines,
		strings.TrimRight("# "+m.Comment, " "),
		".model "+m.Name,
		directive(".inputs", m.Inputs),
		directive(".outputs", m.Outputs),
	)
	for _, b := range m.Blocks {
		lines = append(lines, directive(".names", m.Inputs, b.Output))
		for _, bits := range b.Minterms {
			lines = append(lines, bits+" 1")
		}
	}
	return append(lines, ".end")
}

// WriteTo writes the BLIF text to w.
func (m *Model) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	for _, l := range m.Lines() {
		k, err := bw.WriteString(l + "\n")
		n += int64(k)
		if err != nil {
			return n, err
		}
	}
	return n, bw.Flush()
}

func directive(keyword string, names []string, extra ...string) string {
	var b strings.Builder
	b.WriteString(keyword)
	for _, n := range names {
		b.WriteByte(' ')
		b.WriteString(n)
	}
	for _, n := range extra {
		b.WriteByte(' ')
		b.WriteString(n)
	}
	return b.String()
}
