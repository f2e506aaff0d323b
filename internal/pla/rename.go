// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pla

import (
	"strconv"

	"github.com/pdiddy/pla2blif/pkg/types"
)

const (
	InputPrefix  = "i"
	OutputPrefix = "o"
)

// CanonicalNames returns prefix0, prefix1, ... with one name per entry of
// names. Only the length of names matters.
func CanonicalNames(prefix string, names []string) []string {
	out := make([]string, len(names))
	for i := range names {
		out[i] = prefix + strconv.Itoa(i)
	}
	return out
}

// Canonicalize returns c with inputs renamed to i0..iN-1 and outputs to
// o0..oM-1. Rows are shared with c and left untouched.
func Canonicalize(c types.Circuit) types.Circuit {
	c.Inputs = CanonicalNames(InputPrefix, c.Inputs)
	c.Outputs = CanonicalNames(OutputPrefix, c.Outputs)
	return c
}
