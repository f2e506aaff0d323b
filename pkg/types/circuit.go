// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Row is one truth-table line of a PLA source.
type Row struct {
	// Inputs is the input bitstring exactly as it appeared in the source.
	Inputs string `json:"inputs" yaml:"inputs"`

	// Outputs is the output bitstring exactly as it appeared in the source.
	Outputs string `json:"outputs" yaml:"outputs"`

	// Line is the 1-based source line the row was read from.
	Line int `json:"line" yaml:"line"`
}

// Circuit is the in-memory form of one PLA source: declared variable names
// and the truth-table rows in source order.
type Circuit struct {
	// Inputs lists the input variable names from the .ilb directive.
	Inputs []string `json:"inputs" yaml:"inputs"`

	// Outputs lists the output variable names from the .ob directive.
	Outputs []string `json:"outputs" yaml:"outputs"`

	// Rows holds the data rows in the order they were read.
	Rows []Row `json:"rows" yaml:"rows"`

	// DeclaredInputs is the argument of the .i directive, or 0 when absent.
	DeclaredInputs int `json:"declared_inputs,omitempty" yaml:"declared_inputs,omitempty"`

	// DeclaredOutputs is the argument of the .o directive, or 0 when absent.
	DeclaredOutputs int `json:"declared_outputs,omitempty" yaml:"declared_outputs,omitempty"`

	// DeclaredProducts is the argument of the .p directive, or 0 when absent.
	DeclaredProducts int `json:"declared_products,omitempty" yaml:"declared_products,omitempty"`
}
