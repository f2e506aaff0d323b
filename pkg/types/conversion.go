// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ConversionStatus indicates the outcome of converting one PLA source.
type ConversionStatus string

const (
	ConversionDone     ConversionStatus = "converted"
	ConversionSkipped  ConversionStatus = "skipped"
	ConversionFailed   ConversionStatus = "failed"
	ConversionCanceled ConversionStatus = "canceled"
)

// Conversion records what happened to a single source during a run.
type Conversion struct {
	// Source is the source name as handed to the converter (e.g. "adder.pla").
	Source string `json:"source" yaml:"source"`

	// Model is the BLIF model name derived from the source base name.
	Model string `json:"model" yaml:"model"`

	// Destination is the name of the BLIF file written (e.g. "adder.blif").
	Destination string `json:"destination" yaml:"destination"`

	Status ConversionStatus `json:"status" yaml:"status"`

	// ErrorKind classifies the failure; empty unless Status is failed.
	ErrorKind ErrorKind `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`

	// Error is the failure message; empty unless Status is failed.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	Inputs   int `json:"inputs" yaml:"inputs"`
	Outputs  int `json:"outputs" yaml:"outputs"`
	Rows     int `json:"rows" yaml:"rows"`
	Minterms int `json:"minterms" yaml:"minterms"`

	// ConvertedAt is when the conversion finished.
	ConvertedAt time.Time `json:"converted_at" yaml:"converted_at"`
}
