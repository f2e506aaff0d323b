// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnreadable marks a source that could not be opened or read.
	ErrSourceUnreadable = errors.New("source unreadable")

	// ErrMalformedRow marks a data row whose bitstring is shorter than the
	// declared variables require.
	ErrMalformedRow = errors.New("malformed row")

	// ErrDestinationWrite marks a destination that could not be created or written.
	ErrDestinationWrite = errors.New("destination write failure")
)

// ErrorKind names a failure class in reports and the conversion index.
type ErrorKind string

const (
	KindNone             ErrorKind = ""
	KindSourceUnreadable ErrorKind = "source_unreadable"
	KindMalformedRow     ErrorKind = "malformed_row"
	KindDestinationWrite ErrorKind = "destination_write_failure"
	KindParse            ErrorKind = "parse_error"
	KindUnknown          ErrorKind = "unknown"
)

// KindOf classifies err by the sentinel it wraps.
func KindOf(err error) ErrorKind {
	var pe *ParseError
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrSourceUnreadable):
		return KindSourceUnreadable
	case errors.Is(err, ErrMalformedRow):
		return KindMalformedRow
	case errors.Is(err, ErrDestinationWrite):
		return KindDestinationWrite
	case errors.As(err, &pe):
		return KindParse
	default:
		return KindUnknown
	}
}

// ParseError reports a problem at a specific line of a PLA source.
type ParseError struct {
	// Source is the source name; may be empty when parsing an anonymous reader.
	Source string

	// Line is the 1-based line number, or 0 when not tied to a line.
	Line int

	// Detail describes the problem in source terms.
	Detail string

	// Err is the underlying sentinel or cause.
	Err error
}

func (e *ParseError) Error() string {
	msg := e.Detail
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = e.Err.Error() + ": " + msg
		}
	}
	switch {
	case e.Source != "" && e.Line > 0:
		return fmt.Sprintf("%s:%d: %s", e.Source, e.Line, msg)
	case e.Line > 0:
		return fmt.Sprintf("line %d: %s", e.Line, msg)
	case e.Source != "":
		return fmt.Sprintf("%s: %s", e.Source, msg)
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }
