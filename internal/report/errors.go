// Package report decodes Genbox/MT4 backtest statement files into
// structured strategy reports.
package report

import "fmt"

// ParseError describes why a report file was rejected. A rejected file
// yields no partial results; the whole statement is discarded.
type ParseError struct {
	File   string
	Row    int
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	msg := "malformed report"
	if e.File != "" {
		msg += " " + e.File
	}
	if e.Row > 0 {
		msg += fmt.Sprintf(" (row %d)", e.Row)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
