package parser

import (
	"errors"
	"strings"
)

// ErrMissingSection is wrapped by ParserError when a required top-level
// section such as metadata is absent.
var ErrMissingSection = errors.New("missing required section")

// ParserError reports a failure to turn a harness file into a document. It
// carries one detail line per field-level problem so every problem can be
// reported in one pass.
type ParserError struct {
	Message string
	Path    string
	Details []string
	Err     error
}

func (e *ParserError) Error() string {
	var b strings.Builder
	if e.Path != "" {
		b.WriteString(e.Path)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	for _, d := range e.Details {
		b.WriteString("\n  - ")
		b.WriteString(d)
	}
	return b.String()
}

func (e *ParserError) Unwrap() error { return e.Err }
