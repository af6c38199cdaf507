package wellfile

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingMetadataFile means the metadata listing could not be opened.
	ErrMissingMetadataFile = errors.New("metadata file missing")

	// ErrNoMatchingSeriesFiles means the series glob matched nothing.
	ErrNoMatchingSeriesFiles = errors.New("no matching series files")
)

// ParseError identifies the file, and the line when known, that failed to parse.
type ParseError struct {
	File string
	Line int // 1-based; 0 when the failure is not tied to a line
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s:%d: %v", e.File, e.Line, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
