// Package wellfile reads the well metadata listing and per-well groundwater
// level files from disk.
package wellfile

import (
	"errors"
	"fmt"
	"path/filepath"
)

// MetadataSchema describes the field layout of the well metadata listing.
type MetadataSchema struct {
	HeaderLines int // leading lines skipped
	IDField     int // zero-based
	DepthField  int // zero-based; negative counts from the end (-1 is last)
	MinFields   int // shorter lines are skipped
}

// DefaultMetadataSchema matches "<ignored> <WellID> ... <WellDepth>" with one header line.
func DefaultMetadataSchema() MetadataSchema {
	return MetadataSchema{HeaderLines: 1, IDField: 1, DepthField: -1, MinFields: 2}
}

// Validate reports layouts that cannot address the fields they name.
func (s MetadataSchema) Validate() error {
	if s.HeaderLines < 0 {
		return errors.New("metadata schema: negative header lines")
	}
	if s.IDField < 0 {
		return errors.New("metadata schema: negative id field")
	}
	if s.MinFields <= s.IDField {
		return fmt.Errorf("metadata schema: min fields %d cannot hold id field %d", s.MinFields, s.IDField)
	}
	if s.DepthField >= 0 && s.MinFields <= s.DepthField {
		return fmt.Errorf("metadata schema: min fields %d cannot hold depth field %d", s.MinFields, s.DepthField)
	}
	if s.DepthField < 0 && s.MinFields < -s.DepthField {
		return fmt.Errorf("metadata schema: min fields %d cannot hold depth field %d", s.MinFields, s.DepthField)
	}
	return nil
}

func (s MetadataSchema) depthIndex(n int) int {
	if s.DepthField < 0 {
		return n + s.DepthField
	}
	return s.DepthField
}

// SeriesSchema describes how groundwater level files are found and read.
type SeriesSchema struct {
	Pattern     string // glob matched in the data directory
	IDSeparator string // well ID is the filename up to the first separator
	HeaderLines int
	YearColumn  int // zero-based
	LevelColumn int // zero-based
}

// DefaultSeriesSchema matches "<WellID>_orig_dyear.col" files with Year in
// column 1 and level in column 3.
func DefaultSeriesSchema() SeriesSchema {
	return SeriesSchema{
		Pattern:     "*_orig_dyear.col",
		IDSeparator: "_",
		HeaderLines: 1,
		YearColumn:  0,
		LevelColumn: 2,
	}
}

// Validate checks the glob and column positions.
func (s SeriesSchema) Validate() error {
	if s.Pattern == "" {
		return errors.New("series schema: empty pattern")
	}
	if _, err := filepath.Match(s.Pattern, ""); err != nil {
		return fmt.Errorf("series schema: pattern %q: %w", s.Pattern, err)
	}
	if s.IDSeparator == "" {
		return errors.New("series schema: empty id separator")
	}
	if s.HeaderLines < 0 {
		return errors.New("series schema: negative header lines")
	}
	if s.YearColumn < 0 || s.LevelColumn < 0 {
		return errors.New("series schema: negative column")
	}
	if s.YearColumn == s.LevelColumn {
		return fmt.Errorf("series schema: year and level share column %d", s.YearColumn)
	}
	return nil
}

// minColumns is the narrowest row that holds both columns.
func (s SeriesSchema) minColumns() int {
	return max(s.YearColumn, s.LevelColumn) + 1
}
