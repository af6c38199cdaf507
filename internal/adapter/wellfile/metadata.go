package wellfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/groundwater-animation/internal/domain"
)

// MetadataResult is the parsed metadata listing plus what was dropped on the way.
type MetadataResult struct {
	Metadata domain.WellMetadata
	Rows     int      // rows with enough fields to hold an ID
	Dropped  []string // IDs whose depth did not parse to a finite number
}

// LoadMetadata reads the metadata listing at path.
func LoadMetadata(path string, schema MetadataSchema) (MetadataResult, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return MetadataResult{}, fmt.Errorf("%w: %s", ErrMissingMetadataFile, path)
		}
		return MetadataResult{}, fmt.Errorf("open metadata: %w", err)
	}
	defer f.Close()

	return ReadMetadata(path, f, schema)
}

// ReadMetadata parses a metadata listing. name labels parse errors.
// Later rows for the same ID replace earlier ones.
func ReadMetadata(name string, r io.Reader, schema MetadataSchema) (MetadataResult, error) {
	if err := schema.Validate(); err != nil {
		return MetadataResult{}, err
	}

	var res MetadataResult
	depths := make(map[string]float64)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		if line <= schema.HeaderLines {
			continue
		}
		fields := strings.Fields(sc.Text())
		if len(fields) < schema.MinFields {
			continue
		}
		res.Rows++

		id := fields[schema.IDField]
		ft, ok := parseDepth(fields[schema.depthIndex(len(fields))])
		if !ok {
			res.Dropped = append(res.Dropped, id)
			continue
		}
		depths[id] = ft
	}
	if err := sc.Err(); err != nil {
		return MetadataResult{}, &ParseError{File: name, Line: line + 1, Err: err}
	}

	res.Metadata = domain.NewWellMetadata(depths)
	return res, nil
}

func parseDepth(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
