package wellfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/couchcryptid/groundwater-animation/internal/domain"
)

// DiscoverSeries returns the files in dir whose base name matches the
// schema's pattern, in lexical order. dir is taken literally, so glob
// metacharacters in it are not expanded.
func DiscoverSeries(dir string, schema SeriesSchema) ([]string, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s in %s", ErrNoMatchingSeriesFiles, schema.Pattern, dir)
		}
		return nil, fmt.Errorf("list series: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ok, err := filepath.Match(schema.Pattern, e.Name())
		if err != nil {
			return nil, fmt.Errorf("match series: %w", err)
		}
		if ok {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: %s in %s", ErrNoMatchingSeriesFiles, schema.Pattern, dir)
	}
	return paths, nil
}

// WellIDFromFilename returns the base name of path up to the first sep.
func WellIDFromFilename(path, sep string) string {
	base := filepath.Base(path)
	if i := strings.Index(base, sep); i >= 0 {
		return base[:i]
	}
	return base
}

// LoadSeries reads one groundwater level file and attaches its well's depth.
func LoadSeries(path string, schema SeriesSchema, meta domain.WellMetadata) (domain.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Series{}, &ParseError{File: path, Err: err}
	}
	defer f.Close()

	return ReadSeries(path, f, schema, meta)
}

// ReadSeries parses a whitespace-delimited level table. Only the schema's
// Year and Level columns are read; other columns are ignored.
func ReadSeries(name string, r io.Reader, schema SeriesSchema, meta domain.WellMetadata) (domain.Series, error) {
	if err := schema.Validate(); err != nil {
		return domain.Series{}, err
	}

	id := WellIDFromFilename(name, schema.IDSeparator)
	s := domain.Series{
		WellID: id,
		Source: filepath.Base(name),
		Depth:  meta.DepthOf(id),
	}
	need := schema.minColumns()

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if line <= schema.HeaderLines {
			if len(fields) < need {
				return domain.Series{}, &ParseError{File: name, Line: line,
					Err: fmt.Errorf("header has %d columns, need %d", len(fields), need)}
			}
			continue
		}
		if len(fields) == 0 {
			continue
		}
		if len(fields) < need {
			return domain.Series{}, &ParseError{File: name, Line: line,
				Err: fmt.Errorf("row has %d columns, need %d", len(fields), need)}
		}

		year, err := strconv.ParseFloat(fields[schema.YearColumn], 64)
		if err != nil {
			return domain.Series{}, &ParseError{File: name, Line: line, Err: fmt.Errorf("year: %w", err)}
		}
		level, err := strconv.ParseFloat(fields[schema.LevelColumn], 64)
		if err != nil {
			return domain.Series{}, &ParseError{File: name, Line: line, Err: fmt.Errorf("level: %w", err)}
		}

		s.Observations = append(s.Observations, domain.Observation{
			WellID: id,
			Year:   year,
			Level:  level,
			Depth:  s.Depth,
		})
	}
	if err := sc.Err(); err != nil {
		return domain.Series{}, &ParseError{File: name, Line: line + 1, Err: err}
	}
	if line < schema.HeaderLines {
		return domain.Series{}, &ParseError{File: name, Err: errors.New("missing header")}
	}
	return s, nil
}
