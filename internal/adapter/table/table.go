// Package table exposes the merged dataset as a dataframe and writes it as CSV.
package table

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/couchcryptid/groundwater-animation/internal/domain"
)

// Column names of the exported dataset.
const (
	ColWellID    = "WellID"
	ColYear      = "Year"
	ColLevel     = "GroundwaterLevel"
	ColWellDepth = "WellDepth"
)

// Frame builds a dataframe of ds in dataset order. Unknown depths become NaN.
func Frame(ds domain.Dataset) dataframe.DataFrame {
	n := ds.Len()
	ids := make([]string, n)
	years := make([]float64, n)
	levels := make([]float64, n)
	depths := make([]float64, n)

	for i := 0; i < n; i++ {
		o := ds.At(i)
		ids[i] = o.WellID
		years[i] = o.Year
		levels[i] = o.Level
		depths[i] = math.NaN()
		if o.Depth.Known {
			depths[i] = o.Depth.Feet
		}
	}

	return dataframe.New(
		series.New(years, series.Float, ColYear),
		series.New(levels, series.Float, ColLevel),
		series.New(ids, series.String, ColWellID),
		series.New(depths, series.Float, ColWellDepth),
	)
}

// WriteCSV writes ds as CSV with a header row.
func WriteCSV(w io.Writer, ds domain.Dataset) error {
	df := Frame(ds)
	if df.Err != nil {
		return fmt.Errorf("build dataset frame: %w", df.Err)
	}
	if err := df.WriteCSV(w); err != nil {
		return fmt.Errorf("write dataset csv: %w", err)
	}
	return nil
}

// SaveCSV writes ds to path, replacing any existing file.
func SaveCSV(path string, ds domain.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, ds); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// CSVExporter saves the dataset to a fixed path. It implements pipeline.DatasetExporter.
type CSVExporter struct {
	Path string
}

// Export writes ds to the exporter's path.
func (e CSVExporter) Export(ds domain.Dataset) error {
	return SaveCSV(e.Path, ds)
}
