package wellfile

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/groundwater-animation/internal/domain"
	"github.com/couchcryptid/groundwater-animation/internal/observability"
)

// Source loads the metadata listing and every matching series file from a
// data directory. It implements pipeline.Loader.
type Source struct {
	metadataPath string
	dir          string
	metaSchema   MetadataSchema
	seriesSchema SeriesSchema
	logger       *slog.Logger
	metrics      *observability.Metrics
}

// NewSource creates a Source reading metadataPath and series files from dir.
func NewSource(metadataPath, dir string, metaSchema MetadataSchema, seriesSchema SeriesSchema, logger *slog.Logger, metrics *observability.Metrics) *Source {
	return &Source{
		metadataPath: metadataPath,
		dir:          dir,
		metaSchema:   metaSchema,
		seriesSchema: seriesSchema,
		logger:       logger,
		metrics:      metrics,
	}
}

// Load reads the metadata, then each series file in discovery order.
// The metadata is read first so a missing listing aborts before any series
// file is touched.
func (s *Source) Load(ctx context.Context) ([]domain.Series, error) {
	res, err := LoadMetadata(s.metadataPath, s.metaSchema)
	if err != nil {
		return nil, err
	}
	if len(res.Dropped) > 0 {
		s.logger.Warn("dropped metadata rows with unparsable depth",
			"count", len(res.Dropped), "well_ids", res.Dropped)
		s.metrics.MetadataDepthDropped.Add(float64(len(res.Dropped)))
	}
	s.logger.Info("metadata loaded", "path", s.metadataPath, "rows", res.Rows, "wells", res.Metadata.Len())

	paths, err := DiscoverSeries(s.dir, s.seriesSchema)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Series, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		series, err := LoadSeries(path, s.seriesSchema, res.Metadata)
		if err != nil {
			return nil, err
		}
		if !series.Depth.Known {
			s.logger.Warn("well has no depth in metadata", "well_id", series.WellID, "file", series.Source)
			s.metrics.WellsMissingDepth.Inc()
		}
		s.logger.Debug("series loaded", "well_id", series.WellID, "file", series.Source,
			"observations", len(series.Observations))
		s.metrics.FilesLoaded.Inc()
		s.metrics.ObservationsLoaded.Add(float64(len(series.Observations)))
		out = append(out, series)
	}
	return out, nil
}
