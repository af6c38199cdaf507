package render

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"path/filepath"

	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/couchcryptid/groundwater-animation/internal/domain"
	"github.com/couchcryptid/groundwater-animation/internal/observability"
)

// StaticFilename names a well's figure "<WellID>_<meters>m.png", with the
// depth in meters truncated toward zero. Wells without a depth get
// "<WellID>_unknown.png".
func StaticFilename(wellID string, depth domain.Depth) string {
	if !depth.Known {
		return wellID + "_unknown.png"
	}
	return fmt.Sprintf("%s_%dm.png", wellID, domain.TruncatedMeters(depth.Feet))
}

// StaticTitle formats a figure title, e.g. "Well ID W1 at Depth 30.5m".
func StaticTitle(wellID string, depth domain.Depth) string {
	return fmt.Sprintf("Well ID %s at Depth %s", wellID, depth.Label())
}

// StaticPlotter writes one marker-only figure per well.
type StaticPlotter struct {
	dir     string
	axes    Axes
	size    Size
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewStaticPlotter creates a StaticPlotter writing into dir.
func NewStaticPlotter(dir string, logger *slog.Logger, metrics *observability.Metrics) *StaticPlotter {
	return &StaticPlotter{
		dir:     dir,
		axes:    StaticAxes(),
		size:    DefaultSize(),
		logger:  logger,
		metrics: metrics,
	}
}

// Plot renders g and writes it, replacing any existing file. It returns the path written.
func (s *StaticPlotter) Plot(g domain.WellGroup) (string, error) {
	p := newPlot(s.axes)
	p.Title.Text = StaticTitle(g.WellID, g.Depth)

	scatter, err := plotter.NewScatter(points(g.Observations))
	if err != nil {
		return "", fmt.Errorf("plot well %s: %w", g.WellID, err)
	}
	scatter.GlyphStyle = draw.GlyphStyle{
		Color:  color.RGBA{B: 255, A: 255},
		Radius: vg.Points(3),
		Shape:  draw.CircleGlyph{},
	}
	p.Add(scatter)
	s.axes.apply(p)

	path := filepath.Join(s.dir, StaticFilename(g.WellID, g.Depth))
	if err := savePNG(path, drawPlot(p, s.size)); err != nil {
		return "", fmt.Errorf("plot well %s: %w", g.WellID, err)
	}

	s.metrics.StaticPlotsWritten.Inc()
	s.logger.Debug("static plot written", "well_id", g.WellID, "path", path)
	return path, nil
}

// PlotAll writes a figure for every group, in order.
func (s *StaticPlotter) PlotAll(ctx context.Context, groups []domain.WellGroup) ([]string, error) {
	paths := make([]string, 0, len(groups))
	for i := range groups {
		if err := ctx.Err(); err != nil {
			return paths, err
		}
		path, err := s.Plot(groups[i])
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
