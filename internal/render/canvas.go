// Package render draws groundwater level plots: the accumulating depth-ordered
// animation and the per-well static figures.
package render

import (
	"io"
	"math"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/couchcryptid/groundwater-animation/internal/domain"
)

// Axes fixes the data window and labels of a figure.
type Axes struct {
	XMin, XMax float64
	YMin, YMax float64
	XLabel     string
	YLabel     string
}

// AnimationAxes is the window of the animation: years 1920-2025, levels -180..30 m.
func AnimationAxes() Axes {
	return Axes{XMin: 1920, XMax: 2025, YMin: -180, YMax: 30,
		XLabel: "Year", YLabel: "Groundwater Level (m, NAVD88)"}
}

// StaticAxes is the window of per-well figures: years 1920-2025, levels -150..30 m.
func StaticAxes() Axes {
	return Axes{XMin: 1920, XMax: 2025, YMin: -150, YMax: 30,
		XLabel: "Year", YLabel: "Groundwater Level (m)"}
}

// apply pins the plot to the window. Adding plotters widens the axes to
// their data range, so this runs after every Add.
func (a Axes) apply(p *plot.Plot) {
	p.X.Min, p.X.Max = a.XMin, a.XMax
	p.Y.Min, p.Y.Max = a.YMin, a.YMax
}

// Size is the rendered figure size.
type Size struct {
	Width, Height vg.Length
	DPI           int
}

// DefaultSize is a 6.4x4.8 inch figure at 100 dpi (640x480 pixels).
func DefaultSize() Size {
	return Size{Width: 6.4 * vg.Inch, Height: 4.8 * vg.Inch, DPI: 100}
}

func newPlot(axes Axes) *plot.Plot {
	p := plot.New()
	p.X.Label.Text = axes.XLabel
	p.Y.Label.Text = axes.YLabel

	grid := plotter.NewGrid()
	for _, ls := range []*draw.LineStyle{&grid.Vertical, &grid.Horizontal} {
		ls.Width = vg.Points(0.5)
		ls.Dashes = []vg.Length{vg.Points(3), vg.Points(2)}
	}
	p.Add(grid)
	axes.apply(p)
	return p
}

// points converts observations to plot coordinates, skipping NaN and infinite values.
func points(obs []domain.Observation) plotter.XYs {
	xys := make(plotter.XYs, 0, len(obs))
	for i := range obs {
		x, y := obs[i].Year, obs[i].Level
		if !finite(x) || !finite(y) {
			continue
		}
		xys = append(xys, plotter.XY{X: x, Y: y})
	}
	return xys
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func drawPlot(p *plot.Plot, size Size) *vgimg.Canvas {
	c := vgimg.NewWith(vgimg.UseWH(size.Width, size.Height), vgimg.UseDPI(size.DPI))
	p.Draw(draw.New(c))
	return c
}

func writePNG(w io.Writer, c *vgimg.Canvas) error {
	_, err := vgimg.PngCanvas{Canvas: c}.WriteTo(w)
	return err
}

// savePNG writes c to path, closing the file before returning.
func savePNG(path string, c *vgimg.Canvas) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writePNG(f, c); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
