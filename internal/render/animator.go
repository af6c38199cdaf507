package render

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"sync"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/couchcryptid/groundwater-animation/internal/domain"
	"github.com/couchcryptid/groundwater-animation/internal/observability"
)

// FrameSink consumes rendered animation frames in order.
type FrameSink interface {
	AddFrame(img image.Image) error
}

// Layer records one scatter added to the animation.
type Layer struct {
	WellID string
	Depth  domain.Depth
	Points int
}

// AnimatorOptions configures an Animator.
type AnimatorOptions struct {
	TitlePrefix string
	Axes        Axes
	Size        Size
}

// DefaultAnimatorOptions uses the HGSD title and the animation window.
func DefaultAnimatorOptions() AnimatorOptions {
	return AnimatorOptions{
		TitlePrefix: "HGSD Areas 1&2 Wells",
		Axes:        AnimationAxes(),
		Size:        DefaultSize(),
	}
}

// FrameTitle formats an animation title, e.g.
// "HGSD Areas 1&2 Wells: ID W1 - Depth: 30.5m".
func FrameTitle(prefix, wellID string, depth domain.Depth) string {
	return fmt.Sprintf("%s: ID %s - Depth: %s", prefix, wellID, depth.Label())
}

// Animator builds up one shared plot, adding a scatter layer per frame.
// Layers are never removed.
type Animator struct {
	mu      sync.Mutex
	frames  []domain.Frame
	plot    *plot.Plot
	layers  []Layer
	title   string
	ctrl    *Controller
	opts    AnimatorOptions
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewAnimator creates an Animator over frames, typically Dataset.Frames.
func NewAnimator(frames []domain.Frame, opts AnimatorOptions, logger *slog.Logger, metrics *observability.Metrics) *Animator {
	return &Animator{
		frames:  frames,
		plot:    newPlot(opts.Axes),
		ctrl:    &Controller{},
		opts:    opts,
		logger:  logger,
		metrics: metrics,
	}
}

// FrameCount is the number of frames, one per distinct depth.
func (a *Animator) FrameCount() int { return len(a.frames) }

// Controller returns the pause controller consulted by Step.
func (a *Animator) Controller() *Controller { return a.ctrl }

// Step renders frame i and returns the accumulated layers. While paused it
// adds nothing and returns the current layers; the caller still moves on to
// the next frame.
func (a *Animator) Step(i int) ([]Layer, error) {
	if i < 0 || i >= len(a.frames) {
		return nil, fmt.Errorf("frame %d out of range [0, %d)", i, len(a.frames))
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.ctrl.State() == Paused {
		a.metrics.FramesPaused.Inc()
		return a.copyLayers(), nil
	}

	f := a.frames[i]
	scatter, err := plotter.NewScatter(points(f.Observations))
	if err != nil {
		return nil, fmt.Errorf("frame %d (well %s): %w", i, f.WellID, err)
	}
	scatter.GlyphStyle = draw.GlyphStyle{
		Color:  plotutil.Color(len(a.layers)),
		Radius: vg.Points(1),
		Shape:  draw.CircleGlyph{},
	}
	a.plot.Add(scatter)
	a.opts.Axes.apply(a.plot)

	a.title = FrameTitle(a.opts.TitlePrefix, f.WellID, f.Depth)
	a.plot.Title.Text = a.title
	a.plot.Title.TextStyle.Font.Size = vg.Points(10)

	a.layers = append(a.layers, Layer{WellID: f.WellID, Depth: f.Depth, Points: scatter.Len()})
	a.metrics.FramesRendered.Inc()
	a.logger.Debug("frame rendered", "frame", i, "well_id", f.WellID, "depth", f.Depth.Label())

	return a.copyLayers(), nil
}

// Layers returns the layers added so far.
func (a *Animator) Layers() []Layer {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.copyLayers()
}

// Title returns the title of the last rendered frame.
func (a *Animator) Title() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.title
}

// Image renders the current state of the plot.
func (a *Animator) Image() image.Image {
	a.mu.Lock()
	defer a.mu.Unlock()
	return drawPlot(a.plot, a.opts.Size).Image()
}

// WritePNG encodes the current state of the plot as PNG.
func (a *Animator) WritePNG(w io.Writer) error {
	a.mu.Lock()
	c := drawPlot(a.plot, a.opts.Size)
	a.mu.Unlock()
	return writePNG(w, c)
}

// Export steps through every frame once and hands each rendered image to
// every sink, so all outputs share one frame sequence.
func (a *Animator) Export(ctx context.Context, sinks ...FrameSink) error {
	for i := range a.frames {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := a.Step(i); err != nil {
			return err
		}
		img := a.Image()
		for _, sink := range sinks {
			if err := sink.AddFrame(img); err != nil {
				return fmt.Errorf("frame %d: %w", i, err)
			}
		}
	}
	a.logger.Info("animation exported", "frames", len(a.frames), "layers", len(a.Layers()))
	return nil
}

func (a *Animator) copyLayers() []Layer {
	out := make([]Layer, len(a.layers))
	copy(out, a.layers)
	return out
}
