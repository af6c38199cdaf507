package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/groundwater-animation/internal/domain"
	"github.com/couchcryptid/groundwater-animation/internal/observability"
	"github.com/couchcryptid/groundwater-animation/internal/render"
)

// Loader reads every well series, with depths attached.
type Loader interface {
	Load(ctx context.Context) ([]domain.Series, error)
}

// Encoder is a frame sink that finalizes its output on Close. Abort
// discards the output instead and leaves no partial file behind.
type Encoder interface {
	render.FrameSink
	Close() error
	Abort() error
}

// EncoderFactory opens the animation outputs. It is called once per run.
type EncoderFactory func(ctx context.Context) ([]Encoder, error)

// DatasetExporter writes the merged dataset, e.g. as CSV.
type DatasetExporter interface {
	Export(ds domain.Dataset) error
}

// AtlasWriter collects the static figures into one document.
type AtlasWriter interface {
	WriteAtlas(groups []domain.WellGroup, paths []string) error
}

// Options configures a Pipeline.
type Options struct {
	Policy   domain.MissingDepthPolicy
	Animator render.AnimatorOptions
	Encoders EncoderFactory
	Static   *render.StaticPlotter

	// Optional stages; nil disables them.
	Exporter DatasetExporter
	Atlas    AtlasWriter
}

// Pipeline orchestrates load, aggregate, animate, and plot.
type Pipeline struct {
	loader  Loader
	opts    Options
	logger  *slog.Logger
	metrics *observability.Metrics

	ready   atomic.Bool
	mu      sync.Mutex
	dataset domain.Dataset
}

// New creates a Pipeline with the given loader and observability.
func New(l Loader, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		loader:  l,
		opts:    opts,
		logger:  logger,
		metrics: metrics,
	}
}

// CheckReadiness returns nil once the dataset has been loaded,
// or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("dataset has not been loaded yet")
	}
	return nil
}

// Dataset returns the merged dataset of the last run.
func (p *Pipeline) Dataset() domain.Dataset {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dataset
}

// Run executes every stage once. Any error aborts the run.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "missing_depth_policy", p.opts.Policy.String())
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	var series []domain.Series
	if err := p.stage("load", func() error {
		var err error
		series, err = p.loader.Load(ctx)
		return err
	}); err != nil {
		return err
	}

	start := time.Now()
	ds := domain.Aggregate(series...)
	p.metrics.StageDuration.WithLabelValues("aggregate").Observe(time.Since(start).Seconds())
	p.mu.Lock()
	p.dataset = ds
	p.mu.Unlock()
	p.ready.Store(true)

	p.logger.Info("dataset assembled",
		"series", len(series),
		"observations", ds.Len(),
		"distinct_depths", len(ds.DistinctDepths()),
		"wells_missing_depth", len(ds.MissingDepthWells()),
	)

	if p.opts.Exporter != nil {
		if err := p.stage("export_csv", func() error { return p.opts.Exporter.Export(ds) }); err != nil {
			return err
		}
	}

	if err := p.stage("animate", func() error { return p.animate(ctx, ds) }); err != nil {
		return err
	}

	groups := ds.GroupByWell(p.opts.Policy)
	var paths []string
	if err := p.stage("static", func() error {
		var err error
		paths, err = p.opts.Static.PlotAll(ctx, groups)
		return err
	}); err != nil {
		return err
	}
	p.logger.Info("static plots written", "count", len(paths))

	if p.opts.Atlas != nil {
		if err := p.stage("atlas", func() error { return p.opts.Atlas.WriteAtlas(groups, paths) }); err != nil {
			return err
		}
	}

	p.logger.Info("pipeline finished")
	return nil
}

// animate renders the frame sequence once and feeds every encoder.
func (p *Pipeline) animate(ctx context.Context, ds domain.Dataset) error {
	frames := ds.Frames(p.opts.Policy)
	if len(frames) == 0 {
		return errors.New("animate: no frames (no observations with a known depth)")
	}

	encoders, err := p.opts.Encoders(ctx)
	if err != nil {
		return fmt.Errorf("animate: open encoders: %w", err)
	}
	sinks := make([]render.FrameSink, len(encoders))
	for i, e := range encoders {
		sinks[i] = e
	}

	anim := render.NewAnimator(frames, p.opts.Animator, p.logger, p.metrics)
	if err := anim.Export(ctx, sinks...); err != nil {
		// Reap ffmpeg and drop partial outputs.
		for _, e := range encoders {
			if abortErr := e.Abort(); abortErr != nil {
				p.logger.Warn("encoder abort failed", "error", abortErr)
			}
		}
		return fmt.Errorf("animate: %w", err)
	}

	var closeErrs []error
	for _, e := range encoders {
		if err := e.Close(); err != nil {
			closeErrs = append(closeErrs, err)
		}
	}
	if err := errors.Join(closeErrs...); err != nil {
		return fmt.Errorf("animate: %w", err)
	}
	return nil
}

func (p *Pipeline) stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	p.metrics.StageDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		p.logger.Error("stage failed", "stage", name, "error", err)
		return err
	}
	p.logger.Debug("stage finished", "stage", name, "duration", time.Since(start))
	return nil
}
