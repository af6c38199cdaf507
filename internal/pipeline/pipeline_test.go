package pipeline_test

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/groundwater-animation/internal/adapter/table"
	"github.com/couchcryptid/groundwater-animation/internal/adapter/wellfile"
	"github.com/couchcryptid/groundwater-animation/internal/domain"
	"github.com/couchcryptid/groundwater-animation/internal/observability"
	"github.com/couchcryptid/groundwater-animation/internal/pipeline"
	"github.com/couchcryptid/groundwater-animation/internal/render"
)

// --- mocks ---

type mockLoader struct {
	series []domain.Series
	err    error
}

func (m *mockLoader) Load(_ context.Context) ([]domain.Series, error) {
	return m.series, m.err
}

type mockEncoder struct {
	frames   int
	closed   bool
	aborted  bool
	addErr   error
	closeErr error
}

func (m *mockEncoder) AddFrame(_ image.Image) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.frames++
	return nil
}

func (m *mockEncoder) Close() error {
	m.closed = true
	return m.closeErr
}

func (m *mockEncoder) Abort() error {
	m.aborted = true
	return nil
}

func encoders(encs ...*mockEncoder) pipeline.EncoderFactory {
	return func(_ context.Context) ([]pipeline.Encoder, error) {
		out := make([]pipeline.Encoder, len(encs))
		for i, e := range encs {
			out[i] = e
		}
		return out, nil
	}
}

type mockAtlas struct {
	groups []domain.WellGroup
	paths  []string
}

func (m *mockAtlas) WriteAtlas(groups []domain.WellGroup, paths []string) error {
	m.groups, m.paths = groups, paths
	return nil
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

// twoWellDir lays out the W1 (100 ft) / W2 (50 ft) scenario.
func twoWellDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "wells.txt", "Num WellID WellDepth\n1 W1 100\n2 W2 50\n")
	writeFile(t, dir, "W1_orig_dyear.col", "Year Month Level\n1990.0 1 -10\n1991.0 1 -11\n1992.0 1 -12\n")
	writeFile(t, dir, "W2_orig_dyear.col", "Year Month Level\n2000.0 1 -20\n2001.0 1 -21\n2002.0 1 -22\n")
	return dir
}

func newPipeline(loader pipeline.Loader, opts pipeline.Options, metrics *observability.Metrics) *pipeline.Pipeline {
	return pipeline.New(loader, opts, slog.Default(), metrics)
}

// --- tests ---

func TestPipeline_Run_TwoWellScenario(t *testing.T) {
	dir := twoWellDir(t)
	out := t.TempDir()
	metrics := observability.NewMetricsForTesting()

	src := wellfile.NewSource(filepath.Join(dir, "wells.txt"), dir,
		wellfile.DefaultMetadataSchema(), wellfile.DefaultSeriesSchema(), slog.Default(), metrics)
	gif, mp4 := &mockEncoder{}, &mockEncoder{}
	atlas := &mockAtlas{}

	p := newPipeline(src, pipeline.Options{
		Policy:   domain.ExcludeMissing,
		Animator: render.DefaultAnimatorOptions(),
		Encoders: encoders(gif, mp4),
		Static:   render.NewStaticPlotter(out, slog.Default(), metrics),
		Exporter: table.CSVExporter{Path: filepath.Join(out, "merged.csv")},
		Atlas:    atlas,
	}, metrics)

	require.Error(t, p.CheckReadiness(context.Background()))
	require.NoError(t, p.Run(context.Background()))
	require.NoError(t, p.CheckReadiness(context.Background()))

	ds := p.Dataset()
	require.Equal(t, 6, ds.Len())
	ids := make([]string, ds.Len())
	for i := range ids {
		ids[i] = ds.At(i).WellID
	}
	if diff := cmp.Diff([]string{"W2", "W2", "W2", "W1", "W1", "W1"}, ids); diff != "" {
		t.Errorf("dataset order mismatch (-want +got):\n%s", diff)
	}

	frames := ds.Frames(domain.ExcludeMissing)
	require.Len(t, frames, 2)
	assert.Equal(t, "W2", frames[0].WellID)
	assert.Equal(t, "W1", frames[1].WellID)

	assert.Equal(t, 2, gif.frames)
	assert.Equal(t, 2, mp4.frames)
	assert.True(t, gif.closed)
	assert.True(t, mp4.closed)
	assert.InDelta(t, 2.0, testutil.ToFloat64(metrics.FramesRendered), 1e-9)

	for _, name := range []string{"W1_30m.png", "W2_15m.png", "merged.csv"} {
		_, err := os.Stat(filepath.Join(out, name))
		assert.NoError(t, err, name)
	}

	require.Len(t, atlas.groups, 2)
	assert.Equal(t, []string{filepath.Join(out, "W1_30m.png"), filepath.Join(out, "W2_15m.png")}, atlas.paths)
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.PipelineRunning))
	// load, aggregate, export_csv, animate, static, atlas
	assert.Equal(t, 6, testutil.CollectAndCount(metrics.StageDuration))
}

func TestPipeline_Run_LoadError(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	gif := &mockEncoder{}
	p := newPipeline(&mockLoader{err: wellfile.ErrMissingMetadataFile}, pipeline.Options{
		Animator: render.DefaultAnimatorOptions(),
		Encoders: encoders(gif),
		Static:   render.NewStaticPlotter(t.TempDir(), slog.Default(), metrics),
	}, metrics)

	err := p.Run(context.Background())
	require.ErrorIs(t, err, wellfile.ErrMissingMetadataFile)
	assert.Zero(t, gif.frames)
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_NoKnownDepths(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	loader := &mockLoader{series: []domain.Series{{
		WellID: "X",
		Observations: []domain.Observation{
			{WellID: "X", Year: 1990, Level: -1, Depth: domain.UnknownDepth()},
		},
	}}}
	p := newPipeline(loader, pipeline.Options{
		Policy:   domain.ExcludeMissing,
		Animator: render.DefaultAnimatorOptions(),
		Encoders: encoders(&mockEncoder{}),
		Static:   render.NewStaticPlotter(t.TempDir(), slog.Default(), metrics),
	}, metrics)

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no frames")
}

func TestPipeline_Run_BucketKeepsUnknownDepth(t *testing.T) {
	out := t.TempDir()
	metrics := observability.NewMetricsForTesting()
	loader := &mockLoader{series: []domain.Series{
		{WellID: "X", Observations: []domain.Observation{
			{WellID: "X", Year: 1990, Level: -1, Depth: domain.UnknownDepth()},
		}},
		{WellID: "W1", Observations: []domain.Observation{
			{WellID: "W1", Year: 1990, Level: -5, Depth: domain.KnownDepth(100)},
		}},
	}}
	gif := &mockEncoder{}
	p := newPipeline(loader, pipeline.Options{
		Policy:   domain.BucketMissing,
		Animator: render.DefaultAnimatorOptions(),
		Encoders: encoders(gif),
		Static:   render.NewStaticPlotter(out, slog.Default(), metrics),
	}, metrics)

	require.NoError(t, p.Run(context.Background()))
	assert.Equal(t, 2, gif.frames)
	_, err := os.Stat(filepath.Join(out, "X_unknown.png"))
	assert.NoError(t, err)
}

func TestPipeline_Run_EncoderErrorAbortsOutputs(t *testing.T) {
	dir := twoWellDir(t)
	metrics := observability.NewMetricsForTesting()
	src := wellfile.NewSource(filepath.Join(dir, "wells.txt"), dir,
		wellfile.DefaultMetadataSchema(), wellfile.DefaultSeriesSchema(), slog.Default(), metrics)

	bad := &mockEncoder{addErr: errors.New("disk full")}
	good := &mockEncoder{}
	p := newPipeline(src, pipeline.Options{
		Animator: render.DefaultAnimatorOptions(),
		Encoders: encoders(good, bad),
		Static:   render.NewStaticPlotter(t.TempDir(), slog.Default(), metrics),
	}, metrics)

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.True(t, bad.aborted)
	assert.True(t, good.aborted)
	assert.False(t, bad.closed)
	assert.False(t, good.closed)
}

func TestPipeline_Run_CloseError(t *testing.T) {
	dir := twoWellDir(t)
	metrics := observability.NewMetricsForTesting()
	src := wellfile.NewSource(filepath.Join(dir, "wells.txt"), dir,
		wellfile.DefaultMetadataSchema(), wellfile.DefaultSeriesSchema(), slog.Default(), metrics)

	p := newPipeline(src, pipeline.Options{
		Animator: render.DefaultAnimatorOptions(),
		Encoders: encoders(&mockEncoder{closeErr: errors.New("ffmpeg exited 1")}),
		Static:   render.NewStaticPlotter(t.TempDir(), slog.Default(), metrics),
	}, metrics)

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ffmpeg exited 1")
}

func TestPipeline_Run_EncoderFactoryError(t *testing.T) {
	dir := twoWellDir(t)
	metrics := observability.NewMetricsForTesting()
	src := wellfile.NewSource(filepath.Join(dir, "wells.txt"), dir,
		wellfile.DefaultMetadataSchema(), wellfile.DefaultSeriesSchema(), slog.Default(), metrics)

	p := newPipeline(src, pipeline.Options{
		Animator: render.DefaultAnimatorOptions(),
		Encoders: func(context.Context) ([]pipeline.Encoder, error) {
			return nil, errors.New("ffmpeg not found")
		},
		Static: render.NewStaticPlotter(t.TempDir(), slog.Default(), metrics),
	}, metrics)

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ffmpeg not found")
}
