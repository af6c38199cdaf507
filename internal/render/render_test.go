package render

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/groundwater-animation/internal/domain"
	"github.com/couchcryptid/groundwater-animation/internal/observability"
)

const frameInterval = 450 * time.Millisecond

func wellSeries(id string, depth domain.Depth, levels ...float64) domain.Series {
	s := domain.Series{WellID: id, Depth: depth}
	for i, lvl := range levels {
		s.Observations = append(s.Observations, domain.Observation{
			WellID: id, Year: 1990 + float64(i), Level: lvl, Depth: depth,
		})
	}
	return s
}

// twoWellDataset is W1 at 100 ft and W2 at 50 ft, three rows each.
func twoWellDataset() domain.Dataset {
	return domain.Aggregate(
		wellSeries("W1", domain.KnownDepth(100), -10, -11, -12),
		wellSeries("W2", domain.KnownDepth(50), -20, -21, -22),
	)
}

func newTestAnimator(frames []domain.Frame) (*Animator, *observability.Metrics) {
	metrics := observability.NewMetricsForTesting()
	return NewAnimator(frames, DefaultAnimatorOptions(), slog.Default(), metrics), metrics
}

type recordingSink struct {
	frames []image.Image
}

func (r *recordingSink) AddFrame(img image.Image) error {
	r.frames = append(r.frames, img)
	return nil
}

func TestFrameTitle(t *testing.T) {
	assert.Equal(t, "HGSD Areas 1&2 Wells: ID W1 - Depth: 30.5m",
		FrameTitle("HGSD Areas 1&2 Wells", "W1", domain.KnownDepth(100)))
	assert.Equal(t, "Area: ID X - Depth: unknown",
		FrameTitle("Area", "X", domain.UnknownDepth()))
}

func TestStaticNaming(t *testing.T) {
	assert.Equal(t, "W1_30m.png", StaticFilename("W1", domain.KnownDepth(100)))
	assert.Equal(t, "W9_0m.png", StaticFilename("W9", domain.KnownDepth(2)))
	assert.Equal(t, "X_unknown.png", StaticFilename("X", domain.UnknownDepth()))
	assert.Equal(t, "Well ID W1 at Depth 30.5m", StaticTitle("W1", domain.KnownDepth(100)))
}

func TestAxesWindows(t *testing.T) {
	anim := AnimationAxes()
	assert.Equal(t, [4]float64{1920, 2025, -180, 30}, [4]float64{anim.XMin, anim.XMax, anim.YMin, anim.YMax})

	static := StaticAxes()
	assert.Equal(t, [4]float64{1920, 2025, -150, 30}, [4]float64{static.XMin, static.XMax, static.YMin, static.YMax})
}

func TestPoints_SkipsNonFinite(t *testing.T) {
	obs := []domain.Observation{
		{Year: 1990, Level: -1},
		{Year: 1991, Level: math.NaN()},
		{Year: math.Inf(1), Level: -3},
		{Year: 1993, Level: -4},
	}
	xys := points(obs)
	require.Len(t, xys, 2)
	assert.Equal(t, 1993.0, xys[1].X)
}

func TestAnimator_FrameCountMatchesDistinctDepths(t *testing.T) {
	ds := domain.Aggregate(
		wellSeries("A", domain.KnownDepth(80), -1, -2),
		wellSeries("B", domain.KnownDepth(80), -3),
		wellSeries("C", domain.KnownDepth(30), -4, -5, -6),
	)
	anim, _ := newTestAnimator(ds.Frames(domain.ExcludeMissing))

	assert.Equal(t, len(ds.DistinctDepths()), anim.FrameCount())
	assert.NotEqual(t, ds.Len(), anim.FrameCount())
}

func TestAnimator_StepAccumulatesLayers(t *testing.T) {
	anim, metrics := newTestAnimator(twoWellDataset().Frames(domain.ExcludeMissing))
	require.Equal(t, 2, anim.FrameCount())

	layers, err := anim.Step(0)
	require.NoError(t, err)
	require.Len(t, layers, 1)
	assert.Equal(t, "W2", layers[0].WellID)
	assert.Equal(t, 3, layers[0].Points)
	assert.Equal(t, "HGSD Areas 1&2 Wells: ID W2 - Depth: 15.2m", anim.Title())

	layers, err = anim.Step(1)
	require.NoError(t, err)
	require.Len(t, layers, 2)
	assert.Equal(t, "W2", layers[0].WellID)
	assert.Equal(t, "W1", layers[1].WellID)
	assert.Equal(t, "HGSD Areas 1&2 Wells: ID W1 - Depth: 30.5m", anim.Title())

	assert.InDelta(t, 2.0, testutil.ToFloat64(metrics.FramesRendered), 1e-9)
}

func TestAnimator_PausedStepAddsNothing(t *testing.T) {
	anim, metrics := newTestAnimator(twoWellDataset().Frames(domain.ExcludeMissing))

	_, err := anim.Step(0)
	require.NoError(t, err)
	before := anim.Layers()
	title := anim.Title()

	assert.Equal(t, Paused, anim.Controller().TogglePause())
	layers, err := anim.Step(1)
	require.NoError(t, err)
	assert.Equal(t, before, layers)
	assert.Equal(t, before, anim.Layers())
	assert.Equal(t, title, anim.Title())
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.FramesPaused), 1e-9)

	assert.Equal(t, Running, anim.Controller().TogglePause())
	layers, err = anim.Step(1)
	require.NoError(t, err)
	assert.Len(t, layers, 2)
}

func TestAnimator_StepOutOfRange(t *testing.T) {
	anim, _ := newTestAnimator(twoWellDataset().Frames(domain.ExcludeMissing))

	_, err := anim.Step(2)
	require.Error(t, err)
	_, err = anim.Step(-1)
	require.Error(t, err)
	assert.Empty(t, anim.Layers())
}

func TestAnimator_ExportFansOutEveryFrame(t *testing.T) {
	anim, _ := newTestAnimator(twoWellDataset().Frames(domain.ExcludeMissing))
	gif, mp4 := &recordingSink{}, &recordingSink{}

	require.NoError(t, anim.Export(context.Background(), gif, mp4))

	require.Len(t, gif.frames, 2)
	require.Len(t, mp4.frames, 2)
	b := gif.frames[0].Bounds()
	assert.InDelta(t, 640, b.Dx(), 1)
	assert.InDelta(t, 480, b.Dy(), 1)
	assert.Len(t, anim.Layers(), 2)
}

func TestAnimator_ExportCancelled(t *testing.T) {
	anim, _ := newTestAnimator(twoWellDataset().Frames(domain.ExcludeMissing))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := anim.Export(ctx, &recordingSink{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnimator_WritePNG(t *testing.T) {
	anim, _ := newTestAnimator(twoWellDataset().Frames(domain.ExcludeMissing))
	_, err := anim.Step(0)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, anim.WritePNG(&buf))
	_, err = png.Decode(&buf)
	require.NoError(t, err)
}

func TestController(t *testing.T) {
	var c Controller
	assert.Equal(t, Running, c.State())
	assert.Equal(t, "running", c.State().String())
	assert.Equal(t, Paused, c.TogglePause())
	assert.Equal(t, "paused", c.State().String())
	assert.Equal(t, Running, c.TogglePause())
}

func TestPlayer_AdvancesOnClock(t *testing.T) {
	fc := clockwork.NewFakeClock()
	SetClock(fc)
	defer SetClock(nil)

	anim, _ := newTestAnimator(twoWellDataset().Frames(domain.ExcludeMissing))
	p := NewPlayer(anim, frameInterval, slog.Default())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	// Frame 0 is shown immediately; the player then waits one interval.
	require.NoError(t, fc.BlockUntilContext(ctx, 1))
	assert.Equal(t, 1, p.Consumed())
	assert.Len(t, anim.Layers(), 1)

	fc.Advance(frameInterval)
	require.NoError(t, <-done)
	assert.Equal(t, 2, p.Consumed())
	assert.Len(t, anim.Layers(), 2)
}

func TestPlayer_PausedFramesStillConsumed(t *testing.T) {
	fc := clockwork.NewFakeClock()
	SetClock(fc)
	defer SetClock(nil)

	ds := domain.Aggregate(
		wellSeries("A", domain.KnownDepth(10), -1),
		wellSeries("B", domain.KnownDepth(20), -2),
		wellSeries("C", domain.KnownDepth(30), -3),
	)
	anim, _ := newTestAnimator(ds.Frames(domain.ExcludeMissing))
	p := NewPlayer(anim, frameInterval, slog.Default())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.NoError(t, fc.BlockUntilContext(ctx, 1))
	anim.Controller().TogglePause()

	fc.Advance(frameInterval)
	require.NoError(t, fc.BlockUntilContext(ctx, 1))
	assert.Equal(t, 2, p.Consumed())
	assert.Len(t, anim.Layers(), 1)

	anim.Controller().TogglePause()
	fc.Advance(frameInterval)
	require.NoError(t, <-done)
	assert.Equal(t, 3, p.Consumed())

	layers := anim.Layers()
	require.Len(t, layers, 2)
	assert.Equal(t, "C", layers[1].WellID)
}

func TestPlayer_StopsOnCancel(t *testing.T) {
	fc := clockwork.NewFakeClock()
	SetClock(fc)
	defer SetClock(nil)

	anim, _ := newTestAnimator(twoWellDataset().Frames(domain.ExcludeMissing))
	p := NewPlayer(anim, frameInterval, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()
	require.NoError(t, fc.BlockUntilContext(waitCtx, 1))
	cancel()

	require.NoError(t, <-done)
	assert.Equal(t, 1, p.Consumed())
}

func TestStaticPlotter_WritesOneFilePerWell(t *testing.T) {
	dir := t.TempDir()
	metrics := observability.NewMetricsForTesting()
	sp := NewStaticPlotter(dir, slog.Default(), metrics)

	paths, err := sp.PlotAll(context.Background(), twoWellDataset().GroupByWell(domain.ExcludeMissing))
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "W1_30m.png"),
		filepath.Join(dir, "W2_15m.png"),
	}, paths)

	for _, path := range paths {
		f, err := os.Open(path)
		require.NoError(t, err)
		_, err = png.Decode(f)
		f.Close()
		require.NoError(t, err, path)
	}
	assert.InDelta(t, 2.0, testutil.ToFloat64(metrics.StaticPlotsWritten), 1e-9)
}

func TestStaticPlotter_Overwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "W1_30m.png")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o600))

	sp := NewStaticPlotter(dir, slog.Default(), observability.NewMetricsForTesting())
	groups := twoWellDataset().GroupByWell(domain.ExcludeMissing)
	got, err := sp.Plot(groups[0])
	require.NoError(t, err)
	assert.Equal(t, path, got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
}

func TestStaticPlotter_UnknownDepthBucket(t *testing.T) {
	dir := t.TempDir()
	ds := domain.Aggregate(wellSeries("X", domain.UnknownDepth(), -1, -2))
	sp := NewStaticPlotter(dir, slog.Default(), observability.NewMetricsForTesting())

	paths, err := sp.PlotAll(context.Background(), ds.GroupByWell(domain.BucketMissing))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "X_unknown.png")}, paths)
}
