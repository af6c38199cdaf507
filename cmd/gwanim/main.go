package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	httpadapter "github.com/couchcryptid/groundwater-animation/internal/adapter/http"
	"github.com/couchcryptid/groundwater-animation/internal/adapter/report"
	"github.com/couchcryptid/groundwater-animation/internal/adapter/table"
	"github.com/couchcryptid/groundwater-animation/internal/adapter/video"
	"github.com/couchcryptid/groundwater-animation/internal/adapter/wellfile"
	"github.com/couchcryptid/groundwater-animation/internal/config"
	"github.com/couchcryptid/groundwater-animation/internal/domain"
	"github.com/couchcryptid/groundwater-animation/internal/observability"
	"github.com/couchcryptid/groundwater-animation/internal/pipeline"
	"github.com/couchcryptid/groundwater-animation/internal/render"
)

func main() {
	// A .env file is optional; real environment variables take precedence.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg).With("run_id", uuid.NewString())
	metrics := observability.NewMetrics()

	policy, err := domain.ParseMissingDepthPolicy(cfg.MissingDepthPolicy)
	if err != nil {
		logger.Error("invalid missing depth policy", "error", err)
		os.Exit(1)
	}

	seriesSchema := wellfile.DefaultSeriesSchema()
	seriesSchema.Pattern = cfg.SeriesPattern
	src := wellfile.NewSource(cfg.MetadataPath(), cfg.DataDir,
		wellfile.DefaultMetadataSchema(), seriesSchema, logger, metrics)

	animOpts := render.DefaultAnimatorOptions()
	animOpts.TitlePrefix = cfg.TitlePrefix

	opts := pipeline.Options{
		Policy:   policy,
		Animator: animOpts,
		Encoders: encoderFactory(cfg, logger),
		Static:   render.NewStaticPlotter(cfg.OutputDir, logger, metrics),
	}
	if cfg.DatasetCSV != "" {
		opts.Exporter = table.CSVExporter{Path: cfg.OutputPath(cfg.DatasetCSV)}
	}
	if cfg.AtlasPDF != "" {
		opts.Atlas = report.Atlas{Path: cfg.OutputPath(cfg.AtlasPDF), Title: cfg.TitlePrefix}
	}

	p := pipeline.New(src, opts, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := p.Run(ctx); err != nil {
		logger.Error("pipeline error", "error", err)
		os.Exit(1)
	}

	if cfg.PreviewAddr == "" {
		return
	}
	preview(ctx, cfg, p, policy, animOpts, logger, metrics)
}

// encoderFactory opens the GIF writer and, when enabled, the ffmpeg MP4 encoder.
func encoderFactory(cfg *config.Config, logger *slog.Logger) pipeline.EncoderFactory {
	return func(ctx context.Context) ([]pipeline.Encoder, error) {
		encoders := []pipeline.Encoder{video.NewGIFEncoder(cfg.OutputPath(cfg.GIFOutput), cfg.GIFFPS)}
		if !cfg.MP4Enabled {
			logger.Info("mp4 export disabled")
			return encoders, nil
		}
		mp4, err := video.NewFFmpegEncoder(ctx, video.FFmpegOptions{
			Binary:      cfg.FFmpegPath,
			Path:        cfg.OutputPath(cfg.MP4Output),
			FPS:         cfg.MP4FPS,
			BitrateKbps: cfg.MP4BitrateKbps,
			Artist:      cfg.MP4Artist,
		})
		if err != nil {
			return nil, err
		}
		return append(encoders, mp4), nil
	}
}

// preview plays the animation on a clock and serves it over HTTP until ctx is done.
func preview(ctx context.Context, cfg *config.Config, p *pipeline.Pipeline, policy domain.MissingDepthPolicy,
	animOpts render.AnimatorOptions, logger *slog.Logger, metrics *observability.Metrics) {
	anim := render.NewAnimator(p.Dataset().Frames(policy), animOpts, logger, metrics)
	player := render.NewPlayer(anim, cfg.FrameInterval, logger)
	srv := httpadapter.NewServer(cfg.PreviewAddr, p, player, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		if err := player.Run(ctx); err != nil {
			logger.Error("player error", "error", err)
		}
	}()

	logger.Info("preview serving", "addr", cfg.PreviewAddr, "frames", anim.FrameCount())
	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
}
