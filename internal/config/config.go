package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all job settings, populated from environment variables.
type Config struct {
	DataDir       string
	OutputDir     string
	MetadataFile  string
	SeriesPattern string
	TitlePrefix   string

	// Animation outputs.
	GIFOutput      string
	GIFFPS         int
	MP4Enabled     bool
	MP4Output      string
	MP4FPS         int
	MP4BitrateKbps int
	MP4Artist      string
	FFmpegPath     string
	FrameInterval  time.Duration

	MissingDepthPolicy string

	// Optional extras, disabled when empty.
	DatasetCSV  string
	AtlasPDF    string
	PreviewAddr string

	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	frameInterval, err := parseDuration("FRAME_INTERVAL", "450ms")
	if err != nil {
		return nil, err
	}

	gifFPS, err := parsePositiveInt("GIF_FPS", 15)
	if err != nil {
		return nil, err
	}
	mp4FPS, err := parsePositiveInt("MP4_FPS", 20)
	if err != nil {
		return nil, err
	}
	bitrate, err := parsePositiveInt("MP4_BITRATE_KBPS", 1800)
	if err != nil {
		return nil, err
	}

	mp4Enabled, err := strconv.ParseBool(sharedcfg.EnvOrDefault("MP4_ENABLED", "true"))
	if err != nil {
		return nil, errors.New("invalid MP4_ENABLED")
	}

	cfg := &Config{
		DataDir:       sharedcfg.EnvOrDefault("DATA_DIR", "."),
		OutputDir:     sharedcfg.EnvOrDefault("OUTPUT_DIR", "."),
		MetadataFile:  sharedcfg.EnvOrDefault("METADATA_FILE", "List_HGSD_Area1and2_Wells_Selected.txt"),
		SeriesPattern: sharedcfg.EnvOrDefault("SERIES_PATTERN", "*_orig_dyear.col"),
		TitlePrefix:   sharedcfg.EnvOrDefault("TITLE_PREFIX", "HGSD Areas 1&2 Wells"),

		GIFOutput:      sharedcfg.EnvOrDefault("GIF_OUTPUT", "Supplemental_animation.gif"),
		GIFFPS:         gifFPS,
		MP4Enabled:     mp4Enabled,
		MP4Output:      sharedcfg.EnvOrDefault("MP4_OUTPUT", "Supplemental_animation.mp4"),
		MP4FPS:         mp4FPS,
		MP4BitrateKbps: bitrate,
		MP4Artist:      sharedcfg.EnvOrDefault("MP4_ARTIST", "Me"),
		FFmpegPath:     sharedcfg.EnvOrDefault("FFMPEG_PATH", "ffmpeg"),
		FrameInterval:  frameInterval,

		MissingDepthPolicy: sharedcfg.EnvOrDefault("MISSING_DEPTH_POLICY", "exclude"),

		DatasetCSV:  os.Getenv("DATASET_CSV"),
		AtlasPDF:    os.Getenv("ATLAS_PDF"),
		PreviewAddr: os.Getenv("PREVIEW_ADDR"),

		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
	}

	if cfg.MetadataFile == "" {
		return nil, errors.New("METADATA_FILE is required")
	}
	if _, err := filepath.Match(cfg.SeriesPattern, ""); err != nil || cfg.SeriesPattern == "" {
		return nil, errors.New("invalid SERIES_PATTERN")
	}
	if cfg.GIFOutput == "" {
		return nil, errors.New("GIF_OUTPUT is required")
	}
	if cfg.MP4Enabled && cfg.MP4Output == "" {
		return nil, errors.New("MP4_OUTPUT is required when MP4_ENABLED is true")
	}
	switch cfg.MissingDepthPolicy {
	case "exclude", "bucket":
	default:
		return nil, fmt.Errorf("invalid MISSING_DEPTH_POLICY %q (want exclude or bucket)", cfg.MissingDepthPolicy)
	}

	return cfg, nil
}

// MetadataPath is the metadata file resolved against DataDir.
func (c *Config) MetadataPath() string {
	return filepath.Join(c.DataDir, c.MetadataFile)
}

// OutputPath resolves name against OutputDir. Empty names stay empty.
func (c *Config) OutputPath(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.OutputDir, name)
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}
