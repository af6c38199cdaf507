package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// FFmpegOptions configures the MP4 encoder.
type FFmpegOptions struct {
	Binary      string // path or name on PATH
	Path        string // output file
	FPS         int
	BitrateKbps int
	Artist      string
}

// Args builds the ffmpeg command line. Frames arrive as PNGs on stdin and
// are scaled to even dimensions, which libx264 requires for yuv420p.
func (o FFmpegOptions) Args() []string {
	args := []string{
		"-y",
		"-loglevel", "error",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-framerate", strconv.Itoa(o.FPS),
		"-i", "-",
		"-vf", "scale=trunc(iw/2)*2:trunc(ih/2)*2",
		"-vcodec", "libx264",
		"-pix_fmt", "yuv420p",
		"-b:v", strconv.Itoa(o.BitrateKbps) + "k",
	}
	if o.Artist != "" {
		args = append(args, "-metadata", "artist="+o.Artist)
	}
	return append(args, o.Path)
}

// FFmpegEncoder streams frames to an ffmpeg process.
// It implements render.FrameSink.
type FFmpegEncoder struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr *bytes.Buffer
	path   string
	frames int
}

// NewFFmpegEncoder starts ffmpeg. The process ends when Close is called or
// ctx is cancelled.
func NewFFmpegEncoder(ctx context.Context, opts FFmpegOptions) (*FFmpegEncoder, error) {
	cmd := exec.CommandContext(ctx, opts.Binary, opts.Args()...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdin: %w", err)
	}
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", opts.Binary, err)
	}
	return &FFmpegEncoder{cmd: cmd, stdin: stdin, stderr: stderr, path: opts.Path}, nil
}

// AddFrame writes img to ffmpeg as PNG.
func (e *FFmpegEncoder) AddFrame(img image.Image) error {
	if err := png.Encode(e.stdin, img); err != nil {
		return fmt.Errorf("mp4 %s: write frame %d: %w", e.path, e.frames, err)
	}
	e.frames++
	return nil
}

// Frames returns the number of frames written.
func (e *FFmpegEncoder) Frames() int { return e.frames }

// Close ends the input stream and waits for ffmpeg to finish the file.
func (e *FFmpegEncoder) Close() error {
	if err := e.stdin.Close(); err != nil {
		return fmt.Errorf("mp4 %s: %w", e.path, err)
	}
	if err := e.cmd.Wait(); err != nil {
		return fmt.Errorf("mp4 %s: %w: %s", e.path, err, strings.TrimSpace(e.stderr.String()))
	}
	return nil
}

// Abort kills ffmpeg and removes whatever it wrote so far.
func (e *FFmpegEncoder) Abort() error {
	_ = e.stdin.Close()
	if e.cmd.Process != nil {
		_ = e.cmd.Process.Kill()
	}
	_ = e.cmd.Wait()
	if err := os.Remove(e.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("mp4 %s: remove partial output: %w", e.path, err)
	}
	return nil
}
