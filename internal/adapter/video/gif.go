// Package video encodes rendered animation frames into GIF and MP4 files.
package video

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"math"
	"os"
)

// GIFDelay converts a frame rate into a per-frame GIF delay in hundredths
// of a second, never less than 1.
func GIFDelay(fps int) int {
	return max(1, int(math.Round(100/float64(fps))))
}

// GIFEncoder collects frames and writes a looping GIF on Close.
// It implements render.FrameSink.
type GIFEncoder struct {
	path   string
	delay  int
	frames []*image.Paletted
}

// NewGIFEncoder creates an encoder writing to path at fps frames per second.
func NewGIFEncoder(path string, fps int) *GIFEncoder {
	return &GIFEncoder{path: path, delay: GIFDelay(fps)}
}

// AddFrame quantises img to the Plan 9 palette with Floyd-Steinberg dithering.
func (e *GIFEncoder) AddFrame(img image.Image) error {
	b := img.Bounds()
	pm := image.NewPaletted(b, palette.Plan9)
	draw.FloydSteinberg.Draw(pm, b, img, b.Min)
	e.frames = append(e.frames, pm)
	return nil
}

// Frames returns the number of frames collected.
func (e *GIFEncoder) Frames() int { return len(e.frames) }

// Abort discards the collected frames without writing the file.
func (e *GIFEncoder) Abort() error {
	e.frames = nil
	return nil
}

// Close writes the GIF, looping forever.
func (e *GIFEncoder) Close() error {
	if len(e.frames) == 0 {
		return fmt.Errorf("gif %s: no frames", e.path)
	}
	delays := make([]int, len(e.frames))
	for i := range delays {
		delays[i] = e.delay
	}

	f, err := os.Create(e.path)
	if err != nil {
		return fmt.Errorf("gif %s: %w", e.path, err)
	}
	if err := gif.EncodeAll(f, &gif.GIF{Image: e.frames, Delay: delays, LoopCount: 0}); err != nil {
		f.Close()
		return fmt.Errorf("gif %s: %w", e.path, err)
	}
	return f.Close()
}
