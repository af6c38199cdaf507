package render

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"time"
)

// Player steps an Animator in real time, one frame per interval, and stops
// after the last frame.
type Player struct {
	anim     *Animator
	interval time.Duration
	logger   *slog.Logger
	consumed atomic.Int64
}

// NewPlayer creates a Player advancing anim every interval.
func NewPlayer(anim *Animator, interval time.Duration, logger *slog.Logger) *Player {
	return &Player{anim: anim, interval: interval, logger: logger}
}

// Run shows frame 0 immediately, then one frame per interval. Paused frames
// are consumed without drawing, so pausing never stretches playback.
func (p *Player) Run(ctx context.Context) error {
	n := p.anim.FrameCount()
	p.logger.Info("playback started", "frames", n, "interval", p.interval)

	for i := 0; i < n; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				p.logger.Info("playback stopped", "frame", i, "reason", ctx.Err())
				return nil
			case <-clock.After(p.interval):
			}
		}
		if _, err := p.anim.Step(i); err != nil {
			return err
		}
		p.consumed.Store(int64(i + 1))
	}

	p.logger.Info("playback finished", "frames", n)
	return nil
}

// Consumed returns how many frames the clock has advanced through.
func (p *Player) Consumed() int { return int(p.consumed.Load()) }

// Animator returns the animator being played.
func (p *Player) Animator() *Animator { return p.anim }

// Status is a snapshot of playback progress.
type Status struct {
	Frame  int    `json:"frame"`
	Frames int    `json:"frames"`
	State  string `json:"state"`
	Title  string `json:"title"`
	Layers int    `json:"layers"`
}

// Status reports playback progress.
func (p *Player) Status() Status {
	return Status{
		Frame:  p.Consumed(),
		Frames: p.anim.FrameCount(),
		State:  p.anim.Controller().State().String(),
		Title:  p.anim.Title(),
		Layers: len(p.anim.Layers()),
	}
}

// TogglePause pauses or resumes drawing and returns the new state.
func (p *Player) TogglePause() State { return p.anim.Controller().TogglePause() }

// WritePNG encodes the accumulated plot as PNG.
func (p *Player) WritePNG(w io.Writer) error { return p.anim.WritePNG(w) }
