package render

import "sync"

// State is the playback state of an animation.
type State int

const (
	Running State = iota
	Paused
)

func (s State) String() string {
	if s == Paused {
		return "paused"
	}
	return "running"
}

// Controller holds the pause state read by the frame callback. It is only
// changed through TogglePause, which UI bindings call.
type Controller struct {
	mu    sync.Mutex
	state State
}

// TogglePause flips between Running and Paused and returns the new state.
func (c *Controller) TogglePause() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Paused {
		c.state = Running
	} else {
		c.state = Paused
	}
	return c.state
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}
