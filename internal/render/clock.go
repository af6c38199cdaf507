package render

import "github.com/jonboulle/clockwork"

// clock paces real-time playback. Tests inject a fake via SetClock.
var clock = clockwork.NewRealClock()

// SetClock swaps the playback time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
