package animation

import "time"

// Timer accounts playback time. It holds no goroutines; elapsed time is derived
// from the clock on demand.
type Timer struct {
	now       func() time.Time
	start     time.Time
	pausedFor time.Duration
	paused    bool
	fixed     *float32
}

// NewTimer creates a paused timer. A nil clock uses time.Now.
func NewTimer(clock func() time.Time) *Timer {
	if clock == nil {
		clock = time.Now
	}
	return &Timer{now: clock, start: clock(), paused: true}
}

// Start begins playback from zero.
func (t *Timer) Start() {
	t.start = t.now()
	t.pausedFor = 0
	t.paused = false
	t.fixed = nil
}

// Pause freezes the elapsed time. A pinned time becomes the frozen value.
func (t *Timer) Pause() {
	if t.paused {
		return
	}
	if t.fixed != nil {
		t.pausedFor = time.Duration(float64(*t.fixed) * float64(time.Second))
		t.fixed = nil
	} else {
		t.pausedFor = t.now().Sub(t.start)
	}
	t.paused = true
}

// Unpause resumes from the frozen elapsed time.
func (t *Timer) Unpause() {
	if !t.paused {
		return
	}
	t.start = t.now().Add(-t.pausedFor)
	t.paused = false
}

// Toggle switches between paused and playing.
func (t *Timer) Toggle() {
	if t.paused {
		t.Unpause()
	} else {
		t.Pause()
	}
}

// Reset rewinds to zero, keeping the paused state.
func (t *Timer) Reset() {
	t.start = t.now()
	t.pausedFor = 0
	t.fixed = nil
}

// SetFixedTime pins the elapsed time, e.g. for deterministic captures.
func (t *Timer) SetFixedTime(sec float32) {
	t.paused = false
	t.fixed = &sec
}

// Paused reports whether the timer is paused.
func (t *Timer) Paused() bool {
	return t.paused
}

// ElapsedSec returns the playback time in seconds.
func (t *Timer) ElapsedSec() float32 {
	if t.paused {
		return float32(t.pausedFor.Seconds())
	}
	if t.fixed != nil {
		return *t.fixed
	}
	return float32(t.now().Sub(t.start).Seconds())
}
