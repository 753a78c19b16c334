// Package property implements animatable scene values with per-frame dirty tracking.
//
// Every Animatable registers with a Tracker owned by its document. The tracker is an
// arena of dirty flags addressed by Handle plus the list of handles that became dirty
// since the last Reset. Reset must run once per frame after all consumers have looked
// at dirty state and before the next frame's mutations.
package property

// Handle addresses one property inside a Tracker.
type Handle int32

// Tracker records which properties changed during the current frame.
type Tracker struct {
	flags []bool
	dirty []Handle
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

func (t *Tracker) register() Handle {
	t.flags = append(t.flags, false)
	return Handle(len(t.flags) - 1)
}

// mark flags h and records it once per dirty transition.
func (t *Tracker) mark(h Handle) {
	if t.flags[h] {
		return
	}
	t.flags[h] = true
	t.dirty = append(t.dirty, h)
}

// IsDirty reports whether h changed since the last Reset.
func (t *Tracker) IsDirty(h Handle) bool {
	return t.flags[h]
}

// Len returns the number of registered properties.
func (t *Tracker) Len() int {
	return len(t.flags)
}

// DirtyCount returns the number of properties registered as dirty.
func (t *Tracker) DirtyCount() int {
	return len(t.dirty)
}

// AnyDirty reports whether anything changed this frame.
func (t *Tracker) AnyDirty() bool {
	return len(t.dirty) > 0
}

// DirtyHandles returns the handles changed this frame in the order they became dirty.
// The slice is only valid until the next Reset.
func (t *Tracker) DirtyHandles() []Handle {
	return t.dirty
}

// Reset clears every dirty flag and empties the registration list.
func (t *Tracker) Reset() {
	for _, h := range t.dirty {
		t.flags[h] = false
	}
	t.dirty = t.dirty[:0]
}
