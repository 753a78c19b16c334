package property

import "slices"

// Value is the set of types an Animatable can hold.
type Value interface {
	float32 | [2]float32 | [3]float32 | [4]float32 | []float32
}

// Property is the type-erased view used by the animation system and pointer resolution.
// Values cross this boundary as flat float slices.
type Property interface {
	// Stride is the number of float components of one value.
	Stride() int
	// IsSequence reports whether the rest value is an array or slice rather than a scalar.
	IsSequence() bool
	// Floats returns the current value.
	Floats() []float32
	// RestFloats returns the rest value.
	RestFloats() []float32
	// AnimateFloats sets the animated override.
	AnimateFloats(v []float32)
	// Rest drops the animated override, if any.
	Rest()
	Dirty() bool
	IsDefined() bool
}

// Animatable holds a rest value and an optional animated override.
// The zero value is an unset property that is not tracked.
type Animatable[T Value] struct {
	tracker     *Tracker
	handle      Handle
	rest        T
	animated    T
	hasAnimated bool
	defined     bool
}

// New creates a property with the given rest value registered in tr.
func New[T Value](tr *Tracker, rest T) Animatable[T] {
	a := Animatable[T]{tracker: tr, rest: rest, defined: true}
	if tr != nil {
		a.handle = tr.register()
	}
	return a
}

// NewUnset creates a registered property without a rest value.
func NewUnset[T Value](tr *Tracker) Animatable[T] {
	a := New(tr, *new(T))
	a.defined = false
	return a
}

func (a *Animatable[T]) markDirty() {
	if a.tracker != nil {
		a.tracker.mark(a.handle)
	}
}

// RestAt sets the rest value.
func (a *Animatable[T]) RestAt(v T) {
	a.rest = v
	a.defined = true
	a.markDirty()
}

// Animate sets the animated override.
func (a *Animatable[T]) Animate(v T) {
	a.animated = v
	a.hasAnimated = true
	a.markDirty()
}

// Rest clears the animated override. It does nothing when no override is present,
// so a property that was never animated does not trigger re-evaluation.
func (a *Animatable[T]) Rest() {
	if !a.hasAnimated {
		return
	}
	var zero T
	a.animated = zero
	a.hasAnimated = false
	a.markDirty()
}

// Value returns the animated override if present, else the rest value.
func (a *Animatable[T]) Value() T {
	if a.hasAnimated {
		return a.animated
	}
	return a.rest
}

// RestValue returns the rest value regardless of animation.
func (a *Animatable[T]) RestValue() T {
	return a.rest
}

// IsAnimated reports whether an override is active.
func (a *Animatable[T]) IsAnimated() bool {
	return a.hasAnimated
}

// IsDefined reports whether a rest value was ever provided.
func (a *Animatable[T]) IsDefined() bool {
	return a.defined
}

// Dirty reports whether the property changed since the tracker's last Reset.
func (a *Animatable[T]) Dirty() bool {
	return a.tracker != nil && a.tracker.IsDirty(a.handle)
}

// Handle returns the tracker handle of the property.
func (a *Animatable[T]) Handle() Handle {
	return a.handle
}

// Stride implements Property.
func (a *Animatable[T]) Stride() int {
	switch v := any(a.rest).(type) {
	case float32:
		return 1
	case [2]float32:
		return 2
	case [3]float32:
		return 3
	case [4]float32:
		return 4
	case []float32:
		if len(v) == 0 && a.hasAnimated {
			return len(any(a.animated).([]float32))
		}
		return len(v)
	}
	return 0
}

// IsSequence implements Property.
func (a *Animatable[T]) IsSequence() bool {
	_, scalar := any(a.rest).(float32)
	return !scalar
}

// Floats implements Property.
func (a *Animatable[T]) Floats() []float32 {
	return toFloats(a.Value())
}

// RestFloats implements Property.
func (a *Animatable[T]) RestFloats() []float32 {
	return toFloats(a.rest)
}

// AnimateFloats implements Property.
func (a *Animatable[T]) AnimateFloats(v []float32) {
	a.Animate(fromFloats[T](v))
}

func toFloats[T Value](v T) []float32 {
	switch x := any(v).(type) {
	case float32:
		return []float32{x}
	case [2]float32:
		return x[:]
	case [3]float32:
		return x[:]
	case [4]float32:
		return x[:]
	case []float32:
		return slices.Clone(x)
	}
	return nil
}

func fromFloats[T Value](v []float32) T {
	var out T
	switch p := any(&out).(type) {
	case *float32:
		if len(v) > 0 {
			*p = v[0]
		}
	case *[2]float32:
		copy(p[:], v)
	case *[3]float32:
		copy(p[:], v)
	case *[4]float32:
		copy(p[:], v)
	case *[]float32:
		*p = slices.Clone(v)
	}
	return out
}

var (
	_ Property = (*Animatable[float32])(nil)
	_ Property = (*Animatable[[3]float32])(nil)
	_ Property = (*Animatable[[]float32])(nil)
)
