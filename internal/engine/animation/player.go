package animation

import (
	"go.uber.org/zap"

	"github.com/Faultbox/gltf-viewer/internal/logger"
	"github.com/Faultbox/gltf-viewer/internal/pointer"
	"github.com/Faultbox/gltf-viewer/internal/property"
	"github.com/Faultbox/gltf-viewer/internal/scene"
)

type channelState struct {
	interp   Interpolator
	target   pointer.Target
	prop     property.Property
	element  int
	stride   int
	rotation bool
	bound    bool
	disabled bool
}

// Player advances one animation of a document.
type Player struct {
	Index int
	// Reverse scans keyframes backward, for playback with decreasing time.
	Reverse bool

	anim     *scene.Animation
	maxTime  float32
	channels []channelState
	scratch  []float32
}

// NewPlayer creates a player for doc.Animations[index].
func NewPlayer(doc *scene.Document, index int) *Player {
	anim := doc.Animations[index]
	return &Player{
		Index:    index,
		anim:     anim,
		channels: make([]channelState, len(anim.Channels)),
	}
}

// Name returns the animation name.
func (p *Player) Name() string {
	return p.anim.Name
}

// MaxTime returns the animation duration, computed from all sampler inputs.
func (p *Player) MaxTime() float32 {
	if p.maxTime == 0 {
		for i := range p.anim.Samplers {
			p.maxTime = max(p.maxTime, p.anim.Samplers[i].MaxTime())
		}
	}
	return p.maxTime
}

// Disabled returns the number of channels disabled because their target does not resolve.
func (p *Player) Disabled() int {
	n := 0
	for i := range p.channels {
		if p.channels[i].disabled {
			n++
		}
	}
	return n
}

// Reset rewinds all channel cursors and drops the animated overrides this
// animation wrote.
func (p *Player) Reset() {
	for i := range p.channels {
		ch := &p.channels[i]
		ch.interp.Reset()
		if ch.bound {
			ch.prop.Rest()
		}
	}
}

// Advance samples every channel at totalTime seconds and writes the results.
// A channel whose target does not resolve is logged once and skipped from then on.
func (p *Player) Advance(doc *scene.Document, totalTime float32) {
	maxTime := p.MaxTime()

	for i := range p.channels {
		ch := &p.channels[i]
		if ch.disabled {
			continue
		}
		if !ch.bound && !p.bind(doc, i) {
			continue
		}

		s := &p.anim.Samplers[p.anim.Channels[i].Sampler]
		v, ok := ch.interp.Interpolate(s, totalTime, ch.stride, maxTime, ch.rotation, p.Reverse)
		if !ok {
			ch.prop.Rest()
			continue
		}

		if ch.element >= 0 {
			p.scratch = append(p.scratch[:0], ch.prop.Floats()...)
			if ch.element >= len(p.scratch) {
				ch.prop.Rest()
				continue
			}
			p.scratch[ch.element] = v[0]
			v = p.scratch
		}
		// Scalar properties take v[0]; sequences keep their shape even with one component.
		ch.prop.AnimateFloats(v)
	}
}

func (p *Player) bind(doc *scene.Document, i int) bool {
	ch := &p.channels[i]
	c := p.anim.Channels[i]

	fail := func(reason string, fields ...zap.Field) bool {
		ch.disabled = true
		logger.Warn("animation channel disabled",
			append(fields,
				zap.String("animation", p.anim.Name),
				zap.Int("channel", i),
				zap.String("pointer", c.Pointer),
				zap.String("reason", reason))...)
		return false
	}

	if c.Sampler < 0 || c.Sampler >= len(p.anim.Samplers) {
		return fail("missing sampler", zap.Int("sampler", c.Sampler))
	}
	target, err := pointer.Compile(c.Pointer)
	if err != nil {
		return fail(err.Error())
	}
	r, err := target.Resolve(doc)
	if err != nil {
		return fail(err.Error())
	}

	s := &p.anim.Samplers[c.Sampler]
	stride := samplerStride(s)
	want := r.Property.Stride()
	if r.Element >= 0 {
		want = 1
	}
	if stride == 0 || (want != 0 && stride != want) {
		return fail("stride mismatch", zap.Int("samplerStride", stride), zap.Int("propertyStride", want))
	}

	ch.target = target
	ch.prop = r.Property
	ch.element = r.Element
	ch.stride = stride
	ch.rotation = target.Collection == pointer.Nodes && target.Property == "rotation"
	ch.bound = true
	return true
}

// samplerStride derives the component count per key from the track lengths.
func samplerStride(s *scene.Sampler) int {
	n := len(s.Input)
	if n == 0 {
		return 0
	}
	width := len(s.Output) / n
	if s.Interpolation == scene.CubicSpline {
		width /= 3
	}
	return width
}
