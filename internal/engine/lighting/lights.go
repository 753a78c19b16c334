// Package lighting collects KHR_lights_punctual lights into shader uniform arrays.
package lighting

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/gltf-viewer/internal/scene"
	"github.com/Faultbox/gltf-viewer/pkg/math"
)

// MaxLights is the maximum number of punctual lights supported in shaders.
const MaxLights = 16

// Light is a punctual light in world space, ready for GPU upload.
type Light struct {
	Type      scene.LightType
	Position  [3]float32
	Direction [3]float32
	Color     [3]float32
	Intensity float32
	// Range is 0 for unlimited.
	Range        float32
	InnerConeCos float32
	OuterConeCos float32
}

// Buffer holds the lights of one frame.
type Buffer struct {
	Lights []Light
}

// NewBuffer creates an empty light buffer.
func NewBuffer() *Buffer {
	return &Buffer{Lights: make([]Light, 0, MaxLights)}
}

// Gather collects the lights attached to the given nodes. Light direction uses
// the node's world rotation so that scale does not skew it. Lights past
// MaxLights are dropped; the return value reports how many.
func (b *Buffer) Gather(doc *scene.Document, nodes []int) int {
	b.Lights = b.Lights[:0]
	dropped := 0
	for _, idx := range nodes {
		n := doc.Node(idx)
		if n == nil {
			continue
		}
		l := doc.Light(n.Light)
		if l == nil {
			continue
		}
		if len(b.Lights) >= MaxLights {
			dropped++
			continue
		}

		dir := n.WorldRotation.Rotate(math.Vec3{Z: -1}).Normalize()
		light := Light{
			Type:         l.Type,
			Position:     n.RenderTransform().Translation().Array(),
			Direction:    dir.Array(),
			Color:        l.Color.Value(),
			Intensity:    l.Intensity.Value(),
			InnerConeCos: math32.Cos(l.InnerConeAngle.Value()),
			OuterConeCos: math32.Cos(l.OuterConeAngle.Value()),
		}
		if l.Range.IsDefined() {
			light.Range = l.Range.Value()
		}
		b.Lights = append(b.Lights, light)
	}
	return dropped
}

// Count returns the number of lights.
func (b *Buffer) Count() int {
	return len(b.Lights)
}

// Positions returns positions as a flat slice sized for MaxLights.
func (b *Buffer) Positions() []float32 {
	return b.vec3(func(l *Light) [3]float32 { return l.Position })
}

// Directions returns directions as a flat slice sized for MaxLights.
func (b *Buffer) Directions() []float32 {
	return b.vec3(func(l *Light) [3]float32 { return l.Direction })
}

// Colors returns colors as a flat slice sized for MaxLights.
func (b *Buffer) Colors() []float32 {
	return b.vec3(func(l *Light) [3]float32 { return l.Color })
}

// Params returns five floats per light: type, intensity, range, inner and outer
// cone cosines.
func (b *Buffer) Params() []float32 {
	result := make([]float32, MaxLights*5)
	for i := range b.Lights {
		l := &b.Lights[i]
		copy(result[i*5:], []float32{float32(l.Type), l.Intensity, l.Range, l.InnerConeCos, l.OuterConeCos})
	}
	return result
}

func (b *Buffer) vec3(get func(*Light) [3]float32) []float32 {
	result := make([]float32, MaxLights*3)
	for i := range b.Lights {
		v := get(&b.Lights[i])
		copy(result[i*3:], v[:])
	}
	return result
}
