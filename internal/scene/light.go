package scene

import (
	gomath "math"

	"github.com/Faultbox/gltf-viewer/internal/property"
)

// LightType is a KHR_lights_punctual light type.
type LightType int

const (
	Directional LightType = iota
	Point
	Spot
)

// Light is a KHR_lights_punctual light. Range may be unset (infinite).
type Light struct {
	Name           string
	Type           LightType
	Color          property.Animatable[[3]float32]
	Intensity      property.Animatable[float32]
	Range          property.Animatable[float32]
	InnerConeAngle property.Animatable[float32]
	OuterConeAngle property.Animatable[float32]
}

// NewLight appends a light with extension defaults.
func (d *Document) NewLight(name string, typ LightType) *Light {
	tr := d.tracker
	l := &Light{
		Name:           name,
		Type:           typ,
		Color:          property.New(tr, [3]float32{1, 1, 1}),
		Intensity:      property.New(tr, float32(1)),
		Range:          property.NewUnset[float32](tr),
		InnerConeAngle: property.New(tr, float32(0)),
		OuterConeAngle: property.New(tr, float32(gomath.Pi/4)),
	}
	d.Lights = append(d.Lights, l)
	return l
}

// LightProperties is the fixed set of animatable light properties, keyed by the
// path after /extensions/KHR_lights_punctual/lights/{i}/.
var LightProperties = map[string]func(*Light) property.Property{
	"color":               func(l *Light) property.Property { return &l.Color },
	"intensity":           func(l *Light) property.Property { return &l.Intensity },
	"range":               func(l *Light) property.Property { return &l.Range },
	"spot/innerConeAngle": func(l *Light) property.Property { return &l.InnerConeAngle },
	"spot/outerConeAngle": func(l *Light) property.Property { return &l.OuterConeAngle },
}
