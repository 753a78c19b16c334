package gltfio

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/Faultbox/gltf-viewer/internal/pointer"
	"github.com/Faultbox/gltf-viewer/internal/scene"
)

func (l *loader) animation(index int, src *gltf.Animation) error {
	a := &scene.Animation{Name: src.Name}
	for i, s := range src.Samplers {
		input, err := readFloats(l.src, s.Input)
		if err != nil {
			return fmt.Errorf("animation %d sampler %d input: %w", index, i, err)
		}
		output, err := readFloats(l.src, s.Output)
		if err != nil {
			return fmt.Errorf("animation %d sampler %d output: %w", index, i, err)
		}
		a.Samplers = append(a.Samplers, scene.Sampler{
			Input:         input,
			Output:        output,
			Interpolation: interpolation(s.Interpolation),
		})
	}

	for i, ch := range src.Channels {
		if ch.Sampler == nil || int(*ch.Sampler) >= len(a.Samplers) {
			return fmt.Errorf("%w: animation %d channel %d has no sampler", ErrInvalid, index, i)
		}
		ptr, ok := channelPointer(ch.Target)
		if !ok {
			// Players skip channels they cannot bind, so an unknown
			// target only loses that channel.
			l.warn("animation channel without target",
				zap.String("animation", src.Name), zap.Int("channel", i))
			continue
		}
		a.Channels = append(a.Channels, scene.Channel{Sampler: int(*ch.Sampler), Pointer: ptr})
	}
	l.doc.Animations = append(l.doc.Animations, a)
	return nil
}

// channelPointer returns the animation pointer of a channel target, taken from
// KHR_animation_pointer when present.
func channelPointer(t gltf.ChannelTarget) (string, bool) {
	var ext pointerExt
	if decodeExt(t.Extensions, ExtAnimationPointer, &ext) && ext.Pointer != "" {
		return ext.Pointer, true
	}
	if t.Node == nil {
		return "", false
	}
	node := int(*t.Node)
	switch t.Path {
	case gltf.TRSTranslation:
		return pointer.ForNode(node, "translation"), true
	case gltf.TRSRotation:
		return pointer.ForNode(node, "rotation"), true
	case gltf.TRSScale:
		return pointer.ForNode(node, "scale"), true
	case gltf.TRSWeights:
		return pointer.ForNode(node, "weights"), true
	}
	return "", false
}

func interpolation(i gltf.Interpolation) scene.Interpolation {
	switch i {
	case gltf.InterpolationStep:
		return scene.Step
	case gltf.InterpolationCubicSpline:
		return scene.CubicSpline
	default:
		return scene.Linear
	}
}
