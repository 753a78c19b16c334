package glbackend

import (
	"errors"
	"fmt"
	"slices"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/gltf-viewer/internal/scene"
	"github.com/Faultbox/gltf-viewer/pkg/math"
)

// ErrNoPosition is returned for primitives without a usable POSITION stream.
var ErrNoPosition = errors.New("primitive has no POSITION attribute")

// Vertex attribute locations shared with primitive.vert.
var attributeLocations = map[string]uint32{
	"POSITION":   0,
	"NORMAL":     1,
	"TANGENT":    2,
	"TEXCOORD_0": 3,
	"TEXCOORD_1": 4,
	"COLOR_0":    5,
	"JOINTS_0":   6,
	"WEIGHTS_0":  7,
}

const instanceLocation = 8

var drawModes = map[scene.DrawMode]uint32{
	scene.Points:        gl.POINTS,
	scene.Lines:         gl.LINES,
	scene.LineLoop:      gl.LINE_LOOP,
	scene.LineStrip:     gl.LINE_STRIP,
	scene.Triangles:     gl.TRIANGLES,
	scene.TriangleStrip: gl.TRIANGLE_STRIP,
	scene.TriangleFan:   gl.TRIANGLE_FAN,
}

// Morph targets displace these streams.
var morphed = []string{"POSITION", "NORMAL", "TANGENT"}

// primitiveGPU is the upload state stored in scene.Primitive.GPU.
type primitiveGPU struct {
	vao         uint32
	vbos        map[string]uint32
	ebo         uint32
	instanceVBO uint32
	count       int32
	indexed     bool
	weights     []float32
}

func (b *Backend) upload(p *scene.Primitive) (*primitiveGPU, error) {
	if g, ok := p.GPU.(*primitiveGPU); ok {
		return g, nil
	}
	pos, ok := p.Attributes["POSITION"]
	if !ok || pos.Components != 3 || pos.Count() == 0 {
		return nil, ErrNoPosition
	}
	for name, s := range p.Attributes {
		if _, known := attributeLocations[name]; known && (s.Components < 1 || s.Components > 4 || len(s.Data) == 0) {
			return nil, fmt.Errorf("attribute %s has %d components", name, s.Components)
		}
	}

	g := &primitiveGPU{vbos: make(map[string]uint32)}
	gl.GenVertexArrays(1, &g.vao)
	gl.BindVertexArray(g.vao)

	for name, loc := range attributeLocations {
		s, ok := p.Attributes[name]
		if !ok {
			continue
		}
		var vbo uint32
		gl.GenBuffers(1, &vbo)
		gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
		usage := uint32(gl.STATIC_DRAW)
		if p.IsMorphed() && slices.Contains(morphed, name) {
			usage = gl.DYNAMIC_DRAW
		}
		gl.BufferData(gl.ARRAY_BUFFER, len(s.Data)*4, gl.Ptr(s.Data), usage)
		gl.EnableVertexAttribArray(loc)
		gl.VertexAttribPointerWithOffset(loc, int32(s.Components), gl.FLOAT, false, 0, 0)
		g.vbos[name] = vbo
	}

	if len(p.Indices) > 0 {
		gl.GenBuffers(1, &g.ebo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(p.Indices)*4, gl.Ptr(p.Indices), gl.STATIC_DRAW)
		g.indexed = true
		g.count = int32(len(p.Indices))
	} else {
		g.count = int32(pos.Count())
	}

	gl.GenBuffers(1, &g.instanceVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.instanceVBO)
	for i := uint32(0); i < 4; i++ {
		gl.VertexAttribPointerWithOffset(instanceLocation+i, 4, gl.FLOAT, false, 64, uintptr(i*16))
		gl.VertexAttribDivisor(instanceLocation+i, 1)
	}

	gl.BindVertexArray(0)
	p.GPU = g
	return g, nil
}

// applyMorph re-uploads displaced streams when the weights changed.
func (b *Backend) applyMorph(p *scene.Primitive, g *primitiveGPU, weights []float32) {
	if !p.IsMorphed() || slices.Equal(g.weights, weights) {
		return
	}
	g.weights = append(g.weights[:0], weights...)
	for _, name := range morphed {
		base, ok := p.Attributes[name]
		if !ok {
			continue
		}
		out := MorphStream(base, p.Targets, name, weights)
		gl.BindBuffer(gl.ARRAY_BUFFER, g.vbos[name])
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(out)*4, gl.Ptr(out))
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

// MorphStream returns base displaced by the weighted target deltas of the
// named attribute. Tangent targets carry xyz deltas only.
func MorphStream(base scene.Stream, targets []map[string]scene.Stream, name string, weights []float32) []float32 {
	out := slices.Clone(base.Data)
	for t, target := range targets {
		if t >= len(weights) || weights[t] == 0 {
			continue
		}
		delta, ok := target[name]
		if !ok || delta.Count() != base.Count() {
			continue
		}
		w := weights[t]
		n := min(delta.Components, base.Components, 3)
		for v := 0; v < base.Count(); v++ {
			for c := 0; c < n; c++ {
				out[v*base.Components+c] += w * delta.Data[v*delta.Components+c]
			}
		}
	}
	return out
}

func (b *Backend) bindInstances(g *primitiveGPU, instances []math.Mat4) {
	enabled := len(instances) > 0
	gl.BindVertexArray(g.vao)
	if enabled {
		gl.BindBuffer(gl.ARRAY_BUFFER, g.instanceVBO)
		gl.BufferData(gl.ARRAY_BUFFER, len(instances)*64, gl.Ptr(&instances[0][0]), gl.STREAM_DRAW)
	}
	for i := uint32(0); i < 4; i++ {
		if enabled {
			gl.EnableVertexAttribArray(instanceLocation + i)
		} else {
			gl.DisableVertexAttribArray(instanceLocation + i)
		}
	}
}
