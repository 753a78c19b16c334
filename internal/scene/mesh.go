package scene

import (
	"sort"

	"github.com/Faultbox/gltf-viewer/internal/property"
	"github.com/Faultbox/gltf-viewer/pkg/math"
)

// DrawMode is the primitive topology.
type DrawMode int

const (
	Points DrawMode = iota
	Lines
	LineLoop
	LineStrip
	Triangles
	TriangleStrip
	TriangleFan
)

// IsTriangles reports whether the mode rasterizes filled faces.
func (m DrawMode) IsTriangles() bool {
	return m >= Triangles
}

// Mesh is a set of primitives sharing default morph weights.
type Mesh struct {
	Name       string
	Primitives []*Primitive
	Weights    property.Animatable[[]float32]
}

// Stream is one vertex attribute in flat float form.
type Stream struct {
	Components int
	Data       []float32
}

// Count returns the number of vertices in the stream.
func (s Stream) Count() int {
	if s.Components == 0 {
		return 0
	}
	return len(s.Data) / s.Components
}

// Primitive is a drawable piece of a mesh.
type Primitive struct {
	Mode     DrawMode
	Material int

	// Attributes maps glTF semantic names (POSITION, NORMAL, TEXCOORD_0, ...) to data.
	Attributes map[string]Stream
	Indices    []uint32

	// Targets holds morph targets, each a semantic-to-stream map.
	Targets []map[string]Stream

	Min, Max math.Vec3
	Centroid math.Vec3

	// GPU is backend-owned upload state, nil until first draw.
	GPU any
}

// NewMesh appends an empty mesh.
func (d *Document) NewMesh(name string) *Mesh {
	m := &Mesh{
		Name:    name,
		Weights: property.New(d.tracker, []float32(nil)),
	}
	d.Meshes = append(d.Meshes, m)
	return m
}

// HasAttribute reports whether the primitive provides the semantic.
func (p *Primitive) HasAttribute(name string) bool {
	_, ok := p.Attributes[name]
	return ok
}

// AttributeNames returns the primitive's semantics in sorted order.
func (p *Primitive) AttributeNames() []string {
	names := make([]string, 0, len(p.Attributes))
	for name := range p.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsSkinned reports whether the primitive carries joint influences.
func (p *Primitive) IsSkinned() bool {
	return p.HasAttribute("JOINTS_0") && p.HasAttribute("WEIGHTS_0")
}

// IsMorphed reports whether the primitive has morph targets.
func (p *Primitive) IsMorphed() bool {
	return len(p.Targets) > 0
}

// VertexCount returns the number of vertices of the POSITION stream.
func (p *Primitive) VertexCount() int {
	return p.Attributes["POSITION"].Count()
}

// ComputeBounds derives Min, Max and Centroid from the POSITION stream.
func (p *Primitive) ComputeBounds() {
	pos, ok := p.Attributes["POSITION"]
	if !ok || pos.Components < 3 || pos.Count() == 0 {
		return
	}
	lo := math.Vec3{X: pos.Data[0], Y: pos.Data[1], Z: pos.Data[2]}
	hi := lo
	for i := 0; i < pos.Count(); i++ {
		v := math.Vec3{X: pos.Data[i*3], Y: pos.Data[i*3+1], Z: pos.Data[i*3+2]}
		lo = lo.Min(v)
		hi = hi.Max(v)
	}
	p.Min, p.Max = lo, hi
	p.Centroid = lo.Add(hi).Scale(0.5)
}

// MeshProperties is the fixed set of animatable mesh properties.
var MeshProperties = map[string]func(*Mesh) property.Property{
	"weights": func(m *Mesh) property.Property { return &m.Weights },
}
