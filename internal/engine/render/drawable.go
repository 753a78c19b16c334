package render

import (
	"slices"

	"github.com/Faultbox/gltf-viewer/internal/scene"
	"github.com/Faultbox/gltf-viewer/pkg/math"
)

// Drawable pairs a visible node with one primitive of its mesh.
type Drawable struct {
	Node      int
	Mesh      int
	Index     int
	Primitive *scene.Primitive
	Material  *scene.Material

	// Depth is the view-space z of the primitive centroid, refreshed per frame.
	Depth float32
}

// Buckets partitions drawables by how they are shaded. Scatter drawables also
// sit in their opaque, transparent or transmission list.
type Buckets struct {
	Opaque       []*Drawable
	Transparent  []*Drawable
	Transmission []*Drawable
	Scatter      []*Drawable
}

// Len returns the number of distinct drawables.
func (b *Buckets) Len() int {
	return len(b.Opaque) + len(b.Transparent) + len(b.Transmission)
}

// drawableCache rebuilds buckets only when the traversal generation changes.
type drawableCache struct {
	generation uint64
	valid      bool
	buckets    Buckets
	fallback   *scene.Material
}

func (c *drawableCache) update(doc *scene.Document, nodes []int, generation uint64) (*Buckets, bool) {
	if c.valid && generation == c.generation {
		return &c.buckets, false
	}
	c.generation, c.valid = generation, true
	c.buckets = buildBuckets(doc, nodes, c.fallback)
	return &c.buckets, true
}

func (c *drawableCache) reset() {
	c.generation, c.valid = 0, false
	c.buckets = Buckets{}
}

func buildBuckets(doc *scene.Document, nodes []int, fallback *scene.Material) Buckets {
	var b Buckets
	for _, idx := range nodes {
		n := doc.Node(idx)
		mesh := doc.Mesh(n.Mesh)
		if mesh == nil {
			continue
		}
		for pi, p := range mesh.Primitives {
			if p.VertexCount() == 0 {
				continue
			}
			mat := doc.Material(p.Material)
			if mat == nil {
				mat = fallback
			}
			d := &Drawable{Node: idx, Mesh: n.Mesh, Index: pi, Primitive: p, Material: mat}
			switch {
			case mat.IsTransmissive():
				b.Transmission = append(b.Transmission, d)
			case mat.AlphaMode == scene.AlphaBlend:
				b.Transparent = append(b.Transparent, d)
			default:
				b.Opaque = append(b.Opaque, d)
			}
			if mat.IsVolumeScatter() {
				b.Scatter = append(b.Scatter, d)
			}
		}
	}
	return b
}

// updateDepth stores the view-space centroid depth of each drawable.
func updateDepth(doc *scene.Document, list []*Drawable, view math.Mat4) {
	for _, d := range list {
		world := doc.Nodes[d.Node].RenderTransform()
		c := world.TransformPoint(d.Primitive.Centroid.Array())
		d.Depth = view.TransformPoint(c)[2]
	}
}

// sortBackToFront orders drawables from far to near. The camera looks down -z,
// so farther drawables have smaller depth.
func sortBackToFront(list []*Drawable) {
	slices.SortFunc(list, func(a, b *Drawable) int {
		switch {
		case a.Depth < b.Depth:
			return -1
		case a.Depth > b.Depth:
			return 1
		}
		return 0
	})
}

// inFront keeps the drawables whose centroid is not behind the camera.
func inFront(dst, list []*Drawable) []*Drawable {
	dst = dst[:0]
	for _, d := range list {
		if d.Depth <= 0 {
			dst = append(dst, d)
		}
	}
	return dst
}
