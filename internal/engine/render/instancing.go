package render

import (
	"github.com/Faultbox/gltf-viewer/internal/scene"
	"github.com/Faultbox/gltf-viewer/pkg/math"
)

// InstanceAttributes is the number of vertex attribute slots the per-instance
// model matrix occupies.
const InstanceAttributes = 4

// BatchKey groups drawables that can share one instanced draw.
type BatchKey struct {
	Mesh      int
	Winding   int8
	Primitive int
}

// Batch is a set of drawables rendered with one draw call.
type Batch struct {
	Key       BatchKey
	Drawables []*Drawable
	// Instanced is false for drawables excluded from batching.
	Instanced bool
}

// Batches groups opaque drawables by mesh, winding and primitive index.
// Skinned and morphed primitives, primitives whose attributes would not fit
// next to the instance matrix, and nodes whose GPU instances mix mirrored and
// unmirrored transforms get a batch of their own. Batch order follows the
// first appearance of each key.
func Batches(doc *scene.Document, opaque []*Drawable, enabled bool, maxAttributes int) []*Batch {
	batches := make([]*Batch, 0, len(opaque))
	index := make(map[BatchKey]*Batch)
	for _, d := range opaque {
		key := BatchKey{Mesh: d.Mesh, Winding: nodeWinding(doc.Nodes[d.Node]), Primitive: d.Index}
		if !enabled || key.Winding == 0 || !Instanceable(d.Primitive, maxAttributes) {
			batches = append(batches, &Batch{Key: key, Drawables: []*Drawable{d}})
			continue
		}
		b, ok := index[key]
		if !ok {
			b = &Batch{Key: key, Instanced: true}
			index[key] = b
			batches = append(batches, b)
		}
		b.Drawables = append(b.Drawables, d)
	}
	return batches
}

// Instanceable reports whether the primitive may be drawn instanced.
func Instanceable(p *scene.Primitive, maxAttributes int) bool {
	if p.IsSkinned() || p.IsMorphed() {
		return false
	}
	return len(p.Attributes)+InstanceAttributes <= maxAttributes
}

// InstanceMatrices returns the world transforms of every instance in the
// batch. Nodes with EXT_mesh_gpu_instancing contribute all their instances.
func (b *Batch) InstanceMatrices(doc *scene.Document, dst []math.Mat4) []math.Mat4 {
	dst = dst[:0]
	for _, d := range b.Drawables {
		n := doc.Nodes[d.Node]
		if len(n.InstanceWorld) > 0 {
			dst = append(dst, n.InstanceWorld...)
			continue
		}
		dst = append(dst, n.RenderTransform())
	}
	return dst
}

// nodeWinding returns the winding shared by every transform the node is drawn
// with, or 0 when its GPU instances disagree.
func nodeWinding(n *scene.Node) int8 {
	if len(n.InstanceWorld) == 0 {
		return winding(n.RenderTransform())
	}
	w := winding(n.InstanceWorld[0])
	for _, m := range n.InstanceWorld[1:] {
		if winding(m) != w {
			return 0
		}
	}
	return w
}

// splitByWinding partitions instance transforms into unmirrored and mirrored
// sets, reusing the given buffers.
func splitByWinding(instances, ccw, cw []math.Mat4) ([]math.Mat4, []math.Mat4) {
	ccw, cw = ccw[:0], cw[:0]
	for _, m := range instances {
		if winding(m) < 0 {
			cw = append(cw, m)
		} else {
			ccw = append(ccw, m)
		}
	}
	return ccw, cw
}

func winding(m math.Mat4) int8 {
	if m.Determinant3() < 0 {
		return -1
	}
	return 1
}
