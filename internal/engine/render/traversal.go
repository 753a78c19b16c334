package render

import (
	"github.com/Faultbox/gltf-viewer/internal/engine/transform"
	"github.com/Faultbox/gltf-viewer/internal/scene"
)

// Traversal yields the visible nodes of the active scene in resolver order.
// The returned slice is replaced only when the order or a visibility property
// changes; Generation counts those rebuilds.
type Traversal struct {
	order      *transform.Order
	nodes      []int
	visible    []bool
	generation uint64
}

// Generation returns a counter bumped every time Visible rebuilds its list.
func (t *Traversal) Generation() uint64 {
	return t.generation
}

// Visible returns the nodes whose own and ancestor visibility is set.
func (t *Traversal) Visible(doc *scene.Document, order *transform.Order) []int {
	if order == nil {
		if t.order != nil || t.nodes != nil {
			t.generation++
		}
		t.order, t.nodes = nil, nil
		return nil
	}
	if t.order == order && t.nodes != nil && !visibilityDirty(doc, order.Nodes()) {
		return t.nodes
	}
	t.order = order

	if cap(t.visible) < len(doc.Nodes) {
		t.visible = make([]bool, len(doc.Nodes))
	}
	t.visible = t.visible[:len(doc.Nodes)]

	nodes := make([]int, 0, len(order.Nodes()))
	for _, idx := range order.Nodes() {
		n := doc.Node(idx)
		vis := n.IsVisible()
		if n.Parent != scene.None {
			vis = vis && t.visible[n.Parent]
		}
		t.visible[idx] = vis
		if vis {
			nodes = append(nodes, idx)
		}
	}
	t.nodes = nodes
	t.generation++
	return nodes
}

// Reset forgets the cached list.
func (t *Traversal) Reset() {
	t.order, t.nodes = nil, nil
	t.generation++
}

func visibilityDirty(doc *scene.Document, nodes []int) bool {
	for _, idx := range nodes {
		if doc.Nodes[idx].Visible.Dirty() {
			return true
		}
	}
	return false
}
