// Package transform resolves world transforms of the scene graph.
package transform

import (
	"errors"
	"fmt"

	"github.com/Faultbox/gltf-viewer/internal/scene"
	"github.com/Faultbox/gltf-viewer/pkg/math"
)

var (
	// ErrCycle is returned when a node is reachable twice from the scene roots.
	ErrCycle = errors.New("node reached twice in scene hierarchy")
	// ErrBadReference is returned for child or root indices outside the document.
	ErrBadReference = errors.New("node index out of range")
)

// Order is a flat parent-before-child ordering of the nodes of one scene.
type Order struct {
	scene *scene.Scene
	nodes []int
}

// Nodes returns the node indices in traversal order.
func (o *Order) Nodes() []int {
	return o.nodes
}

// Build computes the traversal order of the scene and sets every node's Parent.
func Build(doc *scene.Document, sc *scene.Scene) (*Order, error) {
	o := &Order{scene: sc}
	if sc == nil {
		return o, nil
	}

	for _, n := range doc.Nodes {
		n.Parent = scene.None
	}

	visited := make([]bool, len(doc.Nodes))
	stack := make([]int, 0, len(sc.Nodes))
	for i := len(sc.Nodes) - 1; i >= 0; i-- {
		stack = append(stack, sc.Nodes[i])
	}

	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := doc.Node(idx)
		if node == nil {
			return nil, fmt.Errorf("%w: %d", ErrBadReference, idx)
		}
		if visited[idx] {
			return nil, fmt.Errorf("%w: node %d (%s)", ErrCycle, idx, node.Name)
		}
		visited[idx] = true
		o.nodes = append(o.nodes, idx)

		for i := len(node.Children) - 1; i >= 0; i-- {
			child := node.Children[i]
			if c := doc.Node(child); c != nil && !visited[child] {
				c.Parent = idx
			}
			stack = append(stack, child)
		}
	}
	return o, nil
}

// Resolve recomputes the world matrices of every node in order. Nodes owned by
// the simulation take their PhysicsTransform as world transform; their children
// are parented off it.
func (o *Order) Resolve(doc *scene.Document) {
	for _, idx := range o.nodes {
		update(doc, doc.Nodes[idx])
	}
}

// ResolveSubtree recomputes root and its descendants only, used after the physics
// controller moves a body.
func (o *Order) ResolveSubtree(doc *scene.Document, root int) {
	inside := map[int]bool{root: true}
	for _, idx := range o.nodes {
		node := doc.Nodes[idx]
		if idx != root && !inside[node.Parent] {
			continue
		}
		inside[idx] = true
		update(doc, node)
	}
}

func update(doc *scene.Document, node *scene.Node) {
	parentWorld := math.Identity()
	parentRot := math.QuatIdentity()
	if p := doc.Node(node.Parent); p != nil {
		parentWorld = p.RenderTransform()
		parentRot = p.WorldRotation
	}

	if node.SimulationOwned {
		node.World = node.PhysicsTransform
		node.WorldRotation = math.QuatFromMat4(node.PhysicsTransform)
	} else {
		node.World = parentWorld.Mul(node.LocalMatrix())
		node.WorldRotation = parentRot.Mul(node.LocalRotation()).Normalize()
	}
	node.InverseWorld = node.World.Inverse()
	node.Normal = node.InverseWorld.Transpose()

	if len(node.Instances) == 0 {
		node.InstanceWorld = node.InstanceWorld[:0]
		return
	}
	if cap(node.InstanceWorld) < len(node.Instances) {
		node.InstanceWorld = make([]math.Mat4, len(node.Instances))
	}
	node.InstanceWorld = node.InstanceWorld[:len(node.Instances)]
	for i, inst := range node.Instances {
		node.InstanceWorld[i] = node.World.Mul(math.FromTRS(inst.Translation, inst.Rotation, inst.Scale))
	}
}
