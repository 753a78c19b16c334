package scene

import (
	"github.com/Faultbox/gltf-viewer/internal/property"
	"github.com/Faultbox/gltf-viewer/pkg/math"
)

// Node is a transform in the hierarchy, optionally carrying a mesh, camera or light.
type Node struct {
	Name string

	Children []int
	Mesh     int
	Skin     int
	Camera   int
	Light    int

	Translation property.Animatable[[3]float32]
	Rotation    property.Animatable[[4]float32]
	Scale       property.Animatable[[3]float32]
	Weights     property.Animatable[[]float32]
	Visible     property.Animatable[float32]

	// Matrix replaces TRS when the asset specifies a static matrix.
	Matrix *math.Mat4

	// Instances holds EXT_mesh_gpu_instancing local transforms.
	Instances []Instance

	// Physics is the KHR_physics_rigid_bodies description, nil when absent.
	Physics *RigidBody

	// Written by the transform resolver.
	Parent        int
	World         math.Mat4
	InverseWorld  math.Mat4
	Normal        math.Mat4
	WorldRotation math.Quat
	InstanceWorld []math.Mat4

	// Written only by the physics controller. When SimulationOwned is set,
	// PhysicsTransform replaces the scene-graph world transform.
	PhysicsTransform math.Mat4
	SimulationOwned  bool
}

// Instance is one EXT_mesh_gpu_instancing transform.
type Instance struct {
	Translation [3]float32
	Rotation    [4]float32
	Scale       [3]float32
}

// NewNode appends a node with glTF default TRS values.
func (d *Document) NewNode(name string) *Node {
	tr := d.tracker
	n := &Node{
		Name:             name,
		Mesh:             None,
		Skin:             None,
		Camera:           None,
		Light:            None,
		Parent:           None,
		Translation:      property.New(tr, [3]float32{0, 0, 0}),
		Rotation:         property.New(tr, [4]float32{0, 0, 0, 1}),
		Scale:            property.New(tr, [3]float32{1, 1, 1}),
		Weights:          property.New(tr, []float32(nil)),
		Visible:          property.New(tr, float32(1)),
		World:            math.Identity(),
		InverseWorld:     math.Identity(),
		Normal:           math.Identity(),
		WorldRotation:    math.QuatIdentity(),
		PhysicsTransform: math.Identity(),
	}
	d.Nodes = append(d.Nodes, n)
	return n
}

// LocalMatrix composes the node's current local transform.
func (n *Node) LocalMatrix() math.Mat4 {
	if n.Matrix != nil {
		return *n.Matrix
	}
	return math.FromTRS(n.Translation.Value(), n.Rotation.Value(), n.Scale.Value())
}

// LocalRotation returns the node's current rotation, taken from Matrix when
// the node carries one.
func (n *Node) LocalRotation() math.Quat {
	if n.Matrix != nil {
		return math.QuatFromMat4(*n.Matrix)
	}
	return math.QuatFromArray(n.Rotation.Value())
}

// IsVisible reports the KHR_node_visibility state.
func (n *Node) IsVisible() bool {
	return n.Visible.Value() != 0
}

// RenderTransform returns the transform the renderer should use: the physics
// transform when the simulation owns the node, else the scene-graph world matrix.
func (n *Node) RenderTransform() math.Mat4 {
	if n.SimulationOwned {
		return n.PhysicsTransform
	}
	return n.World
}

// NodeProperties is the fixed set of animatable node properties, keyed by the
// path segment that follows /nodes/{i}/ in an animation pointer.
var NodeProperties = map[string]func(*Node) property.Property{
	"translation": func(n *Node) property.Property { return &n.Translation },
	"rotation":    func(n *Node) property.Property { return &n.Rotation },
	"scale":       func(n *Node) property.Property { return &n.Scale },
	"weights":     func(n *Node) property.Property { return &n.Weights },
	"extensions/KHR_node_visibility/visible": func(n *Node) property.Property {
		return &n.Visible
	},
}
