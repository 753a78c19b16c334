package scene

// MotionType is how a rigid body participates in the simulation.
type MotionType int

const (
	// Static bodies only collide.
	Static MotionType = iota
	// Kinematic bodies follow their animated scene transform.
	Kinematic
	// Dynamic bodies are integrated by the simulation.
	Dynamic
)

func (m MotionType) String() string {
	switch m {
	case Kinematic:
		return "kinematic"
	case Dynamic:
		return "dynamic"
	default:
		return "static"
	}
}

// ShapeType is a KHR_implicit_shapes shape kind.
type ShapeType int

const (
	ShapeNone ShapeType = iota
	ShapeBox
	ShapeSphere
	ShapeCapsule
	ShapeCylinder
	ShapeMesh
)

// Collider describes the collision geometry of a node.
type Collider struct {
	Shape ShapeType
	// Size is the full box extent.
	Size [3]float32
	// Radius covers spheres, capsules and cylinders.
	Radius float32
	Height float32
	// Mesh is the mesh index for convex or triangle mesh colliders.
	Mesh int
	// Filter is the collision filter index, None when absent.
	Filter int
}

// CollisionFilter lists the named collision systems a collider belongs to and
// the systems it collides with.
type CollisionFilter struct {
	CollisionSystems      []string
	CollideWithSystems    []string
	NotCollideWithSystems []string
}

// RigidBody is the KHR_physics_rigid_bodies description of a node.
type RigidBody struct {
	Motion          MotionType
	Mass            float32
	LinearVelocity  [3]float32
	AngularVelocity [3]float32
	GravityFactor   float32
	Collider        *Collider
	Trigger         bool
}
