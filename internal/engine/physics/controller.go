// Package physics defines the contract between the viewer and a rigid body
// simulation, with a no-op default and a small built-in integrator.
package physics

import (
	"github.com/Faultbox/gltf-viewer/internal/pointer"
	"github.com/Faultbox/gltf-viewer/internal/scene"
)

// Controller simulates the rigid bodies of a document. SimulateStep writes
// PhysicsTransform on simulated nodes and propagates it to their children.
type Controller interface {
	Initialize(doc *scene.Document, static, kinematic, dynamic []int, hasRuntimeTargets bool, colliderCount int) error
	SimulateStep(doc *scene.Document, dt float32)
	Reset()
	Stop()
	DebugLines() []float32
}

// Nop is the controller for scenes without physics.
type Nop struct{}

func (Nop) Initialize(*scene.Document, []int, []int, []int, bool, int) error { return nil }
func (Nop) SimulateStep(*scene.Document, float32)                            {}
func (Nop) Reset()                                                           {}
func (Nop) Stop()                                                            {}
func (Nop) DebugLines() []float32                                            { return nil }

// Bodies is the classification of the physics nodes of a document.
type Bodies struct {
	Static    []int
	Kinematic []int
	Dynamic   []int
	// HasRuntimeTargets is set when an animation drives a node that carries physics.
	HasRuntimeTargets bool
	Colliders         int
}

// Empty reports whether the document has nothing to simulate.
func (b Bodies) Empty() bool {
	return len(b.Static)+len(b.Kinematic)+len(b.Dynamic) == 0
}

// Classify sorts the nodes with physics by motion type and counts colliders.
func Classify(doc *scene.Document) Bodies {
	var b Bodies
	for i, n := range doc.Nodes {
		if n.Physics == nil {
			continue
		}
		switch n.Physics.Motion {
		case scene.Dynamic:
			b.Dynamic = append(b.Dynamic, i)
		case scene.Kinematic:
			b.Kinematic = append(b.Kinematic, i)
		default:
			b.Static = append(b.Static, i)
		}
		if n.Physics.Collider != nil {
			b.Colliders++
		}
	}

	for _, a := range doc.Animations {
		for _, c := range a.Channels {
			t, err := pointer.Compile(c.Pointer)
			if err != nil || t.Collection != pointer.Nodes {
				continue
			}
			if n := doc.Node(t.Index); n != nil && n.Physics != nil {
				b.HasRuntimeTargets = true
			}
		}
	}
	return b
}

// Init classifies doc and initializes c with the result.
func Init(c Controller, doc *scene.Document) (Bodies, error) {
	b := Classify(doc)
	return b, c.Initialize(doc, b.Static, b.Kinematic, b.Dynamic, b.HasRuntimeTargets, b.Colliders)
}
