// Package scene holds the in-memory glTF document: typed entities whose numeric
// attributes are animatable properties, linked to each other by array index.
package scene

import (
	"github.com/Faultbox/gltf-viewer/internal/property"
)

// None marks an absent index reference.
const None = -1

// Document owns every entity of a loaded glTF asset. Cross references are indices
// into these slices, never pointers, so entities can be relocated freely.
type Document struct {
	Name string

	Nodes      []*Node
	Meshes     []*Mesh
	Materials  []*Material
	Cameras    []*Camera
	Lights     []*Light
	Skins      []*Skin
	Scenes     []*Scene
	Animations []*Animation
	Textures   []*Texture
	Images     []*Image

	// CollisionFilters is the KHR_physics_rigid_bodies filter table.
	CollisionFilters []CollisionFilter

	// Scene is the default scene index, None when the asset does not specify one.
	Scene int

	ExtensionsUsed     []string
	ExtensionsRequired []string

	// DisjointAnimations[i] lists the animations that share no target with animation i.
	DisjointAnimations [][]int

	tracker *property.Tracker
}

// Scene is a set of root nodes.
type Scene struct {
	Name  string
	Nodes []int
}

// Skin binds a mesh to a joint hierarchy.
type Skin struct {
	Name                string
	Joints              []int
	Skeleton            int
	InverseBindMatrices [][16]float32
}

// NewDocument creates an empty document with its own dirty tracker.
func NewDocument() *Document {
	return &Document{
		Scene:   None,
		tracker: property.NewTracker(),
	}
}

// Tracker returns the dirty tracker shared by all properties of the document.
func (d *Document) Tracker() *property.Tracker {
	return d.tracker
}

// ResetDirty clears the dirty state of every property. Call once per frame after
// all consumers have observed the frame's changes.
func (d *Document) ResetDirty() {
	d.tracker.Reset()
}

// ActiveScene returns the scene to display: index if valid, else the default
// scene, else the first one. Returns nil for a document without scenes.
func (d *Document) ActiveScene(index int) *Scene {
	if index >= 0 && index < len(d.Scenes) {
		return d.Scenes[index]
	}
	if d.Scene >= 0 && d.Scene < len(d.Scenes) {
		return d.Scenes[d.Scene]
	}
	if len(d.Scenes) > 0 {
		return d.Scenes[0]
	}
	return nil
}

// Node returns the node at index or nil.
func (d *Document) Node(index int) *Node {
	if index < 0 || index >= len(d.Nodes) {
		return nil
	}
	return d.Nodes[index]
}

// Mesh returns the mesh at index or nil.
func (d *Document) Mesh(index int) *Mesh {
	if index < 0 || index >= len(d.Meshes) {
		return nil
	}
	return d.Meshes[index]
}

// Material returns the material at index or nil.
func (d *Document) Material(index int) *Material {
	if index < 0 || index >= len(d.Materials) {
		return nil
	}
	return d.Materials[index]
}

// Camera returns the camera at index or nil.
func (d *Document) Camera(index int) *Camera {
	if index < 0 || index >= len(d.Cameras) {
		return nil
	}
	return d.Cameras[index]
}

// Light returns the light at index or nil.
func (d *Document) Light(index int) *Light {
	if index < 0 || index >= len(d.Lights) {
		return nil
	}
	return d.Lights[index]
}

// Texture returns the texture at index or nil.
func (d *Document) Texture(index int) *Texture {
	if index < 0 || index >= len(d.Textures) {
		return nil
	}
	return d.Textures[index]
}

// Image returns the image at index or nil.
func (d *Document) Image(index int) *Image {
	if index < 0 || index >= len(d.Images) {
		return nil
	}
	return d.Images[index]
}
