// Package render draws a scene document through an abstract GPU backend:
// drawable buckets, instancing batches, shader permutations, the transmission
// background, picking and hover.
package render

import (
	"github.com/Faultbox/gltf-viewer/internal/engine/lighting"
	"github.com/Faultbox/gltf-viewer/internal/engine/shader"
	"github.com/Faultbox/gltf-viewer/internal/scene"
	"github.com/Faultbox/gltf-viewer/pkg/math"
)

// TargetID names a render target owned by the backend.
type TargetID int

const (
	// TargetScreen is the caller-owned default framebuffer.
	TargetScreen TargetID = iota
	TargetScatter
	// TargetTransmission is multisampled and resolved into TargetTransmissionResolve.
	TargetTransmission
	TargetTransmissionResolve
	TargetPick
	TargetHover
)

// TargetSpec describes the storage of an offscreen target.
type TargetSpec struct {
	Width, Height int
	Samples       int
	Mipmaps       bool
}

// Frame holds the per-frame uniforms shared by every draw.
type Frame struct {
	Width, Height  int
	View           math.Mat4
	Projection     math.Mat4
	ViewProjection math.Mat4
	CameraPosition math.Vec3
	Lights         *lighting.Buffer
	Environment    [3]float32
}

// DrawCall is one primitive draw, possibly instanced.
type DrawCall struct {
	Program   uint32
	Document  *scene.Document
	Primitive *scene.Primitive
	Material  *scene.Material
	Frame     *Frame

	Model  math.Mat4
	Normal math.Mat4
	// Instances replaces Model when non-empty.
	Instances []math.Mat4
	Joints    []math.Mat4
	Weights   []float32

	NodeID      uint32
	Blend       bool
	FrontFaceCW bool
	// Transmission binds the resolved transmission target as the background.
	Transmission bool
}

// EnvironmentCall draws the background gradient.
type EnvironmentCall struct {
	Program               uint32
	InverseViewProjection math.Mat4
	Sky, Ground           [3]float32
	Rotation              float32
}

// Backend is the GPU abstraction the renderer drives. Draw returns an error
// when the primitive could not be bound; the renderer skips that draw only.
type Backend interface {
	shader.Compiler

	EnsureTarget(id TargetID, spec TargetSpec) error
	// BindTarget makes id current with the viewport x, y, width, height.
	BindTarget(id TargetID, viewport [4]int)
	Clear(color [4]float32)
	// Resolve blits src into dst and regenerates dst mipmaps if it has them.
	Resolve(src, dst TargetID)

	Draw(call *DrawCall) error
	DrawEnvironment(call *EnvironmentCall)
	DrawLines(program uint32, viewProjection math.Mat4, color [4]float32, points []float32)

	// ReadPixel reads the RGBA8 value at the origin of the bound target.
	ReadPixel(id TargetID) ([4]byte, error)
}
