// Package camera provides the orbit camera used when the scene selects no camera.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/gltf-viewer/internal/scene"
	"github.com/Faultbox/gltf-viewer/pkg/math"
)

// OrbitCamera orbits around a center point.
type OrbitCamera struct {
	Center math.Vec3

	Distance float32
	Pitch    float32
	Yaw      float32
	YFov     float32

	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbitCamera creates an orbit camera looking at the origin.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:        5,
		Pitch:           0.3,
		YFov:            math32.Pi / 4,
		MinDistance:     0.01,
		MaxDistance:     1e5,
		MinPitch:        -math32.Pi/2 + 0.01,
		MaxPitch:        math32.Pi/2 - 0.01,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	cp := math32.Cos(c.Pitch)
	offset := math.Vec3{
		X: c.Distance * cp * math32.Sin(c.Yaw),
		Y: c.Distance * math32.Sin(c.Pitch),
		Z: c.Distance * cp * math32.Cos(c.Yaw),
	}
	return c.Center.Add(offset)
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Center, math.Vec3{Y: 1})
}

// ProjectionMatrix returns a perspective projection whose clip planes follow the
// orbit distance.
func (c *OrbitCamera) ProjectionMatrix(aspect float32) math.Mat4 {
	near := max(c.Distance*0.001, 1e-4)
	far := c.Distance * 100
	return math.Perspective(c.YFov, aspect, near, far)
}

// HandleDrag updates yaw and pitch from a mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.Yaw -= deltaX * c.DragSensitivity
	c.Pitch = min(max(c.Pitch+deltaY*c.DragSensitivity, c.MinPitch), c.MaxPitch)
}

// HandleZoom updates the distance from a scroll delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	c.Distance = min(max(c.Distance, c.MinDistance), c.MaxDistance)
}

// FitToBounds centers the camera on the box and backs off until its bounding
// sphere fills the vertical field of view.
func (c *OrbitCamera) FitToBounds(lo, hi math.Vec3) {
	c.Center = lo.Add(hi).Scale(0.5)
	radius := hi.Sub(lo).Length() / 2
	if radius <= 0 {
		radius = 1
	}
	c.Distance = radius / math32.Sin(c.YFov/2)
	c.MinDistance = radius * 0.01
	c.MaxDistance = radius * 100
	c.Pitch = 0.3
	c.Yaw = 0
}

// Bounds returns the world-space bounds of the meshes of the given nodes.
func Bounds(doc *scene.Document, nodes []int) (lo, hi math.Vec3, ok bool) {
	for _, idx := range nodes {
		n := doc.Node(idx)
		if n == nil {
			continue
		}
		mesh := doc.Mesh(n.Mesh)
		if mesh == nil {
			continue
		}
		m := n.RenderTransform()
		for _, p := range mesh.Primitives {
			for i := 0; i < 8; i++ {
				corner := p.Min
				if i&1 != 0 {
					corner.X = p.Max.X
				}
				if i&2 != 0 {
					corner.Y = p.Max.Y
				}
				if i&4 != 0 {
					corner.Z = p.Max.Z
				}
				w := math.Vec3FromArray(m.TransformPoint(corner.Array()))
				if !ok {
					lo, hi, ok = w, w, true
					continue
				}
				lo, hi = lo.Min(w), hi.Max(w)
			}
		}
	}
	return lo, hi, ok
}
