// Package picking casts rays against node bounds on the CPU. It complements
// the GPU id-buffer picking of the renderer where an approximate hit is enough.
package picking

import (
	gomath "math"

	"github.com/Faultbox/gltf-viewer/internal/scene"
	"github.com/Faultbox/gltf-viewer/pkg/math"
)

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3 // Normalized direction
}

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min math.Vec3
	Max math.Vec3
}

// Center returns the box midpoint.
func (b AABB) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// ScreenToRay converts window pixel coordinates, origin top-left, to a
// world-space ray. invViewProj is the inverse of the view-projection matrix.
func ScreenToRay(screenX, screenY, viewportW, viewportH float32, invViewProj math.Mat4) Ray {
	ndcX := 2*screenX/viewportW - 1
	ndcY := 1 - 2*screenY/viewportH

	near := unproject(invViewProj, math.Vec4{ndcX, ndcY, -1, 1})
	far := unproject(invViewProj, math.Vec4{ndcX, ndcY, 1, 1})
	return Ray{Origin: near, Direction: far.Sub(near).Normalize()}
}

func unproject(m math.Mat4, p math.Vec4) math.Vec3 {
	w := m.MulVec4(p)
	if w[3] != 0 {
		w[0] /= w[3]
		w[1] /= w[3]
		w[2] /= w[3]
	}
	return math.Vec3{X: w[0], Y: w[1], Z: w[2]}
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// IntersectAABB tests ray intersection with an axis-aligned bounding box.
// Returns the distance to intersection (t) and whether intersection occurred.
// If the ray starts inside the box, returns the exit distance.
func (r Ray) IntersectAABB(box AABB) (t float32, hit bool) {
	tmin := float32(-gomath.MaxFloat32)
	tmax := float32(gomath.MaxFloat32)

	origin, dir := r.Origin.Array(), r.Direction.Array()
	lo, hi := box.Min.Array(), box.Max.Array()
	for axis := 0; axis < 3; axis++ {
		if dir[axis] == 0 {
			if origin[axis] < lo[axis] || origin[axis] > hi[axis] {
				return 0, false
			}
			continue
		}
		t1 := (lo[axis] - origin[axis]) / dir[axis]
		t2 := (hi[axis] - origin[axis]) / dir[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = max(tmin, t1)
		tmax = min(tmax, t2)
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// TransformAABB returns the world-space box enclosing the local box lo..hi
// transformed by m.
func TransformAABB(lo, hi math.Vec3, m math.Mat4) AABB {
	var box AABB
	for i := 0; i < 8; i++ {
		corner := lo
		if i&1 != 0 {
			corner.X = hi.X
		}
		if i&2 != 0 {
			corner.Y = hi.Y
		}
		if i&4 != 0 {
			corner.Z = hi.Z
		}
		w := math.Vec3FromArray(m.TransformPoint(corner.Array()))
		if i == 0 {
			box.Min, box.Max = w, w
			continue
		}
		box.Min, box.Max = box.Min.Min(w), box.Max.Max(w)
	}
	return box
}

// Hit is the nearest node whose mesh bounds a ray crosses.
type Hit struct {
	Node     int
	Distance float32
	Bounds   AABB
}

// PickNodes returns the nearest visible mesh node among nodes whose world
// bounds the ray intersects. Node is scene.None when nothing is hit.
func PickNodes(doc *scene.Document, nodes []int, r Ray) Hit {
	best := Hit{Node: scene.None, Distance: gomath.MaxFloat32}
	for _, idx := range nodes {
		n := doc.Node(idx)
		if n == nil || !n.IsVisible() {
			continue
		}
		mesh := doc.Mesh(n.Mesh)
		if mesh == nil {
			continue
		}
		m := n.RenderTransform()
		for _, p := range mesh.Primitives {
			box := TransformAABB(p.Min, p.Max, m)
			if t, ok := r.IntersectAABB(box); ok && t < best.Distance {
				best = Hit{Node: idx, Distance: t, Bounds: box}
			}
		}
	}
	return best
}
