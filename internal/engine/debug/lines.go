// Package debug generates overlay geometry and frame captures for diagnostics.
package debug

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/gltf-viewer/pkg/math"
)

// BoxLineFloats is the number of floats of one box wireframe (12 edges × 2 endpoints × 3).
const BoxLineFloats = 72

// boxEdges indexes the corners of a box, corner bit 0 = x, bit 1 = y, bit 2 = z.
var boxEdges = [12][2]int{
	{0, 1}, {1, 5}, {5, 4}, {4, 0}, // bottom
	{2, 3}, {3, 7}, {7, 6}, {6, 2}, // top
	{0, 2}, {1, 3}, {5, 7}, {4, 6}, // vertical
}

// AppendBox appends the wireframe of the box [lo, hi] transformed by m, as
// flat endpoint triples.
func AppendBox(dst []float32, lo, hi math.Vec3, m math.Mat4) []float32 {
	var corners [8][3]float32
	for i := range corners {
		c := lo
		if i&1 != 0 {
			c.X = hi.X
		}
		if i&2 != 0 {
			c.Y = hi.Y
		}
		if i&4 != 0 {
			c.Z = hi.Z
		}
		corners[i] = m.TransformPoint(c.Array())
	}
	for _, e := range boxEdges {
		a, b := corners[e[0]], corners[e[1]]
		dst = append(dst, a[0], a[1], a[2], b[0], b[1], b[2])
	}
	return dst
}

// AppendCircle appends a circle of the given radius in the local XZ plane at
// height y, transformed by m.
func AppendCircle(dst []float32, radius, y float32, segments int, m math.Mat4) []float32 {
	if segments < 3 {
		segments = 3
	}
	point := func(i int) [3]float32 {
		a := 2 * math32.Pi * float32(i) / float32(segments)
		return m.TransformPoint([3]float32{radius * math32.Cos(a), y, radius * math32.Sin(a)})
	}
	prev := point(0)
	for i := 1; i <= segments; i++ {
		p := point(i)
		dst = append(dst, prev[0], prev[1], prev[2], p[0], p[1], p[2])
		prev = p
	}
	return dst
}

// AppendSphere appends three great circles of a sphere centered at m's origin.
func AppendSphere(dst []float32, radius float32, segments int, m math.Mat4) []float32 {
	dst = AppendCircle(dst, radius, 0, segments, m)
	toXY := m.Mul(math.QuatFromAxisAngle(math.Vec3{X: 1}, math32.Pi/2).ToMat4())
	dst = AppendCircle(dst, radius, 0, segments, toXY)
	toYZ := m.Mul(math.QuatFromAxisAngle(math.Vec3{Z: 1}, math32.Pi/2).ToMat4())
	return AppendCircle(dst, radius, 0, segments, toYZ)
}

// AppendCylinder appends the two caps of a Y-aligned cylinder plus four sides.
func AppendCylinder(dst []float32, radius, height float32, segments int, m math.Mat4) []float32 {
	h := height / 2
	dst = AppendCircle(dst, radius, -h, segments, m)
	dst = AppendCircle(dst, radius, h, segments, m)
	for _, d := range [4][2]float32{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
		a := m.TransformPoint([3]float32{d[0] * radius, -h, d[1] * radius})
		b := m.TransformPoint([3]float32{d[0] * radius, h, d[1] * radius})
		dst = append(dst, a[0], a[1], a[2], b[0], b[1], b[2])
	}
	return dst
}
