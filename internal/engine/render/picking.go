package render

import (
	"encoding/binary"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/gltf-viewer/internal/scene"
	"github.com/Faultbox/gltf-viewer/pkg/math"
)

// PickMatrix maps the pixel (x, y) of a width×height viewport onto a 1×1
// viewport. y counts from the bottom row.
func PickMatrix(x, y, width, height int) math.Mat4 {
	w, h := float32(width), float32(height)
	cx, cy := float32(x)+0.5, float32(y)+0.5
	return math.Translate(w-2*cx, h-2*cy, 0).Mul(math.Scale(w, h, 1))
}

// EncodeNodeID maps a node index to the ID written by the picking variant.
// Zero is reserved for the background.
func EncodeNodeID(node int) uint32 {
	return uint32(node + 1)
}

// DecodeNodeID reverses EncodeNodeID on a read-back pixel.
func DecodeNodeID(px [4]byte) int {
	return int(binary.LittleEndian.Uint32(px[:])) - 1
}

// DecodeDepth reverses the fragment shader depth packing into [0, 1].
func DecodeDepth(px [4]byte) float32 {
	return float32(px[0])/255 +
		float32(px[1])/255/255 +
		float32(px[2])/255/65025 +
		float32(px[3])/255/16581375
}

// Unproject reconstructs the world position of window pixel (x, y) at the
// given window depth.
func Unproject(x, y int, depth float32, view, projection math.Mat4, width, height int) (math.Vec3, bool) {
	win := mgl32.Vec3{float32(x) + 0.5, float32(y) + 0.5, depth}
	obj, err := mgl32.UnProject(win, mgl32.Mat4(view), mgl32.Mat4(projection), 0, 0, width, height)
	if err != nil {
		return math.Vec3{}, false
	}
	return math.Vec3{X: obj[0], Y: obj[1], Z: obj[2]}, true
}

type pickRequest struct {
	x, y    int
	pending bool
}

// pick renders the drawables through a 1×1 viewport at pixel (x, y), reading
// back the node ID and then the encoded depth. (x, y) counts from the top left.
func (r *Renderer) pick(target TargetID, f *frameState, x, y int) PickResult {
	res := PickResult{Node: scene.None, X: x, Y: y}
	if x < 0 || y < 0 || x >= f.frame.Width || y >= f.frame.Height {
		return res
	}
	glY := f.frame.Height - 1 - y
	if err := r.backend.EnsureTarget(target, TargetSpec{Width: 1, Height: 1}); err != nil {
		r.warnOnce("target", "pick target unavailable", err)
		return res
	}

	pickFrame := *f.frame
	pickFrame.Projection = PickMatrix(x, glY, f.frame.Width, f.frame.Height).Mul(f.frame.Projection)
	pickFrame.ViewProjection = pickFrame.Projection.Mul(pickFrame.View)

	r.backend.BindTarget(target, [4]int{0, 0, 1, 1})
	r.backend.Clear([4]float32{0, 0, 0, 0})
	r.drawAll(f.doc, f.buckets, &pickFrame, VariantNodeID)
	px, err := r.backend.ReadPixel(target)
	if err != nil {
		r.warnOnce("readback", "pick readback failed", err)
		return res
	}
	res.Node = DecodeNodeID(px)
	if !res.Hit() {
		res.Node = scene.None
		return res
	}

	r.backend.Clear([4]float32{0, 0, 0, 0})
	r.drawAll(f.doc, f.buckets, &pickFrame, VariantDepth)
	px, err = r.backend.ReadPixel(target)
	if err != nil {
		r.warnOnce("readback", "pick depth readback failed", err)
		return res
	}
	if pos, ok := Unproject(x, glY, DecodeDepth(px), f.frame.View, f.frame.Projection, f.frame.Width, f.frame.Height); ok {
		res.Position = pos
	}
	return res
}
