package render

import (
	"errors"
	"fmt"

	"github.com/Faultbox/gltf-viewer/internal/engine/camera"
	"github.com/Faultbox/gltf-viewer/internal/scene"
	"github.com/Faultbox/gltf-viewer/pkg/math"
)

// ErrCameraMissing is returned when the selected camera index does not resolve
// to a camera attached to a node of the active scene.
var ErrCameraMissing = errors.New("camera missing")

// View is the resolved camera of a frame.
type View struct {
	View       math.Mat4
	Projection math.Mat4
	Position   math.Vec3
}

// ResolveCamera returns the view for camera index, or the orbit camera when the
// index is negative.
func ResolveCamera(doc *scene.Document, nodes []int, index int, orbit *camera.OrbitCamera, aspect float32) (View, error) {
	if index < 0 {
		return View{
			View:       orbit.ViewMatrix(),
			Projection: orbit.ProjectionMatrix(aspect),
			Position:   orbit.Position(),
		}, nil
	}

	cam := doc.Camera(index)
	if cam == nil {
		return View{}, fmt.Errorf("%w: index %d", ErrCameraMissing, index)
	}
	for _, idx := range nodes {
		n := doc.Node(idx)
		if n == nil || n.Camera != index {
			continue
		}
		world := n.RenderTransform()
		return View{
			View:       world.Inverse(),
			Projection: cam.ProjectionMatrix(aspect),
			Position:   world.Translation(),
		}, nil
	}
	return View{}, fmt.Errorf("%w: camera %d is not attached to the scene", ErrCameraMissing, index)
}
