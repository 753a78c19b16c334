package scene

import (
	"github.com/Faultbox/gltf-viewer/internal/property"
	"github.com/Faultbox/gltf-viewer/pkg/math"
)

// Projection is the camera projection type.
type Projection int

const (
	Perspective Projection = iota
	Orthographic
)

// Camera is a glTF camera. AspectRatio and ZFar may be unset, in which case the
// viewport aspect and an infinite far plane are used.
type Camera struct {
	Name        string
	Projection  Projection
	YFov        property.Animatable[float32]
	AspectRatio property.Animatable[float32]
	XMag        property.Animatable[float32]
	YMag        property.Animatable[float32]
	ZNear       property.Animatable[float32]
	ZFar        property.Animatable[float32]
}

// NewCamera appends a perspective camera with glTF-style defaults.
func (d *Document) NewCamera(name string, projection Projection) *Camera {
	tr := d.tracker
	c := &Camera{
		Name:        name,
		Projection:  projection,
		YFov:        property.New(tr, float32(0.8)),
		AspectRatio: property.NewUnset[float32](tr),
		XMag:        property.New(tr, float32(1)),
		YMag:        property.New(tr, float32(1)),
		ZNear:       property.New(tr, float32(0.01)),
		ZFar:        property.NewUnset[float32](tr),
	}
	d.Cameras = append(d.Cameras, c)
	return c
}

// ProjectionMatrix returns the projection for a viewport of the given aspect.
func (c *Camera) ProjectionMatrix(viewportAspect float32) math.Mat4 {
	far := float32(0)
	if c.ZFar.IsDefined() {
		far = c.ZFar.Value()
	}

	if c.Projection == Orthographic {
		if far <= 0 {
			far = 100
		}
		x, y := c.XMag.Value(), c.YMag.Value()
		return math.Ortho(-x, x, -y, y, c.ZNear.Value(), far)
	}

	aspect := viewportAspect
	if c.AspectRatio.IsDefined() && c.AspectRatio.Value() > 0 {
		aspect = c.AspectRatio.Value()
	}
	return math.Perspective(c.YFov.Value(), aspect, c.ZNear.Value(), far)
}

// CameraProperties is the fixed set of animatable camera properties.
var CameraProperties = map[string]func(*Camera) property.Property{
	"perspective/yfov":        func(c *Camera) property.Property { return &c.YFov },
	"perspective/aspectRatio": func(c *Camera) property.Property { return &c.AspectRatio },
	"perspective/znear":       func(c *Camera) property.Property { return &c.ZNear },
	"perspective/zfar":        func(c *Camera) property.Property { return &c.ZFar },
	"orthographic/xmag":       func(c *Camera) property.Property { return &c.XMag },
	"orthographic/ymag":       func(c *Camera) property.Property { return &c.YMag },
	"orthographic/znear":      func(c *Camera) property.Property { return &c.ZNear },
	"orthographic/zfar":       func(c *Camera) property.Property { return &c.ZFar },
}
