package gltfio

import (
	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/Faultbox/gltf-viewer/internal/scene"
)

func (l *loader) collisionFilters() {
	var ext physicsDocExt
	if !decodeExt(l.src.Extensions, ExtPhysicsBodies, &ext) {
		return
	}
	for _, f := range ext.CollisionFilters {
		l.doc.CollisionFilters = append(l.doc.CollisionFilters, scene.CollisionFilter{
			CollisionSystems:      f.CollisionSystems,
			CollideWithSystems:    f.CollideWithSystems,
			NotCollideWithSystems: f.NotCollideWithSystems,
		})
	}
}

// rigidBody reads KHR_physics_rigid_bodies from a node. A node with only a
// collider is static; a trigger is a collider that reports but never blocks.
func (l *loader) rigidBody(n *scene.Node, exts gltf.Extensions) {
	var ext physicsNodeExt
	if !decodeExt(exts, ExtPhysicsBodies, &ext) {
		return
	}
	body := &scene.RigidBody{Motion: scene.Static, Mass: 1, GravityFactor: 1}
	if m := ext.Motion; m != nil {
		body.Motion = scene.Dynamic
		if m.IsKinematic {
			body.Motion = scene.Kinematic
		}
		if m.Mass != nil && *m.Mass > 0 {
			body.Mass = *m.Mass
		}
		if m.LinearVelocity != nil {
			body.LinearVelocity = *m.LinearVelocity
		}
		if m.AngularVelocity != nil {
			body.AngularVelocity = *m.AngularVelocity
		}
		if m.GravityFactor != nil {
			body.GravityFactor = *m.GravityFactor
		}
	}
	switch {
	case ext.Collider != nil:
		body.Collider = l.collider(n, ext.Collider.Geometry, ext.Collider.CollisionFilter)
	case ext.Trigger != nil && ext.Trigger.Geometry != nil:
		body.Collider = l.collider(n, *ext.Trigger.Geometry, ext.Trigger.CollisionFilter)
		body.Trigger = true
	case ext.Trigger != nil:
		body.Trigger = true
	}
	n.Physics = body
}

func (l *loader) collider(n *scene.Node, g geometry, filter *int) *scene.Collider {
	c := &scene.Collider{Mesh: scene.None, Filter: scene.None}
	if filter != nil && *filter >= 0 && *filter < len(l.doc.CollisionFilters) {
		c.Filter = *filter
	}

	if g.Shape != nil {
		var shapes shapesDocExt
		if !decodeExt(l.src.Extensions, ExtImplicitShapes, &shapes) || *g.Shape < 0 || *g.Shape >= len(shapes.Shapes) {
			l.warn("collider shape out of range", zap.String("node", n.Name), zap.Int("shape", *g.Shape))
			return c
		}
		s := shapes.Shapes[*g.Shape]
		switch {
		case s.Type == "box" && s.Box != nil:
			c.Shape = scene.ShapeBox
			c.Size = s.Box.Size
		case s.Type == "sphere" && s.Sphere != nil:
			c.Shape = scene.ShapeSphere
			c.Radius = s.Sphere.Radius
		case s.Type == "capsule" && s.Capsule != nil:
			c.Shape = scene.ShapeCapsule
			c.Radius = max(s.Capsule.RadiusTop, s.Capsule.RadiusBottom)
			c.Height = s.Capsule.Height
		case s.Type == "cylinder" && s.Cylinder != nil:
			c.Shape = scene.ShapeCylinder
			c.Radius = max(s.Cylinder.RadiusTop, s.Cylinder.RadiusBottom)
			c.Height = s.Cylinder.Height
		default:
			l.warn("unsupported collider shape", zap.String("node", n.Name), zap.String("type", s.Type))
		}
		return c
	}

	mesh := g.Mesh
	if mesh == nil && g.Node != nil && *g.Node >= 0 && *g.Node < len(l.src.Nodes) {
		if m := l.src.Nodes[*g.Node].Mesh; m != nil {
			v := int(*m)
			mesh = &v
		}
	}
	if mesh != nil && l.doc.Mesh(*mesh) != nil {
		c.Shape = scene.ShapeMesh
		c.Mesh = *mesh
	}
	return c
}
