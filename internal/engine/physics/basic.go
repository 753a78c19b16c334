package physics

import (
	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/gltf-viewer/internal/engine/debug"
	"github.com/Faultbox/gltf-viewer/internal/logger"
	"github.com/Faultbox/gltf-viewer/internal/scene"
	"github.com/Faultbox/gltf-viewer/pkg/math"
)

// MaxCollisionFilters is the number of distinct collision systems a scene may
// use; each maps to one bit of a collision mask.
const MaxCollisionFilters = 32

const debugSegments = 16

// SubtreeResolver recomputes the world transforms below a moved node.
type SubtreeResolver interface {
	ResolveSubtree(doc *scene.Document, root int)
}

type bodyState struct {
	pos    math.Vec3
	rot    math.Quat
	linVel math.Vec3
	angVel math.Vec3
}

type body struct {
	node  int
	scale math.Vec3
	bodyState
	initial bodyState
	group   uint32
	mask    uint32
}

type collider struct {
	node        int
	group, mask uint32
	trigger     bool
}

// Basic integrates dynamic bodies under gravity and resolves their contacts
// against static and kinematic colliders with axis-aligned bounds.
type Basic struct {
	Gravity  math.Vec3
	Resolver SubtreeResolver

	doc       *scene.Document
	dynamic   []body
	obstacles []collider
	colliders []int
}

// NewBasic creates a controller. resolver may be nil when children of simulated
// bodies need no update.
func NewBasic(gravity [3]float32, resolver SubtreeResolver) *Basic {
	return &Basic{Gravity: math.Vec3FromArray(gravity), Resolver: resolver}
}

// Initialize captures the initial state of all bodies from their current world
// transforms. Call after the first transform resolve.
func (b *Basic) Initialize(doc *scene.Document, static, kinematic, dynamic []int, hasRuntimeTargets bool, colliderCount int) error {
	b.Stop()
	b.doc = doc
	bits := filterBits(doc.CollisionFilters)

	for _, idx := range append(append([]int(nil), static...), kinematic...) {
		n := doc.Nodes[idx]
		if n.Physics.Collider == nil {
			continue
		}
		group, mask := masks(doc, n.Physics.Collider, bits)
		b.obstacles = append(b.obstacles, collider{node: idx, group: group, mask: mask, trigger: n.Physics.Trigger})
	}

	for _, idx := range dynamic {
		n := doc.Nodes[idx]
		state := bodyState{
			pos:    n.World.Translation(),
			rot:    n.WorldRotation,
			linVel: math.Vec3FromArray(n.Physics.LinearVelocity),
			angVel: math.Vec3FromArray(n.Physics.AngularVelocity),
		}
		bd := body{node: idx, scale: worldScale(n.World), bodyState: state, initial: state}
		if n.Physics.Collider != nil {
			bd.group, bd.mask = masks(doc, n.Physics.Collider, bits)
		}
		b.dynamic = append(b.dynamic, bd)
	}

	for i, n := range doc.Nodes {
		if n.Physics != nil && n.Physics.Collider != nil {
			b.colliders = append(b.colliders, i)
		}
	}

	logger.Debug("physics initialized",
		zap.Int("static", len(static)),
		zap.Int("kinematic", len(kinematic)),
		zap.Int("dynamic", len(dynamic)),
		zap.Int("colliders", colliderCount),
		zap.Bool("runtimeTargets", hasRuntimeTargets))
	return nil
}

// SimulateStep advances all dynamic bodies by dt seconds.
func (b *Basic) SimulateStep(doc *scene.Document, dt float32) {
	if dt <= 0 {
		return
	}
	for i := range b.dynamic {
		bd := &b.dynamic[i]
		n := doc.Nodes[bd.node]

		gravity := b.Gravity.Scale(n.Physics.GravityFactor)
		bd.linVel = bd.linVel.Add(gravity.Scale(dt))
		bd.pos = bd.pos.Add(bd.linVel.Scale(dt))
		bd.rot = integrateRotation(bd.rot, bd.angVel, dt)

		if n.Physics.Collider != nil && !n.Physics.Trigger {
			b.collide(doc, bd, n.Physics.Collider)
		}

		n.PhysicsTransform = math.FromTRS(bd.pos.Array(), bd.rot.Array(), bd.scale.Array())
		n.SimulationOwned = true
		if b.Resolver != nil {
			b.Resolver.ResolveSubtree(doc, bd.node)
		}
	}
}

func (b *Basic) collide(doc *scene.Document, bd *body, c *scene.Collider) {
	lo, hi, ok := localBounds(doc, c)
	if !ok {
		return
	}
	m := math.FromTRS(bd.pos.Array(), bd.rot.Array(), bd.scale.Array())
	dlo, dhi := worldBounds(lo, hi, m)

	for _, ob := range b.obstacles {
		if ob.trigger || bd.group&ob.mask == 0 || ob.group&bd.mask == 0 {
			continue
		}
		on := doc.Nodes[ob.node]
		olo, ohi, ok := localBounds(doc, on.Physics.Collider)
		if !ok {
			continue
		}
		slo, shi := worldBounds(olo, ohi, on.RenderTransform())

		push, axis := penetration(dlo, dhi, slo, shi)
		if axis < 0 {
			continue
		}
		delta := [3]float32{}
		delta[axis] = push
		d := math.Vec3FromArray(delta)
		bd.pos = bd.pos.Add(d)
		dlo, dhi = dlo.Add(d), dhi.Add(d)

		v := bd.linVel.Array()
		v[axis] = 0
		bd.linVel = math.Vec3FromArray(v)
	}
}

// Reset returns every dynamic body to its initial state and hands its transform
// back to the scene graph.
func (b *Basic) Reset() {
	for i := range b.dynamic {
		bd := &b.dynamic[i]
		bd.bodyState = bd.initial
		if b.doc != nil {
			b.doc.Nodes[bd.node].SimulationOwned = false
		}
	}
}

// Stop resets and forgets all bodies.
func (b *Basic) Stop() {
	b.Reset()
	b.doc = nil
	b.dynamic = nil
	b.obstacles = nil
	b.colliders = nil
}

// DebugLines returns collider wireframes as flat endpoint triples.
func (b *Basic) DebugLines() []float32 {
	if b.doc == nil {
		return nil
	}
	var lines []float32
	for _, idx := range b.colliders {
		n := b.doc.Nodes[idx]
		c := n.Physics.Collider
		m := n.RenderTransform()
		switch c.Shape {
		case scene.ShapeSphere:
			lines = debug.AppendSphere(lines, c.Radius, debugSegments, m)
		case scene.ShapeCapsule:
			lines = debug.AppendCylinder(lines, c.Radius, c.Height, debugSegments, m)
			lines = debug.AppendSphere(lines, c.Radius, debugSegments, m.Mul(math.Translate(0, c.Height/2, 0)))
			lines = debug.AppendSphere(lines, c.Radius, debugSegments, m.Mul(math.Translate(0, -c.Height/2, 0)))
		case scene.ShapeCylinder:
			lines = debug.AppendCylinder(lines, c.Radius, c.Height, debugSegments, m)
		default:
			if lo, hi, ok := localBounds(b.doc, c); ok {
				lines = debug.AppendBox(lines, lo, hi, m)
			}
		}
	}
	return lines
}

// filterBits assigns one bit per collision system name, truncating to
// MaxCollisionFilters with a warning.
func filterBits(filters []scene.CollisionFilter) map[string]uint32 {
	bits := make(map[string]uint32)
	dropped := 0
	add := func(name string) {
		if _, ok := bits[name]; ok {
			return
		}
		if len(bits) >= MaxCollisionFilters {
			dropped++
			return
		}
		bits[name] = 1 << len(bits)
	}
	for _, f := range filters {
		for _, s := range f.CollisionSystems {
			add(s)
		}
		for _, s := range f.CollideWithSystems {
			add(s)
		}
		for _, s := range f.NotCollideWithSystems {
			add(s)
		}
	}
	if dropped > 0 {
		logger.Warn("too many collision systems, filter list truncated",
			zap.Int("max", MaxCollisionFilters),
			zap.Int("dropped", dropped))
	}
	return bits
}

// masks returns the collision group and mask of a collider. Colliders without a
// filter belong to every group and collide with everything.
func masks(doc *scene.Document, c *scene.Collider, bits map[string]uint32) (group, mask uint32) {
	if c.Filter < 0 || c.Filter >= len(doc.CollisionFilters) {
		return ^uint32(0), ^uint32(0)
	}
	f := doc.CollisionFilters[c.Filter]
	set := func(names []string) uint32 {
		var m uint32
		for _, name := range names {
			m |= bits[name]
		}
		return m
	}

	group = set(f.CollisionSystems)
	switch {
	case len(f.CollideWithSystems) > 0:
		mask = set(f.CollideWithSystems)
	default:
		mask = ^set(f.NotCollideWithSystems)
	}
	return group, mask
}

// localBounds returns the collider extents in node space.
func localBounds(doc *scene.Document, c *scene.Collider) (lo, hi math.Vec3, ok bool) {
	switch c.Shape {
	case scene.ShapeBox:
		h := math.Vec3FromArray(c.Size).Scale(0.5)
		return h.Scale(-1), h, true
	case scene.ShapeSphere:
		r := math.Vec3{X: c.Radius, Y: c.Radius, Z: c.Radius}
		return r.Scale(-1), r, true
	case scene.ShapeCapsule:
		r := math.Vec3{X: c.Radius, Y: c.Height/2 + c.Radius, Z: c.Radius}
		return r.Scale(-1), r, true
	case scene.ShapeCylinder:
		r := math.Vec3{X: c.Radius, Y: c.Height / 2, Z: c.Radius}
		return r.Scale(-1), r, true
	case scene.ShapeMesh:
		mesh := doc.Mesh(c.Mesh)
		if mesh == nil || len(mesh.Primitives) == 0 {
			return lo, hi, false
		}
		lo, hi = mesh.Primitives[0].Min, mesh.Primitives[0].Max
		for _, p := range mesh.Primitives[1:] {
			lo, hi = lo.Min(p.Min), hi.Max(p.Max)
		}
		return lo, hi, true
	}
	return lo, hi, false
}

// worldBounds transforms a local box and returns its axis-aligned world bounds.
func worldBounds(lo, hi math.Vec3, m math.Mat4) (math.Vec3, math.Vec3) {
	var wlo, whi math.Vec3
	for i := 0; i < 8; i++ {
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
		p := math.Vec3FromArray(m.TransformPoint(c.Array()))
		if i == 0 {
			wlo, whi = p, p
			continue
		}
		wlo, whi = wlo.Min(p), whi.Max(p)
	}
	return wlo, whi
}

// penetration returns the signed push along the axis of least overlap that
// separates box a from box b, or axis -1 when they do not overlap.
func penetration(alo, ahi, blo, bhi math.Vec3) (float32, int) {
	al, ah, bl, bh := alo.Array(), ahi.Array(), blo.Array(), bhi.Array()
	best, axis := float32(0), -1
	for i := 0; i < 3; i++ {
		if ah[i] <= bl[i] || bh[i] <= al[i] {
			return 0, -1
		}
		up := bh[i] - al[i]
		down := ah[i] - bl[i]
		push := up
		if down < up {
			push = -down
		}
		if axis < 0 || math32.Abs(push) < math32.Abs(best) {
			best, axis = push, i
		}
	}
	return best, axis
}

func integrateRotation(q math.Quat, w math.Vec3, dt float32) math.Quat {
	if w == (math.Vec3{}) {
		return q
	}
	spin := math.Quat{X: w.X, Y: w.Y, Z: w.Z}.Mul(q)
	h := dt / 2
	return math.Quat{
		X: q.X + spin.X*h,
		Y: q.Y + spin.Y*h,
		Z: q.Z + spin.Z*h,
		W: q.W + spin.W*h,
	}.Normalize()
}

func worldScale(m math.Mat4) math.Vec3 {
	return math.Vec3{
		X: math.Vec3{X: m[0], Y: m[1], Z: m[2]}.Length(),
		Y: math.Vec3{X: m[4], Y: m[5], Z: m[6]}.Length(),
		Z: math.Vec3{X: m[8], Y: m[9], Z: m[10]}.Length(),
	}
}
