package render

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/gltf-viewer/internal/config"
	"github.com/Faultbox/gltf-viewer/internal/engine/camera"
	"github.com/Faultbox/gltf-viewer/internal/engine/lighting"
	"github.com/Faultbox/gltf-viewer/internal/engine/shader"
	"github.com/Faultbox/gltf-viewer/internal/engine/transform"
	"github.com/Faultbox/gltf-viewer/internal/logger"
	"github.com/Faultbox/gltf-viewer/internal/scene"
	"github.com/Faultbox/gltf-viewer/pkg/math"
)

// Options holds renderer settings.
type Options struct {
	Permutation         PermutationOptions
	Environment         bool
	EnvironmentRotation float32
	Instancing          bool
	MaxVertexAttributes int
	MSAASamples         int
	PhysicsDebug        bool
}

// OptionsFromConfig converts the render and graphics configuration.
func OptionsFromConfig(r config.RenderConfig, g config.GraphicsConfig) Options {
	return Options{
		Permutation: PermutationOptions{
			LinearOutput: r.LinearOutput,
			Debug:        r.DebugChannel,
			Extensions:   r.Extensions,
		},
		Environment:         r.Environment,
		EnvironmentRotation: r.EnvironmentRotation,
		Instancing:          r.Instancing,
		MaxVertexAttributes: r.MaxVertexAttributes,
		MSAASamples:         g.MSAASamples,
		PhysicsDebug:        r.PhysicsDebug,
	}
}

var (
	clearColor  = [4]float32{0.1, 0.1, 0.15, 1}
	skyColor    = [3]float32{0.55, 0.62, 0.75}
	groundColor = [3]float32{0.18, 0.17, 0.16}
	lineColor   = [4]float32{0.1, 1, 0.3, 1}
)

// Input is everything the renderer reads in one frame.
type Input struct {
	Document *scene.Document
	Order    *transform.Order
	// Camera is the scene camera index, negative for the orbit camera.
	Camera        int
	Width, Height int
	// DebugLines are physics overlay segments as xyz pairs.
	DebugLines []float32
}

// Stats describes the last rendered frame.
type Stats struct {
	Drawables int
	Batches   int
	Draws     int
	Skipped   int
	Rebuilt   bool
}

type frameState struct {
	doc     *scene.Document
	frame   *Frame
	buckets *Buckets
	batches []*Batch
}

// Renderer draws documents through a Backend. It keeps per-scene caches that
// Reset discards.
type Renderer struct {
	backend Backend
	shaders *shader.Cache
	opts    Options
	graph   Graph
	orbit   *camera.OrbitCamera
	lights  *lighting.Buffer

	traversal Traversal
	drawables drawableCache

	selection pickRequest
	hover     pickRequest

	instances []math.Mat4
	ccw, cw   []math.Mat4
	joints    []math.Mat4
	front     []*Drawable
	stats     Stats
}

// New creates a renderer. sources are the named GLSL sources, usually
// shader.Sources().
func New(backend Backend, sources map[string]string, opts Options) *Renderer {
	fallback := scene.NewDocument().NewMaterial("default")
	if opts.MaxVertexAttributes <= 0 {
		opts.MaxVertexAttributes = 16
	}
	return &Renderer{
		backend:   backend,
		shaders:   shader.NewCache(backend, sources),
		opts:      opts,
		graph:     NopGraph{},
		orbit:     camera.NewOrbitCamera(),
		lights:    lighting.NewBuffer(),
		drawables: drawableCache{fallback: fallback},
	}
}

// SetGraph installs the receiver of picking results. nil restores NopGraph.
func (r *Renderer) SetGraph(g Graph) {
	if g == nil {
		g = NopGraph{}
	}
	r.graph = g
}

// Orbit returns the fallback orbit camera.
func (r *Renderer) Orbit() *camera.OrbitCamera {
	return r.orbit
}

// Options returns the active settings.
func (r *Renderer) Options() Options {
	return r.opts
}

// SetDebugChannel switches the debug visualization.
func (r *Renderer) SetDebugChannel(channel string) {
	r.opts.Permutation.Debug = channel
}

// RequestPick schedules a picking pass at window pixel (x, y) for the next frame.
func (r *Renderer) RequestPick(x, y int) {
	r.selection = pickRequest{x: x, y: y, pending: true}
}

// SetHover sets the hover pixel, used while the graph asks for hover.
func (r *Renderer) SetHover(x, y int) {
	r.hover = pickRequest{x: x, y: y, pending: true}
}

// Stats returns statistics of the last frame.
func (r *Renderer) Stats() Stats {
	return r.stats
}

// Reset discards per-scene state.
func (r *Renderer) Reset() {
	r.traversal.Reset()
	r.drawables.reset()
	r.selection, r.hover = pickRequest{}, pickRequest{}
	logger.ForgetOnce("render:")
}

// Render draws one frame. It fails only when the selected camera is missing;
// per-primitive failures skip the primitive.
func (r *Renderer) Render(in Input) error {
	r.stats = Stats{}
	doc := in.Document
	if doc == nil || in.Order == nil || in.Width <= 0 || in.Height <= 0 {
		return nil
	}

	aspect := float32(in.Width) / float32(in.Height)
	v, err := ResolveCamera(doc, in.Order.Nodes(), in.Camera, r.orbit, aspect)
	if err != nil {
		return err
	}

	nodes := r.traversal.Visible(doc, in.Order)
	buckets, rebuilt := r.drawables.update(doc, nodes, r.traversal.Generation())
	r.stats.Rebuilt = rebuilt
	r.stats.Drawables = buckets.Len()

	if dropped := r.lights.Gather(doc, nodes); dropped > 0 {
		logger.WarnOnce("render:lights", "too many punctual lights", zap.Int("dropped", dropped), zap.Int("max", lighting.MaxLights))
	}

	frame := &Frame{
		Width:          in.Width,
		Height:         in.Height,
		View:           v.View,
		Projection:     v.Projection,
		ViewProjection: v.Projection.Mul(v.View),
		CameraPosition: v.Position,
		Lights:         r.lights,
		Environment:    skyColor,
	}
	if !r.opts.Environment {
		frame.Environment = [3]float32{0.2, 0.2, 0.2}
	}

	updateDepth(doc, buckets.Transparent, frame.View)
	updateDepth(doc, buckets.Transmission, frame.View)

	f := &frameState{
		doc:     doc,
		frame:   frame,
		buckets: buckets,
		batches: Batches(doc, buckets.Opaque, r.opts.Instancing, r.opts.MaxVertexAttributes),
	}
	r.stats.Batches = len(f.batches)

	if len(buckets.Scatter) > 0 {
		debugScatter := DebugDefine(r.opts.Permutation.Debug) == "DEBUG_VOLUME_SCATTER"
		r.scatterPass(f, debugScatter)
		if debugScatter {
			return nil
		}
	}

	r.pickPasses(f)

	if len(buckets.Transmission) > 0 {
		r.transmissionPass(f)
	}

	r.backend.BindTarget(TargetScreen, [4]int{0, 0, in.Width, in.Height})
	r.backend.Clear(clearColor)
	r.drawEnvironment(frame)
	r.drawBatches(f, frame, VariantColor)
	r.drawTransmission(f, frame)
	r.drawTransparent(f, frame, VariantColor)

	if r.opts.PhysicsDebug && len(in.DebugLines) > 0 {
		r.drawLines(frame, in.DebugLines)
	}
	return nil
}

func (r *Renderer) scatterPass(f *frameState, toScreen bool) {
	target := TargetScatter
	if toScreen {
		target = TargetScreen
	} else if err := r.backend.EnsureTarget(target, TargetSpec{Width: f.frame.Width, Height: f.frame.Height}); err != nil {
		r.warnOnce("target", "scatter target unavailable", err)
		return
	}
	r.backend.BindTarget(target, [4]int{0, 0, f.frame.Width, f.frame.Height})
	r.backend.Clear([4]float32{0, 0, 0, 0})
	for _, d := range f.buckets.Scatter {
		r.drawOne(f.doc, d, f.frame, VariantScatter, false)
	}
}

func (r *Renderer) pickPasses(f *frameState) {
	var selection PickResult
	picked := false
	if r.selection.pending {
		selection = r.pick(TargetPick, f, r.selection.x, r.selection.y)
		picked = true
		r.selection.pending = false
		r.graph.ReceiveSelection(selection)
	}

	if !r.hover.pending || !r.graph.NeedsHover() {
		return
	}
	var hover PickResult
	if picked && r.hover.x == selection.X && r.hover.y == selection.Y {
		hover = selection
	} else {
		hover = r.pick(TargetHover, f, r.hover.x, r.hover.y)
	}
	r.graph.ReceiveHover(hover)
}

func (r *Renderer) transmissionPass(f *frameState) {
	w, h := f.frame.Width, f.frame.Height
	samples := r.opts.MSAASamples
	if err := r.backend.EnsureTarget(TargetTransmission, TargetSpec{Width: w, Height: h, Samples: samples}); err != nil {
		r.warnOnce("target", "transmission target unavailable", err)
		return
	}
	if err := r.backend.EnsureTarget(TargetTransmissionResolve, TargetSpec{Width: w, Height: h, Mipmaps: true}); err != nil {
		r.warnOnce("target", "transmission resolve target unavailable", err)
		return
	}
	r.backend.BindTarget(TargetTransmission, [4]int{0, 0, w, h})
	r.backend.Clear(clearColor)
	r.drawEnvironment(f.frame)
	r.drawBatches(f, f.frame, VariantColor)
	r.drawTransparent(f, f.frame, VariantColor)
	r.backend.Resolve(TargetTransmission, TargetTransmissionResolve)
}

// drawAll draws every bucket without instancing, for the picking variants.
func (r *Renderer) drawAll(doc *scene.Document, b *Buckets, frame *Frame, variant Variant) {
	for _, list := range [][]*Drawable{b.Opaque, b.Transmission, b.Transparent} {
		for _, d := range list {
			r.drawOne(doc, d, frame, variant, false)
		}
	}
}

func (r *Renderer) drawBatches(f *frameState, frame *Frame, variant Variant) {
	for _, b := range f.batches {
		if !b.Instanced || len(b.Drawables) == 1 {
			for _, d := range b.Drawables {
				r.drawOne(f.doc, d, frame, variant, false)
			}
			continue
		}
		r.instances = b.InstanceMatrices(f.doc, r.instances)
		d := b.Drawables[0]
		call, ok := r.prepare(f.doc, d, frame, variant, true)
		if !ok {
			continue
		}
		call.Instances = r.instances
		call.FrontFaceCW = b.Key.Winding < 0
		r.submit(call, d)
	}
}

func (r *Renderer) drawTransmission(f *frameState, frame *Frame) {
	r.front = inFront(r.front, f.buckets.Transmission)
	sortBackToFront(r.front)
	for _, d := range r.front {
		r.drawOne(f.doc, d, frame, VariantColor, true)
	}
}

func (r *Renderer) drawTransparent(f *frameState, frame *Frame, variant Variant) {
	sortBackToFront(f.buckets.Transparent)
	for _, d := range f.buckets.Transparent {
		r.drawOne(f.doc, d, frame, variant, false)
	}
}

func (r *Renderer) drawOne(doc *scene.Document, d *Drawable, frame *Frame, variant Variant, transmission bool) {
	call, ok := r.prepare(doc, d, frame, variant, false)
	if !ok {
		return
	}
	call.Transmission = transmission
	if len(call.Instances) == 0 || nodeWinding(doc.Nodes[d.Node]) != 0 {
		r.submit(call, d)
		return
	}

	// Mirrored instances need the opposite front face.
	r.ccw, r.cw = splitByWinding(call.Instances, r.ccw, r.cw)
	ccwCall, cwCall := *call, *call
	ccwCall.Instances, ccwCall.FrontFaceCW = r.ccw, false
	cwCall.Instances, cwCall.FrontFaceCW = r.cw, true
	r.submit(&ccwCall, d)
	r.submit(&cwCall, d)
}

// prepare selects the program and fills per-node data. It returns false when
// the permutation is unusable.
func (r *Renderer) prepare(doc *scene.Document, d *Drawable, frame *Frame, variant Variant, instanced bool) (*DrawCall, bool) {
	n := doc.Nodes[d.Node]
	instanced = instanced || len(n.InstanceWorld) > 0
	vk := shader.NewKey(shader.Vertex, shader.PrimitiveVertex, VertexDefines(d.Primitive, instanced))
	fk := shader.NewKey(shader.Fragment, shader.PrimitiveFragment, FragmentDefines(d.Primitive, d.Material, variant, r.opts.Permutation))
	program, err := r.shaders.Program(vk, fk)
	if err != nil {
		r.stats.Skipped++
		logger.WarnOnce("render:program:"+vk.String()+fk.String(), "skipping draw, shader permutation failed",
			zap.Int("node", d.Node), zap.Int("mesh", d.Mesh), zap.Int("primitive", d.Index), zap.Error(err))
		return nil, false
	}

	world := n.RenderTransform()
	call := &DrawCall{
		Program:     program,
		Document:    doc,
		Primitive:   d.Primitive,
		Material:    d.Material,
		Frame:       frame,
		Model:       world,
		Normal:      world.NormalMatrix(),
		NodeID:      EncodeNodeID(d.Node),
		Blend:       d.Material.AlphaMode == scene.AlphaBlend && variant == VariantColor,
		FrontFaceCW: nodeWinding(n) < 0,
		Weights:     morphWeights(doc, n),
	}
	if len(n.InstanceWorld) > 0 {
		call.Instances = n.InstanceWorld
	}
	if d.Primitive.IsSkinned() {
		r.joints = jointMatrices(doc, n, r.joints)
		call.Joints = r.joints
	}
	return call, true
}

func (r *Renderer) submit(call *DrawCall, d *Drawable) {
	if err := r.backend.Draw(call); err != nil {
		r.stats.Skipped++
		logger.WarnOnce(fmt.Sprintf("render:draw:%d:%d", d.Mesh, d.Index), "skipping primitive",
			zap.Int("node", d.Node), zap.Int("mesh", d.Mesh), zap.Int("primitive", d.Index), zap.Error(err))
		return
	}
	r.stats.Draws++
}

func (r *Renderer) drawEnvironment(frame *Frame) {
	if !r.opts.Environment {
		return
	}
	defines := []string{}
	if r.opts.Permutation.LinearOutput {
		defines = append(defines, "LINEAR_OUTPUT")
	}
	program, err := r.shaders.Program(
		shader.NewKey(shader.Vertex, shader.EnvironmentVertex, nil),
		shader.NewKey(shader.Fragment, shader.EnvironmentFragment, defines))
	if err != nil {
		r.warnOnce("environment", "environment shader failed", err)
		return
	}
	r.backend.DrawEnvironment(&EnvironmentCall{
		Program:               program,
		InverseViewProjection: frame.ViewProjection.Inverse(),
		Sky:                   skyColor,
		Ground:                groundColor,
		Rotation:              r.opts.EnvironmentRotation,
	})
}

func (r *Renderer) drawLines(frame *Frame, lines []float32) {
	program, err := r.shaders.Program(
		shader.NewKey(shader.Vertex, shader.LinesVertex, nil),
		shader.NewKey(shader.Fragment, shader.LinesFragment, nil))
	if err != nil {
		r.warnOnce("lines", "line shader failed", err)
		return
	}
	r.backend.DrawLines(program, frame.ViewProjection, lineColor, lines)
}

func (r *Renderer) warnOnce(key, msg string, err error) {
	logger.WarnOnce("render:"+key, msg, zap.Error(err))
}

// morphWeights returns the node weights, falling back to the mesh defaults.
func morphWeights(doc *scene.Document, n *scene.Node) []float32 {
	if w := n.Weights.Value(); len(w) > 0 {
		return w
	}
	if m := doc.Mesh(n.Mesh); m != nil {
		return m.Weights.Value()
	}
	return nil
}

// jointMatrices computes the skinning matrices of the node's skin in the mesh
// node's space.
func jointMatrices(doc *scene.Document, n *scene.Node, dst []math.Mat4) []math.Mat4 {
	dst = dst[:0]
	if n.Skin < 0 || n.Skin >= len(doc.Skins) {
		return dst
	}
	skin := doc.Skins[n.Skin]
	joints := skin.Joints
	if len(joints) > MaxJoints {
		logger.WarnOnce(fmt.Sprintf("render:joints:%d", n.Skin), "skin exceeds joint limit",
			zap.Int("joints", len(joints)), zap.Int("max", MaxJoints))
		joints = joints[:MaxJoints]
	}
	for i, j := range joints {
		jn := doc.Node(j)
		if jn == nil {
			dst = append(dst, math.Identity())
			continue
		}
		m := n.InverseWorld.Mul(jn.RenderTransform())
		if i < len(skin.InverseBindMatrices) {
			m = m.Mul(math.Mat4(skin.InverseBindMatrices[i]))
		}
		dst = append(dst, m)
	}
	return dst
}
