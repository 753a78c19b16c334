// Package viewer runs the per-frame pipeline over a loaded glTF document:
// animation, transforms, physics, rendering and dirty-state reset.
package viewer

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/gltf-viewer/internal/config"
	"github.com/Faultbox/gltf-viewer/internal/engine/animation"
	"github.com/Faultbox/gltf-viewer/internal/engine/camera"
	"github.com/Faultbox/gltf-viewer/internal/engine/debug"
	"github.com/Faultbox/gltf-viewer/internal/engine/physics"
	"github.com/Faultbox/gltf-viewer/internal/engine/picking"
	"github.com/Faultbox/gltf-viewer/internal/engine/render"
	"github.com/Faultbox/gltf-viewer/internal/engine/shader"
	"github.com/Faultbox/gltf-viewer/internal/engine/transform"
	"github.com/Faultbox/gltf-viewer/internal/gltfio"
	"github.com/Faultbox/gltf-viewer/internal/logger"
	"github.com/Faultbox/gltf-viewer/internal/scene"
)

// ErrNoScene is returned for documents without a displayable scene.
var ErrNoScene = errors.New("document has no scene")

// ScreenReader reads back the default framebuffer as bottom-up RGBA rows.
type ScreenReader interface {
	ReadScreen(width, height int) []byte
}

// Viewer owns the per-scene state and drives one frame at a time. It is not
// safe for concurrent use; only the file watcher runs on its own goroutine.
type Viewer struct {
	cfg      *config.Config
	backend  render.Backend
	renderer *render.Renderer
	clock    func() time.Time

	path    string
	doc     *scene.Document
	order   *transform.Order
	anims   *animation.Set
	timer   *animation.Timer
	physics physics.Controller
	stepper *physics.Stepper

	camera        int
	width, height int
	last          time.Time

	watcher *fsnotify.Watcher
	reload  atomic.Bool

	capture     *debug.Capture
	captureNext bool
}

// New creates a viewer drawing through backend. A nil clock uses time.Now.
func New(cfg *config.Config, backend render.Backend, clock func() time.Time) *Viewer {
	if clock == nil {
		clock = time.Now
	}
	return &Viewer{
		cfg:      cfg,
		backend:  backend,
		renderer: render.New(backend, shader.Sources(), render.OptionsFromConfig(cfg.Render, cfg.Graphics)),
		clock:    clock,
		physics:  physics.Nop{},
		camera:   cfg.Data.Camera,
		width:    cfg.Graphics.Width,
		height:   cfg.Graphics.Height,
		capture:  debug.NewCapture(cfg.Data.ScreenshotDir, "gltf", cfg.Data.ScreenshotFormat),
	}
}

// Renderer returns the renderer, e.g. to install a picking graph.
func (v *Viewer) Renderer() *render.Renderer {
	return v.renderer
}

// Document returns the loaded document, nil before the first load.
func (v *Viewer) Document() *scene.Document {
	return v.doc
}

// Animations returns the animation set of the loaded document.
func (v *Viewer) Animations() *animation.Set {
	return v.anims
}

// LoadScene loads a glTF file and replaces the current scene. On failure the
// previous scene stays active.
func (v *Viewer) LoadScene(path string) error {
	doc, err := gltfio.Load(path)
	if err != nil {
		return err
	}
	if err := v.SetDocument(doc); err != nil {
		return err
	}
	if path != v.path {
		v.path = path
		if v.cfg.Data.Watch {
			v.watch(path)
		}
	}
	logger.Info("scene loaded",
		zap.String("path", path),
		zap.Int("nodes", len(doc.Nodes)),
		zap.Int("animations", len(doc.Animations)))
	return nil
}

// SetDocument installs doc, discarding every piece of per-scene state.
func (v *Viewer) SetDocument(doc *scene.Document) error {
	sc := doc.ActiveScene(v.cfg.Data.Scene)
	if sc == nil {
		return ErrNoScene
	}
	order, err := transform.Build(doc, sc)
	if err != nil {
		return fmt.Errorf("building transform order: %w", err)
	}

	v.physics.Stop()
	v.renderer.Reset()

	v.doc, v.order = doc, order
	order.Resolve(doc)

	v.anims = animation.NewSet(doc)
	v.timer = animation.NewTimer(v.clock)
	if v.cfg.Animation.Autoplay && v.anims.Len() > 0 {
		v.anims.Play(v.cfg.Animation.Play)
		v.timer.Start()
	}

	v.physics = v.newController(doc, order)
	v.stepper = physics.NewStepper(v.cfg.Physics.FixedStep, v.cfg.Physics.MaxSubSteps, v.cfg.Physics.WarmupFrames)

	if lo, hi, ok := camera.Bounds(doc, order.Nodes()); ok {
		v.renderer.Orbit().FitToBounds(lo, hi)
	}
	v.last = time.Time{}
	return nil
}

func (v *Viewer) newController(doc *scene.Document, order *transform.Order) physics.Controller {
	if !v.cfg.Physics.Enabled {
		return physics.Nop{}
	}
	basic := physics.NewBasic(v.cfg.Physics.Gravity, order)
	bodies, err := physics.Init(basic, doc)
	if err != nil {
		logger.Warn("physics disabled for scene", zap.Error(err))
		return physics.Nop{}
	}
	if bodies.Empty() {
		return physics.Nop{}
	}
	return basic
}

// Frame advances and draws one frame. Stages run strictly in order: active
// animations, transforms, physics, render, dirty reset.
func (v *Viewer) Frame(now time.Time) error {
	if v.reload.Swap(false) && v.path != "" {
		if err := v.LoadScene(v.path); err != nil {
			logger.Warn("scene reload failed", zap.String("path", v.path), zap.Error(err))
		}
	}
	if v.doc == nil {
		return nil
	}

	var dt time.Duration
	if !v.last.IsZero() {
		dt = now.Sub(v.last)
	}
	v.last = now

	v.anims.Advance(v.timer.ElapsedSec() * float32(v.cfg.Animation.Speed))
	v.order.Resolve(v.doc)

	step := v.stepper.StepSeconds()
	for n := v.stepper.Advance(dt); n > 0; n-- {
		v.physics.SimulateStep(v.doc, step)
	}

	var lines []float32
	if v.renderer.Options().PhysicsDebug {
		lines = v.physics.DebugLines()
	}
	err := v.renderer.Render(render.Input{
		Document:   v.doc,
		Order:      v.order,
		Camera:     v.camera,
		Width:      v.width,
		Height:     v.height,
		DebugLines: lines,
	})
	if err == nil && v.captureNext {
		v.captureNext = false
		v.saveCapture()
	}
	v.doc.ResetDirty()
	return err
}

// Resize sets the drawable size.
func (v *Viewer) Resize(width, height int) {
	v.width, v.height = width, height
}

// SetCamera selects a scene camera, negative for the orbit camera.
func (v *Viewer) SetCamera(index int) {
	v.camera = index
}

// Camera returns the selected camera index.
func (v *Viewer) Camera() int {
	return v.camera
}

// CycleCamera selects the next scene camera, wrapping to the orbit camera.
func (v *Viewer) CycleCamera() {
	if v.doc == nil {
		return
	}
	v.camera++
	if v.camera >= len(v.doc.Cameras) {
		v.camera = -1
	}
}

// TogglePlayback pauses or resumes the animation timer.
func (v *Viewer) TogglePlayback() {
	if v.timer != nil {
		v.timer.Toggle()
	}
}

// RestartPhysics returns every body to its initial state.
func (v *Viewer) RestartPhysics() {
	if v.doc == nil {
		return
	}
	v.physics.Reset()
	v.stepper.Reset()
}

// FocusAt recenters the orbit camera on the node under window pixel (x, y),
// using CPU ray casting against node bounds. Reports whether a node was hit.
func (v *Viewer) FocusAt(x, y int) bool {
	if v.doc == nil || v.width <= 0 || v.height <= 0 {
		return false
	}
	aspect := float32(v.width) / float32(v.height)
	view, err := render.ResolveCamera(v.doc, v.order.Nodes(), v.camera, v.renderer.Orbit(), aspect)
	if err != nil {
		return false
	}
	inv := view.Projection.Mul(view.View).Inverse()
	ray := picking.ScreenToRay(float32(x)+0.5, float32(y)+0.5, float32(v.width), float32(v.height), inv)
	hit := picking.PickNodes(v.doc, v.order.Nodes(), ray)
	if hit.Node == scene.None {
		return false
	}
	v.renderer.Orbit().Center = hit.Bounds.Center()
	logger.Debug("orbit focused", zap.Int("node", hit.Node), zap.Float32("distance", hit.Distance))
	return true
}

// RequestCapture saves the next rendered frame in the configured screenshot format.
func (v *Viewer) RequestCapture() {
	v.captureNext = true
}

func (v *Viewer) saveCapture() {
	reader, ok := v.backend.(ScreenReader)
	if !ok {
		logger.Warn("screen capture not supported by backend")
		return
	}
	name, err := v.capture.SavePixels(reader.ReadScreen(v.width, v.height), v.width, v.height)
	if err != nil {
		logger.Warn("screen capture failed", zap.Error(err))
		return
	}
	logger.Info("screen captured", zap.String("file", name))
}

// Close stops the watcher and the simulation.
func (v *Viewer) Close() {
	if v.watcher != nil {
		v.watcher.Close()
		v.watcher = nil
	}
	v.physics.Stop()
}
