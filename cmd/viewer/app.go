package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/sqweek/dialog"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/gltf-viewer/internal/config"
	"github.com/Faultbox/gltf-viewer/internal/engine/input"
	"github.com/Faultbox/gltf-viewer/internal/engine/render"
	"github.com/Faultbox/gltf-viewer/internal/engine/render/glbackend"
	"github.com/Faultbox/gltf-viewer/internal/engine/window"
	"github.com/Faultbox/gltf-viewer/internal/logger"
	"github.com/Faultbox/gltf-viewer/internal/viewer"
)

const title = "glTF Viewer"

type app struct {
	cfg     *config.Config
	window  *window.Window
	input   *input.Input
	backend *glbackend.Backend
	viewer  *viewer.Viewer
	graph   *selectionGraph

	channels []string
	channel  int
	dragging bool

	// Paths picked in the file dialog, opened on the main thread.
	pending chan string
}

func newApp(cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg, input: input.New(), graph: &selectionGraph{}, pending: make(chan string, 1)}

	var err error
	a.window, err = window.New(window.ConfigFromGraphics(title, cfg.Graphics))
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// The backend needs the GL context created by the window.
	a.backend, err = glbackend.New()
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to create GL backend: %w", err)
	}

	a.viewer = viewer.New(cfg, a.backend, nil)
	a.viewer.Renderer().SetGraph(a.graph)
	a.viewer.Resize(a.window.DrawableSize())

	for name := range render.DebugChannels {
		a.channels = append(a.channels, name)
	}
	sort.Strings(a.channels)
	a.channel = sort.SearchStrings(a.channels, cfg.Render.DebugChannel)

	if cfg.Data.ScenePath != "" {
		a.open(cfg.Data.ScenePath)
	} else {
		logger.Info("no scene given; pass a .gltf/.glb path, drop a file on the window or press O")
	}
	return a, nil
}

// Run starts the main loop.
func (a *app) Run() error {
	var minFrame time.Duration
	if a.cfg.Graphics.FPSLimit > 0 {
		minFrame = time.Second / time.Duration(a.cfg.Graphics.FPSLimit)
	}

	frameCount := 0
	fpsTimer := time.Now()
	logger.Info("starting viewer loop")

	for {
		start := time.Now()
		if a.input.Update() {
			return nil
		}
		if quit := a.handleEvents(); quit {
			return nil
		}

		if err := a.viewer.Frame(start); err != nil {
			logger.WarnOnce("app:frame", "frame failed", zap.Error(err))
		}
		a.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			stats := a.viewer.Renderer().Stats()
			logger.Debug("fps",
				zap.Int("count", frameCount),
				zap.Int("draws", stats.Draws),
				zap.Int("batches", stats.Batches),
				zap.Int("skipped", stats.Skipped))
			frameCount = 0
			fpsTimer = time.Now()
		}

		if elapsed := time.Since(start); elapsed < minFrame {
			time.Sleep(minFrame - elapsed)
		}
	}
}

func (a *app) handleEvents() bool {
	scale := a.window.PixelScale()
	orbit := a.viewer.Renderer().Orbit()
	for _, ev := range a.input.Events() {
		switch ev.Type {
		case input.EventWindowResize:
			a.viewer.Resize(a.window.DrawableSize())
		case input.EventMouseDown:
			a.dragging = false
		case input.EventMouseMove:
			if a.input.IsButtonDown(sdl.BUTTON_LEFT) {
				a.dragging = a.dragging || ev.DeltaX != 0 || ev.DeltaY != 0
				orbit.HandleDrag(float32(ev.DeltaX), float32(ev.DeltaY))
			}
			a.viewer.Renderer().SetHover(int(float32(ev.MouseX)*scale), int(float32(ev.MouseY)*scale))
		case input.EventMouseUp:
			x, y := int(float32(ev.MouseX)*scale), int(float32(ev.MouseY)*scale)
			switch {
			case ev.Button == sdl.BUTTON_LEFT && !a.dragging:
				a.viewer.Renderer().RequestPick(x, y)
			case ev.Button == sdl.BUTTON_MIDDLE:
				a.viewer.FocusAt(x, y)
			}
		case input.EventMouseWheel:
			orbit.HandleZoom(ev.Wheel)
		case input.EventDropFile:
			a.open(ev.Path)
		case input.EventKeyDown:
			if quit := a.handleKey(ev.Key); quit {
				return true
			}
		}
	}
	select {
	case path := <-a.pending:
		a.open(path)
	default:
	}
	if name := a.graph.hovered(a.viewer.Document()); name != "" {
		a.window.SetTitle(title + " - " + name)
	}
	return false
}

func (a *app) handleKey(key sdl.Scancode) bool {
	switch key {
	case sdl.SCANCODE_ESCAPE:
		return true
	case sdl.SCANCODE_SPACE:
		a.viewer.TogglePlayback()
	case sdl.SCANCODE_C:
		a.viewer.CycleCamera()
		logger.Info("camera selected", zap.Int("camera", a.viewer.Camera()))
	case sdl.SCANCODE_R:
		a.viewer.RestartPhysics()
	case sdl.SCANCODE_D:
		a.channel = (a.channel + 1) % len(a.channels)
		a.viewer.Renderer().SetDebugChannel(a.channels[a.channel])
		logger.Info("debug channel", zap.String("channel", a.channels[a.channel]))
	case sdl.SCANCODE_O:
		a.openFileDialog()
	case sdl.SCANCODE_F12:
		a.viewer.RequestCapture()
	}
	return false
}

// openFileDialog shows a native file dialog without blocking the frame loop.
func (a *app) openFileDialog() {
	go func() {
		path, err := dialog.File().
			Filter("glTF scenes", "gltf", "glb").
			Filter("All Files", "*").
			Title("Open glTF Scene").
			Load()
		if err != nil {
			if err != dialog.ErrCancelled {
				logger.Warn("file dialog failed", zap.Error(err))
			}
			return
		}
		select {
		case a.pending <- path:
		default:
		}
	}()
}

func (a *app) open(path string) {
	if err := a.viewer.LoadScene(path); err != nil {
		logger.Error("failed to load scene", zap.String("path", path), zap.Error(err))
		return
	}
	a.window.SetTitle(title + " - " + filepath.Base(path))
}

// Close releases GPU and window resources.
func (a *app) Close() {
	logger.Info("closing viewer")
	if a.viewer != nil {
		a.viewer.Close()
	}
	if a.backend != nil {
		a.backend.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
}
