// Package glbackend implements render.Backend with OpenGL 4.1 core.
package glbackend

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/gltf-viewer/internal/engine/framebuffer"
	"github.com/Faultbox/gltf-viewer/internal/engine/render"
	"github.com/Faultbox/gltf-viewer/internal/engine/shader"
	"github.com/Faultbox/gltf-viewer/internal/logger"
	"github.com/Faultbox/gltf-viewer/pkg/math"
)

// Backend draws through the current OpenGL context.
type Backend struct {
	shader.GL

	targets  map[render.TargetID]*framebuffer.Framebuffer
	uniforms map[uint32]map[string]int32

	emptyVAO uint32
	lineVAO  uint32
	lineVBO  uint32
	white    uint32
}

var _ render.Backend = (*Backend)(nil)

// New initializes OpenGL function pointers and default state.
// Must be called after the OpenGL context is created.
func New() (*Backend, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.Enable(gl.PROGRAM_POINT_SIZE)

	b := &Backend{
		targets:  make(map[render.TargetID]*framebuffer.Framebuffer),
		uniforms: make(map[uint32]map[string]int32),
	}
	gl.GenVertexArrays(1, &b.emptyVAO)
	gl.GenVertexArrays(1, &b.lineVAO)
	gl.GenBuffers(1, &b.lineVBO)
	gl.BindVertexArray(b.lineVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.lineVBO)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 0, 0)
	gl.BindVertexArray(0)

	white := []byte{255, 255, 255, 255}
	gl.GenTextures(1, &b.white)
	gl.BindTexture(gl.TEXTURE_2D, b.white)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, 1, 1, 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(white))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	return b, nil
}

// Close releases backend-owned GL objects.
func (b *Backend) Close() {
	logger.Info("closing GL backend")
	for id, fb := range b.targets {
		fb.Destroy()
		delete(b.targets, id)
	}
	gl.DeleteVertexArrays(1, &b.emptyVAO)
	gl.DeleteVertexArrays(1, &b.lineVAO)
	gl.DeleteBuffers(1, &b.lineVBO)
	gl.DeleteTextures(1, &b.white)
}

// EnsureTarget implements render.Backend.
func (b *Backend) EnsureTarget(id render.TargetID, spec render.TargetSpec) error {
	if id == render.TargetScreen {
		return nil
	}
	opts := framebuffer.Options{Samples: spec.Samples, Mipmaps: spec.Mipmaps}
	if fb, ok := b.targets[id]; ok {
		if fb.Options() == opts {
			return fb.Resize(int32(spec.Width), int32(spec.Height))
		}
		fb.Destroy()
		delete(b.targets, id)
	}
	fb, err := framebuffer.New(int32(spec.Width), int32(spec.Height), opts)
	if err != nil {
		return fmt.Errorf("target %d: %w", id, err)
	}
	b.targets[id] = fb
	return nil
}

// BindTarget implements render.Backend.
func (b *Backend) BindTarget(id render.TargetID, viewport [4]int) {
	if fb, ok := b.targets[id]; ok && id != render.TargetScreen {
		fb.BindViewport(int32(viewport[0]), int32(viewport[1]), int32(viewport[2]), int32(viewport[3]))
		return
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(int32(viewport[0]), int32(viewport[1]), int32(viewport[2]), int32(viewport[3]))
}

// Clear implements render.Backend.
func (b *Backend) Clear(c [4]float32) {
	gl.DepthMask(true)
	gl.ClearColor(c[0], c[1], c[2], c[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Resolve implements render.Backend.
func (b *Backend) Resolve(src, dst render.TargetID) {
	s, d := b.targets[src], b.targets[dst]
	if s == nil || d == nil {
		return
	}
	s.ResolveInto(d)
}

// ReadPixel implements render.Backend.
func (b *Backend) ReadPixel(id render.TargetID) ([4]byte, error) {
	fb, ok := b.targets[id]
	if !ok {
		return [4]byte{}, fmt.Errorf("target %d not allocated", id)
	}
	return fb.ReadPixel(0, 0), nil
}

// ReadScreen reads the window framebuffer as RGBA rows, bottom row first.
func (b *Backend) ReadScreen(width, height int) []byte {
	return framebuffer.ReadFramebuffer(0, int32(width), int32(height))
}

// DrawEnvironment implements render.Backend.
func (b *Backend) DrawEnvironment(call *render.EnvironmentCall) {
	gl.UseProgram(call.Program)
	b.setMat4(call.Program, "u_InverseViewProjection", call.InverseViewProjection)
	b.setVec3(call.Program, "u_SkyColor", call.Sky)
	b.setVec3(call.Program, "u_GroundColor", call.Ground)
	b.setFloat(call.Program, "u_Rotation", call.Rotation)

	gl.DepthMask(false)
	gl.Disable(gl.BLEND)
	gl.Disable(gl.CULL_FACE)
	gl.BindVertexArray(b.emptyVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
	gl.BindVertexArray(0)
	gl.DepthMask(true)
}

// DrawLines implements render.Backend.
func (b *Backend) DrawLines(program uint32, viewProjection math.Mat4, color [4]float32, points []float32) {
	if len(points) < 6 {
		return
	}
	gl.UseProgram(program)
	b.setMat4(program, "u_ViewProjectionMatrix", viewProjection)
	if loc := b.loc(program, "u_Color"); loc >= 0 {
		gl.Uniform4f(loc, color[0], color[1], color[2], color[3])
	}

	gl.Disable(gl.BLEND)
	gl.Disable(gl.DEPTH_TEST)
	gl.BindVertexArray(b.lineVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.lineVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(points)*4, gl.Ptr(points), gl.STREAM_DRAW)
	gl.DrawArrays(gl.LINES, 0, int32(len(points)/3))
	gl.BindVertexArray(0)
	gl.Enable(gl.DEPTH_TEST)
}

func (b *Backend) loc(program uint32, name string) int32 {
	cache, ok := b.uniforms[program]
	if !ok {
		cache = make(map[string]int32)
		b.uniforms[program] = cache
	}
	if l, ok := cache[name]; ok {
		return l
	}
	l := shader.Uniform(program, name)
	cache[name] = l
	return l
}

func (b *Backend) setMat4(program uint32, name string, m math.Mat4) {
	if l := b.loc(program, name); l >= 0 {
		gl.UniformMatrix4fv(l, 1, false, &m[0])
	}
}

func (b *Backend) setVec3(program uint32, name string, v [3]float32) {
	if l := b.loc(program, name); l >= 0 {
		gl.Uniform3f(l, v[0], v[1], v[2])
	}
}

func (b *Backend) setVec4(program uint32, name string, v [4]float32) {
	if l := b.loc(program, name); l >= 0 {
		gl.Uniform4f(l, v[0], v[1], v[2], v[3])
	}
}

func (b *Backend) setFloat(program uint32, name string, v float32) {
	if l := b.loc(program, name); l >= 0 {
		gl.Uniform1f(l, v)
	}
}

func (b *Backend) setInt(program uint32, name string, v int32) {
	if l := b.loc(program, name); l >= 0 {
		gl.Uniform1i(l, v)
	}
}
