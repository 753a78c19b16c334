package render

import (
	"errors"
	"strings"

	"github.com/Faultbox/gltf-viewer/internal/engine/shader"
	"github.com/Faultbox/gltf-viewer/pkg/math"
)

type recordedDraw struct {
	target       TargetID
	node         int
	instances    int
	transmission bool
	blend        bool
	frontFaceCW  bool
	source       string
}

type fakeBackend struct {
	failOn string

	programs map[uint32]string
	next     uint32

	bound    TargetID
	ensured  map[TargetID]TargetSpec
	resolved [][2]TargetID
	draws    []recordedDraw
	envDraws int
	lines    []float32
	pixels   [][4]byte
	reads    int
	failDraw map[int]bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		programs: make(map[uint32]string),
		ensured:  make(map[TargetID]TargetSpec),
		failDraw: make(map[int]bool),
	}
}

func (f *fakeBackend) CompileStage(stage shader.Stage, source string) (uint32, error) {
	if f.failOn != "" && strings.Contains(source, "#define "+f.failOn+"\n") {
		return 0, errors.New("compile failed")
	}
	f.next++
	f.programs[f.next] = source
	return f.next, nil
}

func (f *fakeBackend) LinkProgram(vertex, fragment uint32) (uint32, error) {
	f.next++
	f.programs[f.next] = f.programs[vertex] + f.programs[fragment]
	return f.next, nil
}

func (f *fakeBackend) EnsureTarget(id TargetID, spec TargetSpec) error {
	f.ensured[id] = spec
	return nil
}

func (f *fakeBackend) BindTarget(id TargetID, viewport [4]int) {
	f.bound = id
}

func (f *fakeBackend) Clear(color [4]float32) {}

func (f *fakeBackend) Resolve(src, dst TargetID) {
	f.resolved = append(f.resolved, [2]TargetID{src, dst})
}

func (f *fakeBackend) Draw(call *DrawCall) error {
	node := DecodeNodeID([4]byte{byte(call.NodeID), byte(call.NodeID >> 8), byte(call.NodeID >> 16), byte(call.NodeID >> 24)})
	if f.failDraw[node] {
		return errors.New("attribute binding failed")
	}
	f.draws = append(f.draws, recordedDraw{
		target:       f.bound,
		node:         node,
		instances:    len(call.Instances),
		transmission: call.Transmission,
		blend:        call.Blend,
		frontFaceCW:  call.FrontFaceCW,
		source:       f.programs[call.Program],
	})
	return nil
}

func (f *fakeBackend) DrawEnvironment(call *EnvironmentCall) {
	f.envDraws++
}

func (f *fakeBackend) DrawLines(program uint32, viewProjection math.Mat4, color [4]float32, points []float32) {
	f.lines = append(f.lines, points...)
}

func (f *fakeBackend) ReadPixel(id TargetID) ([4]byte, error) {
	f.reads++
	if len(f.pixels) == 0 {
		return [4]byte{}, nil
	}
	px := f.pixels[0]
	f.pixels = f.pixels[1:]
	return px, nil
}

// drawsOn returns the nodes drawn into target, in order.
func (f *fakeBackend) drawsOn(target TargetID) []recordedDraw {
	var out []recordedDraw
	for _, d := range f.draws {
		if d.target == target {
			out = append(out, d)
		}
	}
	return out
}

type recordingGraph struct {
	hover      bool
	selections []PickResult
	hovers     []PickResult
}

func (g *recordingGraph) ReceiveSelection(r PickResult) { g.selections = append(g.selections, r) }
func (g *recordingGraph) ReceiveHover(r PickResult)     { g.hovers = append(g.hovers, r) }
func (g *recordingGraph) NeedsHover() bool              { return g.hover }
