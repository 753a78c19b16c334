package transform

import (
	"errors"
	"slices"
	"testing"

	"github.com/chewxy/math32"

	"github.com/Faultbox/gltf-viewer/internal/scene"
	"github.com/Faultbox/gltf-viewer/pkg/math"
)

const epsilon = 1e-5

func near(a, b [3]float32) bool {
	for i := range a {
		if math32.Abs(a[i]-b[i]) > epsilon {
			return false
		}
	}
	return true
}

// chain builds root -> child -> grandchild, each translated by 1 on X.
func chain() (*scene.Document, *scene.Scene) {
	doc := scene.NewDocument()
	for _, name := range []string{"root", "child", "grandchild"} {
		n := doc.NewNode(name)
		n.Translation.RestAt([3]float32{1, 0, 0})
	}
	doc.Nodes[0].Children = []int{1}
	doc.Nodes[1].Children = []int{2}
	sc := &scene.Scene{Nodes: []int{0}}
	doc.Scenes = []*scene.Scene{sc}
	return doc, sc
}

func TestBuildOrder(t *testing.T) {
	doc := scene.NewDocument()
	for range 5 {
		doc.NewNode("")
	}
	doc.Nodes[0].Children = []int{2, 1}
	doc.Nodes[2].Children = []int{3}
	sc := &scene.Scene{Nodes: []int{0, 4}}

	o, err := Build(doc, sc)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(o.Nodes(), []int{0, 2, 3, 1, 4}) {
		t.Errorf("order = %v", o.Nodes())
	}
	if doc.Nodes[3].Parent != 2 || doc.Nodes[1].Parent != 0 || doc.Nodes[4].Parent != scene.None {
		t.Error("parents not assigned")
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name     string
		children map[int][]int
		roots    []int
		err      error
	}{
		{"cycle", map[int][]int{0: {1}, 1: {0}}, []int{0}, ErrCycle},
		{"shared child", map[int][]int{0: {2}, 1: {2}}, []int{0, 1}, ErrCycle},
		{"self", map[int][]int{0: {0}}, []int{0}, ErrCycle},
		{"bad child", map[int][]int{0: {9}}, []int{0}, ErrBadReference},
		{"bad root", nil, []int{-1}, ErrBadReference},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := scene.NewDocument()
			for range 3 {
				doc.NewNode("")
			}
			for i, c := range tt.children {
				doc.Nodes[i].Children = c
			}
			if _, err := Build(doc, &scene.Scene{Nodes: tt.roots}); !errors.Is(err, tt.err) {
				t.Errorf("Build error = %v, want %v", err, tt.err)
			}
		})
	}
}

func TestResolveWorld(t *testing.T) {
	doc, sc := chain()
	o, err := Build(doc, sc)
	if err != nil {
		t.Fatal(err)
	}
	o.Resolve(doc)

	for i, want := range []float32{1, 2, 3} {
		if got := doc.Nodes[i].World.Translation(); !near(got.Array(), [3]float32{want, 0, 0}) {
			t.Errorf("node %d world translation = %v, want %v", i, got, want)
		}
	}

	// Animated values are picked up on the next resolve.
	doc.Nodes[0].Translation.Animate([3]float32{0, 5, 0})
	o.Resolve(doc)
	if got := doc.Nodes[2].World.Translation(); !near(got.Array(), [3]float32{2, 5, 0}) {
		t.Errorf("grandchild after animate = %v", got)
	}

	n := doc.Nodes[2]
	id := n.World.Mul(n.InverseWorld)
	if !near([3]float32{id[0], id[5], id[10]}, [3]float32{1, 1, 1}) || !near(id.Translation().Array(), [3]float32{}) {
		t.Errorf("World * InverseWorld = %v", id)
	}
}

func TestResolveNormalMatrix(t *testing.T) {
	doc, sc := chain()
	doc.Nodes[0].Scale.RestAt([3]float32{2, 1, 1})
	o, _ := Build(doc, sc)
	o.Resolve(doc)

	// Normal of a plane stretched along X keeps pointing along X, scaled by 1/2.
	nrm := doc.Nodes[0].Normal.TransformDirection([3]float32{1, 0, 0})
	if !near(nrm, [3]float32{0.5, 0, 0}) {
		t.Errorf("normal = %v", nrm)
	}
}

func TestResolveWorldRotation(t *testing.T) {
	doc, sc := chain()
	q := math.QuatFromAxisAngle(math.Vec3{Y: 1}, math32.Pi/2)
	doc.Nodes[0].Rotation.RestAt(q.Array())
	doc.Nodes[0].Scale.RestAt([3]float32{3, 3, 3})
	doc.Nodes[1].Rotation.RestAt(q.Array())
	o, _ := Build(doc, sc)
	o.Resolve(doc)

	dir := doc.Nodes[2].WorldRotation.Rotate(math.Vec3{X: 1})
	if !near(dir.Array(), [3]float32{-1, 0, 0}) {
		t.Errorf("two quarter turns about Y should map +X to -X, got %v", dir)
	}
	if l := doc.Nodes[2].WorldRotation.Length(); math32.Abs(l-1) > epsilon {
		t.Errorf("world rotation not unit: %v", l)
	}
}

func TestResolveInstances(t *testing.T) {
	doc, sc := chain()
	doc.Nodes[1].Instances = []scene.Instance{
		{Translation: [3]float32{0, 1, 0}, Rotation: [4]float32{0, 0, 0, 1}, Scale: [3]float32{1, 1, 1}},
		{Translation: [3]float32{0, 0, 1}, Rotation: [4]float32{0, 0, 0, 1}, Scale: [3]float32{1, 1, 1}},
	}
	o, _ := Build(doc, sc)
	o.Resolve(doc)

	iw := doc.Nodes[1].InstanceWorld
	if len(iw) != 2 {
		t.Fatalf("instance count = %d", len(iw))
	}
	if !near(iw[0].Translation().Array(), [3]float32{2, 1, 0}) || !near(iw[1].Translation().Array(), [3]float32{2, 0, 1}) {
		t.Errorf("instance worlds = %v, %v", iw[0].Translation(), iw[1].Translation())
	}
}

func TestResolvePhysicsOverride(t *testing.T) {
	doc, sc := chain()
	o, _ := Build(doc, sc)
	o.Resolve(doc)

	body := doc.Nodes[1]
	body.PhysicsTransform = math.Translate(10, 0, 0)
	body.SimulationOwned = true
	o.ResolveSubtree(doc, 1)

	if got := body.World.Translation(); !near(got.Array(), [3]float32{10, 0, 0}) {
		t.Errorf("simulated body world = %v", got)
	}
	if got := doc.Nodes[2].World.Translation(); !near(got.Array(), [3]float32{11, 0, 0}) {
		t.Errorf("child of simulated body = %v, want parented off physics transform", got)
	}
	if got := doc.Nodes[0].World.Translation(); !near(got.Array(), [3]float32{1, 0, 0}) {
		t.Errorf("root should be untouched, got %v", got)
	}

	// A full resolve keeps the physics transform authoritative.
	doc.Nodes[1].Translation.Animate([3]float32{4, 0, 0})
	o.Resolve(doc)
	if got := doc.Nodes[2].World.Translation(); !near(got.Array(), [3]float32{11, 0, 0}) {
		t.Errorf("child after full resolve = %v", got)
	}
}

func TestResolveMatrixNodeRotation(t *testing.T) {
	doc, sc := chain()
	q := math.QuatFromAxisAngle(math.Vec3{Y: 1}, math32.Pi/2)
	m := math.FromTRS([3]float32{1, 0, 0}, q.Array(), [3]float32{2, 2, 2})
	doc.Nodes[1].Matrix = &m
	o, _ := Build(doc, sc)
	o.Resolve(doc)

	for _, idx := range []int{1, 2} {
		dir := doc.Nodes[idx].WorldRotation.Rotate(math.Vec3{X: 1})
		if !near(dir.Array(), [3]float32{0, 0, -1}) {
			t.Errorf("node %d: +X maps to %v, want (0, 0, -1)", idx, dir)
		}
	}
}

func TestResolvePhysicsRotation(t *testing.T) {
	doc, sc := chain()
	o, _ := Build(doc, sc)
	o.Resolve(doc)

	q := math.QuatFromAxisAngle(math.Vec3{Y: 1}, math32.Pi/2)
	body := doc.Nodes[1]
	body.PhysicsTransform = math.FromTRS([3]float32{10, 0, 0}, q.Array(), [3]float32{1, 1, 1})
	body.SimulationOwned = true
	o.ResolveSubtree(doc, 1)

	for _, idx := range []int{1, 2} {
		dir := doc.Nodes[idx].WorldRotation.Rotate(math.Vec3{X: 1})
		if !near(dir.Array(), [3]float32{0, 0, -1}) {
			t.Errorf("node %d: +X maps to %v, want the physics rotation", idx, dir)
		}
	}
}
