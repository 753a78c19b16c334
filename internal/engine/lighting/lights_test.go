package lighting

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/Faultbox/gltf-viewer/internal/scene"
	"github.com/Faultbox/gltf-viewer/pkg/math"
)

func TestGather(t *testing.T) {
	doc := scene.NewDocument()
	spot := doc.NewLight("spot", scene.Spot)
	spot.Range.RestAt(10)
	doc.NewLight("sun", scene.Directional)

	a := doc.NewNode("a")
	a.Light = 0
	a.World = math.Translate(1, 2, 3)
	// Scaled parent must not skew the direction: only the rotation chain is used.
	a.WorldRotation = math.QuatFromAxisAngle(math.Vec3{Y: 1}, math32.Pi/2)

	b := doc.NewNode("b")
	b.Light = 1
	doc.NewNode("no light")

	buf := NewBuffer()
	if dropped := buf.Gather(doc, []int{0, 1, 2}); dropped != 0 {
		t.Errorf("dropped = %d", dropped)
	}
	if buf.Count() != 2 {
		t.Fatalf("Count = %d, want 2", buf.Count())
	}

	l := buf.Lights[0]
	if l.Position != [3]float32{1, 2, 3} {
		t.Errorf("position = %v", l.Position)
	}
	// -Z rotated a quarter turn about +Y points along -X.
	if math32.Abs(l.Direction[0]+1) > 1e-5 || math32.Abs(l.Direction[2]) > 1e-5 {
		t.Errorf("direction = %v", l.Direction)
	}
	if l.Range != 10 || buf.Lights[1].Range != 0 {
		t.Errorf("ranges = %v, %v", l.Range, buf.Lights[1].Range)
	}

	params := buf.Params()
	if len(params) != MaxLights*5 || params[0] != float32(scene.Spot) {
		t.Errorf("params = %v", params[:5])
	}
	if len(buf.Positions()) != MaxLights*3 || buf.Positions()[1] != 2 {
		t.Error("positions not flattened")
	}
}

func TestGatherLimit(t *testing.T) {
	doc := scene.NewDocument()
	doc.NewLight("l", scene.Point)
	var nodes []int
	for i := 0; i < MaxLights+3; i++ {
		n := doc.NewNode("")
		n.Light = 0
		nodes = append(nodes, i)
	}
	buf := NewBuffer()
	if dropped := buf.Gather(doc, nodes); dropped != 3 {
		t.Errorf("dropped = %d, want 3", dropped)
	}
	if buf.Count() != MaxLights {
		t.Errorf("Count = %d", buf.Count())
	}
}
