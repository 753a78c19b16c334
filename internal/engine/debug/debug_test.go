package debug

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chewxy/math32"
	"golang.org/x/image/webp"

	"github.com/Faultbox/gltf-viewer/pkg/math"
)

func TestAppendBox(t *testing.T) {
	lines := AppendBox(nil, math.Vec3{X: -1, Y: -1, Z: -1}, math.Vec3{X: 1, Y: 1, Z: 1}, math.Translate(10, 0, 0))
	if len(lines) != BoxLineFloats {
		t.Fatalf("len = %d, want %d", len(lines), BoxLineFloats)
	}
	for i := 0; i < len(lines); i += 3 {
		x := lines[i]
		if x != 9 && x != 11 {
			t.Fatalf("endpoint %d x = %v, want 9 or 11", i/3, x)
		}
	}

	// Every edge is axis aligned with length 2.
	for i := 0; i < len(lines); i += 6 {
		dx := lines[i+3] - lines[i]
		dy := lines[i+4] - lines[i+1]
		dz := lines[i+5] - lines[i+2]
		if l := math32.Sqrt(dx*dx + dy*dy + dz*dz); math32.Abs(l-2) > 1e-5 {
			t.Errorf("edge %d length = %v", i/6, l)
		}
	}
}

func TestAppendCircle(t *testing.T) {
	lines := AppendCircle(nil, 2, 1, 16, math.Identity())
	if len(lines) != 16*6 {
		t.Fatalf("len = %d", len(lines))
	}
	for i := 0; i < len(lines); i += 3 {
		r := math32.Sqrt(lines[i]*lines[i] + lines[i+2]*lines[i+2])
		if math32.Abs(r-2) > 1e-4 || lines[i+1] != 1 {
			t.Fatalf("point %d off circle: %v", i/3, lines[i:i+3])
		}
	}

	if got := len(AppendSphere(nil, 1, 8, math.Identity())); got != 3*8*6 {
		t.Errorf("sphere floats = %d", got)
	}
	if got := len(AppendCylinder(nil, 1, 2, 8, math.Identity())); got != 2*8*6+4*6 {
		t.Errorf("cylinder floats = %d", got)
	}
}

func TestCaptureSavePixels(t *testing.T) {
	dir := t.TempDir()
	c := NewCapture(dir, "frame", "png")
	c.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	// 1x2 image: bottom row red, top row blue (GL order).
	pixels := []byte{255, 0, 0, 255, 0, 0, 255, 255}
	name, err := c.SavePixels(pixels, 1, 2)
	if err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(name)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if r, _, b, _ := img.At(0, 0).RGBA(); b == 0 || r != 0 {
		t.Error("top row should be blue after flip")
	}

	if _, err := c.SavePixels(pixels[:4], 1, 2); err == nil {
		t.Error("expected size mismatch error")
	}
	if next := c.Filename(); next == name {
		t.Error("capture counter should advance")
	}
}

func TestCaptureWebP(t *testing.T) {
	c := NewCapture(t.TempDir(), "frame", "webp")
	pixels := []byte{255, 0, 0, 255, 0, 0, 255, 255}
	name, err := c.SavePixels(pixels, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Ext(name) != ".webp" {
		t.Fatalf("capture name = %q", name)
	}

	f, err := os.Open(name)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := webp.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 1 || b.Dy() != 2 {
		t.Errorf("bounds = %v", b)
	}
}
