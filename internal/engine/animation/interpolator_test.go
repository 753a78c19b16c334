package animation

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/Faultbox/gltf-viewer/internal/scene"
)

const epsilon = 1e-5

func approx(a, b []float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math32.Abs(a[i]-b[i]) > epsilon {
			return false
		}
	}
	return true
}

func sample(s *scene.Sampler, t float32, stride int) []float32 {
	var ip Interpolator
	v, ok := ip.Interpolate(s, t, stride, s.MaxTime(), false, false)
	if !ok {
		return nil
	}
	return append([]float32(nil), v...)
}

func scalarTracks() map[string]*scene.Sampler {
	return map[string]*scene.Sampler{
		"STEP": {
			Input: []float32{0, 1, 2}, Output: []float32{1, 3, 7},
			Interpolation: scene.Step,
		},
		"LINEAR": {
			Input: []float32{0, 1, 2}, Output: []float32{1, 3, 7},
			Interpolation: scene.Linear,
		},
		"CUBICSPLINE": {
			Input: []float32{0, 1, 2},
			// in-tangent, value, out-tangent per key
			Output:        []float32{0, 1, 2, 1, 3, -1, 5, 7, 0},
			Interpolation: scene.CubicSpline,
		},
	}
}

func TestInterpolateBoundaries(t *testing.T) {
	for name, s := range scalarTracks() {
		t.Run(name, func(t *testing.T) {
			if got := sample(s, 0, 1); len(got) != 1 || got[0] != 1 {
				t.Errorf("t=0: got %v, want [1]", got)
			}
			if got := sample(s, 2, 1); len(got) != 1 || got[0] != 7 {
				t.Errorf("t=maxTime: got %v, want [7]", got)
			}
		})
	}
}

func TestInterpolateRotationBoundariesKeepSign(t *testing.T) {
	h := math32.Sqrt(0.5)
	// The keys lie in opposite hemispheres, so slerp takes the flipped path
	// between them but must still return the authored keys at the ends.
	s := &scene.Sampler{
		Input:  []float32{0, 2},
		Output: []float32{0, 0, 0, 1, 0, h, 0, -h},
	}
	tests := []struct {
		name string
		t    float32
		want []float32
	}{
		{"first key", 0, []float32{0, 0, 0, 1}},
		{"last key", 2, []float32{0, h, 0, -h}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ip Interpolator
			got, ok := ip.Interpolate(s, tt.t, 4, s.MaxTime(), true, false)
			if !ok || !approx(got, tt.want) {
				t.Errorf("t=%v: got %v, want %v", tt.t, got, tt.want)
			}
		})
	}
}

func TestInterpolateLooping(t *testing.T) {
	for name, s := range scalarTracks() {
		t.Run(name, func(t *testing.T) {
			for _, eps := range []float32{0.25, 0.5, 0.75} {
				want := sample(s, eps, 1)
				got := sample(s, s.MaxTime()+eps, 1)
				if !approx(got, want) {
					t.Errorf("eps=%v: wrapped %v, want %v", eps, got, want)
				}
			}
		})
	}
}

func TestInterpolateModes(t *testing.T) {
	tracks := scalarTracks()
	tests := []struct {
		mode string
		t    float32
		want float32
	}{
		{"STEP", 0.5, 1},
		{"STEP", 1.5, 3},
		{"STEP", 1, 3},
		{"LINEAR", 0.5, 2},
		{"LINEAR", 1.5, 5},
		// h00*v0 + h10*b*dt + h01*v1 + h11*a*dt at t=0.5: 0.5 + 0.125*2 + 0.5*3 - 0.125*1
		{"CUBICSPLINE", 0.5, 2.125},
	}
	for _, tt := range tests {
		got := sample(tracks[tt.mode], tt.t, 1)
		if !approx(got, []float32{tt.want}) {
			t.Errorf("%s at %v = %v, want %v", tt.mode, tt.t, got, tt.want)
		}
	}
}

func TestInterpolateNegativeTime(t *testing.T) {
	s := scalarTracks()["LINEAR"]
	if got, want := sample(s, -0.5, 1), sample(s, 1.5, 1); !approx(got, want) {
		t.Errorf("t=-0.5 = %v, want %v", got, want)
	}
}

func TestInterpolateClampsShortTrack(t *testing.T) {
	s := &scene.Sampler{Input: []float32{0.5, 1}, Output: []float32{2, 4}}
	var ip Interpolator
	v, ok := ip.Interpolate(s, 0.1, 1, 3, false, false)
	if !ok || v[0] != 2 {
		t.Errorf("before first key = %v, want [2]", v)
	}
	v, _ = ip.Interpolate(s, 2.5, 1, 3, false, false)
	if v[0] != 4 {
		t.Errorf("after last key = %v, want [4]", v)
	}
}

func TestInterpolateCursor(t *testing.T) {
	s := &scene.Sampler{
		Input:  []float32{0, 1, 2, 3, 4},
		Output: []float32{0, 10, 20, 30, 40},
	}

	var ip Interpolator
	times := []float32{0.5, 1.5, 3.5, 0.5, 2.5, 2.5, 1.0}
	for _, tm := range times {
		v, ok := ip.Interpolate(s, tm, 1, 4, false, false)
		if !ok || math32.Abs(v[0]-tm*10) > epsilon {
			t.Errorf("forward t=%v: got %v, want %v", tm, v, tm*10)
		}
	}

	var rev Interpolator
	for _, tm := range []float32{3.5, 2.5, 0.5, 3.0, 1.5} {
		v, ok := rev.Interpolate(s, tm, 1, 4, false, true)
		if !ok || math32.Abs(v[0]-tm*10) > epsilon {
			t.Errorf("reverse t=%v: got %v, want %v", tm, v, tm*10)
		}
	}
}

func TestInterpolateSingleKey(t *testing.T) {
	s := &scene.Sampler{Input: []float32{0.7}, Output: []float32{1, 2, 3}}
	if got := sample(s, 12, 3); !approx(got, []float32{1, 2, 3}) {
		t.Errorf("got %v", got)
	}

	cubic := &scene.Sampler{
		Input:         []float32{0},
		Output:        []float32{9, 9, 4, 5, 9, 9},
		Interpolation: scene.CubicSpline,
	}
	if got := sample(cubic, 1, 2); !approx(got, []float32{4, 5}) {
		t.Errorf("cubic single key = %v, want [4 5]", got)
	}
}

func TestInterpolateNoValue(t *testing.T) {
	tests := []struct {
		name string
		s    *scene.Sampler
		t    float32
	}{
		{"empty", &scene.Sampler{}, 0},
		{"short output", &scene.Sampler{Input: []float32{0, 1}, Output: []float32{1}}, 0.5},
		{"NaN time", &scene.Sampler{Input: []float32{0, 1}, Output: []float32{0, 1}}, math32.NaN()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ip Interpolator
			if _, ok := ip.Interpolate(tt.s, tt.t, 1, 1, false, false); ok {
				t.Error("expected no value")
			}
		})
	}
}

func TestInterpolateRotation(t *testing.T) {
	h := math32.Sqrt(0.5)
	linear := &scene.Sampler{
		Input:  []float32{0, 1},
		Output: []float32{0, 0, 0, 1, 0, h, 0, h},
	}
	cubic := &scene.Sampler{
		Input: []float32{0, 1},
		Output: []float32{
			0, 0, 0, 0, 0, 0, 0, 1, 0, 1, 0, 0,
			0, 1, 0, 0, 0, h, 0, h, 0, 0, 0, 0,
		},
		Interpolation: scene.CubicSpline,
	}

	for name, s := range map[string]*scene.Sampler{"LINEAR": linear, "CUBICSPLINE": cubic} {
		t.Run(name, func(t *testing.T) {
			var ip Interpolator
			start, _ := ip.Interpolate(s, 0, 4, 1, true, false)
			if !approx(start, []float32{0, 0, 0, 1}) {
				t.Errorf("t=0 = %v", start)
			}
			for _, tm := range []float32{0.1, 0.33, 0.5, 0.9} {
				q, ok := ip.Interpolate(s, tm, 4, 1, true, false)
				if !ok {
					t.Fatalf("no value at %v", tm)
				}
				n := math32.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
				if math32.Abs(n-1) > epsilon {
					t.Errorf("t=%v: |q| = %v", tm, n)
				}
			}
			end, _ := ip.Interpolate(s, 1, 4, 1, true, false)
			if !approx(end, []float32{0, h, 0, h}) {
				t.Errorf("t=1 = %v", end)
			}
		})
	}

	var ip Interpolator
	if _, ok := ip.Interpolate(linear, 0.5, 3, 1, true, false); ok {
		t.Error("rotation with stride 3 should produce no value")
	}
}
