// Package animation plays glTF keyframe animations into animatable scene properties.
package animation

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/gltf-viewer/internal/scene"
	"github.com/Faultbox/gltf-viewer/pkg/math"
)

// Interpolator samples one channel. It keeps a keyframe cursor between calls so
// that monotonic playback seeks in amortized constant time.
type Interpolator struct {
	prevKey int
	prevT   float32
	out     []float32
}

// Reset rewinds the cursor.
func (ip *Interpolator) Reset() {
	ip.prevKey = 0
	ip.prevT = 0
}

// Interpolate samples s at time t. Time outside [0, maxTime] wraps around and is
// then clamped to the track. Rotation tracks use spherical interpolation and
// normalized results. The returned slice is reused by the next call. The bool is
// false when the track cannot produce a value.
func (ip *Interpolator) Interpolate(s *scene.Sampler, t float32, stride int, maxTime float32, rotation, reverse bool) ([]float32, bool) {
	n := len(s.Input)
	if n == 0 || stride <= 0 || math32.IsNaN(t) || math32.IsInf(t, 0) {
		return nil, false
	}
	width := stride
	if s.Interpolation == scene.CubicSpline {
		width = stride * 3
	}
	if len(s.Output) < n*width {
		return nil, false
	}
	if rotation && stride != 4 {
		return nil, false
	}

	if cap(ip.out) < stride {
		ip.out = make([]float32, stride)
	}
	out := ip.out[:stride]

	if n == 1 {
		copy(out, keyValue(s, 0, stride))
		return out, true
	}

	t = wrap(t, maxTime)
	t = math32.Max(s.Input[0], math32.Min(t, s.Input[n-1]))

	lo, hi := ip.seek(s.Input, t, reverse)
	delta := s.Input[hi] - s.Input[lo]
	var tn float32
	if delta > 0 {
		tn = (t - s.Input[lo]) / delta
	}

	switch s.Interpolation {
	case scene.Step:
		if tn >= 1 {
			copy(out, keyValue(s, hi, stride))
		} else {
			copy(out, keyValue(s, lo, stride))
		}
		return out, true
	case scene.CubicSpline:
		cubicSpline(out, s.Output, lo, hi, stride, delta, tn)
		if rotation {
			q := math.Quat{X: out[0], Y: out[1], Z: out[2], W: out[3]}.Normalize()
			out[0], out[1], out[2], out[3] = q.X, q.Y, q.Z, q.W
		}
		return out, true
	default:
		a, b := keyValue(s, lo, stride), keyValue(s, hi, stride)
		switch {
		case tn <= 0:
			copy(out, a)
			return out, true
		case tn >= 1:
			copy(out, b)
			return out, true
		}
		if rotation {
			q0 := math.Quat{X: a[0], Y: a[1], Z: a[2], W: a[3]}
			q1 := math.Quat{X: b[0], Y: b[1], Z: b[2], W: b[3]}
			q := q0.Slerp(q1, tn)
			out[0], out[1], out[2], out[3] = q.X, q.Y, q.Z, q.W
			return out, true
		}
		for i := range out {
			out[i] = a[i]*(1-tn) + b[i]*tn
		}
		return out, true
	}
}

// seek finds the keyframes bracketing t, starting from the cursor. A change of
// direction relative to the previous call restarts the scan from the track end.
func (ip *Interpolator) seek(input []float32, t float32, reverse bool) (lo, hi int) {
	n := len(input)
	if ip.prevKey >= n {
		ip.prevKey = 0
	}

	if !reverse {
		if t < ip.prevT {
			ip.prevKey = 0
		}
		ip.prevT = t
		hi = n - 1
		for i := ip.prevKey; i < n; i++ {
			if t <= input[i] {
				hi = max(i, 1)
				break
			}
		}
		ip.prevKey = hi - 1
		return hi - 1, hi
	}

	if t > ip.prevT || ip.prevKey == 0 {
		ip.prevKey = n - 1
	}
	ip.prevT = t
	lo = 0
	for i := ip.prevKey; i >= 0; i-- {
		if t >= input[i] {
			lo = min(i, n-2)
			break
		}
	}
	ip.prevKey = lo + 1
	return lo, lo + 1
}

// wrap maps t into [0, maxTime]. Times already inside the range are unchanged so
// that t == maxTime samples the last keyframe.
func wrap(t, maxTime float32) float32 {
	if maxTime <= 0 || (t >= 0 && t <= maxTime) {
		return t
	}
	t = math32.Mod(t, maxTime)
	if t < 0 {
		t += maxTime
	}
	return t
}

// keyValue returns the value of key k. Cubic spline outputs store in-tangent,
// value and out-tangent per key.
func keyValue(s *scene.Sampler, k, stride int) []float32 {
	if s.Interpolation == scene.CubicSpline {
		base := k*stride*3 + stride
		return s.Output[base : base+stride]
	}
	return s.Output[k*stride : k*stride+stride]
}

// cubicSpline evaluates the glTF Hermite spline between keys lo and hi.
func cubicSpline(out, output []float32, lo, hi, stride int, delta, t float32) {
	prev := lo * stride * 3
	next := hi * stride * 3
	t2 := t * t
	t3 := t2 * t

	for i := range stride {
		v0 := output[prev+stride+i]
		b := delta * output[prev+2*stride+i]
		v1 := output[next+stride+i]
		a := delta * output[next+i]
		out[i] = (2*t3-3*t2+1)*v0 + (t3-2*t2+t)*b + (-2*t3+3*t2)*v1 + (t3-t2)*a
	}
}
