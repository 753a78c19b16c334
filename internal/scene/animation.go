package scene

// Interpolation is a keyframe sampler interpolation mode.
type Interpolation int

const (
	Linear Interpolation = iota
	Step
	CubicSpline
)

func (i Interpolation) String() string {
	switch i {
	case Step:
		return "STEP"
	case CubicSpline:
		return "CUBICSPLINE"
	default:
		return "LINEAR"
	}
}

// Sampler is a keyframe curve. Output holds stride floats per key, or three
// times that for cubic splines (in-tangent, value, out-tangent).
type Sampler struct {
	Input         []float32
	Output        []float32
	Interpolation Interpolation
}

// MaxTime returns the last input timestamp, or 0 for an empty track.
func (s *Sampler) MaxTime() float32 {
	if len(s.Input) == 0 {
		return 0
	}
	return s.Input[len(s.Input)-1]
}

// Channel binds a sampler to an animation pointer such as /nodes/0/translation.
type Channel struct {
	Sampler int
	Pointer string
}

// Animation is the static description of a glTF animation. Playback state lives
// in the animation engine.
type Animation struct {
	Name     string
	Channels []Channel
	Samplers []Sampler
}

// Texture references an image through a sampler.
type Texture struct {
	Name    string
	Source  int
	Sampler TextureSampler
}

// TextureSampler holds glTF sampler filter and wrap enums. Zero filters mean
// the asset left them to the implementation.
type TextureSampler struct {
	MagFilter int
	MinFilter int
	WrapS     int
	WrapT     int
}

// Image is decoded RGBA8 pixel data, top row first.
type Image struct {
	Name          string
	Width, Height int
	Pixels        []byte

	// GPU is backend-owned upload state.
	GPU any
}
