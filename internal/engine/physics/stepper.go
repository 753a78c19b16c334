package physics

import "time"

// Stepper decouples simulation steps from the frame rate. Elapsed frame time is
// accumulated and consumed in fixed steps. The first Warmup frames produce no
// steps so the backend can finish initializing.
type Stepper struct {
	Step        time.Duration
	MaxSubSteps int
	Warmup      int

	acc    time.Duration
	frames int
}

// NewStepper creates a stepper.
func NewStepper(step time.Duration, maxSubSteps, warmup int) *Stepper {
	return &Stepper{Step: step, MaxSubSteps: max(maxSubSteps, 1), Warmup: warmup}
}

// Advance accounts one frame of duration dt and returns the number of fixed steps
// to simulate. Time beyond MaxSubSteps steps is dropped.
func (s *Stepper) Advance(dt time.Duration) int {
	if s.frames < s.Warmup {
		s.frames++
		return 0
	}
	if s.Step <= 0 || dt <= 0 {
		return 0
	}

	s.acc += dt
	n := int(s.acc / s.Step)
	if n > s.MaxSubSteps {
		n = s.MaxSubSteps
		s.acc = 0
		return n
	}
	s.acc -= time.Duration(n) * s.Step
	return n
}

// StepSeconds returns the fixed step in seconds.
func (s *Stepper) StepSeconds() float32 {
	return float32(s.Step.Seconds())
}

// Reset restarts warm-up and drops accumulated time.
func (s *Stepper) Reset() {
	s.acc = 0
	s.frames = 0
}
