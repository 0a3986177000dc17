package gesture

import (
	"math"
	"time"
)

// DragSample is one pointer-move observed while a knob is held.
type DragSample struct {
	Previous  time.Time // zero when there is no earlier sample
	Now       time.Time
	MovementY float64 // screen units, positive downwards
	Step      float64
	StepTime  float64 // milliseconds
}

// WheelSample is one wheel tick over a knob.
type WheelSample struct {
	Previous time.Time
	Now      time.Time
	DeltaY   float64 // negative when scrolling up
	Modifier bool
	Step     float64
	StepTime float64
}

// Result is a translated delta and the timestamp to keep as the next
// previous sample.
type Result struct {
	Delta  float64
	Factor float64
	Sample time.Time
}

// Translator converts gesture samples to value deltas.
type Translator struct{}

// SpeedFactor returns stepTime*step/elapsed, floored at step. A missing
// previous sample or a non-positive elapsed time yields step.
func (Translator) SpeedFactor(previous, now time.Time, step, stepTime float64) float64 {
	if previous.IsZero() {
		return step
	}
	elapsed := float64(now.Sub(previous)) / float64(time.Millisecond)
	if elapsed <= 0 {
		return step
	}
	factor := stepTime * step / elapsed
	if factor < step || math.IsNaN(factor) {
		return step
	}
	return factor
}

// Drag converts vertical pointer movement into a delta. Moving up increases
// the value.
func (t Translator) Drag(s DragSample) Result {
	factor := t.SpeedFactor(s.Previous, s.Now, s.Step, s.StepTime)
	return Result{
		Delta:  factor * s.Step * float64(Direction(s.MovementY)),
		Factor: factor,
		Sample: s.Now,
	}
}

// Wheel converts a wheel tick into a delta. Without the modifier a tick is
// worth exactly one step and the speed factor is ignored; with it the
// speed-shaped amount is used instead.
func (t Translator) Wheel(s WheelSample) Result {
	factor := t.SpeedFactor(s.Previous, s.Now, s.Step, s.StepTime)
	res := Result{Factor: factor, Sample: s.Now}
	if s.Modifier {
		res.Delta = factor * s.Step * float64(Direction(s.DeltaY))
		return res
	}
	res.Delta = s.Step * float64(TickSign(s.DeltaY))
	return res
}

// Direction is +1 for upward movement (negative y), -1 for downward and 0
// when there is no vertical movement.
func Direction(dy float64) int {
	switch {
	case dy < 0:
		return 1
	case dy > 0:
		return -1
	}
	return 0
}

// TickSign is +1 for a wheel scrolled up and -1 otherwise, zero included.
func TickSign(deltaY float64) int {
	if deltaY < 0 {
		return 1
	}
	return -1
}

// PointerAngle returns the knob angle under the point (x, y) of a
// width x height surface: 0 straight down, 90 right, 180 up, 270 left,
// normalized to [0, 360). The exact center maps to 0.
func PointerAngle(x, y, width, height float64) float64 {
	dx := x - width/2
	dy := y - height/2
	if dx == 0 && dy == 0 {
		return 0
	}
	deg := math.Atan2(dx, dy) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg -= 360
	}
	return deg
}
