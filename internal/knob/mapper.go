package knob

import "math"

// FullCircle is the angular extent of a complete turn in degrees.
const FullCircle = 360.0

// TrackAngles returns the angular bounds of a track occupying fraction f of a
// full circle. The gap is split evenly around angle 0.
func TrackAngles(f float64) (minAngle, maxAngle float64) {
	gap := FullCircle - FullCircle*f
	minAngle = gap / 2
	maxAngle = FullCircle - minAngle
	return minAngle, maxAngle
}

// ValueToAngle maps value onto the track. min maps to maxAngle and max maps
// to minAngle.
func ValueToAngle(value, min, max, minAngle, maxAngle float64) float64 {
	inc, _ := Increments(min, max, 0, minAngle, maxAngle)
	return maxAngle - (value-min)*inc
}

// AngleToValue is the inverse of ValueToAngle.
func AngleToValue(angle, min, max, minAngle, maxAngle float64) float64 {
	mirrored := FullCircle - angle
	return ((mirrored-minAngle)/(maxAngle-minAngle))*(max-min) + min
}

// Increments returns the degrees per unit of value and the degrees covered by
// one step.
func Increments(min, max, step, minAngle, maxAngle float64) (angleIncrement, angleStepIncrement float64) {
	angleIncrement = (maxAngle - minAngle) / (max - min)
	return angleIncrement, angleIncrement * step
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
