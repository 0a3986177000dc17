// Package paint computes the shapes of a knob frame independently of the
// surface that draws them.
package paint

import (
	"math"

	"github.com/san-kum/knobs/internal/knob"
)

const (
	DefaultMoveSizeFactor = 80.0
	DefaultUpSizeFactor   = 70.0
	MaxRings              = 20
)

type Point struct{ X, Y float64 }

type Circle struct {
	Center Point
	Radius float64
}

// Arc runs from From to To in knob angles.
type Arc struct {
	From, To float64
	Radius   float64
}

// Geometry is the resolved layout of one frame in surface units.
type Geometry struct {
	Center    Point
	Radius    float64
	LineWidth float64

	Track     Arc
	Indicator Arc
	// IndicatorFill is the gradient selected for the indicator arc.
	IndicatorFill knob.Gradient

	Wheel   Circle
	Inner   Circle
	Pointer Point
	// Dot is the position marker of the gradient variant. Its radius is zero
	// for rings.
	Dot   Circle
	Rings []Circle
}

// At returns the point at angle degrees and distance r from c. Angle 0
// points down and angles grow towards the right.
func At(c Point, r, angle float64) Point {
	rad := angle * math.Pi / 180
	return Point{X: c.X + r*math.Sin(rad), Y: c.Y + r*math.Cos(rad)}
}

// Layout resolves f inside a width x height area.
func Layout(f knob.Frame, width, height float64) Geometry {
	side := math.Min(width, height)
	diameter := side - side*0.2
	radius := diameter / 2
	g := Geometry{
		Center:    Point{X: width / 2, Y: height / 2},
		Radius:    radius,
		LineWidth: diameter / 15,
		Track:     Arc{From: f.MinAngle, To: f.MaxAngle, Radius: radius},
	}

	angle := f.Angle
	if math.IsNaN(angle) || math.IsInf(angle, 0) {
		angle = 0
	}
	g.Indicator, g.IndicatorFill = indicator(f, angle, radius)

	factor := sizeFactor(f)
	wheel := radius * factor / 100
	g.Wheel = Circle{Center: g.Center, Radius: wheel}

	switch f.Variant {
	case knob.VariantGradient:
		g.Inner = Circle{Center: g.Center, Radius: wheel * 0.9}
		g.Dot = Circle{Center: At(g.Center, wheel-wheel/3, angle), Radius: g.Inner.Radius / 6}
		g.Pointer = g.Dot.Center
	default:
		g.Inner = Circle{Center: g.Center, Radius: wheel * 0.85}
		g.Pointer = At(g.Center, radius, angle)
	}

	if f.Mode == knob.ModeMoving {
		g.Rings = rings(f.Style.Rings, g.Center, diameter, radius, angle)
	}
	return g
}

func indicator(f knob.Frame, angle, radius float64) (Arc, knob.Gradient) {
	if f.Style.IndicatorType != knob.IndicatorDouble {
		return Arc{From: f.MaxAngle, To: angle, Radius: radius}, f.Style.IndicatorFill
	}
	fill := f.Style.IndicatorDoubleFill
	if angle >= 180 {
		fill = f.Style.IndicatorFill
	}
	return Arc{From: 180, To: angle, Radius: radius}, fill
}

func sizeFactor(f knob.Frame) float64 {
	if f.Mode == knob.ModeMoving {
		if f.Style.MoveSizeFactor > 0 {
			return f.Style.MoveSizeFactor
		}
		return DefaultMoveSizeFactor
	}
	if f.Style.UpSizeFactor > 0 {
		return f.Style.UpSizeFactor
	}
	return DefaultUpSizeFactor
}

func rings(n int, c Point, diameter, radius, angle float64) []Circle {
	if n <= 0 {
		return nil
	}
	n = min(n, MaxRings)
	size := math.Pi * diameter / (float64(max(n, 4)) * 4) / 2
	distance := 360 / float64(n)
	out := make([]Circle, n)
	for i := range out {
		out[i] = Circle{Center: At(c, radius+size, angle+float64(i)*distance), Radius: size / 2}
	}
	return out
}

// Points samples a at roughly every step degrees, endpoints included.
func (a Arc) Points(c Point, step float64) []Point {
	span := a.To - a.From
	if step <= 0 {
		step = 1
	}
	n := int(math.Ceil(math.Abs(span)/step)) + 1
	pts := make([]Point, n)
	for i := range pts {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		pts[i] = At(c, a.Radius, a.From+span*t)
	}
	return pts
}
