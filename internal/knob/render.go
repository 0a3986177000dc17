package knob

// MarkerType tags surfaces that belong to a knob. Input listeners only act on
// targets carrying it.
const MarkerType = "knob-object"

// Mode is the presentation variant requested from a renderer.
type Mode int

const (
	// ModeSettled is drawn at rest and after programmatic changes.
	ModeSettled Mode = iota
	// ModeMoving is drawn while a gesture changes the value.
	ModeMoving
)

func (m Mode) String() string {
	if m == ModeMoving {
		return "moving"
	}
	return "settled"
}

// Size is a surface extent in the surface's own units.
type Size struct {
	Width, Height int
}

// Frame is everything a renderer needs to draw one knob.
type Frame struct {
	ID       string
	Mode     Mode
	Angle    float64
	Value    float64
	Min, Max float64
	MinAngle float64
	MaxAngle float64
	Unit     string
	Variant  Variant
	Style    Style
	Size     Size
}

// Renderer draws a knob. It is called after every mutation and holds no knob
// state of its own from the knob's point of view.
type Renderer interface {
	Draw(f Frame)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(f Frame)

func (fn RendererFunc) Draw(f Frame) { fn(f) }

// Surface describes the drawing area created for a knob on attach.
type Surface struct {
	ID     string
	Class  string
	Title  string
	Width  int
	Height int
	Type   string
}

// IsKnob reports whether s carries the knob marker.
func (s *Surface) IsKnob() bool {
	return s != nil && s.Type == MarkerType
}

// Container hosts knob surfaces and returns the renderer bound to each one.
type Container interface {
	Mount(s *Surface) Renderer
}
