package input

import (
	"time"

	"github.com/san-kum/knobs/internal/knob"
)

// Buttons is a bit set of held pointer buttons.
type Buttons uint8

const (
	ButtonPrimary Buttons = 1 << iota
	ButtonSecondary
	ButtonMiddle
)

// Target identifies the element under the pointer.
type Target struct {
	ID   string
	Type string
}

// TargetOf returns the target for a knob surface.
func TargetOf(s *knob.Surface) Target {
	if s == nil {
		return Target{}
	}
	return Target{ID: s.ID, Type: s.Type}
}

// IsKnob reports whether t carries the knob marker.
func (t Target) IsKnob() bool { return t.Type == knob.MarkerType }

// PointerEvent is a pointer-down, pointer-move or pointer-up.
type PointerEvent struct {
	Target  Target
	OffsetX float64 // position relative to the target surface
	OffsetY float64
	// MovementY is the vertical distance since the previous pointer event,
	// positive downwards.
	MovementY float64
	Buttons   Buttons
	Time      time.Time
}

// WheelEvent is one wheel tick.
type WheelEvent struct {
	Target   Target
	DeltaY   float64 // negative when scrolling up
	Modifier bool    // fine control, usually ctrl
	Time     time.Time
}

// Kind enumerates the listener entry points.
type Kind int

const (
	KindPointerDown Kind = iota
	KindPointerMove
	KindPointerUp
	KindWheel
)

func (k Kind) String() string {
	switch k {
	case KindPointerDown:
		return "pointer_down"
	case KindPointerMove:
		return "pointer_move"
	case KindPointerUp:
		return "pointer_up"
	case KindWheel:
		return "wheel"
	}
	return "unknown"
}

// Event is a tagged union of the listener inputs, for transport over
// channels.
type Event struct {
	Kind    Kind
	Pointer PointerEvent
	Wheel   WheelEvent
}

// Listener receives events from a Source.
type Listener interface {
	PointerDown(ev PointerEvent)
	PointerMove(ev PointerEvent)
	PointerUp(ev PointerEvent)
	Wheel(ev WheelEvent)
}

// Source delivers events to one subscribed listener until the returned
// cancel function is called.
type Source interface {
	Subscribe(l Listener) (cancel func())
}

// Deliver calls the listener entry point matching ev.Kind.
func Deliver(l Listener, ev Event) {
	switch ev.Kind {
	case KindPointerDown:
		l.PointerDown(ev.Pointer)
	case KindPointerMove:
		l.PointerMove(ev.Pointer)
	case KindPointerUp:
		l.PointerUp(ev.Pointer)
	case KindWheel:
		l.Wheel(ev.Wheel)
	}
}
