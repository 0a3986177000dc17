package remote

import (
	"encoding/json"

	"github.com/san-kum/knobs/internal/input"
	"github.com/san-kum/knobs/internal/knob"
)

// Message types
const (
	TypePing        = "ping"
	TypePong        = "pong"
	TypeKnobs       = "knobs"
	TypeValue       = "value"
	TypePointerDown = "pointer_down"
	TypePointerMove = "pointer_move"
	TypePointerUp   = "pointer_up"
	TypeWheel       = "wheel"
	TypeSetValue    = "set_value"
	TypeError       = "error"
)

// Error codes
const (
	ErrInvalidMessage = "INVALID_MESSAGE"
	ErrUnknownKnob    = "UNKNOWN_KNOB"
	ErrInvalidValue   = "INVALID_VALUE"
)

// Message is the envelope of every websocket frame.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type PingPayload struct {
	Timestamp int64 `json:"timestamp"`
}

type PongPayload struct {
	ClientTimestamp int64 `json:"client_timestamp"`
	ServerTimestamp int64 `json:"server_timestamp"`
}

// PointerPayload mirrors input.PointerEvent. Offsets are in surface units.
type PointerPayload struct {
	ID        string  `json:"id"`
	OffsetX   float64 `json:"offset_x"`
	OffsetY   float64 `json:"offset_y"`
	MovementY float64 `json:"movement_y"`
	Buttons   uint8   `json:"buttons"`
}

type WheelPayload struct {
	ID       string  `json:"id"`
	DeltaY   float64 `json:"delta_y"`
	Modifier bool    `json:"modifier"`
}

// SetValuePayload carries a typed-in value, parsed server side.
type SetValuePayload struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

type ValuePayload struct {
	ID    string  `json:"id"`
	Value float64 `json:"value"`
	Angle float64 `json:"angle"`
}

// KnobInfo describes one knob in the snapshot sent on connect.
type KnobInfo struct {
	ID       string       `json:"id"`
	Hint     string       `json:"hint,omitempty"`
	Unit     string       `json:"unit,omitempty"`
	Variant  knob.Variant `json:"variant"`
	Min      float64      `json:"min"`
	Max      float64      `json:"max"`
	Step     float64      `json:"step"`
	Value    float64      `json:"value"`
	Angle    float64      `json:"angle"`
	MinAngle float64      `json:"min_angle"`
	MaxAngle float64      `json:"max_angle"`
	Width    int          `json:"width"`
	Height   int          `json:"height"`
	Style    knob.Style   `json:"style"`
}

type KnobsPayload struct {
	Knobs []KnobInfo `json:"knobs"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewMessage creates a new message with the given type and payload
func NewMessage(msgType string, payload any) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:    msgType,
		Payload: data,
	}, nil
}

// ParsePayload unmarshals the payload into the given struct
func (m *Message) ParsePayload(v any) error {
	return json.Unmarshal(m.Payload, v)
}

// Info snapshots k.
func Info(k *knob.Knob) KnobInfo {
	size := k.Size()
	return KnobInfo{
		ID:       k.ID(),
		Hint:     k.Hint(),
		Unit:     k.Unit(),
		Variant:  k.Variant(),
		Min:      k.Min(),
		Max:      k.Max(),
		Step:     k.Step(),
		Value:    k.Value(),
		Angle:    k.Angle(),
		MinAngle: k.MinAngle(),
		MaxAngle: k.MaxAngle(),
		Width:    size.Width,
		Height:   size.Height,
		Style:    k.Style(),
	}
}

// Event converts a pointer or wheel message into an input event. ok is
// false for other message types.
func (m *Message) Event() (ev input.Event, ok bool, err error) {
	switch m.Type {
	case TypePointerDown, TypePointerMove, TypePointerUp:
		var p PointerPayload
		if err := m.ParsePayload(&p); err != nil {
			return ev, false, err
		}
		ev.Pointer = input.PointerEvent{
			Target:    input.Target{ID: p.ID, Type: knob.MarkerType},
			OffsetX:   p.OffsetX,
			OffsetY:   p.OffsetY,
			MovementY: p.MovementY,
			Buttons:   input.Buttons(p.Buttons),
		}
		switch m.Type {
		case TypePointerDown:
			ev.Kind = input.KindPointerDown
		case TypePointerMove:
			ev.Kind = input.KindPointerMove
		default:
			ev.Kind = input.KindPointerUp
		}
		return ev, true, nil
	case TypeWheel:
		var w WheelPayload
		if err := m.ParsePayload(&w); err != nil {
			return ev, false, err
		}
		ev.Kind = input.KindWheel
		ev.Wheel = input.WheelEvent{
			Target:   input.Target{ID: w.ID, Type: knob.MarkerType},
			DeltaY:   w.DeltaY,
			Modifier: w.Modifier,
		}
		return ev, true, nil
	}
	return ev, false, nil
}
