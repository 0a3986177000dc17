package knob

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/knobs/internal/gesture"
)

const (
	DefaultMin      = 0.0
	DefaultMax      = 100.0
	DefaultStep     = 1.0
	DefaultStepTime = 100.0
	DefaultTrack    = 0.75
	DefaultWidth    = 100
	DefaultHeight   = 100
)

// Phase is the transient gesture state of a knob. Dragging and Wheel only
// hold while a single input event is being processed.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDragging
	PhaseWheel
)

func (p Phase) String() string {
	switch p {
	case PhaseDragging:
		return "dragging"
	case PhaseWheel:
		return "wheel"
	}
	return "idle"
}

// Config holds construction parameters for a Knob.
type Config struct {
	ID            string
	Variant       Variant
	Style         Style
	TrackFraction float64
	Width         int
	Height        int
	Min           float64
	Max           float64
	Value         float64
	Step          float64
	StepTime      float64 // milliseconds per step of motion at reference speed
	Unit          string
	Hint          string
	OnChange      func(k *Knob)
}

// DefaultConfig returns the defaults of a 0..100 knob with a three-quarter
// track.
func DefaultConfig(id string) Config {
	return Config{
		ID:            id,
		Variant:       VariantRing,
		TrackFraction: DefaultTrack,
		Width:         DefaultWidth,
		Height:        DefaultHeight,
		Min:           DefaultMin,
		Max:           DefaultMax,
		Step:          DefaultStep,
		StepTime:      DefaultStepTime,
	}
}

// Knob is a rotary control. Its angle is recomputed from its value after
// every mutation.
type Knob struct {
	id       string
	variant  Variant
	style    Style
	width    int
	height   int
	min      float64
	max      float64
	step     float64
	stepTime float64
	unit     string
	hint     string
	onChange func(k *Knob)

	minAngle float64
	maxAngle float64

	value              float64
	angle              float64
	angleIncrement     float64
	angleStepIncrement float64

	previous time.Time
	phase    Phase
	renderer Renderer
	surface  *Surface
}

// New validates cfg and returns a knob whose value is clamped into range.
func New(cfg Config) (*Knob, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}
	variant := cfg.Variant
	if variant == "" {
		variant = VariantRing
	}
	k := &Knob{
		id:       cfg.ID,
		variant:  variant,
		style:    cfg.Style,
		width:    cfg.Width,
		height:   cfg.Height,
		min:      cfg.Min,
		max:      cfg.Max,
		step:     cfg.Step,
		stepTime: cfg.StepTime,
		unit:     cfg.Unit,
		hint:     cfg.Hint,
		onChange: cfg.OnChange,
	}
	k.minAngle, k.maxAngle = TrackAngles(cfg.TrackFraction)
	k.value = clamp(cfg.Value, k.min, k.max)
	k.syncAngle()
	return k, nil
}

func validate(cfg Config) error {
	bad := func(field string, v any, reason string) error {
		return &ConfigurationError{ID: cfg.ID, Field: field, Value: v, Reason: reason}
	}
	if strings.TrimSpace(cfg.ID) == "" {
		return bad("id", cfg.ID, "must not be empty")
	}
	if cfg.Variant != "" && !cfg.Variant.Valid() {
		return bad("variant", cfg.Variant, "must be ring or gradient")
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"min", cfg.Min}, {"max", cfg.Max}, {"value", cfg.Value},
		{"step", cfg.Step}, {"step time", cfg.StepTime}, {"track fraction", cfg.TrackFraction},
	} {
		if !finite(f.v) {
			return bad(f.name, f.v, "must be finite")
		}
	}
	if cfg.Min >= cfg.Max {
		return bad("range", fmt.Sprintf("%g..%g", cfg.Min, cfg.Max), "min must be less than max")
	}
	if !finite(cfg.Max - cfg.Min) {
		return bad("range", fmt.Sprintf("%g..%g", cfg.Min, cfg.Max), "span must be finite")
	}
	if cfg.Step <= 0 {
		return bad("step", cfg.Step, "must be positive")
	}
	if cfg.StepTime < 0 {
		return bad("step time", cfg.StepTime, "must not be negative")
	}
	if !finite(cfg.Step * cfg.StepTime) {
		return bad("step time", cfg.StepTime, "step times step time must be finite")
	}
	if cfg.TrackFraction <= 0 || cfg.TrackFraction > 1 {
		return bad("track fraction", cfg.TrackFraction, "must be in (0, 1]")
	}
	if cfg.Width < 0 || cfg.Height < 0 {
		return bad("size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height), "must not be negative")
	}
	return nil
}

func (k *Knob) ID() string { return k.id }
func (k *Knob) Value() float64 { return k.value }
func (k *Knob) Angle() float64 { return k.angle }
func (k *Knob) Min() float64 { return k.min }
func (k *Knob) Max() float64 { return k.max }
func (k *Knob) Step() float64 { return k.step }
func (k *Knob) StepTime() float64 { return k.stepTime }
func (k *Knob) MinAngle() float64 { return k.minAngle }
func (k *Knob) MaxAngle() float64 { return k.maxAngle }
func (k *Knob) Unit() string { return k.unit }
func (k *Knob) Hint() string { return k.hint }
func (k *Knob) Variant() Variant { return k.variant }
func (k *Knob) Style() Style { return k.style }
func (k *Knob) Size() Size { return Size{Width: k.width, Height: k.height} }
func (k *Knob) Phase() Phase { return k.phase }
func (k *Knob) Surface() *Surface { return k.surface }
func (k *Knob) PreviousSample() time.Time { return k.previous }

// AngleIncrement is the number of degrees per unit of value.
func (k *Knob) AngleIncrement() float64 { return k.angleIncrement }

// AngleStepIncrement is the number of degrees covered by one step.
func (k *Knob) AngleStepIncrement() float64 { return k.angleStepIncrement }

// Fraction is the position of the value within the range, 0 at Min.
func (k *Knob) Fraction() float64 {
	return (k.value - k.min) / (k.max - k.min)
}

// OnChange replaces the change callback. nil disables notifications.
func (k *Knob) OnChange(fn func(k *Knob)) {
	k.onChange = fn
}

// Attach creates the knob's drawing surface inside c and performs the initial
// settled draw.
func (k *Knob) Attach(class string, c Container) *Surface {
	s := &Surface{
		ID:     k.id,
		Class:  class,
		Title:  k.hint,
		Width:  k.width,
		Height: k.height,
		Type:   MarkerType,
	}
	k.surface = s
	k.renderer = c.Mount(s)
	k.draw(ModeSettled)
	return s
}

// ApplyDelta moves the value by delta and clamps it into range. A NaN delta
// is treated as zero.
func (k *Knob) ApplyDelta(delta float64) {
	if math.IsNaN(delta) {
		delta = 0
	}
	k.value = clamp(k.value+delta, k.min, k.max)
	k.syncAngle()
	k.draw(ModeMoving)
	k.notify()
}

// SetAngle places the knob at an absolute angle, clamped to the track. A
// non-finite angle is coerced to zero first.
func (k *Knob) SetAngle(angle float64) {
	if !finite(angle) {
		angle = 0
	}
	angle = clamp(angle, k.minAngle, k.maxAngle)
	k.value = clamp(AngleToValue(angle, k.min, k.max, k.minAngle, k.maxAngle), k.min, k.max)
	k.syncAngle()
	k.draw(ModeMoving)
	k.notify()
}

// SetValue sets the value programmatically. Out-of-range values are clamped;
// NaN keeps the current value.
func (k *Knob) SetValue(value float64) {
	if !math.IsNaN(value) {
		k.value = clamp(value, k.min, k.max)
	}
	k.syncAngle()
	k.draw(ModeSettled)
	k.notify()
}

// SetValueText parses text into a local copy and sets it. Unparsable text
// leaves the knob untouched.
func (k *Knob) SetValueText(text string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return fmt.Errorf("knob %q: parse value: %w", k.id, err)
	}
	k.SetValue(v)
	return nil
}

// EndGesture forgets the previous gesture sample and redraws settled. The
// value does not change and no change notification is sent.
func (k *Knob) EndGesture() {
	k.previous = time.Time{}
	k.phase = PhaseIdle
	k.draw(ModeSettled)
}

// Drag applies one pointer-drag sample taken at now.
func (k *Knob) Drag(t gesture.Translator, movementY float64, now time.Time) float64 {
	k.phase = PhaseDragging
	defer func() { k.phase = PhaseIdle }()

	res := t.Drag(gesture.DragSample{
		Previous:  k.previous,
		Now:       now,
		MovementY: movementY,
		Step:      k.step,
		StepTime:  k.stepTime,
	})
	k.ApplyDelta(res.Delta)
	k.previous = res.Sample
	return res.Delta
}

// Wheel applies one wheel tick taken at now.
func (k *Knob) Wheel(t gesture.Translator, deltaY float64, modifier bool, now time.Time) float64 {
	k.phase = PhaseWheel
	defer func() { k.phase = PhaseIdle }()

	res := t.Wheel(gesture.WheelSample{
		Previous: k.previous,
		Now:      now,
		DeltaY:   deltaY,
		Modifier: modifier,
		Step:     k.step,
		StepTime: k.stepTime,
	})
	k.ApplyDelta(res.Delta)
	k.previous = res.Sample
	return res.Delta
}

// Frame snapshots the knob for a renderer.
func (k *Knob) Frame(mode Mode) Frame {
	return Frame{
		ID:       k.id,
		Mode:     mode,
		Angle:    k.angle,
		Value:    k.value,
		Min:      k.min,
		Max:      k.max,
		MinAngle: k.minAngle,
		MaxAngle: k.maxAngle,
		Unit:     k.unit,
		Variant:  k.variant,
		Style:    k.style,
		Size:     k.Size(),
	}
}

func (k *Knob) syncAngle() {
	k.angleIncrement, k.angleStepIncrement = Increments(k.min, k.max, k.step, k.minAngle, k.maxAngle)
	k.angle = ValueToAngle(k.value, k.min, k.max, k.minAngle, k.maxAngle)
	if !finite(k.angle) {
		k.angle = 0
	}
}

func (k *Knob) draw(mode Mode) {
	if k.renderer == nil {
		return
	}
	k.renderer.Draw(k.Frame(mode))
}

func (k *Knob) notify() {
	if k.onChange != nil {
		k.onChange(k)
	}
}
