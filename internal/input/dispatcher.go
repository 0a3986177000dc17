package input

import (
	"errors"
	"log/slog"
	"time"

	"github.com/san-kum/knobs/internal/gesture"
	"github.com/san-kum/knobs/internal/knob"
)

// ErrAttached indicates the dispatcher is already subscribed to a source.
var ErrAttached = errors.New("input: dispatcher already attached")

// Session is the gesture currently holding a knob. At most one knob is
// active per dispatcher.
type Session struct {
	active *knob.Knob
	since  time.Time
}

// Active returns the held knob, or nil.
func (s *Session) Active() *knob.Knob { return s.active }

// Since is the time of the pointer-down that started the session.
func (s *Session) Since() time.Time { return s.since }

func (s *Session) begin(k *knob.Knob, at time.Time) {
	s.active = k
	s.since = at
}

func (s *Session) end() {
	s.active = nil
	s.since = time.Time{}
}

// Holds records which dispatcher holds each knob. Dispatchers sharing a
// registry share one Holds so a knob is held by at most one session. Like the
// knobs, it is only used from the goroutine that owns them.
type Holds struct {
	owners map[*knob.Knob]*Dispatcher
}

func NewHolds() *Holds {
	return &Holds{owners: make(map[*knob.Knob]*Dispatcher)}
}

// Holder returns the dispatcher holding k, or nil.
func (h *Holds) Holder(k *knob.Knob) *Dispatcher { return h.owners[k] }

func (h *Holds) claim(k *knob.Knob, d *Dispatcher) bool {
	if owner, ok := h.owners[k]; ok && owner != d {
		return false
	}
	h.owners[k] = d
	return true
}

func (h *Holds) release(k *knob.Knob, d *Dispatcher) {
	if h.owners[k] == d {
		delete(h.owners, k)
	}
}

// heldElsewhere reports whether k is held by a dispatcher other than d.
func (h *Holds) heldElsewhere(k *knob.Knob, d *Dispatcher) bool {
	owner, ok := h.owners[k]
	return ok && owner != d
}

// Dispatcher is the listener set of one surface root.
type Dispatcher struct {
	registry   *knob.Registry
	translator gesture.Translator
	session    Session
	holds      *Holds
	log        *slog.Logger
	now        func() time.Time
	cancel     func()
}

type Option func(*Dispatcher)

func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.log = l }
}

// WithTranslator replaces the gesture translator.
func WithTranslator(t gesture.Translator) Option {
	return func(d *Dispatcher) { d.translator = t }
}

// WithHolds shares h with other dispatchers over the same knobs.
func WithHolds(h *Holds) Option {
	return func(d *Dispatcher) { d.holds = h }
}

// WithClock sets the time used for events that carry no timestamp.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

func NewDispatcher(reg *knob.Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: reg,
		log:      slog.New(slog.DiscardHandler),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.holds == nil {
		d.holds = NewHolds()
	}
	return d
}

// Session returns the dispatcher's gesture session.
func (d *Dispatcher) Session() *Session { return &d.session }

func (d *Dispatcher) Registry() *knob.Registry { return d.registry }

// Attach subscribes the dispatcher to src.
func (d *Dispatcher) Attach(src Source) error {
	if d.cancel != nil {
		return ErrAttached
	}
	d.cancel = src.Subscribe(d)
	return nil
}

// Detach unsubscribes from the current source and ends any open gesture.
func (d *Dispatcher) Detach() {
	if d.cancel == nil {
		return
	}
	d.cancel()
	d.cancel = nil
	d.release()
}

// Attached reports whether a source is subscribed.
func (d *Dispatcher) Attached() bool { return d.cancel != nil }

// Dispatch delivers ev to the matching entry point.
func (d *Dispatcher) Dispatch(ev Event) { Deliver(d, ev) }

// PointerDown starts a session on the targeted knob and places it at the
// angle under the pointer.
func (d *Dispatcher) PointerDown(ev PointerEvent) {
	k := d.lookup(ev.Target)
	if k == nil {
		return
	}
	if !d.holds.claim(k, d) {
		d.log.Debug("pointer down on a knob held by another session", "knob", k.ID())
		return
	}
	if prev := d.session.Active(); prev != nil && prev != k {
		prev.EndGesture()
		d.holds.release(prev, d)
	}
	d.session.begin(k, d.stamp(ev.Time))
	size := k.Size()
	angle := gesture.PointerAngle(ev.OffsetX, ev.OffsetY, float64(size.Width), float64(size.Height))
	k.SetAngle(angle)
	d.log.Debug("pointer down", "knob", k.ID(), "angle", angle, "value", k.Value())
}

// PointerMove drags the active knob while the primary button is held.
func (d *Dispatcher) PointerMove(ev PointerEvent) {
	k := d.session.Active()
	if k == nil || ev.Buttons&ButtonPrimary == 0 {
		return
	}
	delta := k.Drag(d.translator, ev.MovementY, d.stamp(ev.Time))
	d.log.Debug("drag", "knob", k.ID(), "delta", delta, "value", k.Value())
}

// PointerUp ends the session wherever the pointer is released.
func (d *Dispatcher) PointerUp(ev PointerEvent) {
	k := d.session.Active()
	if k == nil {
		return
	}
	d.release()
	d.log.Debug("pointer up", "knob", k.ID(), "value", k.Value())
}

// release ends the session and frees its knob for other sessions.
func (d *Dispatcher) release() {
	k := d.session.Active()
	if k == nil {
		return
	}
	k.EndGesture()
	d.holds.release(k, d)
	d.session.end()
}

// Wheel applies one tick to the targeted knob. Wheel ticks never open a
// session and skip knobs held by another session.
func (d *Dispatcher) Wheel(ev WheelEvent) {
	k := d.lookup(ev.Target)
	if k == nil {
		return
	}
	if d.holds.heldElsewhere(k, d) {
		d.log.Debug("wheel on a knob held by another session", "knob", k.ID())
		return
	}
	delta := k.Wheel(d.translator, ev.DeltaY, ev.Modifier, d.stamp(ev.Time))
	d.log.Debug("wheel", "knob", k.ID(), "delta", delta, "value", k.Value())
}

func (d *Dispatcher) lookup(t Target) *knob.Knob {
	if !t.IsKnob() {
		return nil
	}
	k, ok := d.registry.Get(t.ID)
	if !ok {
		d.log.Debug("event for unregistered knob", "id", t.ID)
		return nil
	}
	return k
}

func (d *Dispatcher) stamp(t time.Time) time.Time {
	if t.IsZero() {
		return d.now()
	}
	return t
}
