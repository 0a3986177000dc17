// Package midi binds MIDI control change messages to knobs.
package midi

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/san-kum/knobs/internal/input"
	"github.com/san-kum/knobs/internal/knob"
)

var (
	ErrNoPorts     = errors.New("midi: no input ports")
	ErrUnknownMode = errors.New("midi: unknown binding mode")
)

// maxTicks bounds the wheel events produced by one relative message.
const maxTicks = 16

// Mode selects how a controller value is read.
type Mode int

const (
	// Relative reads two's-complement style encoder offsets: 1..63 turn up,
	// 65..127 turn down.
	Relative Mode = iota
	// Absolute maps 0..127 onto the knob range.
	Absolute
)

func (m Mode) String() string {
	if m == Absolute {
		return "absolute"
	}
	return "relative"
}

// ParseMode accepts "relative", "absolute" or empty for relative.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "relative":
		return Relative, nil
	case "absolute":
		return Absolute, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

type Binding struct {
	Controller uint8
	Knob       string
	Mode       Mode
}

// Sink receives decoded actions. Implementations hand them to the goroutine
// that owns the knobs.
type Sink interface {
	Post(ev input.Event) bool
	SetFraction(id string, fraction float64)
}

// Bridge decodes control changes into knob input.
type Bridge struct {
	sink     Sink
	channel  int
	bindings map[uint8]Binding
	log      *slog.Logger
	now      func() time.Time

	mu   sync.Mutex
	stop func()
}

type Option func(*Bridge)

func WithLogger(l *slog.Logger) Option { return func(b *Bridge) { b.log = l } }

func WithClock(now func() time.Time) Option { return func(b *Bridge) { b.now = now } }

// NewBridge returns a bridge listening on channel (1-16, or 0 for all).
func NewBridge(sink Sink, channel int, bindings []Binding, opts ...Option) *Bridge {
	b := &Bridge{
		sink:     sink,
		channel:  channel,
		bindings: make(map[uint8]Binding, len(bindings)),
		log:      slog.New(slog.DiscardHandler),
		now:      time.Now,
	}
	for _, bd := range bindings {
		b.bindings[bd.Controller] = bd
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// RelativeTicks decodes a relative encoder value. Positive means up.
func RelativeTicks(value uint8) int {
	switch {
	case value >= 1 && value <= 63:
		return int(value)
	case value >= 65 && value <= 127:
		return -int(128 - int(value))
	}
	return 0
}

// Handle decodes msg and forwards it to the sink. It reports whether msg
// matched a binding.
func (b *Bridge) Handle(msg gomidi.Message) bool {
	var ch, cc, val uint8
	if !msg.GetControlChange(&ch, &cc, &val) {
		return false
	}
	if b.channel != 0 && int(ch)+1 != b.channel {
		return false
	}
	bd, ok := b.bindings[cc]
	if !ok {
		return false
	}

	switch bd.Mode {
	case Absolute:
		b.sink.SetFraction(bd.Knob, float64(val)/127)
	default:
		ticks := RelativeTicks(val)
		if ticks == 0 {
			return true
		}
		dy := -1.0
		if ticks < 0 {
			dy, ticks = 1, -ticks
		}
		now := b.now()
		target := input.Target{ID: bd.Knob, Type: knob.MarkerType}
		for range min(ticks, maxTicks) {
			ev := input.Event{Kind: input.KindWheel, Wheel: input.WheelEvent{Target: target, DeltaY: dy, Time: now}}
			if !b.sink.Post(ev) {
				b.log.Warn("midi event dropped", "knob", bd.Knob, "cc", cc)
				break
			}
		}
	}
	b.log.Debug("midi cc", "channel", ch+1, "cc", cc, "value", val, "knob", bd.Knob, "mode", bd.Mode)
	return true
}

// Listen starts delivering messages from in. Close stops it. A port that
// cannot be listened on is closed before Listen returns.
func (b *Bridge) Listen(in drivers.In) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stop != nil {
		return errors.New("midi: already listening")
	}
	stop, err := gomidi.ListenTo(in, func(msg gomidi.Message, timestampms int32) {
		b.Handle(msg)
	})
	if err != nil {
		in.Close()
		return fmt.Errorf("midi: listen on %s: %w", in.String(), err)
	}
	b.stop = stop
	b.log.Info("listening for midi", "port", in.String())
	return nil
}

func (b *Bridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stop != nil {
		b.stop()
		b.stop = nil
	}
}

// OpenPort finds an input port by name. An empty name selects the first
// port.
func OpenPort(name string) (drivers.In, error) {
	if name != "" {
		in, err := gomidi.FindInPort(name)
		if err != nil {
			return nil, fmt.Errorf("midi: port %q: %w", name, err)
		}
		return in, nil
	}
	ports := gomidi.GetInPorts()
	if len(ports) == 0 {
		return nil, ErrNoPorts
	}
	return ports[0], nil
}

// PortNames lists the available input ports.
func PortNames() []string {
	ports := gomidi.GetInPorts()
	names := make([]string, len(ports))
	for i, p := range ports {
		names[i] = p.String()
	}
	return names
}
