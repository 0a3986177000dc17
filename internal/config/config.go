// Package config loads knob racks from YAML.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/knobs/internal/knob"
)

const (
	DefaultTheme    = "default"
	DefaultLogLevel = "info"
	DefaultListen   = "127.0.0.1:8090"
)

var ErrUnknownPreset = errors.New("config: unknown preset")

// Rack is a set of knobs plus the settings of the surfaces that host them.
type Rack struct {
	Name     string     `yaml:"name,omitempty"`
	Theme    string     `yaml:"theme"`
	LogLevel string     `yaml:"log_level"`
	Listen   string     `yaml:"listen"`
	MIDI     MIDIConfig `yaml:"midi"`
	Knobs    []KnobSpec `yaml:"knobs"`
}

// KnobSpec is the YAML form of knob.Config. Omitted fields take the knob
// defaults.
type KnobSpec struct {
	ID       string       `yaml:"id"`
	Variant  knob.Variant `yaml:"variant"`
	Track    float64      `yaml:"track"`
	Width    int          `yaml:"width"`
	Height   int          `yaml:"height"`
	Min      float64      `yaml:"min"`
	Max      float64      `yaml:"max"`
	Value    float64      `yaml:"value"`
	Step     float64      `yaml:"step"`
	StepTime float64      `yaml:"step_time"`
	Unit     string       `yaml:"unit,omitempty"`
	Hint     string       `yaml:"hint,omitempty"`
	Style    knob.Style   `yaml:"style,omitempty"`
}

// MIDIConfig binds control change numbers to knobs.
type MIDIConfig struct {
	Port     string        `yaml:"port,omitempty"`
	Channel  int           `yaml:"channel"` // 0 listens on every channel, otherwise 1-16
	Bindings []MIDIBinding `yaml:"bindings,omitempty"`
}

// MIDIBinding maps one controller to a knob. Mode is "relative" or
// "absolute".
type MIDIBinding struct {
	Controller uint8  `yaml:"cc"`
	Knob       string `yaml:"knob"`
	Mode       string `yaml:"mode,omitempty"`
}

// DefaultKnobSpec returns a spec matching knob.DefaultConfig.
func DefaultKnobSpec(id string) KnobSpec {
	return KnobSpec{
		ID:       id,
		Variant:  knob.VariantRing,
		Track:    knob.DefaultTrack,
		Width:    knob.DefaultWidth,
		Height:   knob.DefaultHeight,
		Min:      knob.DefaultMin,
		Max:      knob.DefaultMax,
		Step:     knob.DefaultStep,
		StepTime: knob.DefaultStepTime,
	}
}

// UnmarshalYAML fills in defaults before decoding so omitted keys keep them.
func (s *KnobSpec) UnmarshalYAML(n *yaml.Node) error {
	type plain KnobSpec
	p := plain(DefaultKnobSpec(""))
	if err := n.Decode(&p); err != nil {
		return err
	}
	*s = KnobSpec(p)
	return nil
}

// KnobConfig converts s to a knob.Config.
func (s KnobSpec) KnobConfig() knob.Config {
	return knob.Config{
		ID:            s.ID,
		Variant:       s.Variant,
		Style:         s.Style,
		TrackFraction: s.Track,
		Width:         s.Width,
		Height:        s.Height,
		Min:           s.Min,
		Max:           s.Max,
		Value:         s.Value,
		Step:          s.Step,
		StepTime:      s.StepTime,
		Unit:          s.Unit,
		Hint:          s.Hint,
	}
}

func DefaultRack() *Rack {
	gain := DefaultKnobSpec("gain")
	gain.Hint = "Gain"
	gain.Unit = "%"
	gain.Value = 50
	return &Rack{
		Theme:    DefaultTheme,
		LogLevel: DefaultLogLevel,
		Listen:   DefaultListen,
		Knobs:    []KnobSpec{gain},
	}
}

func Load(path string) (*Rack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a rack document over DefaultRack. A document that lists
// knobs replaces the default knob list.
func Parse(data []byte) (*Rack, error) {
	rack := DefaultRack()
	if err := yaml.Unmarshal(data, rack); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return rack, nil
}

func Save(path string, rack *Rack) error {
	data, err := yaml.Marshal(rack)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Build constructs every knob of the rack and registers it. onChange is
// installed on each knob and may be nil.
func (r *Rack) Build(onChange func(*knob.Knob)) (*knob.Registry, []*knob.Knob, error) {
	reg := knob.NewRegistry()
	knobs := make([]*knob.Knob, 0, len(r.Knobs))
	for i, spec := range r.Knobs {
		cfg := spec.KnobConfig()
		cfg.OnChange = onChange
		k, err := knob.New(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("config: knob %d: %w", i, err)
		}
		if err := reg.Add(k); err != nil {
			return nil, nil, fmt.Errorf("config: knob %d: %w", i, err)
		}
		knobs = append(knobs, k)
	}
	if err := r.checkMIDI(reg); err != nil {
		return nil, nil, err
	}
	return reg, knobs, nil
}

// Validate reports the first problem Build would hit.
func (r *Rack) Validate() error {
	_, _, err := r.Build(nil)
	return err
}

func (r *Rack) checkMIDI(reg *knob.Registry) error {
	if r.MIDI.Channel < 0 || r.MIDI.Channel > 16 {
		return fmt.Errorf("config: midi channel %d out of range 0-16", r.MIDI.Channel)
	}
	for _, b := range r.MIDI.Bindings {
		if b.Controller > 127 {
			return fmt.Errorf("config: midi cc %d out of range", b.Controller)
		}
		switch b.Mode {
		case "", "relative", "absolute":
		default:
			return fmt.Errorf("config: midi cc %d: unknown mode %q", b.Controller, b.Mode)
		}
		if _, err := reg.Lookup(b.Knob); err != nil {
			return fmt.Errorf("config: midi cc %d: %w", b.Controller, err)
		}
	}
	return nil
}
