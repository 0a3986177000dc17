package config

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/san-kum/knobs/internal/knob"
)

func TestDefaultRack(t *testing.T) {
	rack := DefaultRack()

	if rack.Theme != DefaultTheme {
		t.Errorf("Theme = %q, want %q", rack.Theme, DefaultTheme)
	}
	if len(rack.Knobs) != 1 {
		t.Fatalf("len(Knobs) = %d, want 1", len(rack.Knobs))
	}
	if err := rack.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestParse_FillsKnobDefaults(t *testing.T) {
	rack, err := Parse([]byte(`
theme: nord
knobs:
  - id: pan
    min: -1
    max: 1
    step: 0.1
  - id: level
    variant: gradient
    unit: dB
`))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if rack.Theme != "nord" {
		t.Errorf("Theme = %q, want nord", rack.Theme)
	}
	if rack.Listen != DefaultListen {
		t.Errorf("Listen = %q, want default", rack.Listen)
	}
	if len(rack.Knobs) != 2 {
		t.Fatalf("len(Knobs) = %d, want 2", len(rack.Knobs))
	}

	pan := rack.Knobs[0]
	if pan.Min != -1 || pan.Max != 1 || pan.Step != 0.1 {
		t.Errorf("pan = %+v", pan)
	}
	if pan.Track != knob.DefaultTrack || pan.StepTime != knob.DefaultStepTime {
		t.Errorf("pan defaults track=%v stepTime=%v", pan.Track, pan.StepTime)
	}

	level := rack.Knobs[1]
	if level.Max != knob.DefaultMax || level.Variant != knob.VariantGradient {
		t.Errorf("level = %+v", level)
	}
}

func TestBuild(t *testing.T) {
	rack := DefaultRack()
	rack.Knobs = append(rack.Knobs, DefaultKnobSpec("pan"))

	var changed []string
	reg, knobs, err := rack.Build(func(k *knob.Knob) { changed = append(changed, k.ID()) })
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if reg.Len() != 2 || len(knobs) != 2 {
		t.Fatalf("Build() registered %d, returned %d", reg.Len(), len(knobs))
	}
	if knobs[0].ID() != "gain" || knobs[0].Value() != 50 {
		t.Errorf("first knob = %s:%v, want gain:50", knobs[0].ID(), knobs[0].Value())
	}

	knobs[1].SetValue(3)
	if len(changed) != 1 || changed[0] != "pan" {
		t.Errorf("onChange calls = %v, want [pan]", changed)
	}
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Rack)
		want   error
	}{
		{"bad range", func(r *Rack) { r.Knobs[0].Max = r.Knobs[0].Min }, knob.ErrConfiguration},
		{"duplicate", func(r *Rack) { r.Knobs = append(r.Knobs, DefaultKnobSpec("gain")) }, knob.ErrDuplicateID},
		{"unbound midi", func(r *Rack) { r.MIDI.Bindings = []MIDIBinding{{Controller: 1, Knob: "nope"}} }, knob.ErrUnknownKnob},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rack := DefaultRack()
			tt.mutate(rack)
			if _, _, err := rack.Build(nil); !errors.Is(err, tt.want) {
				t.Errorf("Build() error = %v, want %v", err, tt.want)
			}
		})
	}

	rack := DefaultRack()
	rack.MIDI.Bindings = []MIDIBinding{{Controller: 1, Knob: "gain", Mode: "toggle"}}
	if err := rack.Validate(); err == nil {
		t.Error("Validate() should reject an unknown midi mode")
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rack.yaml")
	rack, err := GetPreset("mixer")
	if err != nil {
		t.Fatalf("GetPreset() error: %v", err)
	}
	if err := Save(path, rack); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(loaded.Knobs) != len(rack.Knobs) {
		t.Fatalf("loaded %d knobs, want %d", len(loaded.Knobs), len(rack.Knobs))
	}
	pan := loaded.Knobs[1]
	if pan.Style.IndicatorType != knob.IndicatorDouble || pan.Style.IndicatorDoubleFill.First("") != "#bf616a" {
		t.Errorf("pan style = %+v", pan.Style)
	}
}

func TestGetPreset(t *testing.T) {
	rack, err := GetPreset("synth")
	if err != nil {
		t.Fatalf("GetPreset() error: %v", err)
	}
	rack.Knobs[0].ID = "changed"
	if Presets["synth"].Knobs[0].ID != "cutoff" {
		t.Error("GetPreset() returned a shared knob list")
	}

	if _, err := GetPreset("nonexistent"); !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("GetPreset(nonexistent) error = %v, want ErrUnknownPreset", err)
	}
}

func TestPresetsValidate(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Fatalf("ListPresets() = %v", names)
	}
	for _, name := range names {
		rack, _ := GetPreset(name)
		if err := rack.Validate(); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
	}
}
