package config

import (
	"fmt"
	"sort"

	"github.com/san-kum/knobs/internal/knob"
)

var Presets = map[string]*Rack{
	"synth": {
		Name: "synth", Theme: "dracula", LogLevel: DefaultLogLevel, Listen: DefaultListen,
		Knobs: []KnobSpec{
			{ID: "cutoff", Variant: knob.VariantRing, Track: 0.75, Width: 100, Height: 100, Min: 20, Max: 20000, Value: 1200, Step: 10, StepTime: 100, Unit: "Hz", Hint: "Filter cutoff",
				Style: knob.Style{Rings: 6, IndicatorType: knob.IndicatorSingle, IndicatorFill: knob.Gradient{{Offset: 0, Color: "#50fa7b"}, {Offset: 1, Color: "#ff79c6"}}}},
			{ID: "resonance", Variant: knob.VariantRing, Track: 0.75, Width: 100, Height: 100, Min: 0, Max: 1, Value: 0.2, Step: 0.01, StepTime: 100, Hint: "Resonance",
				Style: knob.Style{Rings: 3}},
			{ID: "attack", Variant: knob.VariantGradient, Track: 0.75, Width: 100, Height: 100, Min: 0, Max: 2000, Value: 15, Step: 5, StepTime: 80, Unit: "ms", Hint: "Envelope attack"},
			{ID: "release", Variant: knob.VariantGradient, Track: 0.75, Width: 100, Height: 100, Min: 0, Max: 5000, Value: 400, Step: 10, StepTime: 80, Unit: "ms", Hint: "Envelope release"},
		},
		MIDI: MIDIConfig{Bindings: []MIDIBinding{
			{Controller: 74, Knob: "cutoff", Mode: "relative"},
			{Controller: 71, Knob: "resonance", Mode: "absolute"},
		}},
	},
	"mixer": {
		Name: "mixer", Theme: "nord", LogLevel: DefaultLogLevel, Listen: DefaultListen,
		Knobs: []KnobSpec{
			{ID: "gain", Variant: knob.VariantGradient, Track: 0.8, Width: 100, Height: 100, Min: -60, Max: 12, Value: 0, Step: 0.5, StepTime: 100, Unit: "dB", Hint: "Channel gain"},
			{ID: "pan", Variant: knob.VariantGradient, Track: 0.5, Width: 100, Height: 100, Min: -1, Max: 1, Value: 0, Step: 0.02, StepTime: 100, Hint: "Pan",
				Style: knob.Style{IndicatorType: knob.IndicatorDouble,
					IndicatorFill:       knob.Gradient{{Offset: 0, Color: "#88c0d0"}},
					IndicatorDoubleFill: knob.Gradient{{Offset: 0, Color: "#bf616a"}}}},
			{ID: "send", Variant: knob.VariantRing, Track: 0.75, Width: 100, Height: 100, Min: 0, Max: 100, Value: 0, Step: 1, StepTime: 100, Unit: "%", Hint: "Aux send"},
		},
	},
	"full": {
		Name: "full", Theme: DefaultTheme, LogLevel: DefaultLogLevel, Listen: DefaultListen,
		Knobs: []KnobSpec{
			{ID: "phase", Variant: knob.VariantRing, Track: 1, Width: 100, Height: 100, Min: 0, Max: 360, Value: 180, Step: 1, StepTime: 100, Unit: "°", Hint: "Phase",
				Style: knob.Style{Rings: 12}},
		},
	},
}

// GetPreset returns a copy of the named preset.
func GetPreset(name string) (*Rack, error) {
	p, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPreset, name)
	}
	cp := *p
	cp.Knobs = append([]KnobSpec(nil), p.Knobs...)
	cp.MIDI.Bindings = append([]MIDIBinding(nil), p.MIDI.Bindings...)
	return &cp, nil
}

// ListPresets returns the preset names in order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
