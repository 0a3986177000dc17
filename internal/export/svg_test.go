package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/san-kum/knobs/internal/knob"
)

func newKnob(t *testing.T, cfg knob.Config) *knob.Knob {
	t.Helper()
	k, err := knob.New(cfg)
	if err != nil {
		t.Fatalf("knob.New() error: %v", err)
	}
	return k
}

func TestFrameToSVG_Ring(t *testing.T) {
	k := newKnob(t, knob.DefaultConfig("gain"))
	svg := FrameToSVG(k.Frame(knob.ModeSettled))

	for _, want := range []string{
		`<svg xmlns="http://www.w3.org/2000/svg" width="100" height="100"`,
		`class="track"`,
		`class="indicator"`,
		`class="pointer"`,
		`class="outer"`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("FrameToSVG() missing %q", want)
		}
	}
	if strings.Contains(svg, `class="dot"`) {
		t.Error("ring variant should not draw a dot")
	}
	if !strings.HasSuffix(svg, "</svg>") {
		t.Error("FrameToSVG() is not closed")
	}
}

func TestFrameToSVG_GradientAndRings(t *testing.T) {
	cfg := knob.DefaultConfig("cut off")
	cfg.Variant = knob.VariantGradient
	cfg.Style.IndicatorFill = knob.Gradient{{Offset: 0, Color: "#ff0000"}, {Offset: 1, Color: "#0000ff"}}
	cfg.Style.Rings = 4
	k := newKnob(t, cfg)

	settled := FrameToSVG(k.Frame(knob.ModeSettled))
	if !strings.Contains(settled, `class="dot"`) {
		t.Error("gradient variant should draw a dot")
	}
	if !strings.Contains(settled, `<linearGradient id="cut_off-indicator"`) {
		t.Error("missing indicator gradient with a sanitized id")
	}
	if !strings.Contains(settled, `stroke="url(#cut_off-indicator)"`) {
		t.Error("indicator does not reference its gradient")
	}
	if n := strings.Count(settled, `class="ring"`); n != 0 {
		t.Errorf("settled frame has %d rings, want 0", n)
	}

	moving := FrameToSVG(k.Frame(knob.ModeMoving))
	if n := strings.Count(moving, `class="ring"`); n != 4 {
		t.Errorf("moving frame has %d rings, want 4", n)
	}
}

func TestPaintRef(t *testing.T) {
	tests := []struct {
		g    knob.Gradient
		want string
	}{
		{nil, "#fff"},
		{knob.Gradient{{Color: "#123456"}}, "#123456"},
		{knob.Gradient{{Color: "#000"}, {Offset: 1, Color: "#fff"}}, "url(#x)"},
	}
	for _, tt := range tests {
		if got := paintRef("x", tt.g, "#fff"); got != tt.want {
			t.Errorf("paintRef(%v) = %q, want %q", tt.g, got, tt.want)
		}
	}
}

func TestSheet(t *testing.T) {
	sheet := NewSheet(2)
	for _, id := range []string{"a", "b", "c"} {
		cfg := knob.DefaultConfig(id)
		cfg.Unit = "dB"
		cfg.Hint = "<" + id + ">"
		newKnob(t, cfg).Attach("knob", sheet)
	}
	if sheet.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", sheet.Len())
	}

	var buf bytes.Buffer
	if _, err := sheet.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo() error: %v", err)
	}
	svg := buf.String()

	// Two columns of 100 wide cells, two rows of 100 + label.
	if !strings.Contains(svg, `width="200" height="248"`) {
		t.Errorf("unexpected sheet size in %q", svg[:200])
	}
	if n := strings.Count(svg, `<g class="knob"`); n != 3 {
		t.Errorf("sheet has %d knobs, want 3", n)
	}
	if !strings.Contains(svg, "&lt;b&gt;: 0 dB") {
		t.Error("label is not escaped or value missing")
	}
	if !strings.Contains(svg, `transform="translate(0.0,124.0)"`) {
		t.Error("third knob is not on the second row")
	}
}
