package knob

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/san-kum/knobs/internal/gesture"
)

type recorder struct {
	frames []Frame
}

func (r *recorder) Draw(f Frame) { r.frames = append(r.frames, f) }

func (r *recorder) Mount(s *Surface) Renderer { return r }

func (r *recorder) last() Frame { return r.frames[len(r.frames)-1] }

func newKnob(t *testing.T, mutate func(*Config)) (*Knob, *int) {
	t.Helper()
	calls := new(int)
	cfg := DefaultConfig("test")
	cfg.OnChange = func(*Knob) { *calls++ }
	if mutate != nil {
		mutate(&cfg)
	}
	k, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return k, calls
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"equal range", func(c *Config) { c.Min, c.Max = 10, 10 }, "range"},
		{"inverted range", func(c *Config) { c.Min, c.Max = 5, 1 }, "range"},
		{"zero step", func(c *Config) { c.Step = 0 }, "step"},
		{"negative step", func(c *Config) { c.Step = -1 }, "step"},
		{"nan min", func(c *Config) { c.Min = math.NaN() }, "min"},
		{"inf max", func(c *Config) { c.Max = math.Inf(1) }, "max"},
		{"inf value", func(c *Config) { c.Value = math.Inf(-1) }, "value"},
		{"negative step time", func(c *Config) { c.StepTime = -5 }, "step time"},
		{"zero track", func(c *Config) { c.TrackFraction = 0 }, "track fraction"},
		{"track above one", func(c *Config) { c.TrackFraction = 1.5 }, "track fraction"},
		{"empty id", func(c *Config) { c.ID = " " }, "id"},
		{"unknown variant", func(c *Config) { c.Variant = "slider" }, "variant"},
		{"negative size", func(c *Config) { c.Width = -1 }, "size"},
		{"overflowing span", func(c *Config) { c.Min, c.Max = -1e308, 1e308 }, "range"},
		{"overflowing speed", func(c *Config) { c.Step, c.StepTime = 1e200, 1e200 }, "step time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig("bad")
			tt.mutate(&cfg)
			_, err := New(cfg)
			if !errors.Is(err, ErrConfiguration) {
				t.Fatalf("New() error = %v, want ErrConfiguration", err)
			}
			var ce *ConfigurationError
			if !errors.As(err, &ce) {
				t.Fatalf("New() error is not a *ConfigurationError: %T", err)
			}
			if ce.Field != tt.field {
				t.Errorf("ConfigurationError.Field = %q, want %q", ce.Field, tt.field)
			}
		})
	}
}

func TestNew_ClampsInitialValue(t *testing.T) {
	k, calls := newKnob(t, func(c *Config) { c.Value = 250 })
	if k.Value() != 100 {
		t.Errorf("Value() = %v, want 100", k.Value())
	}
	if math.Abs(k.Angle()-k.MinAngle()) > 1e-10 {
		t.Errorf("Angle() = %v, want %v", k.Angle(), k.MinAngle())
	}
	if *calls != 0 {
		t.Errorf("construction called OnChange %d times", *calls)
	}

	k, _ = newKnob(t, func(c *Config) { c.Value = -3 })
	if k.Value() != 0 {
		t.Errorf("Value() = %v, want 0", k.Value())
	}
}

func TestNew_WideRangeKeepsAngleOnTrack(t *testing.T) {
	k, _ := newKnob(t, func(c *Config) { c.Min, c.Max, c.Value = -1e307, 1e307, 0 })
	if math.Abs(k.Angle()-180) > 1e-9 {
		t.Errorf("Angle() = %v, want 180", k.Angle())
	}

	for _, a := range []float64{0, 90, 180, 300, 360} {
		k.SetAngle(a)
		if k.Angle() < k.MinAngle()-1e-9 || k.Angle() > k.MaxAngle()+1e-9 {
			t.Errorf("SetAngle(%v) left Angle() = %v outside [%v, %v]", a, k.Angle(), k.MinAngle(), k.MaxAngle())
		}
	}
}

func TestNew_EmptyVariantDefaultsToRing(t *testing.T) {
	k, _ := newKnob(t, func(c *Config) { c.Variant = "" })
	if k.Variant() != VariantRing {
		t.Errorf("Variant() = %q, want ring", k.Variant())
	}
}

func TestFullCircle_Midpoint(t *testing.T) {
	k, _ := newKnob(t, func(c *Config) {
		c.TrackFraction = 1
		c.Value = 50
	})
	if k.MinAngle() != 0 || k.MaxAngle() != 360 {
		t.Fatalf("angles = (%v, %v), want (0, 360)", k.MinAngle(), k.MaxAngle())
	}
	if math.Abs(k.Angle()-180) > 1e-9 {
		t.Errorf("Angle() = %v, want 180", k.Angle())
	}

	k.SetAngle(0)
	if k.Value() != 100 {
		t.Errorf("SetAngle(0) on a full circle: Value() = %v, want max", k.Value())
	}
	k.SetAngle(360)
	if k.Value() != 0 {
		t.Errorf("SetAngle(360) on a full circle: Value() = %v, want min", k.Value())
	}
}

func TestApplyDelta_StaysInRange(t *testing.T) {
	k, calls := newKnob(t, func(c *Config) { c.Value = 50 })

	deltas := []float64{1e12, -1e12, math.Inf(1), math.Inf(-1), math.NaN(), 3.5, -0.25}
	for _, d := range deltas {
		k.ApplyDelta(d)
		if k.Value() < k.Min() || k.Value() > k.Max() {
			t.Fatalf("ApplyDelta(%v): Value() = %v outside range", d, k.Value())
		}
		want := ValueToAngle(k.Value(), k.Min(), k.Max(), k.MinAngle(), k.MaxAngle())
		if k.Angle() != want {
			t.Fatalf("ApplyDelta(%v): Angle() = %v, want %v", d, k.Angle(), want)
		}
	}
	if *calls != len(deltas) {
		t.Errorf("OnChange called %d times, want %d", *calls, len(deltas))
	}
}

func TestApplyDelta_NaNKeepsValue(t *testing.T) {
	k, _ := newKnob(t, func(c *Config) { c.Value = 42 })
	k.ApplyDelta(math.NaN())
	if k.Value() != 42 {
		t.Errorf("Value() = %v, want 42", k.Value())
	}
}

func TestSetAngle_StaysOnTrack(t *testing.T) {
	k, calls := newKnob(t, nil)

	angles := []float64{-90, 0, 10, 45, 180, 315, 359, 720, math.NaN(), math.Inf(1)}
	for _, a := range angles {
		k.SetAngle(a)
		if k.Angle() < k.MinAngle()-1e-9 || k.Angle() > k.MaxAngle()+1e-9 {
			t.Fatalf("SetAngle(%v): Angle() = %v outside [%v, %v]", a, k.Angle(), k.MinAngle(), k.MaxAngle())
		}
		if k.Value() < k.Min() || k.Value() > k.Max() {
			t.Fatalf("SetAngle(%v): Value() = %v outside range", a, k.Value())
		}
	}
	if *calls != len(angles) {
		t.Errorf("OnChange called %d times, want %d", *calls, len(angles))
	}
}

func TestSetAngle_NonFiniteCoercedToZero(t *testing.T) {
	k, _ := newKnob(t, func(c *Config) { c.Value = 30 })
	k.SetAngle(math.NaN())
	// 0 is below MinAngle (45) and clamps to the maximum value.
	if k.Value() != k.Max() {
		t.Errorf("Value() = %v, want %v", k.Value(), k.Max())
	}
}

func TestSetAngle_Midpoint(t *testing.T) {
	k, _ := newKnob(t, nil)
	k.SetAngle(180)
	if math.Abs(k.Value()-50) > 1e-9 {
		t.Errorf("Value() = %v, want 50", k.Value())
	}
}

func TestSetValue_NoDeduplication(t *testing.T) {
	k, calls := newKnob(t, nil)
	for i := 0; i < 3; i++ {
		k.SetValue(25)
	}
	if *calls != 3 {
		t.Errorf("OnChange called %d times, want 3", *calls)
	}

	k.SetValue(1e9)
	k.SetValue(1e9)
	if k.Value() != 100 {
		t.Errorf("Value() = %v, want 100", k.Value())
	}
	if *calls != 5 {
		t.Errorf("OnChange called %d times, want 5", *calls)
	}
}

func TestSetValue_NaNKeepsValue(t *testing.T) {
	k, calls := newKnob(t, func(c *Config) { c.Value = 12 })
	k.SetValue(math.NaN())
	if k.Value() != 12 {
		t.Errorf("Value() = %v, want 12", k.Value())
	}
	if *calls != 1 {
		t.Errorf("OnChange called %d times, want 1", *calls)
	}
}

func TestSetValueText(t *testing.T) {
	k, calls := newKnob(t, nil)

	if err := k.SetValueText(" 64.5 "); err != nil {
		t.Fatalf("SetValueText() error: %v", err)
	}
	if k.Value() != 64.5 {
		t.Errorf("Value() = %v, want 64.5", k.Value())
	}

	if err := k.SetValueText("500"); err != nil {
		t.Fatalf("SetValueText() error: %v", err)
	}
	if k.Value() != 100 {
		t.Errorf("Value() = %v, want 100", k.Value())
	}

	if err := k.SetValueText("loud"); err == nil {
		t.Error("SetValueText(\"loud\") should fail")
	}
	if k.Value() != 100 || *calls != 2 {
		t.Errorf("failed parse changed state: value=%v calls=%d", k.Value(), *calls)
	}
}

func TestNilOnChange(t *testing.T) {
	cfg := DefaultConfig("quiet")
	k, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	k.ApplyDelta(1)
	k.SetValue(3)
	k.SetAngle(100)
	k.EndGesture()
}

func TestAttach_DrawsSettled(t *testing.T) {
	k, _ := newKnob(t, func(c *Config) {
		c.Hint = "filter cutoff"
		c.Width, c.Height = 80, 60
	})
	rec := &recorder{}
	s := k.Attach("knob-small", rec)

	if !s.IsKnob() || s.ID != "test" || s.Title != "filter cutoff" || s.Class != "knob-small" {
		t.Errorf("unexpected surface: %+v", s)
	}
	if s.Width != 80 || s.Height != 60 {
		t.Errorf("surface size = %dx%d, want 80x60", s.Width, s.Height)
	}
	if len(rec.frames) != 1 || rec.last().Mode != ModeSettled {
		t.Fatalf("expected one settled draw, got %+v", rec.frames)
	}
	if k.Surface() != s {
		t.Error("Surface() should return the attached surface")
	}
}

func TestPresentationModes(t *testing.T) {
	k, _ := newKnob(t, nil)
	rec := &recorder{}
	k.Attach("knob", rec)

	k.ApplyDelta(1)
	if rec.last().Mode != ModeMoving {
		t.Error("ApplyDelta should draw moving")
	}
	k.SetAngle(90)
	if rec.last().Mode != ModeMoving {
		t.Error("SetAngle should draw moving")
	}
	k.SetValue(10)
	if rec.last().Mode != ModeSettled {
		t.Error("SetValue should draw settled")
	}
	k.EndGesture()
	if rec.last().Mode != ModeSettled {
		t.Error("EndGesture should draw settled")
	}
	if f := rec.last(); f.Value != 10 || f.Angle != k.Angle() {
		t.Errorf("frame = %+v, want value 10 angle %v", f, k.Angle())
	}
}

func TestEndGesture_NoValueChange(t *testing.T) {
	k, calls := newKnob(t, func(c *Config) { c.Value = 5 })
	k.Drag(gesture.Translator{}, -1, time.Now())
	before := k.Value()
	*calls = 0

	k.EndGesture()
	if k.Value() != before {
		t.Errorf("Value() = %v, want %v", k.Value(), before)
	}
	if !k.PreviousSample().IsZero() {
		t.Error("EndGesture should clear the previous sample")
	}
	if *calls != 0 {
		t.Errorf("EndGesture called OnChange %d times", *calls)
	}
}

func TestDrag_SpeedShaped(t *testing.T) {
	k, calls := newKnob(t, func(c *Config) {
		c.Min, c.Max, c.Value = 0, 10, 5
		c.Step, c.StepTime = 1, 100
	})
	var tr gesture.Translator
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// First sample has no history and moves a single step.
	k.Drag(tr, -10, start)
	if k.Value() != 6 {
		t.Fatalf("first drag: Value() = %v, want 6", k.Value())
	}

	k.SetValue(5)
	k.Drag(tr, -10, start.Add(50*time.Millisecond))
	if k.Value() != 7 {
		t.Errorf("Value() = %v, want 7", k.Value())
	}
	if !k.PreviousSample().Equal(start.Add(50 * time.Millisecond)) {
		t.Errorf("PreviousSample() = %v", k.PreviousSample())
	}
	if *calls != 3 {
		t.Errorf("OnChange called %d times, want 3", *calls)
	}
	if k.Phase() != PhaseIdle {
		t.Errorf("Phase() = %v after drag, want idle", k.Phase())
	}
}

func TestDrag_PhaseVisibleToCallback(t *testing.T) {
	var seen []Phase
	k, _ := newKnob(t, func(c *Config) {
		c.OnChange = func(k *Knob) { seen = append(seen, k.Phase()) }
	})
	now := time.Now()
	k.Drag(gesture.Translator{}, -1, now)
	k.Wheel(gesture.Translator{}, -1, false, now)
	k.SetValue(1)

	want := []Phase{PhaseDragging, PhaseWheel, PhaseIdle}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("callback %d saw phase %v, want %v", i, seen[i], want[i])
		}
	}
}

func TestWheel_StepClampedAtMax(t *testing.T) {
	k, _ := newKnob(t, func(c *Config) {
		c.Min, c.Max, c.Value, c.Step = 0, 10, 7, 2
	})
	now := time.Now()
	var tr gesture.Translator

	k.Wheel(tr, -1, false, now)
	if k.Value() != 9 {
		t.Errorf("Value() = %v, want 9", k.Value())
	}
	k.Wheel(tr, -1, false, now.Add(time.Millisecond))
	if k.Value() != 10 {
		t.Errorf("Value() = %v, want 10", k.Value())
	}
	k.Wheel(tr, 1, false, now.Add(2*time.Millisecond))
	if k.Value() != 8 {
		t.Errorf("Value() = %v, want 8", k.Value())
	}
}

func TestAngleStepIncrement(t *testing.T) {
	k, _ := newKnob(t, func(c *Config) {
		c.Min, c.Max, c.Step = 0, 27, 3
		c.TrackFraction = 0.75
	})
	if math.Abs(k.AngleIncrement()-10) > 1e-12 {
		t.Errorf("AngleIncrement() = %v, want 10", k.AngleIncrement())
	}
	if math.Abs(k.AngleStepIncrement()-30) > 1e-12 {
		t.Errorf("AngleStepIncrement() = %v, want 30", k.AngleStepIncrement())
	}
}
