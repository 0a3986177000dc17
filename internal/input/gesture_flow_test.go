package input_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/knobs/internal/input"
	"github.com/san-kum/knobs/internal/knob"
)

var _ = Describe("Dispatcher", func() {
	var (
		reg     *knob.Registry
		d       *input.Dispatcher
		gain    *knob.Knob
		changes []float64
		start   time.Time
		marked  input.Target
	)

	BeforeEach(func() {
		start = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		changes = nil
		cfg := knob.DefaultConfig("gain")
		cfg.OnChange = func(k *knob.Knob) { changes = append(changes, k.Value()) }
		var err error
		gain, err = knob.New(cfg)
		Expect(err).NotTo(HaveOccurred())
		reg = knob.NewRegistry()
		Expect(reg.Add(gain)).To(Succeed())
		d = input.NewDispatcher(reg)
		marked = input.Target{ID: "gain", Type: knob.MarkerType}
	})

	Context("while dragging", func() {
		BeforeEach(func() {
			d.PointerDown(input.PointerEvent{Target: marked, OffsetX: 50, OffsetY: 5, Buttons: input.ButtonPrimary, Time: start})
			gain.SetValue(5)
			changes = nil
		})

		It("holds the knob in the session", func() {
			Expect(d.Session().Active()).To(BeIdenticalTo(gain))
		})

		It("scales fast upward motion by the speed factor", func() {
			d.PointerMove(input.PointerEvent{MovementY: -3, Buttons: input.ButtonPrimary, Time: start})
			Expect(gain.Value()).To(Equal(6.0))

			d.PointerMove(input.PointerEvent{MovementY: -10, Buttons: input.ButtonPrimary, Time: start.Add(50 * time.Millisecond)})
			Expect(gain.Value()).To(Equal(8.0))
			Expect(changes).To(Equal([]float64{6, 8}))
		})

		It("moves down for positive movement", func() {
			d.PointerMove(input.PointerEvent{MovementY: 4, Buttons: input.ButtonPrimary, Time: start})
			Expect(gain.Value()).To(Equal(4.0))
		})

		It("keeps dragging when the pointer leaves the knob", func() {
			d.PointerMove(input.PointerEvent{Target: input.Target{ID: "elsewhere"}, MovementY: -1, Buttons: input.ButtonPrimary, Time: start})
			Expect(gain.Value()).To(Equal(6.0))
		})

		It("stops at the range edge", func() {
			for i := 1; i <= 50; i++ {
				d.PointerMove(input.PointerEvent{MovementY: 5, Buttons: input.ButtonPrimary, Time: start.Add(time.Duration(i) * time.Millisecond)})
			}
			Expect(gain.Value()).To(Equal(0.0))
		})

		It("ends on pointer up without notifying", func() {
			d.PointerUp(input.PointerEvent{})
			Expect(d.Session().Active()).To(BeNil())
			Expect(gain.PreviousSample().IsZero()).To(BeTrue())
			Expect(changes).To(BeEmpty())

			d.PointerMove(input.PointerEvent{MovementY: -10, Buttons: input.ButtonPrimary, Time: start})
			Expect(gain.Value()).To(Equal(5.0))
		})
	})

	Context("on wheel ticks", func() {
		It("steps up per tick and clamps at max", func() {
			gain.SetValue(99)
			d.Wheel(input.WheelEvent{Target: marked, DeltaY: -1, Time: start})
			d.Wheel(input.WheelEvent{Target: marked, DeltaY: -1, Time: start.Add(time.Second)})
			Expect(gain.Value()).To(Equal(100.0))
		})

		It("applies the speed factor with the modifier held", func() {
			gain.SetValue(10)
			d.Wheel(input.WheelEvent{Target: marked, DeltaY: -1, Modifier: true, Time: start})
			Expect(gain.Value()).To(Equal(11.0))
			d.Wheel(input.WheelEvent{Target: marked, DeltaY: -1, Modifier: true, Time: start.Add(25 * time.Millisecond)})
			Expect(gain.Value()).To(Equal(15.0))
		})

		It("ignores unmarked targets", func() {
			d.Wheel(input.WheelEvent{Target: input.Target{ID: "gain"}, DeltaY: -1, Time: start})
			Expect(gain.Value()).To(Equal(0.0))
			Expect(changes).To(BeEmpty())
		})
	})

	Context("with a removed knob", func() {
		It("ignores events for ids no longer registered", func() {
			Expect(reg.Remove("gain")).To(BeTrue())
			d.PointerDown(input.PointerEvent{Target: marked, OffsetX: 50, OffsetY: 5})
			Expect(d.Session().Active()).To(BeNil())
		})
	})
})
