package paint

import (
	"sort"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/knobs/internal/knob"
)

// ParseColor parses a #rrggbb or #rgb color, returning fallback on failure.
func ParseColor(s string, fallback colorful.Color) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		return fallback
	}
	return c
}

// Sample returns the color of g at offset t in [0, 1], blending the two
// surrounding stops in Lab space. Unparsable stops are skipped.
func Sample(g knob.Gradient, t float64, fallback colorful.Color) colorful.Color {
	type stop struct {
		at float64
		c  colorful.Color
	}
	stops := make([]stop, 0, len(g))
	for _, s := range g {
		c, err := colorful.Hex(s.Color)
		if err != nil {
			continue
		}
		stops = append(stops, stop{at: s.Offset, c: c})
	}
	if len(stops) == 0 {
		return fallback
	}
	sort.SliceStable(stops, func(i, j int) bool { return stops[i].at < stops[j].at })

	if t <= stops[0].at {
		return stops[0].c
	}
	last := stops[len(stops)-1]
	if t >= last.at {
		return last.c
	}
	for i := 1; i < len(stops); i++ {
		lo, hi := stops[i-1], stops[i]
		if t > hi.at {
			continue
		}
		span := hi.at - lo.at
		if span <= 0 {
			return hi.c
		}
		return lo.c.BlendLab(hi.c, (t-lo.at)/span).Clamped()
	}
	return last.c
}
