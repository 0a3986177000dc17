// Package export writes knob frames as standalone SVG documents.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/knobs/internal/knob"
	"github.com/san-kum/knobs/internal/paint"
)

const (
	background   = "#0a0a0a"
	defaultTrack = "#333333"
	defaultWheel = "#2e2e2e"
	defaultInner = "#1f1f1f"
	defaultFill  = "#ffffff"
	defaultText  = "#8c8c8c"
	labelHeight  = 24
)

// FrameToSVG renders a single frame as an SVG document sized to the frame.
func FrameToSVG(f knob.Frame) string {
	w, h := f.Size.Width, f.Size.Height
	var sb strings.Builder
	header(&sb, w, h)
	writeKnob(&sb, f, 0, 0, float64(w), float64(h))
	sb.WriteString("</svg>")
	return sb.String()
}

func header(sb *strings.Builder, w, h int) {
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, w, h, w, h, background))
}

// writeKnob draws f into the w x h box at (x, y).
func writeKnob(sb *strings.Builder, f knob.Frame, x, y, w, h float64) {
	g := paint.Layout(f, w, h)
	id := sanitize(f.ID)
	lw := g.LineWidth

	sb.WriteString(fmt.Sprintf(`<g class="knob" id="%s" transform="translate(%.1f,%.1f)">
<defs>
`, id, x, y))
	linear(sb, id+"-indicator", g.IndicatorFill, f.Style.IndicatorGradientOrientation)
	radial(sb, id+"-outer", f.Style.OuterWheelFill)
	linear(sb, id+"-inner", f.Style.InnerWheelFill, f.Style.InnerGradientOrientation)
	linear(sb, id+"-rings", f.Style.RingFill, knob.Horizontal)
	sb.WriteString("</defs>\n")

	sb.WriteString(fmt.Sprintf(`<polyline class="track" fill="none" stroke="%s" stroke-width="%.2f" stroke-linecap="round" points="%s"/>
`, orDefault(f.Style.TrackFill, defaultTrack), lw, points(g.Track.Points(g.Center, 2))))
	if f.Style.TrackStroke != "" {
		sb.WriteString(fmt.Sprintf(`<polyline class="track-stroke" fill="none" stroke="%s" stroke-width="1" points="%s"/>
`, f.Style.TrackStroke, points(g.Track.Points(g.Center, 2))))
	}
	sb.WriteString(fmt.Sprintf(`<polyline class="indicator" fill="none" stroke="%s" stroke-width="%.2f" stroke-linecap="round" points="%s"/>
`, paintRef(id+"-indicator", g.IndicatorFill, defaultFill), lw, points(g.Indicator.Points(g.Center, 2))))

	if f.Style.ShadowFill != "" {
		sb.WriteString(fmt.Sprintf(`<circle class="shadow" cx="%.2f" cy="%.2f" r="%.2f" fill="%s" opacity="0.5"/>
`, g.Wheel.Center.X, g.Wheel.Center.Y+g.Wheel.Radius/5, g.Wheel.Radius, f.Style.ShadowFill))
	}
	circle(sb, "outer", g.Wheel, paintRef(id+"-outer", f.Style.OuterWheelFill, defaultWheel))
	circle(sb, "inner", g.Inner, paintRef(id+"-inner", f.Style.InnerWheelFill, defaultInner))

	if f.Variant == knob.VariantGradient {
		circle(sb, "dot", g.Dot, defaultFill)
	} else {
		sb.WriteString(fmt.Sprintf(`<line class="pointer" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="%.2f" stroke-linecap="round"/>
`, g.Center.X, g.Center.Y, g.Pointer.X, g.Pointer.Y, defaultFill, lw/2))
	}
	for _, r := range g.Rings {
		circle(sb, "ring", r, paintRef(id+"-rings", f.Style.RingFill, defaultFill))
	}
	sb.WriteString("</g>\n")
}

func linear(sb *strings.Builder, id string, g knob.Gradient, o knob.Orientation) {
	if len(g) == 0 {
		return
	}
	x2, y2 := 1, 0
	if o == knob.Vertical {
		x2, y2 = 0, 1
	}
	sb.WriteString(fmt.Sprintf(`<linearGradient id="%s" x1="0" y1="0" x2="%d" y2="%d">
`, id, x2, y2))
	stops(sb, g)
	sb.WriteString("</linearGradient>\n")
}

func radial(sb *strings.Builder, id string, g knob.Gradient) {
	if len(g) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf(`<radialGradient id="%s">
`, id))
	stops(sb, g)
	sb.WriteString("</radialGradient>\n")
}

func stops(sb *strings.Builder, g knob.Gradient) {
	for _, s := range g {
		sb.WriteString(fmt.Sprintf(`<stop offset="%.3f" stop-color="%s"/>
`, clamp01(s.Offset), s.Color))
	}
}

func circle(sb *strings.Builder, class string, c paint.Circle, fill string) {
	if c.Radius <= 0 {
		return
	}
	sb.WriteString(fmt.Sprintf(`<circle class="%s" cx="%.2f" cy="%.2f" r="%.2f" fill="%s"/>
`, class, c.Center.X, c.Center.Y, c.Radius, fill))
}

// paintRef references the gradient id, or falls back to a flat color when g
// has no stops.
func paintRef(id string, g knob.Gradient, fallback string) string {
	switch len(g) {
	case 0:
		return fallback
	case 1:
		return g[0].Color
	}
	return fmt.Sprintf("url(#%s)", id)
}

func points(pts []paint.Point) string {
	var sb strings.Builder
	for i, p := range pts {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(fmt.Sprintf("%.2f,%.2f", p.X, p.Y))
	}
	return sb.String()
}

func sanitize(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, id)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}

// Sheet is a knob.Container that lays knobs out in a row-major grid and
// writes them as one SVG document.
type Sheet struct {
	Columns int
	frames  []*knob.Frame
	titles  []string
}

func NewSheet(columns int) *Sheet {
	if columns < 1 {
		columns = 1
	}
	return &Sheet{Columns: columns}
}

// Mount implements knob.Container. The sheet keeps the latest frame of each
// knob.
func (s *Sheet) Mount(surface *knob.Surface) knob.Renderer {
	f := &knob.Frame{}
	s.frames = append(s.frames, f)
	s.titles = append(s.titles, orDefault(surface.Title, surface.ID))
	return knob.RendererFunc(func(next knob.Frame) { *f = next })
}

// Len is the number of mounted knobs.
func (s *Sheet) Len() int { return len(s.frames) }

func (s *Sheet) cell() (w, h int) {
	for _, f := range s.frames {
		w = max(w, f.Size.Width)
		h = max(h, f.Size.Height)
	}
	return w, h + labelHeight
}

// String renders every mounted knob with its title and value.
func (s *Sheet) String() string {
	cw, ch := s.cell()
	cols := min(s.Columns, max(1, len(s.frames)))
	rows := (len(s.frames) + cols - 1) / cols

	var sb strings.Builder
	header(&sb, cols*cw, rows*ch)
	for i, f := range s.frames {
		x := float64((i % cols) * cw)
		y := float64((i / cols) * ch)
		writeKnob(&sb, *f, x, y, float64(f.Size.Width), float64(f.Size.Height))

		label := s.titles[i]
		value := fmt.Sprintf("%g", f.Value)
		if f.Unit != "" {
			value += " " + f.Unit
		}
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" fill="%s" font-family="monospace" font-size="12" text-anchor="middle">%s: %s</text>
`, x+float64(f.Size.Width)/2, y+float64(f.Size.Height)+16, defaultText, escape(label), escape(value)))
	}
	sb.WriteString("</svg>")
	return sb.String()
}

// WriteTo writes the sheet to w.
func (s *Sheet) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, s.String())
	return int64(n), err
}

func escape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;").Replace(s)
}
