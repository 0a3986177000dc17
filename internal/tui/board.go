package tui

import (
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/knobs/internal/input"
	"github.com/san-kum/knobs/internal/knob"
	"github.com/san-kum/knobs/internal/paint"
)

const (
	TileCols = 20
	TileRows = 8

	tileBoxW = TileCols + 2
	tileBoxH = TileRows + 4 // canvas, label, value, two border rows

	// HeaderLines is the height of the title block above the tiles.
	HeaderLines = 2
)

// LabelType marks board cells that belong to a tile but not to its knob.
const LabelType = "knob-label"

type tile struct {
	surface *knob.Surface
	frame   knob.Frame
	canvas  *Canvas
	drawn   bool
}

// Board is a terminal Container. Each mounted surface becomes a tile in a
// grid that wraps at the terminal width.
type Board struct {
	tiles []*tile
	byID  map[string]*tile
	theme Theme
	width int
}

func NewBoard(theme Theme) *Board {
	return &Board{byID: make(map[string]*tile), theme: theme, width: 80}
}

// Mount implements knob.Container.
func (b *Board) Mount(s *knob.Surface) knob.Renderer {
	t := &tile{surface: s, canvas: NewCanvas(TileCols, TileRows)}
	b.tiles = append(b.tiles, t)
	b.byID[s.ID] = t
	return knob.RendererFunc(func(f knob.Frame) {
		t.frame = f
		t.drawn = true
		b.paint(t)
	})
}

func (b *Board) SetWidth(w int) {
	if w > 0 {
		b.width = w
	}
}

func (b *Board) SetTheme(th Theme) {
	b.theme = th
	for _, t := range b.tiles {
		if t.drawn {
			b.paint(t)
		}
	}
}

func (b *Board) Theme() Theme { return b.theme }

// Len is the number of mounted tiles.
func (b *Board) Len() int { return len(b.tiles) }

// Frame returns the last frame drawn for id.
func (b *Board) Frame(id string) (knob.Frame, bool) {
	t, ok := b.byID[id]
	if !ok || !t.drawn {
		return knob.Frame{}, false
	}
	return t.frame, true
}

func (b *Board) perRow() int {
	return max(1, b.width/tileBoxW)
}

// origin returns the top-left cell of tile i's border box.
func (b *Board) origin(i int) (x, y int) {
	n := b.perRow()
	return (i % n) * tileBoxW, HeaderLines + (i/n)*tileBoxH
}

// HitTest maps a terminal cell to the element under it. Offsets are in the
// surface's own units and measured to the cell center.
func (b *Board) HitTest(x, y int) (target input.Target, offsetX, offsetY float64) {
	for i, t := range b.tiles {
		ox, oy := b.origin(i)
		if x < ox || x >= ox+tileBoxW || y < oy || y >= oy+tileBoxH {
			continue
		}
		cx, cy := x-(ox+1), y-(oy+1)
		if cx < 0 || cx >= TileCols || cy < 0 || cy >= TileRows {
			return input.Target{ID: t.surface.ID, Type: LabelType}, 0, 0
		}
		offsetX = (float64(cx) + 0.5) / TileCols * float64(t.surface.Width)
		offsetY = (float64(cy) + 0.5) / TileRows * float64(t.surface.Height)
		return input.TargetOf(t.surface), offsetX, offsetY
	}
	return input.Target{}, 0, 0
}

func (b *Board) paint(t *tile) {
	c := t.canvas
	c.Clear()
	w, h := c.Dots()
	f := t.frame
	g := paint.Layout(f, float64(w), float64(h))
	primary := toColorful(b.theme.Primary)

	track := lipgloss.Color(orDefault(f.Style.TrackFill, string(b.theme.Muted)))
	for _, p := range g.Track.Points(g.Center, 4) {
		c.Set(round(p.X), round(p.Y), track)
	}

	pts := g.Indicator.Points(g.Center, 3)
	for i, p := range pts {
		at := 0.0
		if len(pts) > 1 {
			at = float64(i) / float64(len(pts)-1)
		}
		col := paint.Sample(g.IndicatorFill, at, primary)
		c.Set(round(p.X), round(p.Y), lipgloss.Color(col.Hex()))
	}

	wheel := lipgloss.Color(f.Style.OuterWheelFill.First(string(b.theme.Border)))
	c.DrawCircle(round(g.Center.X), round(g.Center.Y), round(g.Wheel.Radius), wheel)

	accent := b.theme.Accent
	if f.Variant == knob.VariantGradient {
		c.DrawCircle(round(g.Dot.Center.X), round(g.Dot.Center.Y), round(g.Dot.Radius), accent)
	} else {
		c.DrawLine(round(g.Center.X), round(g.Center.Y), round(g.Pointer.X), round(g.Pointer.Y), accent)
	}

	for i, r := range g.Rings {
		col := paint.Sample(f.Style.RingFill, float64(i)/float64(len(g.Rings)), toColorful(b.theme.Secondary))
		c.DrawCircle(round(r.Center.X), round(r.Center.Y), round(r.Radius), lipgloss.Color(col.Hex()))
	}
}

// View renders the tiles. The focused tile gets the primary border color.
func (b *Board) View(focus string) string {
	if len(b.tiles) == 0 {
		return ""
	}
	n := b.perRow()
	var rows []string
	for start := 0; start < len(b.tiles); start += n {
		end := min(start+n, len(b.tiles))
		boxes := make([]string, 0, end-start)
		for _, t := range b.tiles[start:end] {
			boxes = append(boxes, b.tileView(t, t.surface.ID == focus))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (b *Board) tileView(t *tile, focused bool) string {
	border := b.theme.Border
	if focused {
		border = b.theme.Primary
	}
	label := t.surface.Title
	if label == "" {
		label = t.surface.ID
	}
	labelStyle := lipgloss.NewStyle().Foreground(b.theme.Muted).Width(TileCols).Align(lipgloss.Center)
	valueStyle := lipgloss.NewStyle().Foreground(b.theme.Text).Bold(focused).Width(TileCols).Align(lipgloss.Center)

	lines := append(t.canvas.Lines(),
		labelStyle.Render(truncate(label, TileCols)),
		valueStyle.Render(truncate(FormatValue(t.frame), TileCols)),
	)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Width(TileCols).
		Render(strings.Join(lines, "\n"))
}

// FormatValue renders the frame value with its unit.
func FormatValue(f knob.Frame) string {
	s := strconv.FormatFloat(f.Value, 'f', decimals(f), 64)
	if f.Unit != "" {
		s += " " + f.Unit
	}
	return s
}

func decimals(f knob.Frame) int {
	span := f.Max - f.Min
	switch {
	case span <= 2:
		return 2
	case span <= 20:
		return 1
	}
	return 0
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func toColorful(c lipgloss.Color) colorful.Color {
	return paint.ParseColor(string(c), colorful.Color{R: 1, G: 1, B: 1})
}

func round(v float64) int { return int(math.Round(v)) }
