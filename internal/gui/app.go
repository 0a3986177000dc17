// Package gui hosts knobs in a raylib window.
package gui

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/knobs/internal/input"
	"github.com/san-kum/knobs/internal/knob"
	"github.com/san-kum/knobs/internal/paint"
)

// Theme Colors (Monochrome Hyper-Minimalist)
var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColAccent  = rl.NewColor(180, 180, 180, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
	ColGrid    = rl.NewColor(30, 30, 30, 255)
)

const (
	windowW = 1280
	windowH = 720

	panelW   = 200
	panelH   = 240
	panelGap = 24
	marginX  = 40
	marginY  = 90

	maxTelemetry = 200
)

type panel struct {
	surface *knob.Surface
	frame   knob.Frame
	rect    rl.Rectangle
}

// App is a knob.Container drawing into a raylib window.
type App struct {
	Registry   *knob.Registry
	Dispatcher *input.Dispatcher
	Title      string
	Font       rl.Font
	Telemetry  []float64 // values of the focused knob

	panels []*panel
	byID   map[string]*panel
	focus  int
	log    *slog.Logger
}

// initWindow opens the window at 60 FPS with the exit key disabled.
func initWindow(title string) {
	rl.InitWindow(windowW, windowH, title)
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)
}

// loadFont loads Liberation Mono, falling back to the built-in font.
func loadFont() rl.Font {
	font := rl.LoadFontEx("/usr/share/fonts/liberation/LiberationMono-Regular.ttf", 32, nil, 0)
	if font.Texture.ID == 0 {
		return rl.GetFontDefault()
	}
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font
}

// NewApp mounts knobs in a grid. The window must already be open.
func NewApp(title string, reg *knob.Registry, knobs []*knob.Knob, log *slog.Logger) *App {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	a := &App{
		Registry:   reg,
		Dispatcher: input.NewDispatcher(reg, input.WithLogger(log)),
		Title:      title,
		Font:       loadFont(),
		Telemetry:  make([]float64, 0, maxTelemetry),
		byID:       make(map[string]*panel),
		log:        log,
	}
	for _, k := range knobs {
		k.OnChange(a.record)
		k.Attach("knob", a)
	}
	return a
}

// Run opens the window and blocks until it is closed.
func Run(title string, reg *knob.Registry, knobs []*knob.Knob, log *slog.Logger) {
	initWindow(title)
	defer rl.CloseWindow()
	app := NewApp(title, reg, knobs, log)
	app.RunLoop()
}

// Mount implements knob.Container. Frames are kept and drawn every tick.
func (a *App) Mount(s *knob.Surface) knob.Renderer {
	i := len(a.panels)
	cols := max(1, (windowW-2*marginX+panelGap)/(panelW+panelGap))
	p := &panel{
		surface: s,
		rect: rl.NewRectangle(
			float32(marginX+(i%cols)*(panelW+panelGap)),
			float32(marginY+(i/cols)*(panelH+panelGap)),
			panelW, panelH,
		),
	}
	a.panels = append(a.panels, p)
	a.byID[s.ID] = p
	return knob.RendererFunc(func(f knob.Frame) { p.frame = f })
}

func (a *App) record(k *knob.Knob) {
	if a.focused() != k.ID() {
		return
	}
	a.Telemetry = append(a.Telemetry, k.Value())
	if len(a.Telemetry) > maxTelemetry {
		a.Telemetry = a.Telemetry[len(a.Telemetry)-maxTelemetry:]
	}
}

func (a *App) focused() string {
	if len(a.panels) == 0 {
		return ""
	}
	return a.panels[a.focus].surface.ID
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() {
		if !a.Update() {
			return
		}
		a.Draw()
	}
}

// knobArea is the square of a panel the knob is drawn in.
func knobArea(r rl.Rectangle) rl.Rectangle {
	return rl.NewRectangle(r.X, r.Y, r.Width, r.Width)
}

// hitTest returns the target under pos and the offset in surface units.
func (a *App) hitTest(pos rl.Vector2) (input.Target, float64, float64) {
	for _, p := range a.panels {
		area := knobArea(p.rect)
		if !rl.CheckCollisionPointRec(pos, area) {
			continue
		}
		x := float64(pos.X-area.X) / float64(area.Width) * float64(p.surface.Width)
		y := float64(pos.Y-area.Y) / float64(area.Height) * float64(p.surface.Height)
		return input.TargetOf(p.surface), x, y
	}
	return input.Target{}, 0, 0
}

// Update feeds one frame of pointer input to the dispatcher. Keys only move
// the focus or quit. It reports false when the user asked to quit.
func (a *App) Update() bool {
	if rl.IsKeyPressed(rl.KeyQ) {
		return false
	}
	now := time.Now()
	mouse := rl.GetMousePosition()
	target, x, y := a.hitTest(mouse)

	if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
		a.focusOn(target)
		a.Dispatcher.PointerDown(input.PointerEvent{Target: target, OffsetX: x, OffsetY: y, Buttons: input.ButtonPrimary, Time: now})
	}
	if delta := rl.GetMouseDelta(); delta.X != 0 || delta.Y != 0 {
		var buttons input.Buttons
		if rl.IsMouseButtonDown(rl.MouseLeftButton) {
			buttons = input.ButtonPrimary
		}
		a.Dispatcher.PointerMove(input.PointerEvent{Target: target, OffsetX: x, OffsetY: y, MovementY: float64(delta.Y), Buttons: buttons, Time: now})
	}
	if rl.IsMouseButtonReleased(rl.MouseLeftButton) {
		a.Dispatcher.PointerUp(input.PointerEvent{Target: target, OffsetX: x, OffsetY: y, Time: now})
	}
	// raylib reports wheel up as positive.
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		modifier := rl.IsKeyDown(rl.KeyLeftControl) || rl.IsKeyDown(rl.KeyRightControl)
		a.focusOn(target)
		a.Dispatcher.Wheel(input.WheelEvent{Target: target, DeltaY: float64(-wheel), Modifier: modifier, Time: now})
	}

	if rl.IsKeyPressed(rl.KeyTab) && len(a.panels) > 0 {
		a.focus = (a.focus + 1) % len(a.panels)
		a.Telemetry = a.Telemetry[:0]
	}
	return true
}

func (a *App) focusedPanel() *panel {
	if len(a.panels) == 0 {
		return nil
	}
	return a.panels[a.focus]
}

func (a *App) focusOn(t input.Target) {
	for i, p := range a.panels {
		if p.surface.ID == t.ID && i != a.focus {
			a.focus = i
			a.Telemetry = a.Telemetry[:0]
			return
		}
	}
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	for i, p := range a.panels {
		a.drawPanel(p, i == a.focus)
	}
	a.DrawHUD()

	rl.EndDrawing()
}

func (a *App) DrawHUD() {
	a.drawText("knobs", 30, 30, 24, ColSelect)
	a.drawText(fmt.Sprintf(":: %s", a.Title), 120, 34, 16, ColText)
	a.DrawTelemetry()
	a.drawText("[DRAG/WHEEL] ADJUST  [CTRL] FAST  [TAB] FOCUS  [Q] QUIT", 700, 680, 14, ColTextDim)
	a.drawText(fmt.Sprintf("%d FPS", int32(rl.GetFPS())), 30, 680, 14, ColTextDim)
}

func (a *App) drawText(text string, x, y int, size int, color rl.Color) {
	rl.DrawTextEx(a.Font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
}

func (a *App) drawPanel(p *panel, focused bool) {
	border := ColGrid
	if focused {
		border = ColAccent
	}
	rl.DrawRectangleLinesEx(p.rect, 1, border)

	area := knobArea(p.rect)
	f := p.frame
	g := paint.Layout(f, float64(area.Width), float64(area.Height))
	at := func(pt paint.Point) rl.Vector2 {
		return rl.NewVector2(area.X+float32(pt.X), area.Y+float32(pt.Y))
	}
	lw := float32(g.LineWidth)

	track := toRL(paint.ParseColor(f.Style.TrackFill, colorful.Color{R: 0.2, G: 0.2, B: 0.2}))
	strip(g.Track.Points(g.Center, 3), at, lw, func(float64) rl.Color { return track })

	white := colorful.Color{R: 1, G: 1, B: 1}
	strip(g.Indicator.Points(g.Center, 2), at, lw, func(t float64) rl.Color {
		return toRL(paint.Sample(g.IndicatorFill, t, white))
	})

	c := at(g.Center)
	outerIn := toRL(paint.Sample(f.Style.OuterWheelFill, 0, colorful.Color{R: 0.35, G: 0.35, B: 0.35}))
	outerOut := toRL(paint.Sample(f.Style.OuterWheelFill, 1, colorful.Color{R: 0.12, G: 0.12, B: 0.12}))
	if f.Style.ShadowFill != "" {
		shadow := toRL(paint.ParseColor(f.Style.ShadowFill, colorful.Color{}))
		shadow.A = 120
		rl.DrawCircleV(rl.NewVector2(c.X, c.Y+float32(g.Wheel.Radius)/5), float32(g.Wheel.Radius), shadow)
	}
	rl.DrawCircleGradient(int32(c.X), int32(c.Y), float32(g.Wheel.Radius), outerIn, outerOut)
	inner := toRL(paint.Sample(f.Style.InnerWheelFill, 0.5, colorful.Color{R: 0.18, G: 0.18, B: 0.18}))
	rl.DrawCircleV(c, float32(g.Inner.Radius), inner)

	if f.Variant == knob.VariantGradient {
		rl.DrawCircleV(at(g.Dot.Center), float32(g.Dot.Radius), ColSelect)
	} else {
		rl.DrawLineEx(c, at(g.Pointer), lw/2, ColSelect)
	}

	for i, r := range g.Rings {
		col := toRL(paint.Sample(f.Style.RingFill, float64(i)/float64(len(g.Rings)), colorful.Color{R: 0.7, G: 0.7, B: 0.7}))
		rl.DrawCircleLines(int32(area.X+float32(r.Center.X)), int32(area.Y+float32(r.Center.Y)), float32(r.Radius), col)
	}

	label := p.surface.Title
	if label == "" {
		label = p.surface.ID
	}
	value := strconv.FormatFloat(f.Value, 'f', 2, 64)
	if f.Unit != "" {
		value += " " + f.Unit
	}
	a.drawText(label, int(p.rect.X)+10, int(p.rect.Y+area.Height)+4, 16, ColText)
	a.drawText(value, int(p.rect.X)+10, int(p.rect.Y+area.Height)+20, 14, ColSelect)
}

// strip draws connected thick segments, coloring each by its position.
func strip(pts []paint.Point, at func(paint.Point) rl.Vector2, thick float32, color func(t float64) rl.Color) {
	for i := 1; i < len(pts); i++ {
		t := float64(i) / float64(len(pts)-1)
		rl.DrawLineEx(at(pts[i-1]), at(pts[i]), thick, color(t))
	}
}

func (a *App) DrawTelemetry() {
	if len(a.Telemetry) < 2 {
		return
	}
	p := a.focusedPanel()
	if p == nil {
		return
	}

	rectX, rectY := 30, 600
	width, height := 400, 60
	minVal, maxVal := p.frame.Min, p.frame.Max

	points := make([]rl.Vector2, len(a.Telemetry))
	for i, val := range a.Telemetry {
		px := float32(rectX) + (float32(i)/float32(len(a.Telemetry)))*float32(width)
		norm := (val - minVal) / (maxVal - minVal)
		py := float32(rectY+height) - float32(norm)*float32(height)
		points[i] = rl.NewVector2(px, py)
	}

	rl.DrawLineStrip(points, ColAccent)
	a.drawText(fmt.Sprintf("%s: %.2f", p.surface.ID, a.Telemetry[len(a.Telemetry)-1]), rectX+width+10, rectY+height-10, 14, ColText)
}

func toRL(c colorful.Color) rl.Color {
	r, g, b := c.Clamped().RGB255()
	return rl.NewColor(r, g, b, 255)
}
