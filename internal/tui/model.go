package tui

import (
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/knobs/internal/input"
	"github.com/san-kum/knobs/internal/knob"
)

const historyLen = 120

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688")).Italic(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffaa44"))
)

// EventMsg carries an input event posted from another goroutine.
type EventMsg input.Event

// SetFractionMsg places a knob at a fraction of its range.
type SetFractionMsg struct {
	ID       string
	Fraction float64
}

// Model is the bubbletea model of a knob board. It owns the knobs: every
// mutation happens inside Update.
type Model struct {
	name       string
	board      *Board
	registry   *knob.Registry
	dispatcher *input.Dispatcher
	order      []string
	focus      int
	history    map[string][]float64
	onChange   func(*knob.Knob)
	startFocus string
	log        *slog.Logger
	now        func() time.Time

	lastY  int
	status string
	width  int
	height int
}

type Option func(*Model)

func WithName(name string) Option { return func(m *Model) { m.name = name } }

func WithTheme(name string) Option {
	return func(m *Model) { m.board.SetTheme(GetTheme(name)) }
}

// WithFocus highlights knob id on start. Unknown ids keep the first knob.
func WithFocus(id string) Option { return func(m *Model) { m.startFocus = id } }

func WithLogger(l *slog.Logger) Option { return func(m *Model) { m.log = l } }

// WithOnChange adds a callback run after the board records a change.
func WithOnChange(fn func(*knob.Knob)) Option { return func(m *Model) { m.onChange = fn } }

// WithClock replaces time.Now for gesture timestamps.
func WithClock(now func() time.Time) Option { return func(m *Model) { m.now = now } }

// New mounts knobs on a fresh board. The knobs must be registered in reg.
func New(reg *knob.Registry, knobs []*knob.Knob, opts ...Option) *Model {
	m := &Model{
		board:    NewBoard(ThemeDefault),
		registry: reg,
		history:  make(map[string][]float64),
		log:      slog.New(slog.DiscardHandler),
		now:      time.Now,
		width:    80,
		height:   24,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.dispatcher = input.NewDispatcher(reg, input.WithLogger(m.log), input.WithClock(m.now))
	for _, k := range knobs {
		m.order = append(m.order, k.ID())
		m.history[k.ID()] = []float64{k.Value()}
		k.OnChange(m.changed)
		k.Attach("knob", m.board)
	}
	m.focusOn(input.Target{ID: m.startFocus})
	return m
}

// NewProgram returns a full-screen program with mouse motion reporting.
func NewProgram(m *Model) *tea.Program {
	return tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
}

func (m *Model) Board() *Board { return m.board }
func (m *Model) Dispatcher() *input.Dispatcher { return m.dispatcher }

// Focused returns the id of the focused knob.
func (m *Model) Focused() string {
	if len(m.order) == 0 {
		return ""
	}
	return m.order[m.focus]
}

// History returns the recorded values of id, oldest first.
func (m *Model) History(id string) []float64 { return m.history[id] }

func (m *Model) changed(k *knob.Knob) {
	h := append(m.history[k.ID()], k.Value())
	if len(h) > historyLen {
		h = h[len(h)-historyLen:]
	}
	m.history[k.ID()] = h
	if m.onChange != nil {
		m.onChange(k)
	}
}

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.board.SetWidth(msg.Width)
	case tea.MouseMsg:
		m.handleMouse(msg)
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case EventMsg:
		m.dispatcher.Dispatch(input.Event(msg))
	case SetFractionMsg:
		m.setFraction(msg)
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	now := m.now()
	switch {
	case msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown:
		if msg.Action != tea.MouseActionPress {
			return
		}
		target, _, _ := m.board.HitTest(msg.X, msg.Y)
		dy := 1.0
		if msg.Button == tea.MouseButtonWheelUp {
			dy = -1
		}
		m.focusOn(target)
		m.dispatcher.Wheel(input.WheelEvent{Target: target, DeltaY: dy, Modifier: msg.Ctrl, Time: now})

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		target, x, y := m.board.HitTest(msg.X, msg.Y)
		m.lastY = msg.Y
		m.focusOn(target)
		m.dispatcher.PointerDown(input.PointerEvent{Target: target, OffsetX: x, OffsetY: y, Buttons: input.ButtonPrimary, Time: now})

	case msg.Action == tea.MouseActionMotion:
		target, x, y := m.board.HitTest(msg.X, msg.Y)
		var buttons input.Buttons
		if msg.Button == tea.MouseButtonLeft {
			buttons = input.ButtonPrimary
		}
		dy := float64(msg.Y - m.lastY)
		m.lastY = msg.Y
		m.dispatcher.PointerMove(input.PointerEvent{Target: target, OffsetX: x, OffsetY: y, MovementY: dy, Buttons: buttons, Time: now})

	case msg.Action == tea.MouseActionRelease:
		target, x, y := m.board.HitTest(msg.X, msg.Y)
		m.dispatcher.PointerUp(input.PointerEvent{Target: target, OffsetX: x, OffsetY: y, Time: now})
	}
}

// handleKey covers host navigation only. Knob values change through the
// pointer and the wheel.
func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case "tab", "right", "l":
		m.moveFocus(1)
	case "shift+tab", "left", "h":
		m.moveFocus(-1)
	case "t":
		th := NextTheme(m.board.Theme())
		m.board.SetTheme(th)
		m.status = "theme: " + th.Name
	}
	return nil
}

func (m *Model) setFraction(msg SetFractionMsg) {
	k, err := m.registry.Lookup(msg.ID)
	if err != nil {
		m.log.Debug("fraction for unknown knob", "id", msg.ID)
		return
	}
	k.SetValue(k.Min() + msg.Fraction*(k.Max()-k.Min()))
}

func (m *Model) moveFocus(d int) {
	if len(m.order) == 0 {
		return
	}
	m.focus = (m.focus + d + len(m.order)) % len(m.order)
}

func (m *Model) focusOn(t input.Target) {
	for i, id := range m.order {
		if id == t.ID {
			m.focus = i
			return
		}
	}
}

func (m *Model) View() string {
	var b strings.Builder
	th := m.board.Theme()
	title := "knobs"
	if m.name != "" {
		title += " · " + m.name
	}
	b.WriteString(titleStyle.Foreground(th.Primary).Render(title))
	b.WriteString("\n\n")
	b.WriteString(m.board.View(m.Focused()))
	b.WriteString("\n")

	if id := m.Focused(); id != "" {
		if hist := m.history[id]; len(hist) >= 2 {
			width := min(60, max(10, m.width-12))
			b.WriteString("\n")
			b.WriteString(asciigraph.Plot(hist, asciigraph.Height(5), asciigraph.Width(width), asciigraph.Caption(id)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
	} else {
		b.WriteString(hintStyle.Render("drag/wheel: adjust · ctrl+wheel: fast · tab: focus · t: theme · q: quit"))
	}
	return b.String()
}
