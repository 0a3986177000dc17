package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/knobs/internal/input"
)

// Sender forwards work from other goroutines into a running program.
type Sender struct {
	p *tea.Program
}

func NewSender(p *tea.Program) *Sender { return &Sender{p: p} }

// Post queues ev for the dispatcher. It blocks until the program accepts
// the message or has exited.
func (s *Sender) Post(ev input.Event) bool {
	s.p.Send(EventMsg(ev))
	return true
}

// SetFraction places knob id at fraction of its range.
func (s *Sender) SetFraction(id string, fraction float64) {
	s.p.Send(SetFractionMsg{ID: id, Fraction: fraction})
}
