package input

import (
	"context"
	"errors"
	"sync"
)

// ErrLoopStopped is returned by Do once Run has returned.
var ErrLoopStopped = errors.New("input: loop stopped")

// Loop serializes events and callbacks from many goroutines onto the single
// goroutine that calls Run. Knobs and dispatchers are only touched from
// there.
type Loop struct {
	events chan Event
	calls  chan func()
	done   chan struct{}

	mu       sync.Mutex
	listener Listener
	stopOnce sync.Once
}

// NewLoop returns a loop whose event queue holds buffer pending events.
func NewLoop(buffer int) *Loop {
	if buffer < 1 {
		buffer = 1
	}
	return &Loop{
		events: make(chan Event, buffer),
		calls:  make(chan func()),
		done:   make(chan struct{}),
	}
}

// Subscribe implements Source. A later subscription replaces the earlier
// one.
func (lp *Loop) Subscribe(l Listener) func() {
	lp.mu.Lock()
	lp.listener = l
	lp.mu.Unlock()
	return func() {
		lp.mu.Lock()
		if lp.listener == l {
			lp.listener = nil
		}
		lp.mu.Unlock()
	}
}

// Post queues ev without blocking. It reports false when the queue is full
// or the loop has stopped.
func (lp *Loop) Post(ev Event) bool {
	select {
	case <-lp.done:
		return false
	default:
	}
	select {
	case lp.events <- ev:
		return true
	default:
		return false
	}
}

// Do runs fn on the loop goroutine and waits for it to return.
func (lp *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	call := func() {
		defer close(finished)
		fn()
	}
	select {
	case lp.calls <- call:
	case <-lp.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes queued events and calls until ctx is cancelled.
func (lp *Loop) Run(ctx context.Context) error {
	defer lp.stopOnce.Do(func() { close(lp.done) })
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-lp.events:
			if l := lp.current(); l != nil {
				Deliver(l, ev)
			}
		case fn := <-lp.calls:
			fn()
		}
	}
}

// Pending is the number of queued events.
func (lp *Loop) Pending() int { return len(lp.events) }

func (lp *Loop) current() Listener {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	return lp.listener
}
