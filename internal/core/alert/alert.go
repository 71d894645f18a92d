// Package alert implements the transient success notice shown after a
// conversion.
package alert

import (
	"sync"
	"time"
)

// DefaultDuration is how long a notice stays visible.
const DefaultDuration = 3 * time.Second

// State is the visibility of the notice.
type State int

const (
	Hidden State = iota
	Visible
)

func (s State) String() string {
	if s == Visible {
		return "visible"
	}
	return "hidden"
}

// Timer is a cancellable one-shot timer.
type Timer interface {
	Stop() bool
}

// AfterFunc arms a timer that calls f once after d.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithAfterFunc replaces the timer factory, for tests.
func WithAfterFunc(fn AfterFunc) Option {
	return func(s *Scheduler) { s.afterFunc = fn }
}

// WithOnChange registers a hook called after every state transition.
func WithOnChange(fn func(State)) Option {
	return func(s *Scheduler) { s.onChange = fn }
}

// Scheduler owns the notice flag and the single timer that hides it.
type Scheduler struct {
	mu        sync.Mutex
	state     State
	duration  time.Duration
	timer     Timer
	gen       uint64
	afterFunc AfterFunc
	onChange  func(State)
}

// New creates a hidden Scheduler. A non-positive d uses DefaultDuration.
func New(d time.Duration, opts ...Option) *Scheduler {
	if d <= 0 {
		d = DefaultDuration
	}

	s := &Scheduler{
		duration:  d,
		afterFunc: realAfterFunc,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnChange replaces the transition hook.
func (s *Scheduler) OnChange(fn func(State)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Show makes the notice visible and (re)arms the hide timer. Showing while
// already visible restarts the countdown.
func (s *Scheduler) Show() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.timer = s.afterFunc(s.duration, func() { s.expire(gen) })

	changed := s.state != Visible
	s.state = Visible
	hook := s.onChange
	s.mu.Unlock()

	if changed && hook != nil {
		hook(Visible)
	}
}

// expire hides the notice unless a later Show superseded this timer.
func (s *Scheduler) expire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.state != Visible {
		s.mu.Unlock()
		return
	}
	s.state = Hidden
	s.timer = nil
	hook := s.onChange
	s.mu.Unlock()

	if hook != nil {
		hook(Hidden)
	}
}

// Stop cancels any pending timer and hides the notice.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
	changed := s.state != Hidden
	s.state = Hidden
	hook := s.onChange
	s.mu.Unlock()

	if changed && hook != nil {
		hook(Hidden)
	}
}

// State returns the current visibility.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Visible reports whether the notice is showing.
func (s *Scheduler) Visible() bool {
	return s.State() == Visible
}
