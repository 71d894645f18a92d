package alert

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualClock fires timers only when advanced.
type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		t.f()
	}
}

func newTestScheduler(opts ...Option) (*Scheduler, *manualClock) {
	clock := &manualClock{}
	opts = append([]Option{WithAfterFunc(clock.AfterFunc)}, opts...)
	return New(3*time.Second, opts...), clock
}

func TestScheduler_StartsHidden(t *testing.T) {
	s, _ := newTestScheduler()
	assert.Equal(t, Hidden, s.State())
	assert.False(t, s.Visible())
}

func TestScheduler_ShowThenAutoHide(t *testing.T) {
	s, clock := newTestScheduler()

	s.Show()
	assert.True(t, s.Visible())

	clock.Advance(1 * time.Second)
	assert.Equal(t, Visible, s.State(), "visible at T+1s")

	clock.Advance(2500 * time.Millisecond)
	assert.Equal(t, Hidden, s.State(), "hidden at T+3.5s")
}

func TestScheduler_RetriggerRestartsTimer(t *testing.T) {
	s, clock := newTestScheduler()

	s.Show()
	clock.Advance(2 * time.Second)
	s.Show()

	clock.Advance(2 * time.Second)
	assert.Equal(t, Visible, s.State(), "first timer must not hide a re-armed notice")

	clock.Advance(1500 * time.Millisecond)
	assert.Equal(t, Hidden, s.State())
}

func TestScheduler_StaleCallbackIgnored(t *testing.T) {
	var armed []func()
	capture := func(_ time.Duration, f func()) Timer {
		armed = append(armed, f)
		return &manualTimer{}
	}
	s := New(time.Second, WithAfterFunc(capture))

	s.Show()
	s.Show()
	require.Len(t, armed, 2)

	// a superseded timer that fires anyway (Stop raced with expiry)
	armed[0]()
	assert.Equal(t, Visible, s.State())

	armed[1]()
	assert.Equal(t, Hidden, s.State())
}

func TestScheduler_OnChange(t *testing.T) {
	var got []State
	s, clock := newTestScheduler(WithOnChange(func(st State) { got = append(got, st) }))

	s.Show()
	s.Show()
	clock.Advance(4 * time.Second)

	assert.Equal(t, []State{Visible, Hidden}, got, "re-arming does not emit a duplicate transition")
}

func TestScheduler_Stop(t *testing.T) {
	s, clock := newTestScheduler()

	s.Show()
	s.Stop()
	assert.Equal(t, Hidden, s.State())

	clock.Advance(5 * time.Second)
	assert.Equal(t, Hidden, s.State())

	s.Show()
	assert.Equal(t, Visible, s.State())
}

func TestScheduler_RealTimer(t *testing.T) {
	hidden := make(chan struct{})
	s := New(20*time.Millisecond, WithOnChange(func(st State) {
		if st == Hidden {
			close(hidden)
		}
	}))

	s.Show()
	assert.True(t, s.Visible())

	select {
	case <-hidden:
	case <-time.After(2 * time.Second):
		t.Fatal("notice was never hidden")
	}
	assert.False(t, s.Visible())
}

func TestNew_DefaultDuration(t *testing.T) {
	s := New(0)
	assert.Equal(t, DefaultDuration, s.duration)
}
