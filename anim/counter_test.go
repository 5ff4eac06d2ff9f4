package anim

import (
	"math"
	"testing"
)

// spyClock records schedule and cancel calls and fires callbacks on demand.
type spyClock struct {
	next      FrameHandle
	pending   map[FrameHandle]FrameCallback
	order     []FrameHandle
	schedules int
	cancels   []FrameHandle
}

func newSpyClock() *spyClock {
	return &spyClock{pending: make(map[FrameHandle]FrameCallback)}
}

func (s *spyClock) ScheduleFrame(cb FrameCallback) FrameHandle {
	s.next++
	s.schedules++
	s.pending[s.next] = cb
	s.order = append(s.order, s.next)
	return s.next
}

func (s *spyClock) CancelFrame(h FrameHandle) {
	s.cancels = append(s.cancels, h)
	delete(s.pending, h)
}

// fire runs the callbacks pending at call time and reports how many ran.
func (s *spyClock) fire(timestampMs float64) int {
	order := s.order
	s.order = nil
	fired := 0
	for _, h := range order {
		cb, ok := s.pending[h]
		if !ok {
			continue
		}
		delete(s.pending, h)
		cb(timestampMs)
		fired++
	}
	return fired
}

func TestCounterHalfway(t *testing.T) {
	clock := newSpyClock()
	c := NewCounter(clock, 100, WithDuration(2))
	c.Start()

	clock.fire(5000)
	if got := c.Value(); got != 0 {
		t.Fatalf("first frame value = %d, want 0", got)
	}

	clock.fire(6000)
	if got := c.Value(); got != 93 {
		t.Errorf("value at half duration = %d, want 93", got)
	}
	if got := c.State(); got != Running {
		t.Errorf("state = %v, want running", got)
	}
}

func TestCounterEndpoints(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		duration float64
	}{
		{"up", 0, 100, 2},
		{"down", 250, -40, 1.5},
		{"short", 3, 7, 0.01},
		{"large", -1000000, 1000000, 10},
		{"beyond float precision", 0, 1<<53 + 1, 2},
		{"wide span", -(1 << 62), 1 << 62, 2},
		{"max int", 0, math.MaxInt64, 2},
		{"full range down", math.MaxInt64, math.MinInt64, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newSpyClock()
			c := NewCounter(clock, tt.to, WithFrom(tt.from), WithDuration(tt.duration))
			if got := c.Value(); got != tt.from {
				t.Fatalf("idle value = %d, want %d", got, tt.from)
			}

			c.Start()
			clock.fire(100)
			if got := c.Value(); got != tt.from {
				t.Errorf("value at progress 0 = %d, want %d", got, tt.from)
			}

			lo, hi := tt.from, tt.to
			if lo > hi {
				lo, hi = hi, lo
			}
			for _, f := range []float64{0.001, 0.25, 0.5, 0.999} {
				clock.fire(100 + tt.duration*1000*f)
				if v := c.Value(); v < lo || v > hi {
					t.Errorf("value at %v of duration = %d, outside [%d, %d]", f, v, lo, hi)
				}
			}

			clock.fire(100 + tt.duration*1000)
			if got := c.Value(); got != tt.to {
				t.Errorf("value at progress 1 = %d, want %d", got, tt.to)
			}
			if got := c.State(); got != Completed {
				t.Errorf("state = %v, want completed", got)
			}

			schedules := clock.schedules
			if n := clock.fire(1e9); n != 0 {
				t.Errorf("fired %d callbacks after completion", n)
			}
			if clock.schedules != schedules {
				t.Errorf("scheduled %d frames after completion", clock.schedules-schedules)
			}
		})
	}
}

func TestCounterMonotonic(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
	}{
		{"increasing", 0, 137},
		{"decreasing", 500, 12},
		{"negative", -20, -300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newSpyClock()
			c := NewCounter(clock, tt.to, WithFrom(tt.from), WithDuration(1))
			c.Start()

			lo, hi := tt.from, tt.to
			if lo > hi {
				lo, hi = hi, lo
			}

			prev := tt.from
			for ts := 0.0; c.State() == Running; ts += 16 {
				clock.fire(ts)
				v := c.Value()
				if v < lo || v > hi {
					t.Fatalf("value %d outside [%d, %d]", v, lo, hi)
				}
				if tt.to > tt.from && v < prev {
					t.Fatalf("value decreased from %d to %d", prev, v)
				}
				if tt.to < tt.from && v > prev {
					t.Fatalf("value increased from %d to %d", prev, v)
				}
				prev = v
			}

			if prev != tt.to {
				t.Errorf("final value = %d, want %d", prev, tt.to)
			}
		})
	}
}

func TestCounterNoChange(t *testing.T) {
	clock := newSpyClock()
	c := NewCounter(clock, 10, WithFrom(10))
	c.Start()

	for ts := 0.0; ts <= 2500; ts += 250 {
		clock.fire(ts)
		if got := c.Value(); got != 10 {
			t.Fatalf("value at %vms = %d, want 10", ts, got)
		}
	}
}

func TestCounterTeardown(t *testing.T) {
	clock := newSpyClock()
	updates := 0
	c := NewCounter(clock, 100, WithOnUpdate(func(Snapshot) { updates++ }))
	c.Start()
	clock.fire(0)
	clock.fire(500)

	value := c.Value()
	seen := updates
	c.Stop()

	if len(clock.cancels) != 1 {
		t.Fatalf("cancel called %d times, want 1", len(clock.cancels))
	}
	if len(clock.pending) != 0 {
		t.Errorf("%d callbacks still pending", len(clock.pending))
	}
	if got := c.State(); got != Cancelled {
		t.Errorf("state = %v, want cancelled", got)
	}

	clock.fire(1000)
	clock.fire(3000)
	if updates != seen {
		t.Errorf("got %d updates after teardown", updates-seen)
	}
	if got := c.Value(); got != value {
		t.Errorf("value changed after teardown: %d -> %d", value, got)
	}

	c.Stop()
	if len(clock.cancels) != 1 {
		t.Errorf("second Stop cancelled again")
	}
}

func TestCounterStopIdle(t *testing.T) {
	clock := newSpyClock()
	c := NewCounter(clock, 5)
	c.Stop()

	if len(clock.cancels) != 0 {
		t.Errorf("cancel called with nothing pending")
	}
	if got := c.State(); got != Cancelled {
		t.Errorf("state = %v, want cancelled", got)
	}
}

func TestCounterStopCompleted(t *testing.T) {
	clock := newSpyClock()
	c := NewCounter(clock, 5, WithDuration(0))
	c.Start()
	clock.fire(0)
	c.Stop()

	if got := c.State(); got != Completed {
		t.Errorf("state = %v, want completed", got)
	}
	if len(clock.cancels) != 0 {
		t.Errorf("cancel called after completion")
	}
}

func TestCounterNonPositiveDuration(t *testing.T) {
	for _, d := range []float64{0, -3} {
		clock := newSpyClock()
		c := NewCounter(clock, 42, WithFrom(7), WithDuration(d))
		c.Start()
		clock.fire(123)

		if got := c.Value(); got != 42 {
			t.Errorf("duration %v: value = %d, want 42", d, got)
		}
		if got := c.State(); got != Completed {
			t.Errorf("duration %v: state = %v, want completed", d, got)
		}
		if clock.schedules != 1 {
			t.Errorf("duration %v: scheduled %d frames, want 1", d, clock.schedules)
		}
	}
}

func TestCounterRestart(t *testing.T) {
	clock := newSpyClock()
	c := NewCounter(clock, 100, WithDuration(1))
	c.Start()
	clock.fire(0)
	clock.fire(400)

	c.Start()
	if len(clock.cancels) != 1 {
		t.Fatalf("restart cancelled %d frames, want 1", len(clock.cancels))
	}
	if len(clock.pending) != 1 {
		t.Fatalf("%d frames pending after restart, want 1", len(clock.pending))
	}
	if got := c.Value(); got != 0 {
		t.Errorf("value after restart = %d, want 0", got)
	}

	// The new session takes its start time from its own first frame.
	clock.fire(10000)
	if got := c.Value(); got != 0 {
		t.Errorf("first frame of new session = %d, want 0", got)
	}
	clock.fire(11000)
	if got := c.Value(); got != 100 {
		t.Errorf("final value = %d, want 100", got)
	}
}

func TestCounterStaleCallback(t *testing.T) {
	clock := newSpyClock()
	updates := 0
	c := NewCounter(clock, 100, WithOnUpdate(func(Snapshot) { updates++ }))
	c.Start()
	stale := clock.pending[clock.next]

	c.Stop()
	stale(0)

	if updates != 0 {
		t.Errorf("stale callback produced %d updates", updates)
	}
	if got := c.State(); got != Cancelled {
		t.Errorf("state = %v, want cancelled", got)
	}
}

func TestCounterText(t *testing.T) {
	clock := newSpyClock()
	var last Snapshot
	c := NewCounter(clock, 120,
		WithName("projects"),
		WithPrefix("+"),
		WithSuffix(" projets"),
		WithDuration(1),
		WithOnUpdate(func(s Snapshot) { last = s }))

	if got := c.Text(); got != "+0 projets" {
		t.Errorf("idle text = %q", got)
	}

	c.Start()
	clock.fire(0)
	clock.fire(1000)

	want := Snapshot{Name: "projects", Value: 120, Text: "+120 projets", Progress: 1, State: Completed}
	if last != want {
		t.Errorf("last update = %+v, want %+v", last, want)
	}
	if got := c.Snapshot(); got != want {
		t.Errorf("snapshot = %+v, want %+v", got, want)
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{Idle, "idle"},
		{Running, "running"},
		{Completed, "completed"},
		{Cancelled, "cancelled"},
		{State(9), "State(9)"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", int(tt.state), got, tt.want)
		}
	}
}
