package anim

import (
	"fmt"
	"sync"

	"github.com/matt-g-everett/ledcount/util"
)

// DefaultDuration is the count-up duration in seconds.
const DefaultDuration = 2.0

// State of a Counter's animation session.
type State int

const (
	Idle State = iota
	Running
	Completed
	Cancelled
)

var stateNames = [...]string{"idle", "running", "completed", "cancelled"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// MarshalText renders the state name for JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Snapshot is a read-only view of a Counter.
type Snapshot struct {
	Name     string  `json:"name"`
	Value    int     `json:"value"`
	Text     string  `json:"text"`
	Progress float64 `json:"progress"`
	State    State   `json:"state"`
}

// An Option configures a Counter.
type Option func(*Counter)

// WithName labels the counter for display sinks.
func WithName(name string) Option {
	return func(c *Counter) { c.name = name }
}

// WithFrom sets the start value. Defaults to 0.
func WithFrom(from int) Option {
	return func(c *Counter) { c.from = from }
}

// WithDuration sets the duration in seconds. A duration <= 0 completes on the
// first frame.
func WithDuration(seconds float64) Option {
	return func(c *Counter) { c.duration = seconds }
}

// WithPrefix sets text displayed before the value.
func WithPrefix(prefix string) Option {
	return func(c *Counter) { c.prefix = prefix }
}

// WithSuffix sets text displayed after the value.
func WithSuffix(suffix string) Option {
	return func(c *Counter) { c.suffix = suffix }
}

// WithOnUpdate registers fn to receive a snapshot after every frame.
func WithOnUpdate(fn func(Snapshot)) Option {
	return func(c *Counter) { c.onUpdate = fn }
}

// A Counter animates a displayed integer from a start value to an end value
// with a quartic ease-out, one frame at a time. At most one frame callback is
// outstanding per Counter.
type Counter struct {
	clock    FrameClock
	name     string
	from     int
	to       int
	duration float64
	prefix   string
	suffix   string
	onUpdate func(Snapshot)

	mu       sync.Mutex
	state    State
	value    int
	progress float64
	started  bool
	startMs  float64
	pending  bool
	handle   FrameHandle
	session  uint64
}

// NewCounter creates an idle Counter counting up to to.
func NewCounter(clock FrameClock, to int, opts ...Option) *Counter {
	c := new(Counter)
	c.clock = clock
	c.to = to
	c.duration = DefaultDuration
	for _, opt := range opts {
		opt(c)
	}

	c.state = Idle
	c.value = c.from
	return c
}

// Name returns the counter label.
func (c *Counter) Name() string {
	return c.name
}

// Start begins a new session, cancelling any frame pending from a previous one.
func (c *Counter) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelPending()
	c.session++
	c.state = Running
	c.started = false
	c.value = c.from
	c.progress = 0
	c.schedule()
}

// Stop tears the counter down. The pending frame, if any, is cancelled and no
// further updates occur. Stopping a completed or cancelled counter is a no-op.
func (c *Counter) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Completed || c.state == Cancelled {
		return
	}

	c.cancelPending()
	c.session++
	c.state = Cancelled
}

func (c *Counter) cancelPending() {
	if c.pending {
		c.clock.CancelFrame(c.handle)
		c.pending = false
	}
}

func (c *Counter) schedule() {
	session := c.session
	c.handle = c.clock.ScheduleFrame(func(timestampMs float64) {
		c.frame(session, timestampMs)
	})
	c.pending = true
}

func (c *Counter) frame(session uint64, timestampMs float64) {
	c.mu.Lock()
	if session != c.session || c.state != Running {
		c.mu.Unlock()
		return
	}

	c.pending = false
	if !c.started {
		c.startMs = timestampMs
		c.started = true
	}

	progress := 1.0
	if c.duration > 0 {
		elapsed := timestampMs - c.startMs
		progress = util.Clamp(elapsed/(c.duration*1000), 0, 1)
	}

	c.progress = progress
	if progress < 1 {
		c.value = util.EaseOutInt(c.from, c.to, progress)
		c.schedule()
	} else {
		c.value = c.to
		c.state = Completed
	}

	snapshot := c.snapshot()
	onUpdate := c.onUpdate
	c.mu.Unlock()

	if onUpdate != nil {
		onUpdate(snapshot)
	}
}

// Value returns the displayed integer.
func (c *Counter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Progress returns the linear progress of the session in [0, 1].
func (c *Counter) Progress() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress
}

// State returns the session state.
func (c *Counter) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Text returns prefix + value + suffix.
func (c *Counter) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text()
}

// Snapshot returns a consistent view of the counter.
func (c *Counter) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Counter) text() string {
	return fmt.Sprintf("%s%d%s", c.prefix, c.value, c.suffix)
}

func (c *Counter) snapshot() Snapshot {
	return Snapshot{
		Name:     c.name,
		Value:    c.value,
		Text:     c.text(),
		Progress: c.progress,
		State:    c.state,
	}
}
