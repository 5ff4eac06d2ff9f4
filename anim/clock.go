package anim

import (
	"context"
	"sync"
	"time"
)

// DefaultFrameRate matches the rate frames are streamed to an ledrx device.
const DefaultFrameRate = 30.0

// A FrameCallback receives the frame timestamp in milliseconds.
type FrameCallback func(timestampMs float64)

// FrameHandle identifies a scheduled frame callback.
type FrameHandle uint64

// A FrameClock dispatches callbacks on a rendering frame tick. Each scheduled
// callback fires at most once. Cancelling an unknown handle is a no-op.
type FrameClock interface {
	ScheduleFrame(cb FrameCallback) FrameHandle
	CancelFrame(h FrameHandle)
}

// TickerClock is a headless FrameClock driven by a time.Ticker.
type TickerClock struct {
	interval time.Duration

	mu      sync.Mutex
	next    FrameHandle
	pending map[FrameHandle]FrameCallback
	order   []FrameHandle
}

// NewTickerClock creates a TickerClock ticking frameRate times a second.
func NewTickerClock(frameRate float64) *TickerClock {
	if frameRate <= 0 {
		frameRate = DefaultFrameRate
	}

	c := new(TickerClock)
	c.interval = time.Duration(float64(time.Second) / frameRate)
	c.pending = make(map[FrameHandle]FrameCallback)
	return c
}

// Interval returns the time between ticks.
func (c *TickerClock) Interval() time.Duration {
	return c.interval
}

// ScheduleFrame queues cb for the next tick.
func (c *TickerClock) ScheduleFrame(cb FrameCallback) FrameHandle {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.next++
	h := c.next
	c.pending[h] = cb
	c.order = append(c.order, h)
	return h
}

// CancelFrame drops a queued callback.
func (c *TickerClock) CancelFrame(h FrameHandle) {
	c.mu.Lock()
	delete(c.pending, h)
	c.mu.Unlock()
}

// Pending returns the number of queued callbacks.
func (c *TickerClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Tick fires every callback queued before the call, in scheduling order.
// Callbacks scheduled while ticking wait for the next tick. Returns the number
// of callbacks fired.
func (c *TickerClock) Tick(timestampMs float64) int {
	c.mu.Lock()
	order := c.order
	c.order = nil
	c.mu.Unlock()

	fired := 0
	for _, h := range order {
		// An earlier callback in this tick may have cancelled this one.
		c.mu.Lock()
		cb, ok := c.pending[h]
		delete(c.pending, h)
		c.mu.Unlock()

		if ok {
			cb(timestampMs)
			fired++
		}
	}

	return fired
}

// Run ticks until ctx is done. All callbacks run on the calling goroutine.
func (c *TickerClock) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case t := <-ticker.C:
			c.Tick(float64(t.Sub(start)) / float64(time.Millisecond))
		}
	}
}
