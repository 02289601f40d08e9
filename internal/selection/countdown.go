package selection

import (
	"sync"
	"time"
)

// Countdown tracks the remaining lifetime of the current hold at a fixed tick
// resolution. Every Start and Stop bumps a generation counter so that ticks of
// a replaced countdown are ignored.
type Countdown struct {
	interval time.Duration
	now      func() time.Time
	onTick   func(gen uint64, remaining int)
	onExpire func(gen uint64)

	mu      sync.Mutex
	gen     uint64
	expiry  time.Time
	running bool
	stop    chan struct{}
}

func NewCountdown(interval time.Duration, now func() time.Time, onTick func(gen uint64, remaining int), onExpire func(gen uint64)) *Countdown {
	return &Countdown{
		interval: interval,
		now:      now,
		onTick:   onTick,
		onExpire: onExpire,
	}
}

// Start replaces any running countdown with one ending at expiry. The first
// tick happens immediately.
func (c *Countdown) Start(expiry time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()

	c.expiry = expiry
	c.running = true
	c.stop = make(chan struct{})

	go c.run(c.gen, c.stop)
}

func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()
	c.expiry = time.Time{}
}

func (c *Countdown) stopLocked() {
	if c.running {
		close(c.stop)
		c.running = false
	}
	c.gen++
}

// Current reports whether gen still identifies the latest started countdown.
func (c *Countdown) Current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.gen == gen
}

func (c *Countdown) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.running
}

// Expiry returns the expiry of the running countdown.
func (c *Countdown) Expiry() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return time.Time{}, false
	}

	return c.expiry, true
}

func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return 0
	}

	return remainingSeconds(c.expiry, c.now())
}

func (c *Countdown) run(gen uint64, stop <-chan struct{}) {
	if c.tick(gen) {
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if c.tick(gen) {
				return
			}
		}
	}
}

// tick publishes the remaining seconds and fires the expiry callback once the
// countdown reaches zero. It reports whether the loop should end.
func (c *Countdown) tick(gen uint64) bool {
	c.mu.Lock()
	if gen != c.gen || !c.running {
		c.mu.Unlock()
		return true
	}

	remaining := remainingSeconds(c.expiry, c.now())
	expired := remaining == 0
	if expired {
		c.running = false
		c.expiry = time.Time{}
	}
	c.mu.Unlock()

	c.onTick(gen, remaining)

	if expired {
		c.onExpire(gen)
	}

	return expired
}

func remainingSeconds(expiry, now time.Time) int {
	d := expiry.Sub(now)
	if d <= 0 {
		return 0
	}

	return int(d / time.Second)
}
