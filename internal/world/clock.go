package world

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TickListener receives world tick events.
type TickListener interface {
	OnTick(worldTime time.Time)
}

// Clock drives the village with a configurable tick interval and time
// speed. World time advances interval*speed per tick, so memory decay
// can run faster than wall time during play sessions.
type Clock struct {
	speed     float64
	interval  time.Duration
	listeners []TickListener
	worldTime time.Time
	mu        sync.RWMutex
	cancel    context.CancelFunc
	logger    *zap.Logger
}

// NewClock creates a clock starting at the given world time, which
// must come from the same source as the village's (the appctx clock),
// so the first tick's elapsed span is consistent. Speed 1.0 is
// realtime.
func NewClock(interval time.Duration, speed float64, start time.Time, logger *zap.Logger) *Clock {
	if speed <= 0 {
		speed = 1
	}
	return &Clock{
		speed:     speed,
		interval:  interval,
		worldTime: start,
		logger:    logger,
	}
}

// AddListener registers a tick listener.
func (c *Clock) AddListener(l TickListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// WorldTime returns the current simulated time.
func (c *Clock) WorldTime() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.worldTime
}

// Start begins the tick loop in a background goroutine.
func (c *Clock) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	go c.loop(ctx)
	c.logger.Info("world clock started",
		zap.Duration("interval", c.interval),
		zap.Float64("speed", c.speed))
}

// Stop halts the tick loop.
func (c *Clock) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
}

func (c *Clock) loop(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Tick()
		}
	}
}

// Tick advances world time by one interval and fans out to listeners.
// Exposed so tests can drive the clock without the goroutine.
func (c *Clock) Tick() {
	c.mu.Lock()
	c.worldTime = c.worldTime.Add(time.Duration(float64(c.interval) * c.speed))
	wt := c.worldTime
	listeners := make([]TickListener, len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, l := range listeners {
		l.OnTick(wt)
	}
}
