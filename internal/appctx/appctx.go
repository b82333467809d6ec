// Package appctx carries the ambient runtime dependencies (clock,
// random source, debug flag) as an explicit object instead of globals,
// so tests can pin time and seed.
package appctx

import (
	"math/rand"
	"time"
)

// Context is passed to components that need a clock or randomness.
type Context struct {
	Clock func() time.Time
	Rand  *rand.Rand
	Debug bool
}

// New creates a context with a real clock and the given seed.
func New(seed int64) *Context {
	return &Context{
		Clock: time.Now,
		Rand:  rand.New(rand.NewSource(seed)),
	}
}

// Fixed creates a context with a frozen clock, for tests.
func Fixed(at time.Time, seed int64) *Context {
	return &Context{
		Clock: func() time.Time { return at },
		Rand:  rand.New(rand.NewSource(seed)),
	}
}

// Fork derives an independent seeded source. Components that may roll
// concurrently take their own generator; *rand.Rand is not safe for
// shared use.
func (c *Context) Fork() *rand.Rand {
	return rand.New(rand.NewSource(c.Rand.Int63()))
}
