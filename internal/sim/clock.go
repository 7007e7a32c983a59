// Package sim provides simulated devices: a virtual clock, a scripted
// participant for tests and a stochastic participant for dry runs.
package sim

import "time"

// Clock is a virtual millisecond clock. Time only moves on Yield, Sleep and
// Advance, so runs are reproducible.
type Clock struct {
	now  int64
	step int64
}

// NewClock returns a clock at 0 that advances step ms per Yield.
func NewClock(step int64) *Clock {
	if step <= 0 {
		step = 1
	}
	return &Clock{step: step}
}

func (c *Clock) Now() int64 { return c.now }

// Yield advances the clock by one step.
func (c *Clock) Yield() { c.now += c.step }

func (c *Clock) Sleep(d time.Duration) { c.now += d.Milliseconds() }

// Advance moves the clock forward by ms.
func (c *Clock) Advance(ms int64) { c.now += ms }
