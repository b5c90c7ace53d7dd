package io

import (
	"time"
)

// Timer register offsets.
const (
	TIMER_CFG  = 0 // Period selector; writing restarts the period.
	TIMER_SIZE = 4
)

// TIMER_PERIOD is the period for each configuration value.
// Any other configuration disables the timer.
var TIMER_PERIOD = []time.Duration{
	500 * time.Millisecond,
	1000 * time.Millisecond,
	1500 * time.Millisecond,
	2000 * time.Millisecond,
	5000 * time.Millisecond,
	10000 * time.Millisecond,
	30000 * time.Millisecond,
	60000 * time.Millisecond,
}

// Timer is a periodic interval device driven by wall clock time.
type Timer struct {
	Clock func() time.Time // Time source; time.Now if nil.

	config uint32
	start  time.Time
}

var _ Device = (*Timer)(nil)

func (tm *Timer) now() time.Time {
	if tm.Clock == nil {
		return time.Now()
	}
	return tm.Clock()
}

// Reset selects the default period and restarts it.
func (tm *Timer) Reset() {
	tm.config = 0
	tm.start = tm.now()
}

// Period returns the current period, and false if the timer is disabled.
func (tm *Timer) Period() (period time.Duration, ok bool) {
	if tm.config >= uint32(len(TIMER_PERIOD)) {
		return
	}
	return TIMER_PERIOD[tm.config], true
}

// Load reads the timer configuration.
func (tm *Timer) Load(offset uint32) (value uint32, err error) {
	if offset != TIMER_CFG {
		err = ErrRegisterInvalid
		return
	}
	value = tm.config
	return
}

// Store writes the timer configuration and restarts the period.
func (tm *Timer) Store(offset uint32, value uint32) (err error) {
	if offset != TIMER_CFG {
		err = ErrRegisterInvalid
		return
	}
	tm.config = value
	tm.start = tm.now()
	return
}

// Expired returns true once per elapsed period.
func (tm *Timer) Expired() bool {
	period, ok := tm.Period()
	if !ok {
		return false
	}

	now := tm.now()
	if now.Sub(tm.start) < period {
		return false
	}

	tm.start = now
	return true
}
