package engine

import "sync/atomic"

// SeqSource hands out strictly increasing journal sequence numbers.
// Implemented by Clock and by testutil.DeterministicClock.
type SeqSource interface {
	Next() int64
	Current() int64
}

// Clock is a monotonic logical clock for journal ordering.
//
// Every dispatch is stamped with a strictly increasing seq from this clock,
// so traces order deterministically regardless of wall time.
//
// Clock is safe for concurrent use, although only the frame loop calls Next.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock starting at a specific sequence number.
// Used to append to an existing trace.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
