package database

import (
	"sync/atomic"
	"time"
)

// Counters tracks pool activity. All fields are updated atomically: pool
// hooks and scopes write, Stats reads.
type Counters struct {
	connAttempts  atomic.Int64
	connSuccesses atomic.Int64
	sessionOpened atomic.Int64
	sessionClosed atomic.Int64
	queryCount    atomic.Int64
	queryNanos    atomic.Int64
	probeFailures atomic.Int64
	lastProbe     atomic.Int64 // unix nanos, 0 until the first successful probe
}

func (c *Counters) recordQuery(d time.Duration) {
	c.queryCount.Add(1)
	c.queryNanos.Add(int64(d))
}

func (c *Counters) avgQueryTime() float64 {
	n := c.queryCount.Load()
	if n == 0 {
		return 0
	}
	return time.Duration(c.queryNanos.Load() / n).Seconds()
}
