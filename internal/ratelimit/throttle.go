// Package ratelimit provides a fixed-window attempt throttle used to slow
// credential-guessing and signup abuse. Counters live in process memory:
// the throttle bounds attempts per server instance only and offers no
// cross-instance guarantee. Swapping in a shared counter store means
// replacing this component, not touching call sites.
package ratelimit

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultSweepInterval = 5 * time.Minute

type windowEntry struct {
	count     int
	windowEnd time.Time
}

// ThrottleConfig configures the attempt throttle.
type ThrottleConfig struct {
	// SweepInterval controls how often expired windows are reclaimed.
	SweepInterval time.Duration
	Clock         func() time.Time
	Logger        *zap.Logger
}

// Throttle tracks per-key attempt counters with rolling expiry windows.
// Construct one per process and inject it where attempts must be bounded.
type Throttle struct {
	mu      sync.Mutex
	entries map[string]windowEntry
	clock   func() time.Time
	logger  *zap.Logger

	sweepInterval time.Duration
	stop          chan struct{}
	stopOnce      sync.Once
}

// NewThrottle constructs a throttle and starts its background sweep.
func NewThrottle(cfg ThrottleConfig) *Throttle {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	interval := cfg.SweepInterval
	if interval <= 0 {
		interval = defaultSweepInterval
	}

	throttle := &Throttle{
		entries:       make(map[string]windowEntry),
		clock:         clock,
		logger:        logger,
		sweepInterval: interval,
		stop:          make(chan struct{}),
	}
	go throttle.sweepLoop()
	return throttle
}

// CheckAndConsume records one attempt for the key and reports whether it is
// allowed. A window that has elapsed resets the counter before the check;
// an attempt at the limit is rejected without incrementing.
func (t *Throttle) CheckAndConsume(key string, limit int, window time.Duration) bool {
	now := t.clock()

	t.mu.Lock()
	defer t.mu.Unlock()

	entry, exists := t.entries[key]
	if !exists || !now.Before(entry.windowEnd) {
		entry = windowEntry{count: 0, windowEnd: now.Add(window)}
	}
	if entry.count >= limit {
		t.entries[key] = entry
		return false
	}
	entry.count++
	t.entries[key] = entry
	return true
}

// Close stops the background sweep. Safe to call more than once.
func (t *Throttle) Close() {
	t.stopOnce.Do(func() { close(t.stop) })
}

func (t *Throttle) sweepLoop() {
	ticker := time.NewTicker(t.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			removed := t.sweepExpired()
			if removed > 0 {
				t.logger.Debug("throttle windows reclaimed", zap.Int("removed", removed))
			}
		case <-t.stop:
			return
		}
	}
}

func (t *Throttle) sweepExpired() int {
	now := t.clock()

	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for key, entry := range t.entries {
		if !now.Before(entry.windowEnd) {
			delete(t.entries, key)
			removed++
		}
	}
	return removed
}
