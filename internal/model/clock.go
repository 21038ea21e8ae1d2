package model

import (
	"sync"
	"time"
)

// TurnBannerDuration is how long clients show the "White's Turn" banner.
const TurnBannerDuration = 3 * time.Second

// TurnClock tracks when the current turn began.
type TurnClock struct {
	mu        sync.Mutex
	startedAt time.Time
	now       func() time.Time
}

func NewTurnClock(now func() time.Time) *TurnClock {
	if now == nil {
		now = time.Now
	}
	return &TurnClock{
		startedAt: now(),
		now:       now,
	}
}

// Start restarts the clock for a new turn.
func (c *TurnClock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.startedAt = c.now()
}

func (c *TurnClock) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now().Sub(c.startedAt)
}

func (c *TurnClock) BannerVisible() bool {
	return c.Elapsed() < TurnBannerDuration
}
