package model

import (
	"testing"
	"time"
)

func TestTurnClock(t *testing.T) {
	now := time.Unix(100, 0)
	c := NewTurnClock(func() time.Time { return now })

	tests := []struct {
		advance time.Duration
		elapsed time.Duration
		banner  bool
	}{
		{0, 0, true},
		{2999 * time.Millisecond, 2999 * time.Millisecond, true},
		{time.Millisecond, 3 * time.Second, false},
		{time.Minute, time.Minute + 3*time.Second, false},
	}
	for _, tt := range tests {
		now = now.Add(tt.advance)
		if got := c.Elapsed(); got != tt.elapsed {
			t.Errorf("Elapsed() = %s, want %s", got, tt.elapsed)
		}
		if got := c.BannerVisible(); got != tt.banner {
			t.Errorf("BannerVisible() after %s = %v, want %v", tt.elapsed, got, tt.banner)
		}
	}

	c.Start()
	if c.Elapsed() != 0 || !c.BannerVisible() {
		t.Error("Start should reset the clock")
	}
}
