package spotify

import (
	"context"
	"testing"
	"time"
)

func TestBackoff(t *testing.T) {
	b := DefaultBackoff()

	t.Run("Grows Exponentially With Jitter", func(t *testing.T) {
		cases := []struct {
			attempt int
			base    time.Duration
		}{
			{0, 1 * time.Second},
			{1, 2 * time.Second},
			{2, 4 * time.Second},
			{3, 8 * time.Second},
		}
		for _, c := range cases {
			d := b.Delay(c.attempt)
			if d < c.base || d > c.base+b.Jitter {
				t.Errorf("attempt %d: expected delay in [%v, %v], got %v", c.attempt, c.base, c.base+b.Jitter, d)
			}
		}
	})

	t.Run("Caps At Max", func(t *testing.T) {
		for _, attempt := range []int{6, 10, 30} {
			d := b.Delay(attempt)
			if d < b.Max || d > b.Max+b.Jitter {
				t.Errorf("attempt %d: expected delay in [%v, %v], got %v", attempt, b.Max, b.Max+b.Jitter, d)
			}
		}
	})

	t.Run("Never Negative", func(t *testing.T) {
		if d := b.Delay(-1); d < 0 {
			t.Errorf("expected non-negative delay, got %v", d)
		}
	})
}

func TestSleep(t *testing.T) {
	t.Run("Completes Short Sleep", func(t *testing.T) {
		if !sleep(context.Background(), time.Millisecond) {
			t.Error("expected sleep to complete")
		}
	})

	t.Run("Cancelled Context Aborts", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if sleep(ctx, time.Minute) {
			t.Error("expected sleep to abort on cancelled context")
		}
	})
}
