package security

import (
	"context"
	"testing"
	"time"

	"github.com/nalgeon/be"
)

func TestSlidingWindow(t *testing.T) {
	ctx := context.Background()

	t.Run("admits_up_to_limit", func(t *testing.T) {
		sw := NewSlidingWindow(10, time.Minute)
		now := time.Unix(1000, 0)
		sw.now = func() time.Time { return now }

		for i := 0; i < 10; i++ {
			d, err := sw.Allow(ctx, "alice")
			be.Err(t, err, nil)
			be.Equal(t, d.Allowed, true)
			now = now.Add(time.Second)
		}

		d, err := sw.Allow(ctx, "alice")
		be.Err(t, err, nil)
		be.Equal(t, d.Allowed, false)
	})

	t.Run("window_slides", func(t *testing.T) {
		sw := NewSlidingWindow(10, time.Minute)
		now := time.Unix(1000, 0)
		sw.now = func() time.Time { return now }

		for i := 0; i < 10; i++ {
			d, _ := sw.Allow(ctx, "alice")
			be.Equal(t, d.Allowed, true)
			now = now.Add(time.Second)
		}

		// 10 attempts landed at t+0s..t+9s; at t+61s the first two have
		// aged out of the trailing minute.
		now = time.Unix(1000, 0).Add(61 * time.Second)
		d, _ := sw.Allow(ctx, "alice")
		be.Equal(t, d.Allowed, true)
	})

	t.Run("rejected_attempts_not_recorded", func(t *testing.T) {
		sw := NewSlidingWindow(1, time.Minute)
		now := time.Unix(1000, 0)
		sw.now = func() time.Time { return now }

		d, _ := sw.Allow(ctx, "bob")
		be.Equal(t, d.Allowed, true)

		// Hammering while limited must not extend the lockout.
		for i := 0; i < 5; i++ {
			now = now.Add(time.Second)
			d, _ = sw.Allow(ctx, "bob")
			be.Equal(t, d.Allowed, false)
		}

		now = time.Unix(1000, 0).Add(time.Minute + time.Second)
		d, _ = sw.Allow(ctx, "bob")
		be.Equal(t, d.Allowed, true)
	})

	t.Run("actors_are_independent", func(t *testing.T) {
		sw := NewSlidingWindow(1, time.Minute)
		now := time.Unix(1000, 0)
		sw.now = func() time.Time { return now }

		d, _ := sw.Allow(ctx, "alice")
		be.Equal(t, d.Allowed, true)
		d, _ = sw.Allow(ctx, "bob")
		be.Equal(t, d.Allowed, true)
		d, _ = sw.Allow(ctx, "alice")
		be.Equal(t, d.Allowed, false)
	})

	t.Run("remaining_counts_down", func(t *testing.T) {
		sw := NewSlidingWindow(3, time.Minute)
		now := time.Unix(1000, 0)
		sw.now = func() time.Time { return now }

		d, _ := sw.Allow(ctx, "carol")
		be.Equal(t, d.Remaining, 2)
		d, _ = sw.Allow(ctx, "carol")
		be.Equal(t, d.Remaining, 1)
		d, _ = sw.Allow(ctx, "carol")
		be.Equal(t, d.Remaining, 0)
	})
}
