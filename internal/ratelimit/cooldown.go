// Package ratelimit guards the check-in write path with a per-(user, group)
// cooldown window.
package ratelimit

import (
	"context"
	"time"

	"huddle/internal/models"
)

// LastPostStore looks up a user's most recent post time in a group.
type LastPostStore interface {
	LastPostTime(ctx context.Context, userID string, groupID uint) (*time.Time, error)
}

// Cooldown rejects a check-in when the same user posted in the same group
// within the window. The check has no side effects; atomicity with the
// subsequent insert is the caller's responsibility (a per-group lock in the
// submission flow).
type Cooldown struct {
	store  LastPostStore
	window time.Duration
	now    func() time.Time
}

// NewCooldown returns a Cooldown using the wall clock.
func NewCooldown(store LastPostStore, window time.Duration) *Cooldown {
	return &Cooldown{store: store, window: window, now: time.Now}
}

// NewCooldownWithClock returns a Cooldown with an injected clock. Intended for tests.
func NewCooldownWithClock(store LastPostStore, window time.Duration, now func() time.Time) *Cooldown {
	return &Cooldown{store: store, window: window, now: now}
}

// Check returns a RATE_LIMITED error carrying the remaining wait when the
// user's last post in the group is younger than the window, nil otherwise.
func (c *Cooldown) Check(ctx context.Context, userID string, groupID uint) error {
	if c.window <= 0 {
		return nil
	}

	last, err := c.store.LastPostTime(ctx, userID, groupID)
	if err != nil {
		return err
	}
	if last == nil {
		return nil
	}

	elapsed := c.now().Sub(*last)
	if elapsed < c.window {
		return models.NewRateLimitedError(c.window - elapsed)
	}
	return nil
}
