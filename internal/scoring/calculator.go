// Package scoring derives a group's engagement score from its membership and
// check-in history. The calculator is deterministic and side-effect-free; all
// mutation happens in the caller.
package scoring

import (
	"context"
	"time"
)

// Store is the read-only history view the calculator needs. Callers that want
// a freshly inserted post reflected in the score must supply a store bound to
// the same transaction as the insert.
type Store interface {
	ListMembers(ctx context.Context, groupID uint) ([]string, error)
	CountForUser(ctx context.Context, userID string) (int64, error)
	FirstAndLastPostTime(ctx context.Context, groupID uint) (*time.Time, *time.Time, error)
	CountJoinedSince(ctx context.Context, groupID uint, since time.Time) (int64, error)
}

// Config holds the scoring constants.
type Config struct {
	// Alpha scales the participation term's denominator.
	Alpha float64
	// Beta weighs the same-day-growth bonus.
	Beta float64
}

// Calculator computes engagement scores from full history scans. A future
// implementation may swap in incremental aggregates behind the same method
// without changing callers.
type Calculator struct {
	cfg Config
	now func() time.Time
}

// New returns a Calculator using the given constants and the wall clock.
func New(cfg Config) *Calculator {
	return &Calculator{cfg: cfg, now: time.Now}
}

// NewWithClock returns a Calculator with an injected clock. Intended for tests.
func NewWithClock(cfg Config, now func() time.Time) *Calculator {
	return &Calculator{cfg: cfg, now: now}
}

// Score computes the group's engagement score:
//
//	T/(alpha*(S+1)) + beta*N
//
// where T sums each member's 1/(groups they belong to), S is the span in
// seconds between the group's first and last check-in, and N counts members
// who joined since local midnight. Members with a zero group count contribute
// nothing to T, and S is 0 when the group has no check-ins.
func (c *Calculator) Score(ctx context.Context, st Store, groupID uint) (float64, error) {
	members, err := st.ListMembers(ctx, groupID)
	if err != nil {
		return 0, err
	}

	var participation float64
	for _, userID := range members {
		groupCount, err := st.CountForUser(ctx, userID)
		if err != nil {
			return 0, err
		}
		if groupCount > 0 {
			participation += 1 / float64(groupCount)
		}
	}

	first, last, err := st.FirstAndLastPostTime(ctx, groupID)
	if err != nil {
		return 0, err
	}
	var span float64
	if first != nil && last != nil {
		span = last.Sub(*first).Seconds()
	}

	joinedToday, err := st.CountJoinedSince(ctx, groupID, c.startOfDay())
	if err != nil {
		return 0, err
	}

	return participation/(c.cfg.Alpha*(span+1)) + c.cfg.Beta*float64(joinedToday), nil
}

// startOfDay returns local midnight of the current calendar day.
func (c *Calculator) startOfDay() time.Time {
	now := c.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
