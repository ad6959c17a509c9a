package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix  = "user:%s"
	GroupKeyPrefix = "group:%d"
	LeaderboardKey = "leaderboard"
)

const (
	UserTTL        = 5 * time.Minute
	GroupTTL       = 5 * time.Minute
	LeaderboardTTL = 30 * time.Second
)

func UserKey(userID string) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func GroupKey(groupID uint) string {
	return fmt.Sprintf(GroupKeyPrefix, groupID)
}

func InvalidateUser(ctx context.Context, userID string) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateGroup(ctx context.Context, groupID uint) {
	Invalidate(ctx, GroupKey(groupID))
}

// InvalidateLeaderboard drops the cached leaderboard projection. Called on
// every score write so reads immediately reflect the last committed score.
func InvalidateLeaderboard(ctx context.Context) {
	Invalidate(ctx, LeaderboardKey)
}
