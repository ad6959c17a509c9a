package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	groupChannelPrefix = "score:group:"
	leaderboardChannel = "score:leaderboard"
)

// ScoreEvent is the payload broadcast when a group's engagement score changes.
type ScoreEvent struct {
	Type    string    `json:"type"`
	GroupID uint      `json:"group_id"`
	Score   float64   `json:"score"`
	PostID  uint      `json:"post_id,omitempty"`
	At      time.Time `json:"at"`
}

// Notifier publishes score events into Redis channels.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishScore delivers the event to the group's channel and to the global
// leaderboard channel. Fire-and-forget: an error means live notification was
// lost, never that the underlying write failed.
func (n *Notifier) PublishScore(ctx context.Context, event ScoreEvent) error {
	if n.rdb == nil {
		return nil
	}
	if event.Type == "" {
		event.Type = "score_update"
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal score event: %w", err)
	}

	if err := n.rdb.Publish(ctx, GroupChannel(event.GroupID), payload).Err(); err != nil {
		return fmt.Errorf("publish group channel: %w", err)
	}
	if err := n.rdb.Publish(ctx, leaderboardChannel, payload).Err(); err != nil {
		return fmt.Errorf("publish leaderboard channel: %w", err)
	}
	return nil
}

// StartScoreSubscriber subscribes to the score channel pattern and calls
// onMessage for each incoming message. onMessage receives channel and payload.
func (n *Notifier) StartScoreSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, groupChannelPrefix+"*", leaderboardChannel)
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in ScoreSubscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// GroupChannel derives the Redis channel name for a group's score events.
func GroupChannel(groupID uint) string {
	return groupChannelPrefix + strconv.FormatUint(uint64(groupID), 10)
}

// LeaderboardChannel returns the Redis channel name for leaderboard events.
func LeaderboardChannel() string {
	return leaderboardChannel
}
