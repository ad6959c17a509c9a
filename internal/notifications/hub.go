package notifications

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"huddle/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	// Max connections per user
	maxConnsPerUser = 12
	// Max total connections
	maxTotalConns = 10000
)

// subscription records which channel a client joined. A client subscribes to
// exactly one channel per connection; reconnecting clients re-fetch current
// state via the pull API, there is no replay.
type subscription struct {
	groupID     uint
	leaderboard bool
}

// ScoreHub is a websocket hub keyed by broadcast channel: one channel per
// group plus a global leaderboard channel.
type ScoreHub struct {
	mu          sync.RWMutex
	groups      map[uint]map[*Client]struct{}
	leaderboard map[*Client]struct{}
	subs        map[*Client]subscription
	userConns   map[string]int
	totalConns  int
	shutdown    chan struct{}
	done        chan struct{}
}

// NewScoreHub creates a new ScoreHub instance.
func NewScoreHub() *ScoreHub {
	return &ScoreHub{
		groups:      make(map[uint]map[*Client]struct{}),
		leaderboard: make(map[*Client]struct{}),
		subs:        make(map[*Client]subscription),
		userConns:   make(map[string]int),
		shutdown:    make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Name returns a human-readable identifier for this hub.
func (h *ScoreHub) Name() string { return "score hub" }

func (h *ScoreHub) register(userID string, conn *websocket.Conn, sub subscription) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.totalConns >= maxTotalConns {
		return nil, errors.New("server connection limit reached")
	}
	if h.userConns[userID] >= maxConnsPerUser {
		return nil, errors.New("user connection limit reached")
	}

	client := NewClient(h, conn, userID)
	if sub.leaderboard {
		h.leaderboard[client] = struct{}{}
	} else {
		m, ok := h.groups[sub.groupID]
		if !ok {
			m = make(map[*Client]struct{})
			h.groups[sub.groupID] = m
		}
		m[client] = struct{}{}
	}
	h.subs[client] = sub
	h.userConns[userID]++
	h.totalConns++

	observability.WebSocketConnectionsTotal.Inc()
	observability.WebSocketChannelConnections.WithLabelValues(channelLabel(sub)).Inc()

	return client, nil
}

// RegisterGroup subscribes a connection to a group's score channel.
func (h *ScoreHub) RegisterGroup(groupID uint, userID string, conn *websocket.Conn) (*Client, error) {
	return h.register(userID, conn, subscription{groupID: groupID})
}

// RegisterLeaderboard subscribes a connection to the global leaderboard channel.
func (h *ScoreHub) RegisterLeaderboard(userID string, conn *websocket.Conn) (*Client, error) {
	return h.register(userID, conn, subscription{leaderboard: true})
}

// UnregisterClient removes a client's subscription.
func (h *ScoreHub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub, ok := h.subs[client]
	if !ok {
		return
	}
	delete(h.subs, client)

	if sub.leaderboard {
		delete(h.leaderboard, client)
	} else if m, ok := h.groups[sub.groupID]; ok {
		delete(m, client)
		if len(m) == 0 {
			delete(h.groups, sub.groupID)
		}
	}

	h.userConns[client.UserID]--
	if h.userConns[client.UserID] <= 0 {
		delete(h.userConns, client.UserID)
	}
	h.totalConns--

	observability.WebSocketConnectionsTotal.Dec()
	observability.WebSocketChannelConnections.WithLabelValues(channelLabel(sub)).Dec()
}

// BroadcastGroup sends the payload to every subscriber of the group's channel.
func (h *ScoreHub) BroadcastGroup(groupID uint, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.groups[groupID] {
		c.TrySend(payload)
	}
}

// BroadcastLeaderboard sends the payload to every leaderboard subscriber.
func (h *ScoreHub) BroadcastLeaderboard(payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.leaderboard {
		c.TrySend(payload)
	}
}

// SubscriberCount returns the number of subscribers for a group channel.
func (h *ScoreHub) SubscriberCount(groupID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[groupID])
}

// StartWiring connects this hub to Redis pub/sub: score events published by
// any process instance reach the subscribers connected here.
func (h *ScoreHub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartScoreSubscriber(ctx, func(channel, payload string) {
		if channel == leaderboardChannel {
			h.BroadcastLeaderboard([]byte(payload))
			return
		}
		var groupID uint
		if _, err := fmt.Sscanf(channel, groupChannelPrefix+"%d", &groupID); err != nil || !strings.HasPrefix(channel, groupChannelPrefix) {
			log.Printf("invalid score channel: %s", channel)
			return
		}
		h.BroadcastGroup(groupID, []byte(payload))
	})
}

// Shutdown gracefully closes all websocket connections.
func (h *ScoreHub) Shutdown(_ context.Context) error {
	close(h.shutdown)

	h.mu.Lock()
	for client := range h.subs {
		if client.Conn == nil {
			continue
		}
		if err := client.Conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down")); err != nil {
			log.Printf("failed to write close message for user %s: %v", client.UserID, err)
		}
		if err := client.Conn.Close(); err != nil {
			log.Printf("failed to close websocket for user %s: %v", client.UserID, err)
		}
	}
	h.groups = make(map[uint]map[*Client]struct{})
	h.leaderboard = make(map[*Client]struct{})
	h.subs = make(map[*Client]subscription)
	h.userConns = make(map[string]int)
	h.totalConns = 0
	h.mu.Unlock()

	close(h.done)
	return nil
}

// channelLabel keeps metric label values to a fixed set.
func channelLabel(sub subscription) string {
	if sub.leaderboard {
		return "leaderboard"
	}
	return "group"
}
