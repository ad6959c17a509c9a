package server

import (
	"context"
	"strconv"

	"huddle/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebSocketGroupHandler subscribes a member to a group's live score updates.
// Delivery is best-effort: a subscriber that cannot keep up has messages
// dropped rather than stalling the broadcast.
func (s *Server) WebSocketGroupHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		ctx := context.Background()

		userID, ok := conn.Locals("userID").(string)
		if !ok || userID == "" {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
			_ = conn.Close()
			return
		}

		groupID, err := strconv.ParseUint(conn.Params("groupId"), 10, 32)
		if err != nil || groupID == 0 {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"invalid group ID"}`))
			_ = conn.Close()
			return
		}

		isMember, err := s.membershipRepo.Exists(ctx, userID, uint(groupID))
		if err != nil {
			observability.GlobalLogger.Error("websocket membership check failed",
				"user_id", userID, "group_id", groupID, "error", err.Error())
			_ = conn.Close()
			return
		}
		if !isMember {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"not a member of this group"}`))
			_ = conn.Close()
			return
		}

		client, err := s.scoreHub.RegisterGroup(uint(groupID), userID, conn)
		if err != nil {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		observability.GlobalLogger.Info("websocket group subscriber connected",
			"user_id", userID, "group_id", groupID)

		go client.WritePump()
		client.ReadPump()
	})
}

// WebSocketLeaderboardHandler subscribes any authenticated user to
// leaderboard-affecting score updates.
func (s *Server) WebSocketLeaderboardHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, ok := conn.Locals("userID").(string)
		if !ok || userID == "" {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
			_ = conn.Close()
			return
		}

		client, err := s.scoreHub.RegisterLeaderboard(userID, conn)
		if err != nil {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		observability.GlobalLogger.Info("websocket leaderboard subscriber connected",
			"user_id", userID)

		go client.WritePump()
		client.ReadPump()
	})
}
