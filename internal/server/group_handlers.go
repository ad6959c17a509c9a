package server

import (
	"huddle/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CreateGroupRequest is the payload for creating a group.
type CreateGroupRequest struct {
	Name string `json:"group_name"`
}

// CreateGroup creates a new group with a zero score.
func (s *Server) CreateGroup(c *fiber.Ctx) error {
	var req CreateGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	group, err := s.groupService.CreateGroup(c.UserContext(), req.Name)
	if err != nil {
		return respondAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(group)
}

// GetGroups lists groups, newest first.
func (s *Server) GetGroups(c *fiber.Ctx) error {
	p := parsePagination(c, 50)

	groups, err := s.groupService.ListGroups(c.UserContext(), p.Limit, p.Offset)
	if err != nil {
		return respondAppError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(groups)
}

// JoinGroupRequest is the payload for joining a group.
type JoinGroupRequest struct {
	GroupID uint `json:"group_id"`
}

// JoinGroup adds the authenticated user to a group. A repeated join is a
// conflict; membership is all-or-nothing with no partial states.
func (s *Server) JoinGroup(c *fiber.Ctx) error {
	var req JoinGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.GroupID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("group_id is required"))
	}

	membership, err := s.groupService.Join(c.UserContext(), currentUserID(c), req.GroupID)
	if err != nil {
		return respondAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(membership)
}

// GetGroupPosts lists a group's check-ins for a member, newest first.
func (s *Server) GetGroupPosts(c *fiber.Ctx) error {
	groupID, err := s.parseGroupID(c)
	if err != nil {
		return nil
	}
	p := parsePagination(c, 50)

	posts, err := s.groupService.ListGroupPosts(c.UserContext(), currentUserID(c), groupID, p.Limit, p.Offset)
	if err != nil {
		return respondAppError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(posts)
}

// GetLeaderboard returns the top groups by stored score. The scores are the
// persisted values from the last committed check-ins; an empty board is a
// valid response.
func (s *Server) GetLeaderboard(c *fiber.Ctx) error {
	groups, err := s.groupService.Leaderboard(c.UserContext())
	if err != nil {
		return respondAppError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(groups)
}
