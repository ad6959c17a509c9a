package server

import (
	"huddle/internal/models"
	"huddle/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateCheckinRequest is the payload for submitting a check-in.
type CreateCheckinRequest struct {
	Content string `json:"content"`
}

// CreateCheckin submits a check-in to a group. Rejections (cooldown,
// non-member, unknown group) make no writes; an accepted check-in returns
// the stored post and the group's recomputed score. A response with
// "degraded" set means the check-in committed but the live broadcast was
// lost, so subscribers catch up on their next read.
func (s *Server) CreateCheckin(c *fiber.Ctx) error {
	groupID, err := s.parseGroupID(c)
	if err != nil {
		return nil
	}

	var req CreateCheckinRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	result, err := s.checkinService.Submit(c.UserContext(), service.SubmitInput{
		UserID:  currentUserID(c),
		GroupID: groupID,
		Content: req.Content,
	})
	if err != nil {
		return respondAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}
