package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetCurrentUser returns the authenticated user, provisioning the row on
// first sight. The identity comes from the verified token, so a miss here
// means a brand-new user rather than an error.
func (s *Server) GetCurrentUser(c *fiber.Ctx) error {
	userID := currentUserID(c)

	user, err := s.userService.GetOrCreate(c.UserContext(), userID, currentUserName(c))
	if err != nil {
		return respondAppError(c, err)
	}

	memberships, err := s.groupService.Memberships(c.UserContext(), userID)
	if err != nil {
		return respondAppError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"user":   user,
		"groups": memberships,
	})
}
