package server

import (
	"errors"

	"gymrace/internal/models"
	"gymrace/internal/session"

	"github.com/gofiber/fiber/v2"
)

// Logout handles POST /api/auth/logout. The token stays rejected until it
// would have expired.
func (s *Server) Logout(c *fiber.Ctx) error {
	err := s.sessions.SignOut(c.UserContext(), sessionFrom(c))
	if errors.Is(err, session.ErrNoTokenID) {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Token cannot be revoked"))
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}
