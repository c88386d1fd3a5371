package server

import (
	"gymrace/internal/models"
	"gymrace/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	sess := sessionFrom(c)
	if !sess.Registered() {
		return c.JSON(fiber.Map{
			"id":         sess.UserID,
			"registered": false,
		})
	}
	return c.JSON(fiber.Map{
		"registered": true,
		"profile":    sess.Profile,
	})
}

// UpdateMyProfile handles PUT /api/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var in service.ProfileInput
	if !parseBody(c, &in) {
		return nil
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), userIDFrom(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// GetUserProfile handles GET /api/users/:id. Contact and body details stay
// private to their owner.
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, ok := pathParam(c, "id")
	if !ok {
		return nil
	}

	user, err := s.userService.GetProfile(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	if user.ID == userIDFrom(c) {
		return c.JSON(user)
	}
	return c.JSON(publicProfile(user))
}

func publicProfile(u *models.User) fiber.Map {
	return fiber.Map{
		"id":         u.ID,
		"username":   u.DisplayName(),
		"is_private": u.IsPrivate,
	}
}
