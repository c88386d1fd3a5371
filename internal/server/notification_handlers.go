package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetNotifications handles GET /api/notifications
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	list, err := s.socialService.ListNotifications(c.UserContext(), userIDFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// DismissNotification handles DELETE /api/notifications/:id
func (s *Server) DismissNotification(c *fiber.Ctx) error {
	id, ok := pathParam(c, "id")
	if !ok {
		return nil
	}
	if err := s.socialService.DismissNotification(c.UserContext(), userIDFrom(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
