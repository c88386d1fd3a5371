package server

import (
	"strings"

	"gymrace/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetExercises handles GET /api/exercises[?category=]
func (s *Server) GetExercises(c *fiber.Ctx) error {
	category := strings.TrimSpace(c.Query("category"))
	if category == "" {
		return c.JSON(s.catalog.All())
	}

	exercises := s.catalog.ByCategory(category)
	if len(exercises) == 0 {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Category", category))
	}
	return c.JSON(exercises)
}

// GetExerciseCategories handles GET /api/exercises/categories
func (s *Server) GetExerciseCategories(c *fiber.Ctx) error {
	return c.JSON(s.catalog.Categories())
}
