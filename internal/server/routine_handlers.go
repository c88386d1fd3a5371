package server

import (
	"gymrace/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyRoutines handles GET /api/routines
func (s *Server) GetMyRoutines(c *fiber.Ctx) error {
	routines, err := s.routineService.ListMine(c.UserContext(), userIDFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(routines)
}

// GetSharedRoutines handles GET /api/routines/shared
func (s *Server) GetSharedRoutines(c *fiber.Ctx) error {
	routines, err := s.routineService.ListSharedWithMe(c.UserContext(), userIDFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(routines)
}

// CreateRoutine handles POST /api/routines
func (s *Server) CreateRoutine(c *fiber.Ctx) error {
	var in service.RoutineInput
	if !parseBody(c, &in) {
		return nil
	}

	routine, err := s.routineService.Create(c.UserContext(), userIDFrom(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(routine)
}

// GetRoutine handles GET /api/routines/:id
func (s *Server) GetRoutine(c *fiber.Ctx) error {
	id, ok := pathParam(c, "id")
	if !ok {
		return nil
	}

	routine, err := s.routineService.Get(c.UserContext(), userIDFrom(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(routine)
}

// UpdateRoutine handles PUT /api/routines/:id
func (s *Server) UpdateRoutine(c *fiber.Ctx) error {
	id, ok := pathParam(c, "id")
	if !ok {
		return nil
	}
	var in service.RoutineInput
	if !parseBody(c, &in) {
		return nil
	}

	routine, err := s.routineService.Update(c.UserContext(), userIDFrom(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(routine)
}

// DeleteRoutine handles DELETE /api/routines/:id
func (s *Server) DeleteRoutine(c *fiber.Ctx) error {
	id, ok := pathParam(c, "id")
	if !ok {
		return nil
	}

	if err := s.routineService.Delete(c.UserContext(), userIDFrom(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
