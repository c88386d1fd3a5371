package server

import (
	"errors"
	"strings"

	"gymrace/internal/models"
	"gymrace/internal/workout"

	"github.com/gofiber/fiber/v2"
)

type startWorkoutRequest struct {
	RoutineID string `json:"routine_id"`
}

// timerRequest sets the timer with Seconds or steps it by Delta.
type timerRequest struct {
	Seconds *int `json:"seconds"`
	Delta   *int `json:"delta"`
}

// respondWorkoutError maps workout sentinels onto the API error codes.
func respondWorkoutError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, workout.ErrSessionNotFound):
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Workout", c.Params("id")))
	case errors.Is(err, workout.ErrInvalidTransition):
		return models.RespondWithError(c, fiber.StatusConflict,
			models.NewConflictError(err.Error()))
	}
	return respondError(c, err)
}

func (s *Server) workoutFor(c *fiber.Ctx) (*workout.Session, bool) {
	id, ok := pathParam(c, "id")
	if !ok {
		return nil, false
	}
	w, err := s.workouts.Get(userIDFrom(c), id)
	if err != nil {
		_ = respondWorkoutError(c, err)
		return nil, false
	}
	return w, true
}

// StartWorkout handles POST /api/workouts. A routine that cannot be loaded
// still creates the session, in the error state, so the client can retry.
func (s *Server) StartWorkout(c *fiber.Ctx) error {
	var req startWorkoutRequest
	if !parseBody(c, &req) {
		return nil
	}
	req.RoutineID = strings.TrimSpace(req.RoutineID)
	if req.RoutineID == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("routine_id is required"))
	}

	w, _ := s.workouts.Start(c.UserContext(), userIDFrom(c), req.RoutineID)
	return c.Status(fiber.StatusCreated).JSON(w.Snapshot())
}

// GetWorkout handles GET /api/workouts/:id
func (s *Server) GetWorkout(c *fiber.Ctx) error {
	w, ok := s.workoutFor(c)
	if !ok {
		return nil
	}
	return c.JSON(w.Snapshot())
}

// workoutAction wraps a single state machine transition as a handler that
// answers with the resulting snapshot.
func (s *Server) workoutAction(apply func(*workout.Session) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		w, ok := s.workoutFor(c)
		if !ok {
			return nil
		}
		if err := apply(w); err != nil {
			return respondWorkoutError(c, err)
		}
		return c.JSON(w.Snapshot())
	}
}

// AdjustWorkoutTimer handles PUT /api/workouts/:id/timer
func (s *Server) AdjustWorkoutTimer(c *fiber.Ctx) error {
	w, ok := s.workoutFor(c)
	if !ok {
		return nil
	}
	var req timerRequest
	if !parseBody(c, &req) {
		return nil
	}

	var err error
	switch {
	case req.Seconds != nil && req.Delta != nil:
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Send either seconds or delta, not both"))
	case req.Seconds != nil:
		err = w.SetTimer(*req.Seconds)
	case req.Delta != nil:
		err = w.AdjustTimer(*req.Delta)
	default:
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("seconds or delta is required"))
	}
	if err != nil {
		return respondWorkoutError(c, err)
	}
	return c.JSON(w.Snapshot())
}

// RetryWorkout handles POST /api/workouts/:id/retry
func (s *Server) RetryWorkout(c *fiber.Ctx) error {
	w, ok := s.workoutFor(c)
	if !ok {
		return nil
	}
	if err := w.Retry(c.UserContext()); err != nil && errors.Is(err, workout.ErrInvalidTransition) {
		return respondWorkoutError(c, err)
	}
	return c.JSON(w.Snapshot())
}

// CancelWorkout handles DELETE /api/workouts/:id. Nothing is saved.
func (s *Server) CancelWorkout(c *fiber.Ctx) error {
	id, ok := pathParam(c, "id")
	if !ok {
		return nil
	}
	if err := s.workouts.Cancel(userIDFrom(c), id); err != nil {
		return respondWorkoutError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
