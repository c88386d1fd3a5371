package server

import (
	"gymrace/internal/models"
	"gymrace/internal/notifications"
	"gymrace/internal/service"

	"github.com/gofiber/fiber/v2"
)

// challengeResponse adds the caller's side and the derived winner.
type challengeResponse struct {
	models.Challenge
	Role   models.ChallengeRole   `json:"role,omitempty"`
	Winner models.ChallengeWinner `json:"winner"`
}

func newChallengeResponse(c *models.Challenge, userID string) challengeResponse {
	return challengeResponse{Challenge: *c, Role: c.RoleOf(userID), Winner: c.Winner()}
}

func challengeResponses(list []models.Challenge, userID string) []challengeResponse {
	out := make([]challengeResponse, 0, len(list))
	for i := range list {
		out = append(out, newChallengeResponse(&list[i], userID))
	}
	return out
}

type progressRequest struct {
	Progress *int `json:"progress"`
}

// GetChallenges handles GET /api/challenges
func (s *Server) GetChallenges(c *fiber.Ctx) error {
	userID := userIDFrom(c)
	list, err := s.challengeService.ListForUser(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(challengeResponses(list, userID))
}

// CreateChallenge handles POST /api/challenges
func (s *Server) CreateChallenge(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := userIDFrom(c)

	var in service.CreateChallengeInput
	if !parseBody(c, &in) {
		return nil
	}

	challenge, err := s.challengeService.CreateChallenge(ctx, userID, in)
	if we, ok := service.AsWriteError(err); ok {
		return respondNotPersisted(c, we, fiber.Map{"challenge": newChallengeResponse(challenge, userID)})
	}
	if err != nil {
		return respondError(c, err)
	}

	s.publishUserEvent(ctx, challenge.ParticipantID, notifications.EventChallengeCreated, map[string]any{
		"challenge": challengeSummary(challenge),
		"from_user": userSummary(sessionFrom(c)),
	})
	return c.Status(fiber.StatusCreated).JSON(newChallengeResponse(challenge, userID))
}

// GetChallenge handles GET /api/challenges/:id
func (s *Server) GetChallenge(c *fiber.Ctx) error {
	id, ok := pathParam(c, "id")
	if !ok {
		return nil
	}
	userID := userIDFrom(c)

	challenge, err := s.challengeService.GetChallenge(c.UserContext(), id, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(newChallengeResponse(challenge, userID))
}

// AcceptChallenge handles POST /api/challenges/:id/accept
func (s *Server) AcceptChallenge(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, ok := pathParam(c, "id")
	if !ok {
		return nil
	}
	userID := userIDFrom(c)

	challenge, err := s.challengeService.AcceptChallenge(ctx, id, userID)
	if err != nil {
		return respondError(c, err)
	}

	s.publishUserEvent(ctx, challenge.CreatorID, notifications.EventChallengeAccepted, map[string]any{
		"challenge": challengeSummary(challenge),
	})
	return c.JSON(newChallengeResponse(challenge, userID))
}

// UpdateChallengeProgress handles PUT /api/challenges/:id/progress
func (s *Server) UpdateChallengeProgress(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, ok := pathParam(c, "id")
	if !ok {
		return nil
	}
	userID := userIDFrom(c)

	var req progressRequest
	if !parseBody(c, &req) {
		return nil
	}
	if req.Progress == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("progress is required"))
	}

	challenge, completed, err := s.challengeService.UpdateProgress(ctx, id, userID, *req.Progress)
	if err != nil {
		return respondError(c, err)
	}

	payload := map[string]any{"challenge": challengeSummary(challenge)}
	s.publishUserEvent(ctx, otherParty(challenge, userID), notifications.EventChallengeProgress, payload)
	if completed {
		s.publishUserEvent(ctx, challenge.CreatorID, notifications.EventChallengeCompleted, payload)
		s.publishUserEvent(ctx, challenge.ParticipantID, notifications.EventChallengeCompleted, payload)
	}

	resp := newChallengeResponse(challenge, userID)
	return c.JSON(fiber.Map{
		"challenge": resp,
		"completed": completed,
	})
}

// DeleteChallenge handles DELETE /api/challenges/:id
func (s *Server) DeleteChallenge(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, ok := pathParam(c, "id")
	if !ok {
		return nil
	}
	userID := userIDFrom(c)

	challenge, err := s.challengeService.DeleteChallenge(ctx, id, userID)
	if err != nil {
		return respondError(c, err)
	}

	s.publishUserEvent(ctx, otherParty(challenge, userID), notifications.EventChallengeDeleted, map[string]any{
		"challenge_id": challenge.ID,
	})
	return c.SendStatus(fiber.StatusNoContent)
}
