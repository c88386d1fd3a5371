package server

import (
	"context"
	"log/slog"
	"time"

	"gymrace/internal/models"
	"gymrace/internal/observability"
	"gymrace/internal/session"
)

// publishUserEvent sends an event to userID's channel. Delivery is best
// effort and never fails the request that caused it.
func (s *Server) publishUserEvent(ctx context.Context, userID, eventType string, payload map[string]any) {
	if !s.notifier.Enabled() || userID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	if err := s.notifier.PublishEvent(ctx, userID, eventType, payload); err != nil {
		observability.Logger.WarnContext(ctx, "failed to publish user event",
			slog.String("event", eventType),
			slog.String("recipient_id", userID),
			slog.String("error", err.Error()),
		)
	}
}

func userSummary(s *session.Session) map[string]any {
	return map[string]any{
		"id":       s.UserID,
		"username": s.DisplayName(),
	}
}

func challengeSummary(c *models.Challenge) map[string]any {
	return map[string]any{
		"id":                   c.ID,
		"name":                 c.Name,
		"exercise":             c.Exercise,
		"status":               c.Status,
		"target_repetitions":   c.TargetRepetitions,
		"creator_progress":     c.CreatorProgress,
		"participant_progress": c.ParticipantProgress,
		"winner":               c.Winner(),
	}
}

// otherParty returns the side of c that userID is not on.
func otherParty(c *models.Challenge, userID string) string {
	if userID == c.CreatorID {
		return c.ParticipantID
	}
	return c.CreatorID
}
