package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gymrace/internal/models"
	"gymrace/internal/observability"
	"gymrace/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// ExerciseChecker reports whether an exercise title exists in the catalog.
type ExerciseChecker interface {
	Contains(title string) bool
}

// CreateChallengeInput is the caller-supplied part of a new challenge.
type CreateChallengeInput struct {
	Name              string `json:"name"`
	Description       string `json:"description"`
	ParticipantID     string `json:"participant_id"`
	Exercise          string `json:"exercise"`
	TargetRepetitions int    `json:"target_repetitions"`
}

// ChallengeService tracks two-party repetition races.
type ChallengeService struct {
	challenges    repository.ChallengeRepository
	notifications repository.NotificationRepository
	users         repository.UserRepository
	exercises     ExerciseChecker
}

// NewChallengeService returns a new ChallengeService. exercises may be nil
// to accept any exercise name.
func NewChallengeService(
	challenges repository.ChallengeRepository,
	notifications repository.NotificationRepository,
	users repository.UserRepository,
	exercises ExerciseChecker,
) *ChallengeService {
	return &ChallengeService{
		challenges:    challenges,
		notifications: notifications,
		users:         users,
		exercises:     exercises,
	}
}

// CanDeleteChallenge allows the creator at any status and either party
// once the challenge is completed.
func CanDeleteChallenge(userID string, status models.ChallengeStatus, creatorID string) bool {
	return status == models.ChallengeCompleted || userID == creatorID
}

// CreateChallenge stores a PENDING challenge and leaves the participant a
// notification. A failed insert is returned as *WriteError together with
// the unsaved challenge.
func (s *ChallengeService) CreateChallenge(ctx context.Context, creatorID string, in CreateChallengeInput) (challenge *models.Challenge, err error) {
	ctx, span := observability.StartSpan(ctx, "challenge", "create", attribute.String("creator_id", creatorID))
	defer span.EndWith(&err)

	in.Name = strings.TrimSpace(in.Name)
	in.Exercise = strings.TrimSpace(in.Exercise)
	in.ParticipantID = strings.TrimSpace(in.ParticipantID)

	switch {
	case in.Name == "":
		return nil, models.NewValidationError("Challenge name is required")
	case in.Exercise == "":
		return nil, models.NewValidationError("Exercise is required")
	case in.ParticipantID == "":
		return nil, models.NewValidationError("Participant is required")
	case in.ParticipantID == creatorID:
		return nil, models.NewValidationError("Cannot challenge yourself")
	case in.TargetRepetitions <= 0:
		return nil, models.NewValidationError("Target repetitions must be positive")
	}
	if s.exercises != nil && !s.exercises.Contains(in.Exercise) {
		return nil, models.NewValidationError(fmt.Sprintf("Unknown exercise %q", in.Exercise))
	}

	challenge = &models.Challenge{
		Name:              in.Name,
		Description:       strings.TrimSpace(in.Description),
		CreatorID:         creatorID,
		ParticipantID:     in.ParticipantID,
		Exercise:          in.Exercise,
		TargetRepetitions: in.TargetRepetitions,
		Status:            models.ChallengePending,
	}
	if err := s.challenges.Create(ctx, challenge); err != nil {
		return challenge, writeFailed("create_challenge", err)
	}

	s.notifyParticipant(ctx, challenge)
	return challenge, nil
}

func (s *ChallengeService) notifyParticipant(ctx context.Context, c *models.Challenge) {
	name := c.CreatorID
	if creator, err := s.users.GetByID(ctx, c.CreatorID); err == nil {
		name = creator.DisplayName()
	}
	n := &models.Notification{
		RecipientID: c.ParticipantID,
		SenderID:    c.CreatorID,
		Type:        models.NotificationChallenge,
		ReferenceID: c.ID,
		Message:     fmt.Sprintf("%s challenged you to %s: %d x %s", name, c.Name, c.TargetRepetitions, c.Exercise),
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		observability.BackendWriteFailures.WithLabelValues("notify_challenge").Inc()
		observability.Logger.WarnContext(ctx, "failed to notify challenge participant",
			slog.String("challenge_id", c.ID),
			slog.String("error", err.Error()),
		)
	}
}

// GetChallenge returns the challenge to either of its parties.
func (s *ChallengeService) GetChallenge(ctx context.Context, id, userID string) (*models.Challenge, error) {
	c, err := s.challenges.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.RoleOf(userID) == models.RoleNone {
		return nil, models.NewNotParticipantError("challenge", id)
	}
	return c, nil
}

// AcceptChallenge moves a PENDING challenge to ACCEPTED. Only the
// participant may accept.
func (s *ChallengeService) AcceptChallenge(ctx context.Context, id, userID string) (challenge *models.Challenge, err error) {
	ctx, span := observability.StartSpan(ctx, "challenge", "accept", attribute.String("challenge_id", id))
	defer span.EndWith(&err)

	c, err := s.challenges.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.RoleOf(userID) != models.RoleParticipant {
		return nil, models.NewPermissionError("Only the challenged user can accept")
	}
	if c.Status != models.ChallengePending {
		return nil, models.NewConflictError("Challenge is not pending")
	}

	ok, err := s.challenges.Accept(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.NewConflictError("Challenge is not pending")
	}

	if err := s.notifications.DeleteByReference(ctx, id); err != nil {
		observability.Logger.WarnContext(ctx, "failed to clear challenge notification",
			slog.String("challenge_id", id), slog.String("error", err.Error()))
	}
	return s.challenges.GetByID(ctx, id)
}

// UpdateProgress records newProgress for whichever side userID is on.
// Reaching the target completes the challenge no matter which party gets
// there. It reports whether this call was the one that completed it.
func (s *ChallengeService) UpdateProgress(ctx context.Context, id, userID string, newProgress int) (challenge *models.Challenge, completed bool, err error) {
	ctx, span := observability.StartSpan(ctx, "challenge", "update_progress",
		attribute.String("challenge_id", id), attribute.Int("progress", newProgress))
	defer span.EndWith(&err)

	if newProgress < 0 {
		return nil, false, models.NewValidationError("Progress cannot be negative")
	}

	before, err := s.challenges.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	role := before.RoleOf(userID)
	if role == models.RoleNone {
		return nil, false, models.NewNotParticipantError("challenge", id)
	}
	if before.Status == models.ChallengePending {
		return nil, false, models.NewValidationError("Challenge has not been accepted yet")
	}

	res, err := s.challenges.UpdateProgress(ctx, id, role, newProgress)
	if err != nil {
		return nil, false, err
	}
	if !res.Matched {
		return nil, false, models.NewNotFoundError("Challenge", id)
	}

	after, err := s.challenges.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if res.Completed {
		observability.ChallengesCompleted.Inc()
	}
	return after, res.Completed, nil
}

// DeleteChallenge removes the challenge when CanDeleteChallenge allows it.
// Nothing is written when it does not.
func (s *ChallengeService) DeleteChallenge(ctx context.Context, id, userID string) (challenge *models.Challenge, err error) {
	ctx, span := observability.StartSpan(ctx, "challenge", "delete", attribute.String("challenge_id", id))
	defer span.EndWith(&err)

	c, err := s.challenges.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.RoleOf(userID) == models.RoleNone {
		return nil, models.NewNotParticipantError("challenge", id)
	}
	if !CanDeleteChallenge(userID, c.Status, c.CreatorID) {
		return nil, models.NewPermissionError("Only the creator can delete a challenge before it is completed")
	}

	if err := s.challenges.Delete(ctx, id); err != nil {
		return nil, err
	}
	if err := s.notifications.DeleteByReference(ctx, id); err != nil {
		observability.Logger.WarnContext(ctx, "failed to clear challenge notification",
			slog.String("challenge_id", id), slog.String("error", err.Error()))
	}
	return c, nil
}

// ListForUser returns the user's challenges on either side, newest first.
func (s *ChallengeService) ListForUser(ctx context.Context, userID string) ([]models.Challenge, error) {
	return s.challenges.ListForUser(ctx, userID)
}
