package repository

import (
	"context"
	"errors"

	"gymrace/internal/models"

	"gorm.io/gorm"
)

// ChallengeRepository defines the interface for challenge data operations
type ChallengeRepository interface {
	Create(ctx context.Context, challenge *models.Challenge) error
	GetByID(ctx context.Context, id string) (*models.Challenge, error)
	ListForUser(ctx context.Context, userID string) ([]models.Challenge, error)
	Accept(ctx context.Context, id, participantID string) (bool, error)
	UpdateProgress(ctx context.Context, id string, role models.ChallengeRole, progress int) (ProgressResult, error)
	Delete(ctx context.Context, id string) error
}

// ProgressResult reports what a progress write did. Completed is true only
// for the write that moved the challenge into COMPLETED.
type ProgressResult struct {
	Matched   bool
	Completed bool
}

type challengeRepository struct {
	db *gorm.DB
}

// NewChallengeRepository creates a new challenge repository
func NewChallengeRepository(db *gorm.DB) ChallengeRepository {
	return &challengeRepository{db: db}
}

func (r *challengeRepository) Create(ctx context.Context, challenge *models.Challenge) error {
	if err := r.db.WithContext(ctx).Create(challenge).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *challengeRepository) GetByID(ctx context.Context, id string) (*models.Challenge, error) {
	var challenge models.Challenge
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&challenge).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Challenge", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &challenge, nil
}

func (r *challengeRepository) ListForUser(ctx context.Context, userID string) ([]models.Challenge, error) {
	var challenges []models.Challenge
	if err := r.db.WithContext(ctx).
		Where("creator_id = ? OR participant_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&challenges).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return challenges, nil
}

// Accept moves a PENDING challenge to ACCEPTED when participantID is its
// participant. It reports false when no row matched.
func (r *challengeRepository) Accept(ctx context.Context, id, participantID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Challenge{}).
		Where("id = ? AND participant_id = ? AND status = ?", id, participantID, models.ChallengePending).
		Update("status", models.ChallengeAccepted)
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// UpdateProgress writes the role's counter and the status in one transaction.
// Completion is a conditional update on a non-terminal status, so among
// concurrent writers that reach the target only one sees it take effect.
// PENDING challenges are left untouched and report no match.
func (r *challengeRepository) UpdateProgress(ctx context.Context, id string, role models.ChallengeRole, progress int) (ProgressResult, error) {
	column := "creator_progress"
	if role == models.RoleParticipant {
		column = "participant_progress"
	}

	var result ProgressResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Challenge{}).
			Where("id = ? AND status NOT IN ? AND ? >= target_repetitions",
				id, []models.ChallengeStatus{models.ChallengePending, models.ChallengeCompleted}, progress).
			Updates(map[string]any{
				column:   progress,
				"status": models.ChallengeCompleted,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			result = ProgressResult{Matched: true, Completed: true}
			return nil
		}

		status := gorm.Expr("CASE WHEN status = ? THEN ? ELSE status END",
			models.ChallengeAccepted, models.ChallengeInProgress)
		res = tx.Model(&models.Challenge{}).
			Where("id = ? AND status <> ?", id, models.ChallengePending).
			Updates(map[string]any{
				column:   progress,
				"status": status,
			})
		if res.Error != nil {
			return res.Error
		}
		result.Matched = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return ProgressResult{}, models.NewInternalError(err)
	}
	return result, nil
}

func (r *challengeRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Challenge{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
