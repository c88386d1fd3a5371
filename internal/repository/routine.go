package repository

import (
	"context"
	"errors"

	"gymrace/internal/models"

	"gorm.io/gorm"
)

// RoutineRepository defines the interface for routine data operations
type RoutineRepository interface {
	Create(ctx context.Context, routine *models.Routine) error
	GetByID(ctx context.Context, id string) (*models.Routine, error)
	GetOwned(ctx context.Context, ownerID, id string) (*models.Routine, error)
	GetSharedWith(ctx context.Context, userID, id string) (*models.Routine, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Routine, error)
	ListSharedWith(ctx context.Context, userID string) ([]models.Routine, error)
	Update(ctx context.Context, routine *models.Routine) error
	Delete(ctx context.Context, id string) error
}

type routineRepository struct {
	db *gorm.DB
}

// NewRoutineRepository creates a new routine repository
func NewRoutineRepository(db *gorm.DB) RoutineRepository {
	return &routineRepository{db: db}
}

func (r *routineRepository) Create(ctx context.Context, routine *models.Routine) error {
	if err := r.db.WithContext(ctx).Create(routine).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *routineRepository) GetByID(ctx context.Context, id string) (*models.Routine, error) {
	return r.first(ctx, r.db.WithContext(ctx).Where("id = ?", id), id)
}

// GetOwned looks the routine up among ownerID's own routines.
func (r *routineRepository) GetOwned(ctx context.Context, ownerID, id string) (*models.Routine, error) {
	return r.first(ctx, r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID), id)
}

// GetSharedWith looks the routine up among routines that userID's friends share.
func (r *routineRepository) GetSharedWith(ctx context.Context, userID, id string) (*models.Routine, error) {
	q := r.db.WithContext(ctx).
		Where("id = ? AND share_with_friends = ?", id, true).
		Where("owner_id IN (?)", friendIDsOf(r.db.WithContext(ctx), userID))
	return r.first(ctx, q, id)
}

func (r *routineRepository) first(_ context.Context, q *gorm.DB, id string) (*models.Routine, error) {
	var routine models.Routine
	if err := q.First(&routine).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Routine", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &routine, nil
}

func (r *routineRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Routine, error) {
	var routines []models.Routine
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&routines).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return routines, nil
}

// ListSharedWith returns routines flagged for sharing by owners in userID's friend list.
func (r *routineRepository) ListSharedWith(ctx context.Context, userID string) ([]models.Routine, error) {
	var routines []models.Routine
	if err := r.db.WithContext(ctx).
		Where("share_with_friends = ?", true).
		Where("owner_id IN (?)", friendIDsOf(r.db.WithContext(ctx), userID)).
		Order("created_at DESC").
		Find(&routines).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return routines, nil
}

func (r *routineRepository) Update(ctx context.Context, routine *models.Routine) error {
	if err := r.db.WithContext(ctx).Save(routine).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *routineRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Routine{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func friendIDsOf(db *gorm.DB, ownerID string) *gorm.DB {
	return db.Model(&models.FriendEdge{}).Select("friend_id").Where("owner_id = ?", ownerID)
}
