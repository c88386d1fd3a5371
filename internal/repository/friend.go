package repository

import (
	"context"

	"gymrace/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FriendRepository defines the interface for friend list data operations.
// Edges are directed: AddEdge(a, b) puts b in a's list only.
type FriendRepository interface {
	AddEdge(ctx context.Context, ownerID, friendID string) error
	RemoveEdge(ctx context.Context, ownerID, friendID string) error
	HasEdge(ctx context.Context, ownerID, friendID string) (bool, error)
	ListFriendIDs(ctx context.Context, ownerID string) ([]string, error)
}

type friendRepository struct {
	db *gorm.DB
}

// NewFriendRepository creates a new friend repository
func NewFriendRepository(db *gorm.DB) FriendRepository {
	return &friendRepository{db: db}
}

func (r *friendRepository) AddEdge(ctx context.Context, ownerID, friendID string) error {
	edge := &models.FriendEdge{OwnerID: ownerID, FriendID: friendID}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}, {Name: "friend_id"}},
		DoNothing: true,
	}).Create(edge).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *friendRepository) RemoveEdge(ctx context.Context, ownerID, friendID string) error {
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND friend_id = ?", ownerID, friendID).
		Delete(&models.FriendEdge{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *friendRepository) HasEdge(ctx context.Context, ownerID, friendID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.FriendEdge{}).
		Where("owner_id = ? AND friend_id = ?", ownerID, friendID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// ListFriendIDs returns ownerID's friend list in the order entries were added.
func (r *friendRepository) ListFriendIDs(ctx context.Context, ownerID string) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).
		Model(&models.FriendEdge{}).
		Where("owner_id = ?", ownerID).
		Order("id ASC").
		Pluck("friend_id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}
