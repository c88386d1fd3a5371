package repository

import (
	"context"
	"errors"

	"gymrace/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification data operations
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	FindPendingRequest(ctx context.Context, recipientID, senderID string) (*models.Notification, error)
	DeleteRequests(ctx context.Context, recipientID, senderID string) (int64, error)
	DeleteByReference(ctx context.Context, referenceID string) error
	ListForRecipient(ctx context.Context, recipientID string) ([]models.Notification, error)
	Delete(ctx context.Context, id string) error
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *notificationRepository) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&n).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Notification", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &n, nil
}

// FindPendingRequest returns nil, nil when senderID has no open request to recipientID.
func (r *notificationRepository) FindPendingRequest(ctx context.Context, recipientID, senderID string) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.WithContext(ctx).
		Where("recipient_id = ? AND sender_id = ? AND type = ?", recipientID, senderID, models.NotificationRequest).
		Order("created_at ASC").
		First(&n).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &n, nil
}

func (r *notificationRepository) DeleteRequests(ctx context.Context, recipientID, senderID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("recipient_id = ? AND sender_id = ? AND type = ?", recipientID, senderID, models.NotificationRequest).
		Delete(&models.Notification{})
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}

// DeleteByReference drops every notification pointing at referenceID, such
// as the invitations for a challenge.
func (r *notificationRepository) DeleteByReference(ctx context.Context, referenceID string) error {
	if err := r.db.WithContext(ctx).
		Where("reference_id = ?", referenceID).
		Delete(&models.Notification{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *notificationRepository) ListForRecipient(ctx context.Context, recipientID string) ([]models.Notification, error) {
	var list []models.Notification
	if err := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return list, nil
}

func (r *notificationRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Notification{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
