package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationType distinguishes pending social actions.
type NotificationType string

const (
	NotificationRequest   NotificationType = "request"
	NotificationChallenge NotificationType = "challenge"
)

// Notification is a pending social action addressed to RecipientID.
// It is deleted once acted on.
type Notification struct {
	ID          string           `gorm:"primaryKey;type:varchar(36)" json:"id"`
	RecipientID string           `gorm:"type:varchar(128);not null;index:idx_notification_recipient" json:"recipient_id"`
	Type        NotificationType `gorm:"type:varchar(16);not null;index:idx_notification_recipient" json:"type"`
	Message     string           `gorm:"type:text" json:"message"`
	SenderID    string           `gorm:"type:varchar(128);not null;index" json:"sender_id"`
	ReferenceID string           `gorm:"type:varchar(36)" json:"reference_id,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Notification) TableName() string {
	return "notifications"
}

// BeforeCreate assigns a UUID when the caller did not.
func (n *Notification) BeforeCreate(_ *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
