// Package models contains data structures for the application's domain models.
package models

import "time"

// User is the profile stored for an identity issued by the identity provider.
// ID is the provider's stable subject identifier.
type User struct {
	ID        string    `gorm:"primaryKey;type:varchar(128)" json:"id"`
	Username  string    `gorm:"type:varchar(64);index" json:"username"`
	Email     string    `gorm:"type:varchar(255)" json:"email,omitempty"`
	IsPrivate bool      `gorm:"default:false" json:"is_private"`
	Age       int       `json:"age,omitempty"`
	HeightCm  int       `json:"height_cm,omitempty"`
	WeightKg  int       `json:"weight_kg,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// DisplayName returns the username, falling back to the ID for
// identities that never registered a profile.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Username != "" {
		return u.Username
	}
	return u.ID
}
