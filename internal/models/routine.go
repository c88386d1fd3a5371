package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Difficulty is the self-assessed difficulty of a routine.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// StringList is an ordered list of strings persisted as a JSON array.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported StringList source %T", src)
	}
	if len(raw) == 0 {
		*l = StringList{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return errors.Join(errors.New("decode string list"), err)
	}
	*l = out
	return nil
}

// Routine is an ordered list of exercises owned by one user.
type Routine struct {
	ID               string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name             string     `gorm:"type:varchar(120);not null" json:"name"`
	Description      string     `gorm:"type:text" json:"description"`
	Difficulty       Difficulty `gorm:"type:varchar(16);not null" json:"difficulty"`
	ExerciseNames    StringList `gorm:"type:text" json:"exercise_names"`
	OwnerID          string     `gorm:"type:varchar(128);not null;index" json:"owner_id"`
	ShareWithFriends bool       `gorm:"default:false;index" json:"share_with_friends"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Routine) TableName() string {
	return "routines"
}

// BeforeCreate assigns a UUID when the caller did not.
func (r *Routine) BeforeCreate(_ *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// OwnedBy reports whether userID owns the routine.
func (r *Routine) OwnedBy(userID string) bool {
	return r != nil && r.OwnerID == userID
}
