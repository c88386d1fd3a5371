package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChallengeStatus is the lifecycle state of a challenge.
type ChallengeStatus string

const (
	ChallengePending    ChallengeStatus = "PENDING"
	ChallengeAccepted   ChallengeStatus = "ACCEPTED"
	ChallengeInProgress ChallengeStatus = "IN_PROGRESS"
	ChallengeCompleted  ChallengeStatus = "COMPLETED"
)

// ChallengeRole is the side of a challenge a user is on.
type ChallengeRole string

const (
	RoleNone        ChallengeRole = ""
	RoleCreator     ChallengeRole = "creator"
	RoleParticipant ChallengeRole = "participant"
)

// ChallengeWinner is the derived outcome of a challenge.
type ChallengeWinner string

const (
	WinnerCreator     ChallengeWinner = "creator"
	WinnerParticipant ChallengeWinner = "participant"
	WinnerTie         ChallengeWinner = "tie"
)

// Challenge is a two-party race towards a shared repetition target.
type Challenge struct {
	ID                  string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name                string          `gorm:"type:varchar(120);not null" json:"name"`
	Description         string          `gorm:"type:text" json:"description"`
	CreatorID           string          `gorm:"type:varchar(128);not null;index" json:"creator_id"`
	ParticipantID       string          `gorm:"type:varchar(128);not null;index" json:"participant_id"`
	Exercise            string          `gorm:"type:varchar(120);not null" json:"exercise"`
	TargetRepetitions   int             `gorm:"not null" json:"target_repetitions"`
	CreatorProgress     int             `gorm:"default:0" json:"creator_progress"`
	ParticipantProgress int             `gorm:"default:0" json:"participant_progress"`
	Status              ChallengeStatus `gorm:"type:varchar(16);default:'PENDING';index" json:"status"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Challenge) TableName() string {
	return "challenges"
}

// BeforeCreate assigns a UUID when the caller did not.
func (c *Challenge) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// RoleOf resolves the caller's side by comparing stored IDs.
func (c *Challenge) RoleOf(userID string) ChallengeRole {
	switch userID {
	case c.CreatorID:
		return RoleCreator
	case c.ParticipantID:
		return RoleParticipant
	}
	return RoleNone
}

// Winner is computed at read time and never stored.
func (c *Challenge) Winner() ChallengeWinner {
	switch {
	case c.CreatorProgress > c.ParticipantProgress:
		return WinnerCreator
	case c.ParticipantProgress > c.CreatorProgress:
		return WinnerParticipant
	default:
		return WinnerTie
	}
}
