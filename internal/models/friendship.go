package models

import "time"

// FriendEdge is one entry of an owner's friend list. Edges are directed:
// an edge owner -> friend says nothing about friend -> owner.
type FriendEdge struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	OwnerID   string    `gorm:"type:varchar(128);not null;uniqueIndex:idx_friend_edge" json:"owner_id"`
	FriendID  string    `gorm:"type:varchar(128);not null;uniqueIndex:idx_friend_edge;index" json:"friend_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (FriendEdge) TableName() string {
	return "friend_edges"
}
