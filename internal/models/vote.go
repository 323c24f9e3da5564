package models

import (
	"time"
)

const (
	Upvote   = 1
	Downvote = -1
)

// Vote is unique per (idea, user); see idx_vote_idea_user.
type Vote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	IdeaID    uint      `gorm:"not null;uniqueIndex:idx_vote_idea_user" json:"idea_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_vote_idea_user;index" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	VoteType  int       `gorm:"not null" json:"vote_type"` // 1 or -1
	CreatedAt time.Time `json:"created_at"`
}
