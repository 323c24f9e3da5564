package models

import (
	"time"
)

type Status string

const (
	StatusPending     Status = "pending"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
	StatusImplemented Status = "implemented"
)

// ParseStatus returns the status named by s and whether it is valid.
func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case StatusPending, StatusApproved, StatusRejected, StatusImplemented:
		return st, true
	}
	return "", false
}

type Idea struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	CategoryID  uint      `gorm:"not null;index" json:"category_id"`
	Category    Category  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"category"`
	SubmitterID uint      `gorm:"not null;index" json:"submitter_id"`
	Submitter   User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"submitter"`
	Status      Status    `gorm:"size:20;default:'pending';not null;index" json:"status"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`

	Votes    []Vote    `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	Comments []Comment `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
}
