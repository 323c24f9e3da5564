package models

import (
	"strings"
	"time"
)

type Role string

const (
	RoleSubmitter Role = "submitter"
	RoleReviewer  Role = "reviewer"
	RoleAdmin     Role = "admin"
)

// ParseRole returns the role named by s and whether it is one of the three known roles.
func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleSubmitter, RoleReviewer, RoleAdmin:
		return r, true
	}
	return "", false
}

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:80;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:120;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:256;not null" json:"-"` // bcrypt
	Role         Role      `gorm:"size:20;default:'submitter';not null" json:"role"`
	AvatarColor  string    `gorm:"size:7;default:'#6366f1'" json:"avatar_color"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin grants user management and deletion of any idea.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// IsReviewer grants idea status moderation. Admins are reviewers too.
func (u *User) IsReviewer() bool {
	return u != nil && (u.Role == RoleReviewer || u.Role == RoleAdmin)
}

// Initials is the avatar text: the first two characters of the username, upper-cased.
func (u *User) Initials() string {
	r := []rune(u.Username)
	if len(r) > 2 {
		r = r[:2]
	}
	return strings.ToUpper(string(r))
}
