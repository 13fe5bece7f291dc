package model

import (
	"time"

	"gorm.io/gorm"
)

// Subscription is the premium grant recorded by the payment collaborator.
type Subscription struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	UserID      string         `json:"user_id" gorm:"not null;uniqueIndex;size:64"`
	ActiveUntil time.Time      `json:"active_until" gorm:"not null"`
	Source      string         `json:"source,omitempty" gorm:"size:32"` // "webhook", "admin"
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (s *Subscription) ActiveAt(t time.Time) bool {
	return s.ActiveUntil.After(t)
}
