package models

import (
	"gorm.io/gorm"
)

// EmailAccount is a connected sending mailbox
type EmailAccount struct {
	gorm.Model
	UserID uint `gorm:"not null;index" json:"user_id"`

	Email    string `gorm:"not null;index" json:"email"`
	Provider string `json:"provider"` // gmail, outlook, smtp
	IsActive bool   `gorm:"default:true" json:"is_active"`

	DailyLimit int `gorm:"default:50" json:"daily_limit"`

	// SentToday is an advisory counter refreshed by the stats worker from
	// the event log; the sending subsystem treats it as a hint only.
	SentToday int `gorm:"default:0" json:"sent_today"`
}
