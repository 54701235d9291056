package models

import (
	"gorm.io/gorm"
)

// SequenceStep is one step of a campaign's ordered email sequence
type SequenceStep struct {
	gorm.Model
	CampaignID uint `gorm:"not null;index" json:"campaign_id"`

	StepNumber int    `gorm:"not null" json:"step_number"` // 1-based position in the sequence
	Subject    string `json:"subject"`
	Body       string `gorm:"type:text" json:"body"`
	WaitDays   int    `gorm:"default:1" json:"wait_days"`

	// A/B variants stored as JSON
	Variants []StepVariant `gorm:"type:jsonb;serializer:json" json:"variants,omitempty"`

	// Relations
	Campaign Campaign `json:"-"`
}

// StepVariant is an A/B variant of a sequence step. Sending events carry
// the variant id in their metadata blob.
type StepVariant struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
