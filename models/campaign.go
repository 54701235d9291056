package models

import (
	"gorm.io/gorm"
)

// Campaign represents an outreach campaign
type Campaign struct {
	gorm.Model
	UserID uint `gorm:"not null;index" json:"user_id"`

	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	Status      string `gorm:"default:'draft'" json:"status"` // draft, active, paused, completed

	// Tracking settings. When a flag is off the matching rate renders as
	// "Disabled" instead of a percentage.
	TrackOpens bool `gorm:"default:true" json:"track_opens"`
	TrackLinks bool `gorm:"default:true" json:"track_links"`
	DailyLimit int  `gorm:"default:50" json:"daily_limit"`

	// Statistics (denormalized for list views). Refreshed by the stats
	// worker from the event log; the aggregator never reads these.
	SentCount        int `gorm:"default:0" json:"sent_count"`
	OpenCount        int `gorm:"default:0" json:"open_count"`
	UniqueOpenCount  int `gorm:"default:0" json:"unique_open_count"`
	ClickCount       int `gorm:"default:0" json:"click_count"`
	UniqueClickCount int `gorm:"default:0" json:"unique_click_count"`
	ReplyCount       int `gorm:"default:0" json:"reply_count"`
	BounceCount      int `gorm:"default:0" json:"bounce_count"`

	// Relations
	SequenceSteps []SequenceStep `gorm:"foreignKey:CampaignID" json:"sequence_steps,omitempty"`
	Leads         []Lead         `gorm:"foreignKey:CampaignID" json:"leads,omitempty"`
	Events        []SendingEvent `gorm:"foreignKey:CampaignID" json:"events,omitempty"`
}
