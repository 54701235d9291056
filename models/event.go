package models

import (
	"encoding/json"

	"gorm.io/gorm"
)

// Event types recorded by the sending subsystem.
const (
	EventSent   = "sent"
	EventOpen   = "open"
	EventClick  = "click"
	EventReply  = "reply"
	EventBounce = "bounce"
)

// SendingEvent is the append-only record of a single email-transport event.
// Rows are written exactly once by the sending subsystem and never updated
// or deleted; every metric in the analytics package is derived from them.
// The denormalized counters on Campaign and EmailAccount are advisory
// caches only.
type SendingEvent struct {
	gorm.Model
	Type           string `gorm:"not null;index" json:"type"` // sent, open, click, reply, bounce
	LeadID         uint   `gorm:"not null;index" json:"lead_id"`
	CampaignID     uint   `gorm:"not null;index" json:"campaign_id"`
	EmailAccountID *uint  `gorm:"index" json:"email_account_id,omitempty"`

	// Metadata is an opaque JSON blob set by the sender (step number,
	// variant id, subject, account id). Parse with ParseEventMetadata.
	Metadata string `gorm:"type:jsonb" json:"metadata,omitempty"`

	Details       string `gorm:"type:text" json:"details,omitempty"` // raw reply body for reply events
	Subject       string `json:"subject,omitempty"`
	HasAttachment bool   `gorm:"default:false" json:"has_attachment"`
	MessageID     string `json:"message_id,omitempty"`

	// Relations
	Lead     Lead     `json:"-"`
	Campaign Campaign `json:"-"`
}

// EventMetadata is the typed envelope for the fields the analytics layer
// reads out of SendingEvent.Metadata.
type EventMetadata struct {
	Step      *int    `json:"step,omitempty"`
	VariantID *string `json:"variant_id,omitempty"`
	Subject   *string `json:"subject,omitempty"`
	AccountID *uint   `json:"account_id,omitempty"`
}

// ParseEventMetadata decodes an event metadata blob. The second return is
// false when the blob is empty or malformed; callers skip the event for
// metadata-dependent breakdowns instead of failing the whole aggregation.
func ParseEventMetadata(raw string) (EventMetadata, bool) {
	if raw == "" {
		return EventMetadata{}, false
	}
	var meta EventMetadata
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return EventMetadata{}, false
	}
	return meta, true
}
