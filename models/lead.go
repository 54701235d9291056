package models

import (
	"gorm.io/gorm"
)

// Lead statuses.
const (
	LeadStatusNew       = "new"
	LeadStatusContacted = "contacted"
	LeadStatusReplied   = "replied"
	LeadStatusConverted = "converted"
	LeadStatusWon       = "won"
	LeadStatusLost      = "lost"
)

// AI reply labels.
const (
	LabelInterested    = "interested"
	LabelMeetingBooked = "meeting_booked"
	LabelNotInterested = "not_interested"
	LabelWrongPerson   = "wrong_person"
	LabelOutOfOffice   = "out_of_office"
	LabelLost          = "lost"
)

// Lead represents a single contact in a campaign
type Lead struct {
	gorm.Model
	CampaignID uint `gorm:"not null;index" json:"campaign_id"`

	Email     string `gorm:"not null;index" json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company"`

	Status string `gorm:"default:'new';index" json:"status"`

	// AILabel starts null and is set at most once, by the classification
	// pipeline or manually in the UI. It is never cleared automatically;
	// leads that already carry a label are skipped on reclassification.
	AILabel *string `gorm:"index" json:"ai_label,omitempty"`

	// Relations
	Campaign Campaign       `json:"-"`
	Events   []SendingEvent `gorm:"foreignKey:LeadID" json:"events,omitempty"`
}

// IsPositiveLabel reports whether a reply label counts toward the positive
// reply rate and opportunity totals.
func IsPositiveLabel(label string) bool {
	return label == LabelInterested || label == LabelMeetingBooked
}

// IsConversionStatus reports whether a lead status counts as a conversion.
func IsConversionStatus(status string) bool {
	return status == LeadStatusConverted || status == LeadStatusWon
}

// ValidAILabels lists every label the classifier may produce.
func ValidAILabels() []string {
	return []string{
		LabelInterested,
		LabelMeetingBooked,
		LabelNotInterested,
		LabelWrongPerson,
		LabelOutOfOffice,
		LabelLost,
	}
}
