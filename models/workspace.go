package models

import (
	"gorm.io/gorm"
)

// DefaultOpportunityValue is the dollar value assigned to each opportunity
// when no workspace applies or the workspace carries no value of its own.
const DefaultOpportunityValue int64 = 5000

// Workspace groups campaigns for a team and supplies the dollar multiplier
// for opportunity and conversion valuation.
type Workspace struct {
	gorm.Model
	Name             string `gorm:"not null" json:"name"`
	OpportunityValue int64  `gorm:"default:5000" json:"opportunity_value"` // dollars per opportunity
	IsDefault        bool   `gorm:"default:false" json:"is_default"`

	// Relations
	Campaigns []WorkspaceCampaign `gorm:"foreignKey:WorkspaceID" json:"campaigns,omitempty"`
	Members   []WorkspaceMember   `gorm:"foreignKey:WorkspaceID" json:"members,omitempty"`
}

// WorkspaceCampaign joins campaigns to workspaces
type WorkspaceCampaign struct {
	gorm.Model
	WorkspaceID uint `gorm:"not null;index" json:"workspace_id"`
	CampaignID  uint `gorm:"not null;index" json:"campaign_id"`
}

// WorkspaceMember joins users to workspaces
type WorkspaceMember struct {
	gorm.Model
	WorkspaceID uint   `gorm:"not null;index" json:"workspace_id"`
	UserID      uint   `gorm:"not null;index" json:"user_id"`
	Role        string `gorm:"default:'member'" json:"role"` // owner, admin, member
}
