package analytics

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"outreachly/models"
)

// Scope is the filter boundary for aggregation: all campaigns of a user,
// all campaigns in a workspace, or a single campaign.
type Scope struct {
	UserID      uint
	WorkspaceID uint
	CampaignID  uint
}

func ScopeUser(userID uint) Scope           { return Scope{UserID: userID} }
func ScopeWorkspace(workspaceID uint) Scope { return Scope{WorkspaceID: workspaceID} }
func ScopeCampaign(campaignID uint) Scope   { return Scope{CampaignID: campaignID} }

// EventStore reads the append-only sending event log and the entity
// records aggregation depends on. It never writes; the event write path
// belongs to the email sending subsystem.
type EventStore struct {
	DB *gorm.DB
}

func NewEventStore(db *gorm.DB) *EventStore {
	return &EventStore{DB: db}
}

// campaignIDs resolves a scope to the campaign ids it covers. Workspace
// scope goes through the workspace_campaigns join table.
func (s *EventStore) campaignIDs(ctx context.Context, scope Scope) ([]uint, error) {
	if scope.CampaignID != 0 {
		return []uint{scope.CampaignID}, nil
	}

	var ids []uint
	if scope.WorkspaceID != 0 {
		err := s.DB.WithContext(ctx).Model(&models.WorkspaceCampaign{}).
			Where("workspace_id = ?", scope.WorkspaceID).
			Pluck("campaign_id", &ids).Error
		if err != nil {
			return nil, fmt.Errorf("failed to resolve workspace campaigns: %w", err)
		}
		return ids, nil
	}

	err := s.DB.WithContext(ctx).Model(&models.Campaign{}).
		Where("user_id = ?", scope.UserID).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user campaigns: %w", err)
	}
	return ids, nil
}

// QueryEvents returns every event for the scope inside [start, end],
// optionally filtered by type. Events whose lead or campaign no longer
// exists are excluded rather than surfaced as errors. No ordering is
// guaranteed.
func (s *EventStore) QueryEvents(ctx context.Context, scope Scope, start, end time.Time, types ...string) ([]models.SendingEvent, error) {
	ids, err := s.campaignIDs(ctx, scope)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.SendingEvent{}, nil
	}

	q := s.DB.WithContext(ctx).Model(&models.SendingEvent{}).
		Joins("JOIN leads ON leads.id = sending_events.lead_id AND leads.deleted_at IS NULL").
		Joins("JOIN campaigns ON campaigns.id = sending_events.campaign_id AND campaigns.deleted_at IS NULL").
		Where("sending_events.campaign_id IN ?", ids).
		Where("sending_events.created_at BETWEEN ? AND ?", start, end)
	if len(types) > 0 {
		q = q.Where("sending_events.type IN ?", types)
	}

	var events []models.SendingEvent
	if err := q.Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to query sending events: %w", err)
	}
	return events, nil
}

// LeadsInScope returns every lead of the scope's campaigns, without a time
// filter. The aggregator window-filters lead creation itself and needs the
// full set for reply label lookups.
func (s *EventStore) LeadsInScope(ctx context.Context, scope Scope) ([]models.Lead, error) {
	ids, err := s.campaignIDs(ctx, scope)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.Lead{}, nil
	}

	var leads []models.Lead
	if err := s.DB.WithContext(ctx).Where("campaign_id IN ?", ids).Find(&leads).Error; err != nil {
		return nil, fmt.Errorf("failed to query leads: %w", err)
	}
	return leads, nil
}

// CampaignsInScope returns the scope's campaign records, used for the
// tracking flags and sequence definitions.
func (s *EventStore) CampaignsInScope(ctx context.Context, scope Scope) ([]models.Campaign, error) {
	ids, err := s.campaignIDs(ctx, scope)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.Campaign{}, nil
	}

	var campaigns []models.Campaign
	err = s.DB.WithContext(ctx).Preload("SequenceSteps").Where("id IN ?", ids).Find(&campaigns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query campaigns: %w", err)
	}
	return campaigns, nil
}

// OpportunityValueForScope returns the workspace opportunity value for the
// scope. A missing workspace or lookup failure degrades to the default
// value, never to an error.
func (s *EventStore) OpportunityValueForScope(ctx context.Context, scope Scope) int64 {
	var ws models.Workspace
	var err error

	switch {
	case scope.WorkspaceID != 0:
		err = s.DB.WithContext(ctx).First(&ws, scope.WorkspaceID).Error
	case scope.CampaignID != 0:
		err = s.DB.WithContext(ctx).Model(&models.Workspace{}).
			Select("workspaces.*").
			Joins("JOIN workspace_campaigns ON workspace_campaigns.workspace_id = workspaces.id").
			Where("workspace_campaigns.campaign_id = ?", scope.CampaignID).
			First(&ws).Error
	default:
		err = s.DB.WithContext(ctx).Model(&models.Workspace{}).
			Select("workspaces.*").
			Joins("JOIN workspace_members ON workspace_members.workspace_id = workspaces.id").
			Where("workspace_members.user_id = ? AND workspaces.is_default = ?", scope.UserID, true).
			First(&ws).Error
	}

	if err != nil || ws.OpportunityValue <= 0 {
		return models.DefaultOpportunityValue
	}
	return ws.OpportunityValue
}
