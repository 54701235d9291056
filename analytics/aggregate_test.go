package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"outreachly/models"
	"outreachly/utils"
)

var (
	aggStart = time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
	aggEnd   = time.Date(2026, time.May, 8, 0, 0, 0, 0, time.UTC)
)

func evt(eventType string, leadID uint, at time.Time) models.SendingEvent {
	return models.SendingEvent{
		Model:      gorm.Model{CreatedAt: at},
		Type:       eventType,
		LeadID:     leadID,
		CampaignID: 1,
	}
}

func lead(id uint, status string, aiLabel *string, createdAt time.Time) models.Lead {
	return models.Lead{
		Model:      gorm.Model{ID: id, CreatedAt: createdAt},
		CampaignID: 1,
		Status:     status,
		AILabel:    aiLabel,
	}
}

func trackedCampaign() models.Campaign {
	return models.Campaign{TrackOpens: true, TrackLinks: true}
}

func TestAggregateUniqueCountsAndRates(t *testing.T) {
	at := aggStart.Add(time.Hour)

	var events []models.SendingEvent
	for i := 0; i < 100; i++ {
		events = append(events, evt(models.EventSent, uint(i+1), at))
	}
	// 40 open events from only 30 distinct leads.
	for i := 0; i < 30; i++ {
		events = append(events, evt(models.EventOpen, uint(i+1), at))
	}
	for i := 0; i < 10; i++ {
		events = append(events, evt(models.EventOpen, uint(i+1), at))
	}
	// 20 clicks from 10 leads, 5 bounces.
	for i := 0; i < 10; i++ {
		events = append(events, evt(models.EventClick, uint(i+1), at))
		events = append(events, evt(models.EventClick, uint(i+1), at.Add(time.Minute)))
	}
	for i := 0; i < 5; i++ {
		events = append(events, evt(models.EventBounce, uint(i+90), at))
	}

	bundle := Aggregate(AggregateInput{
		Events:             events,
		Campaigns:          []models.Campaign{trackedCampaign()},
		OpportunityValue:   models.DefaultOpportunityValue,
		IncludeAutoReplies: true,
		Start:              aggStart,
		End:                aggEnd,
	})

	assert.Equal(t, 100, bundle.Sent)
	assert.Equal(t, 30, bundle.UniqueOpened)
	assert.Equal(t, 10, bundle.UniqueClicked)
	assert.Equal(t, 5, bundle.UniqueBounced)
	assert.Equal(t, 0, bundle.UniqueReplied)

	assert.Equal(t, "30%", bundle.OpenRate)
	assert.Equal(t, "10%", bundle.ClickRate)
	assert.Equal(t, "0%", bundle.ReplyRate)
	assert.Equal(t, "5%", bundle.BounceRate)
	assert.False(t, bundle.NeedsClassification)
}

func TestAggregateDisabledTracking(t *testing.T) {
	events := []models.SendingEvent{
		evt(models.EventSent, 1, aggStart.Add(time.Hour)),
		evt(models.EventOpen, 1, aggStart.Add(2*time.Hour)),
	}

	allOff := Aggregate(AggregateInput{
		Events:             events,
		Campaigns:          []models.Campaign{{TrackOpens: false, TrackLinks: false}},
		IncludeAutoReplies: true,
		Start:              aggStart,
		End:                aggEnd,
	})
	assert.Equal(t, RateDisabled, allOff.OpenRate)
	assert.Equal(t, RateDisabled, allOff.ClickRate)

	// One tracking campaign in scope keeps the rate numeric.
	oneOn := Aggregate(AggregateInput{
		Events: events,
		Campaigns: []models.Campaign{
			{TrackOpens: false, TrackLinks: false},
			trackedCampaign(),
		},
		IncludeAutoReplies: true,
		Start:              aggStart,
		End:                aggEnd,
	})
	assert.Equal(t, "100%", oneOn.OpenRate)
	assert.Equal(t, "0%", oneOn.ClickRate)

	// An empty campaign set means the lookup degraded; rates stay numeric.
	noCampaigns := Aggregate(AggregateInput{
		Events:             events,
		IncludeAutoReplies: true,
		Start:              aggStart,
		End:                aggEnd,
	})
	assert.Equal(t, "100%", noCampaigns.OpenRate)
}

func TestAggregateAutoReplyFiltering(t *testing.T) {
	at := aggStart.Add(time.Hour)
	leads := []models.Lead{
		lead(1, models.LeadStatusReplied, utils.Pointer(models.LabelOutOfOffice), aggStart.Add(time.Hour)),
		lead(2, models.LeadStatusReplied, utils.Pointer(models.LabelInterested), aggStart.Add(time.Hour)),
	}
	var events []models.SendingEvent
	for i := 0; i < 10; i++ {
		events = append(events, evt(models.EventSent, uint(i+1), at))
	}
	events = append(events,
		evt(models.EventReply, 1, at),
		evt(models.EventReply, 2, at),
	)

	filtered := Aggregate(AggregateInput{
		Events:             events,
		Leads:              leads,
		Campaigns:          []models.Campaign{trackedCampaign()},
		IncludeAutoReplies: false,
		Start:              aggStart,
		End:                aggEnd,
	})
	assert.Equal(t, 1, filtered.UniqueReplied)
	assert.Equal(t, "10%", filtered.ReplyRate)
	assert.Equal(t, "100%", filtered.PositiveReplyRate)

	unfiltered := Aggregate(AggregateInput{
		Events:             events,
		Leads:              leads,
		Campaigns:          []models.Campaign{trackedCampaign()},
		IncludeAutoReplies: true,
		Start:              aggStart,
		End:                aggEnd,
	})
	assert.Equal(t, 2, unfiltered.UniqueReplied)
	assert.Equal(t, "20%", unfiltered.ReplyRate)
	assert.Equal(t, "50%", unfiltered.PositiveReplyRate)
}

func TestAggregatePositiveRateGatedOnClassification(t *testing.T) {
	at := aggStart.Add(time.Hour)
	leads := []models.Lead{
		lead(1, models.LeadStatusReplied, nil, at),
		lead(2, models.LeadStatusReplied, utils.Pointer(models.LabelInterested), at),
	}
	events := []models.SendingEvent{
		evt(models.EventSent, 1, at),
		evt(models.EventSent, 2, at),
		evt(models.EventReply, 1, at),
		evt(models.EventReply, 2, at),
	}

	bundle := Aggregate(AggregateInput{
		Events:             events,
		Leads:              leads,
		Campaigns:          []models.Campaign{trackedCampaign()},
		IncludeAutoReplies: false,
		Start:              aggStart,
		End:                aggEnd,
	})

	assert.True(t, bundle.NeedsClassification)
	assert.Equal(t, 1, bundle.UnclassifiedReplies)
	assert.Equal(t, RateCalculating, bundle.PositiveReplyRate)
	// The unclassified reply still counts as a reply.
	assert.Equal(t, 2, bundle.UniqueReplied)
}

func TestAggregateNoRepliesPositiveRateIsZero(t *testing.T) {
	bundle := Aggregate(AggregateInput{
		Events:             []models.SendingEvent{evt(models.EventSent, 1, aggStart.Add(time.Hour))},
		Campaigns:          []models.Campaign{trackedCampaign()},
		IncludeAutoReplies: true,
		Start:              aggStart,
		End:                aggEnd,
	})
	assert.False(t, bundle.NeedsClassification)
	assert.Equal(t, "0%", bundle.PositiveReplyRate)
}

func TestAggregateOpportunitiesAndConversions(t *testing.T) {
	inWindow := aggStart.Add(24 * time.Hour)
	leads := []models.Lead{
		lead(1, models.LeadStatusWon, nil, inWindow),                                         // opportunity + conversion
		lead(2, models.LeadStatusReplied, utils.Pointer(models.LabelMeetingBooked), inWindow), // opportunity
		lead(3, models.LeadStatusConverted, nil, inWindow),                                   // conversion only
		lead(4, models.LeadStatusWon, nil, aggStart.Add(-time.Hour)),                         // created before the window
		lead(5, models.LeadStatusReplied, utils.Pointer(models.LabelNotInterested), inWindow),
	}

	bundle := Aggregate(AggregateInput{
		Leads:              leads,
		Campaigns:          []models.Campaign{trackedCampaign()},
		OpportunityValue:   5000,
		IncludeAutoReplies: true,
		Start:              aggStart,
		End:                aggEnd,
	})

	assert.Equal(t, 2, bundle.OpportunityCount)
	assert.Equal(t, int64(10000), bundle.OpportunityValue)
	assert.Equal(t, 2, bundle.ConversionCount)
	assert.Equal(t, int64(10000), bundle.ConversionValue)
}

func TestAggregateHeatmapShape(t *testing.T) {
	bundle := Aggregate(AggregateInput{Start: aggStart, End: aggEnd, IncludeAutoReplies: true})
	require.Len(t, bundle.Heatmap, 7)
	for _, row := range bundle.Heatmap {
		assert.Len(t, row, 24)
	}
}

func TestRatePercent(t *testing.T) {
	tests := []struct {
		count, total, want int
	}{
		{0, 0, 0},
		{5, 0, 0},
		{5, 10, 50},
		{1, 3, 33},
		{2, 3, 67},
		{10, 10, 100},
		{150, 100, 100}, // clamped
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ratePercent(tt.count, tt.total), "%d/%d", tt.count, tt.total)
	}
}

func TestAggregateClampsRatesAtHundred(t *testing.T) {
	at := aggStart.Add(time.Hour)
	events := []models.SendingEvent{
		evt(models.EventSent, 1, at),
		evt(models.EventOpen, 1, at),
		evt(models.EventOpen, 2, at),
		evt(models.EventOpen, 3, at),
	}
	bundle := Aggregate(AggregateInput{
		Events:             events,
		Campaigns:          []models.Campaign{trackedCampaign()},
		IncludeAutoReplies: true,
		Start:              aggStart,
		End:                aggEnd,
	})
	assert.Equal(t, 3, bundle.UniqueOpened)
	assert.Equal(t, "100%", bundle.OpenRate)
}
