package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outreachly/models"
)

func stepEvent(eventType string, leadID uint, metadata string) models.SendingEvent {
	return models.SendingEvent{Type: eventType, LeadID: leadID, Metadata: metadata}
}

func TestBuildStepAnalytics(t *testing.T) {
	events := []models.SendingEvent{
		stepEvent(models.EventSent, 1, `{"step":1,"variant_id":"a"}`),
		stepEvent(models.EventSent, 2, `{"step":1,"variant_id":"b"}`),
		stepEvent(models.EventSent, 3, `{"step":1,"variant_id":"a"}`),
		stepEvent(models.EventOpen, 1, `{"step":1,"variant_id":"a"}`),
		stepEvent(models.EventOpen, 1, `{"step":1,"variant_id":"a"}`), // same lead twice
		stepEvent(models.EventReply, 2, `{"step":1,"variant_id":"b"}`),
		stepEvent(models.EventSent, 1, `{"step":2}`),
		stepEvent(models.EventClick, 1, `{"step":2}`),
	}

	stats := BuildStepAnalytics(events)
	require.Len(t, stats, 2)

	step1 := stats[0]
	assert.Equal(t, 1, step1.Step)
	assert.Equal(t, 3, step1.Sent)
	assert.Equal(t, 1, step1.UniqueOpens)
	assert.Equal(t, 1, step1.UniqueReplies)

	require.Len(t, step1.Variants, 2)
	assert.Equal(t, VariantStat{VariantID: "a", Sent: 2, UniqueOpens: 1}, step1.Variants[0])
	assert.Equal(t, VariantStat{VariantID: "b", Sent: 1, UniqueReplies: 1}, step1.Variants[1])

	step2 := stats[1]
	assert.Equal(t, 2, step2.Step)
	assert.Equal(t, 1, step2.Sent)
	assert.Equal(t, 1, step2.UniqueClicks)
	assert.Empty(t, step2.Variants)
}

func TestBuildStepAnalyticsSkipsBadMetadata(t *testing.T) {
	events := []models.SendingEvent{
		stepEvent(models.EventSent, 1, `{"step":1}`),
		stepEvent(models.EventSent, 2, ""),              // no metadata
		stepEvent(models.EventSent, 3, `{not json`),     // malformed
		stepEvent(models.EventSent, 4, `{"subject":""}`), // no step field
	}

	stats := BuildStepAnalytics(events)
	require.Len(t, stats, 1)
	assert.Equal(t, 1, stats[0].Sent)
}

func TestParseEventMetadata(t *testing.T) {
	meta, ok := models.ParseEventMetadata(`{"step":3,"variant_id":"b","account_id":7}`)
	require.True(t, ok)
	require.NotNil(t, meta.Step)
	assert.Equal(t, 3, *meta.Step)
	require.NotNil(t, meta.VariantID)
	assert.Equal(t, "b", *meta.VariantID)
	require.NotNil(t, meta.AccountID)
	assert.Equal(t, uint(7), *meta.AccountID)

	_, ok = models.ParseEventMetadata("")
	assert.False(t, ok)

	_, ok = models.ParseEventMetadata("{broken")
	assert.False(t, ok)
}

func TestCampaignCompletion(t *testing.T) {
	assert.Equal(t, 0, CampaignCompletion(10, 0, 3))
	assert.Equal(t, 0, CampaignCompletion(10, 5, 0))
	assert.Equal(t, 50, CampaignCompletion(10, 5, 4))
	assert.Equal(t, 100, CampaignCompletion(20, 5, 4))
	assert.Equal(t, 100, CampaignCompletion(25, 5, 4)) // overshoot clamps
}
