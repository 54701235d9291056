package classifier

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"outreachly/models"
)

// fakeClassifier replays a scripted sequence of responses.
type fakeClassifier struct {
	calls     int
	responses []fakeResponse
}

type fakeResponse struct {
	label string
	err   error
}

func (f *fakeClassifier) Classify(ctx context.Context, subject, body string) (string, error) {
	if f.calls >= len(f.responses) {
		return "", fmt.Errorf("unexpected classify call %d", f.calls)
	}
	r := f.responses[f.calls]
	f.calls++
	return r.label, r.err
}

func newPipelineDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Lead{}, &models.SendingEvent{}))
	return db
}

func seedReply(t *testing.T, db *gorm.DB, campaignID uint, subject, body string) models.Lead {
	t.Helper()
	l := models.Lead{CampaignID: campaignID, Email: fmt.Sprintf("lead%d@example.com", time.Now().UnixNano()), Status: models.LeadStatusReplied}
	require.NoError(t, db.Create(&l).Error)
	require.NoError(t, db.Create(&models.SendingEvent{
		Type:       models.EventReply,
		CampaignID: campaignID,
		LeadID:     l.ID,
		Subject:    subject,
		Details:    body,
	}).Error)
	return l
}

func testPipeline(db *gorm.DB, c ReplyClassifier) (*Pipeline, *[]time.Duration) {
	p := NewPipeline(db, c, nil)
	var slept []time.Duration
	p.Sleep = func(d time.Duration) { slept = append(slept, d) }
	return p, &slept
}

func leadLabel(t *testing.T, db *gorm.DB, id uint) *string {
	t.Helper()
	var l models.Lead
	require.NoError(t, db.First(&l, id).Error)
	return l.AILabel
}

func TestClassifyPendingRepliesAISuccess(t *testing.T) {
	db := newPipelineDB(t)
	l := seedReply(t, db, 1, "Re: intro", "happy to chat")

	fake := &fakeClassifier{responses: []fakeResponse{{label: models.LabelInterested}}}
	p, slept := testPipeline(db, fake)

	result, err := p.ClassifyPendingReplies(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 1, result.ClassifiedCount)
	assert.Equal(t, 0, result.FailedCount)
	require.Len(t, result.Results, 1)
	assert.Equal(t, LeadClassification{
		LeadID:         l.ID,
		Classification: models.LabelInterested,
		Source:         SourceAI,
		Success:        true,
	}, result.Results[0])

	require.NotNil(t, leadLabel(t, db, l.ID))
	assert.Equal(t, models.LabelInterested, *leadLabel(t, db, l.ID))
	assert.Empty(t, *slept)
}

func TestClassifyPendingRepliesRetrySucceeds(t *testing.T) {
	db := newPipelineDB(t)
	l := seedReply(t, db, 1, "Re: intro", "happy to chat")

	fake := &fakeClassifier{responses: []fakeResponse{
		{err: errors.New("rate limited")},
		{label: models.LabelMeetingBooked},
	}}
	p, slept := testPipeline(db, fake)

	result, err := p.ClassifyPendingReplies(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 1, result.ClassifiedCount)
	assert.Equal(t, SourceAI, result.Results[0].Source)
	assert.Equal(t, models.LabelMeetingBooked, *leadLabel(t, db, l.ID))
	// Exactly one retry, after the configured delay.
	assert.Equal(t, []time.Duration{p.RetryDelay}, *slept)
	assert.Equal(t, 2, fake.calls)
}

func TestClassifyPendingRepliesFallsBackAfterRetry(t *testing.T) {
	db := newPipelineDB(t)
	l := seedReply(t, db, 1, "Auto: away", "I am out of office until Friday")

	fake := &fakeClassifier{responses: []fakeResponse{
		{err: errors.New("rate limited")},
		{err: errors.New("rate limited again")},
	}}
	p, slept := testPipeline(db, fake)

	result, err := p.ClassifyPendingReplies(context.Background(), 1)
	require.NoError(t, err)

	// The AI failure is recovered, not surfaced: the run succeeds and the
	// lead carries the fallback label.
	assert.Equal(t, 1, result.ClassifiedCount)
	assert.Equal(t, 0, result.FailedCount)
	assert.Equal(t, SourceFallback, result.Results[0].Source)
	assert.True(t, result.Results[0].Success)
	assert.Equal(t, models.LabelOutOfOffice, *leadLabel(t, db, l.ID))
	assert.Len(t, *slept, 1)
	assert.Equal(t, 2, fake.calls)
}

func TestClassifyPendingRepliesNilClassifierUsesFallback(t *testing.T) {
	db := newPipelineDB(t)
	l := seedReply(t, db, 1, "Re: intro", "sounds good, tell me more")

	p, slept := testPipeline(db, nil)

	result, err := p.ClassifyPendingReplies(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, SourceFallback, result.Results[0].Source)
	assert.Equal(t, models.LabelInterested, *leadLabel(t, db, l.ID))
	assert.Empty(t, *slept)
}

func TestClassifyPendingRepliesDedupesLeads(t *testing.T) {
	db := newPipelineDB(t)
	l := seedReply(t, db, 1, "Re: intro", "interested")
	// A second unclassified reply from the same lead.
	require.NoError(t, db.Create(&models.SendingEvent{
		Type:       models.EventReply,
		CampaignID: 1,
		LeadID:     l.ID,
		Subject:    "Re: intro",
		Details:    "still interested",
	}).Error)

	fake := &fakeClassifier{responses: []fakeResponse{{label: models.LabelInterested}}}
	p, _ := testPipeline(db, fake)

	result, err := p.ClassifyPendingReplies(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 1, result.ClassifiedCount)
	assert.Equal(t, 1, fake.calls)
}

func TestClassifyPendingRepliesIdempotent(t *testing.T) {
	db := newPipelineDB(t)
	seedReply(t, db, 1, "Re: intro", "interested")

	fake := &fakeClassifier{responses: []fakeResponse{{label: models.LabelInterested}}}
	p, _ := testPipeline(db, fake)

	first, err := p.ClassifyPendingReplies(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, first.ClassifiedCount)

	// Labeled leads are skipped on the next run even though their reply
	// events are still there.
	second, err := p.ClassifyPendingReplies(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 0, second.ClassifiedCount)
	assert.Empty(t, second.Results)
	assert.Equal(t, 1, fake.calls)
}

func TestClassifyPendingRepliesScopedToCampaign(t *testing.T) {
	db := newPipelineDB(t)
	seedReply(t, db, 1, "Re: intro", "interested")
	other := seedReply(t, db, 2, "Re: intro", "interested")

	fake := &fakeClassifier{responses: []fakeResponse{{label: models.LabelInterested}}}
	p, _ := testPipeline(db, fake)

	result, err := p.ClassifyPendingReplies(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ClassifiedCount)
	assert.Nil(t, leadLabel(t, db, other.ID))
}

func TestClassifyPendingRepliesRunLock(t *testing.T) {
	db := newPipelineDB(t)
	seedReply(t, db, 1, "Re: intro", "interested")

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	p := NewPipeline(db, nil, client)
	p.Sleep = func(time.Duration) {}

	// Another run already holds the lock.
	require.NoError(t, client.Set(context.Background(), "classify:campaign:1", "1", 0).Err())
	_, err := p.ClassifyPendingReplies(context.Background(), 1)
	assert.ErrorIs(t, err, ErrRunInProgress)

	// Once the lock is gone a run proceeds and releases it afterwards.
	require.NoError(t, client.Del(context.Background(), "classify:campaign:1").Err())
	result, err := p.ClassifyPendingReplies(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ClassifiedCount)
	assert.False(t, mr.Exists("classify:campaign:1"))
}
