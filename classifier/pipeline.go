package classifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"outreachly/models"
)

// ErrRunInProgress is returned when another classification run already
// holds the lock for the campaign.
var ErrRunInProgress = errors.New("classification already running for this campaign")

// Classification sources.
const (
	SourceAI       = "ai"
	SourceFallback = "fallback"
)

const (
	defaultRetryDelay = 5 * time.Second
	runLockTTL        = 10 * time.Minute
)

// LeadClassification is the per-lead outcome of a run.
type LeadClassification struct {
	LeadID         uint   `json:"lead_id"`
	Classification string `json:"classification"`
	Source         string `json:"source"` // ai or fallback
	Success        bool   `json:"success"`
}

// RunResult summarizes one classification run.
type RunResult struct {
	ClassifiedCount int                  `json:"classified_count"`
	FailedCount     int                  `json:"failed_count"`
	Results         []LeadClassification `json:"results"`
}

// Pipeline resolves unclassified replies to labels. Runs for the same
// campaign are serialized through a redis lock so concurrent triggers
// don't race duplicate AI calls onto the same leads; labels are written at
// most once per lead, so an interrupted run can simply be retried.
type Pipeline struct {
	DB         *gorm.DB
	Classifier ReplyClassifier // nil skips AI and uses fallback rules directly
	Redis      *redis.Client   // nil disables run locking

	RetryDelay time.Duration
	Sleep      func(time.Duration)
}

func NewPipeline(db *gorm.DB, replyClassifier ReplyClassifier, redisClient *redis.Client) *Pipeline {
	return &Pipeline{
		DB:         db,
		Classifier: replyClassifier,
		Redis:      redisClient,
		RetryDelay: defaultRetryDelay,
		Sleep:      time.Sleep,
	}
}

// pendingReply pairs a reply event with its still-unclassified lead.
type pendingReply struct {
	LeadID  uint
	Subject string
	Body    string
}

// ClassifyPendingReplies classifies every reply in the campaign whose lead
// has no label yet. AI failures are recovered (one retry, then fallback
// rules); only a per-lead persistence failure shows up as success=false in
// the result, and it never aborts the rest of the batch.
func (p *Pipeline) ClassifyPendingReplies(ctx context.Context, campaignID uint) (*RunResult, error) {
	log := logrus.WithFields(logrus.Fields{
		"component":   "classification_pipeline",
		"campaign_id": campaignID,
	})

	unlock, err := p.acquireLock(ctx, campaignID, log)
	if err != nil {
		return nil, err
	}
	defer unlock()

	pending, err := p.pendingReplies(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to select pending replies: %w", err)
	}
	log.WithField("pending", len(pending)).Info("starting classification run")

	result := &RunResult{Results: []LeadClassification{}}
	seen := make(map[uint]struct{})

	for _, reply := range pending {
		// A lead with several unclassified replies is classified once per
		// run; later events for it are skipped.
		if _, done := seen[reply.LeadID]; done {
			continue
		}
		seen[reply.LeadID] = struct{}{}

		label, source := p.resolveLabel(ctx, reply, log)

		err := p.DB.WithContext(ctx).Model(&models.Lead{}).
			Where("id = ?", reply.LeadID).
			Update("ai_label", label).Error
		if err != nil {
			log.WithError(err).WithField("lead_id", reply.LeadID).Error("failed to persist classification")
			sentry.WithScope(func(scope *sentry.Scope) {
				scope.SetTag("component", "classification_pipeline")
				scope.SetExtra("lead_id", reply.LeadID)
				sentry.CaptureException(err)
			})
			result.FailedCount++
			result.Results = append(result.Results, LeadClassification{
				LeadID:         reply.LeadID,
				Classification: label,
				Source:         source,
				Success:        false,
			})
			continue
		}

		result.ClassifiedCount++
		result.Results = append(result.Results, LeadClassification{
			LeadID:         reply.LeadID,
			Classification: label,
			Source:         source,
			Success:        true,
		})
	}

	log.WithFields(logrus.Fields{
		"classified": result.ClassifiedCount,
		"failed":     result.FailedCount,
	}).Info("classification run finished")
	return result, nil
}

// resolveLabel runs the retry state machine for one reply: one AI attempt,
// one retry after a fixed delay, then the deterministic fallback rules,
// which always produce a label.
func (p *Pipeline) resolveLabel(ctx context.Context, reply pendingReply, log *logrus.Entry) (string, string) {
	if p.Classifier == nil {
		return FallbackClassify(reply.Subject, reply.Body), SourceFallback
	}

	label, err := p.Classifier.Classify(ctx, reply.Subject, reply.Body)
	if err == nil {
		return label, SourceAI
	}

	log.WithError(err).WithField("lead_id", reply.LeadID).Warn("AI classification failed, retrying")
	p.Sleep(p.RetryDelay)

	label, err = p.Classifier.Classify(ctx, reply.Subject, reply.Body)
	if err == nil {
		return label, SourceAI
	}

	log.WithError(err).WithField("lead_id", reply.LeadID).Warn("AI retry failed, using fallback rules")
	return FallbackClassify(reply.Subject, reply.Body), SourceFallback
}

func (p *Pipeline) pendingReplies(ctx context.Context, campaignID uint) ([]pendingReply, error) {
	var rows []pendingReply
	err := p.DB.WithContext(ctx).Model(&models.SendingEvent{}).
		Select("sending_events.lead_id AS lead_id, sending_events.subject AS subject, sending_events.details AS body").
		Joins("JOIN leads ON leads.id = sending_events.lead_id AND leads.deleted_at IS NULL").
		Where("sending_events.campaign_id = ?", campaignID).
		Where("sending_events.type = ?", models.EventReply).
		Where("leads.ai_label IS NULL").
		Order("sending_events.created_at").
		Scan(&rows).Error
	return rows, err
}

func (p *Pipeline) acquireLock(ctx context.Context, campaignID uint, log *logrus.Entry) (func(), error) {
	if p.Redis == nil {
		return func() {}, nil
	}

	key := fmt.Sprintf("classify:campaign:%d", campaignID)
	ok, err := p.Redis.SetNX(ctx, key, "1", runLockTTL).Result()
	if err != nil {
		// The lock only protects external API spend; redis being down
		// should not block classification entirely.
		log.WithError(err).Warn("classification lock unavailable, proceeding without it")
		return func() {}, nil
	}
	if !ok {
		return nil, ErrRunInProgress
	}
	return func() {
		p.Redis.Del(context.Background(), key)
	}, nil
}
