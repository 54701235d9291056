package worker

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"outreachly/models"
)

// StatsWorker periodically refreshes the denormalized counters on
// Campaign and EmailAccount records from the event log. The counters are
// advisory caches for list views; the analytics aggregator always
// recomputes from events and never reads them.
type StatsWorker struct {
	db       *gorm.DB
	logger   *log.Logger
	interval time.Duration
}

func NewStatsWorker(db *gorm.DB, logger *log.Logger, interval time.Duration) *StatsWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &StatsWorker{
		db:       db,
		logger:   logger,
		interval: interval,
	}
}

func (sw *StatsWorker) Start(ctx context.Context) {
	sw.logger.Println("Starting stats worker...")
	ticker := time.NewTicker(sw.interval)

	for {
		select {
		case <-ticker.C:
			sw.refreshAll(ctx)
		case <-ctx.Done():
			sw.logger.Println("Stopping stats worker...")
			ticker.Stop()
			return
		}
	}
}

func (sw *StatsWorker) refreshAll(ctx context.Context) {
	var campaignIDs []uint
	if err := sw.db.WithContext(ctx).Model(&models.Campaign{}).Pluck("id", &campaignIDs).Error; err != nil {
		sw.logger.Printf("Failed to list campaigns: %v", err)
		return
	}

	for _, id := range campaignIDs {
		if err := sw.refreshCampaign(ctx, id); err != nil {
			sw.logger.Printf("Failed to refresh stats for campaign %d: %v", id, err)
		}
	}

	if err := sw.refreshAccounts(ctx); err != nil {
		sw.logger.Printf("Failed to refresh account counters: %v", err)
	}
}

func (sw *StatsWorker) refreshCampaign(ctx context.Context, campaignID uint) error {
	var counts struct {
		Sent         int
		Opens        int
		UniqueOpens  int
		Clicks       int
		UniqueClicks int
		Replies      int
		Bounces      int
	}

	err := sw.db.WithContext(ctx).Raw(`
        SELECT
            COALESCE(SUM(CASE WHEN type = 'sent' THEN 1 ELSE 0 END), 0) AS sent,
            COALESCE(SUM(CASE WHEN type = 'open' THEN 1 ELSE 0 END), 0) AS opens,
            COUNT(DISTINCT CASE WHEN type = 'open' THEN lead_id END) AS unique_opens,
            COALESCE(SUM(CASE WHEN type = 'click' THEN 1 ELSE 0 END), 0) AS clicks,
            COUNT(DISTINCT CASE WHEN type = 'click' THEN lead_id END) AS unique_clicks,
            COALESCE(SUM(CASE WHEN type = 'reply' THEN 1 ELSE 0 END), 0) AS replies,
            COALESCE(SUM(CASE WHEN type = 'bounce' THEN 1 ELSE 0 END), 0) AS bounces
        FROM sending_events
        WHERE campaign_id = ? AND deleted_at IS NULL
    `, campaignID).Scan(&counts).Error
	if err != nil {
		return err
	}

	return sw.db.WithContext(ctx).Model(&models.Campaign{}).
		Where("id = ?", campaignID).
		Updates(map[string]interface{}{
			"sent_count":         counts.Sent,
			"open_count":         counts.Opens,
			"unique_open_count":  counts.UniqueOpens,
			"click_count":        counts.Clicks,
			"unique_click_count": counts.UniqueClicks,
			"reply_count":        counts.Replies,
			"bounce_count":       counts.Bounces,
		}).Error
}

func (sw *StatsWorker) refreshAccounts(ctx context.Context) error {
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var rows []struct {
		EmailAccountID uint
		Sent           int
	}
	err := sw.db.WithContext(ctx).Raw(`
        SELECT email_account_id, COUNT(*) AS sent
        FROM sending_events
        WHERE type = 'sent' AND email_account_id IS NOT NULL
          AND created_at >= ? AND deleted_at IS NULL
        GROUP BY email_account_id
    `, midnight).Scan(&rows).Error
	if err != nil {
		return err
	}

	for _, row := range rows {
		err := sw.db.WithContext(ctx).Model(&models.EmailAccount{}).
			Where("id = ?", row.EmailAccountID).
			Update("sent_today", row.Sent).Error
		if err != nil {
			return err
		}
	}
	return nil
}
