package analytics

import (
	"fmt"
	"math"
	"time"

	"outreachly/models"
)

// Sentinel strings rendered in place of a numeric rate.
const (
	RateDisabled    = "Disabled"
	RateCalculating = "calculating..."
)

// AggregateInput carries everything Aggregate needs. It holds plain data
// so aggregation itself is a pure function with no store access.
type AggregateInput struct {
	Events    []models.SendingEvent
	Leads     []models.Lead // all leads in scope, not window-filtered
	Campaigns []models.Campaign

	OpportunityValue   int64
	IncludeAutoReplies bool

	Start time.Time
	End   time.Time
}

// MetricBundle is the derived metric set for one scope and time window.
type MetricBundle struct {
	Sent          int `json:"sent"`
	UniqueOpened  int `json:"unique_opened"`
	UniqueClicked int `json:"unique_clicked"`
	UniqueReplied int `json:"unique_replied"`
	UniqueBounced int `json:"unique_bounced"`

	OpenRate          string `json:"open_rate"`
	ClickRate         string `json:"click_rate"`
	ReplyRate         string `json:"reply_rate"`
	BounceRate        string `json:"bounce_rate"`
	PositiveReplyRate string `json:"positive_reply_rate"`

	NeedsClassification bool `json:"needs_classification"`
	UnclassifiedReplies int  `json:"unclassified_replies"`

	OpportunityCount int   `json:"opportunity_count"`
	OpportunityValue int64 `json:"opportunity_value"`
	ConversionCount  int   `json:"conversion_count"`
	ConversionValue  int64 `json:"conversion_value"`

	Funnel     []FunnelStage     `json:"funnel"`
	Heatmap    [][]HeatmapCell   `json:"heatmap"` // 7 days x 24 hours
	TimeSeries []TimeSeriesPoint `json:"time_series"`
}

// Aggregate derives the full metric bundle from an event log snapshot plus
// the lead, campaign and workspace records in scope. It never fails: bad
// metadata on individual events only drops those events from the breakdown
// that needed it.
func Aggregate(in AggregateInput) MetricBundle {
	labels := make(map[uint]*string, len(in.Leads))
	for _, lead := range in.Leads {
		labels[lead.ID] = lead.AILabel
	}

	var sent int
	openLeads := make(map[uint]struct{})
	clickLeads := make(map[uint]struct{})
	bounceLeads := make(map[uint]struct{})
	replyLeads := make(map[uint]struct{})
	positiveLeads := make(map[uint]struct{})
	unclassified := make(map[uint]struct{})
	autoReplyLeads := make(map[uint]struct{})

	for _, ev := range in.Events {
		switch ev.Type {
		case models.EventSent:
			// Raw count: each send is a distinct unit of work.
			sent++
		case models.EventOpen:
			openLeads[ev.LeadID] = struct{}{}
		case models.EventClick:
			clickLeads[ev.LeadID] = struct{}{}
		case models.EventBounce:
			bounceLeads[ev.LeadID] = struct{}{}
		case models.EventReply:
			label, ok := labels[ev.LeadID]
			if !ok || label == nil {
				// Unclassified replies gate the positive reply rate even
				// when auto-reply filtering is on.
				unclassified[ev.LeadID] = struct{}{}
				replyLeads[ev.LeadID] = struct{}{}
				continue
			}
			if *label == models.LabelOutOfOffice {
				autoReplyLeads[ev.LeadID] = struct{}{}
				if !in.IncludeAutoReplies {
					continue
				}
			}
			replyLeads[ev.LeadID] = struct{}{}
			if models.IsPositiveLabel(*label) {
				positiveLeads[ev.LeadID] = struct{}{}
			}
		}
	}

	bundle := MetricBundle{
		Sent:          sent,
		UniqueOpened:  len(openLeads),
		UniqueClicked: len(clickLeads),
		UniqueReplied: len(replyLeads),
		UniqueBounced: len(bounceLeads),

		NeedsClassification: len(unclassified) > 0,
		UnclassifiedReplies: len(unclassified),
	}

	bundle.OpenRate = trackedRate(len(openLeads), sent, tracksOpens(in.Campaigns))
	bundle.ClickRate = trackedRate(len(clickLeads), sent, tracksLinks(in.Campaigns))
	bundle.ReplyRate = formatRate(len(replyLeads), sent)
	bundle.BounceRate = formatRate(len(bounceLeads), sent)

	switch {
	case len(unclassified) > 0:
		bundle.PositiveReplyRate = RateCalculating
	case len(replyLeads) == 0:
		bundle.PositiveReplyRate = "0%"
	default:
		bundle.PositiveReplyRate = formatRate(len(positiveLeads), len(replyLeads))
	}

	// Opportunities track lead state, not event occurrence: they are
	// counted over leads created inside the window, independent of the log.
	for _, lead := range in.Leads {
		if lead.CreatedAt.Before(in.Start) || lead.CreatedAt.After(in.End) {
			continue
		}
		positiveLabel := lead.AILabel != nil && models.IsPositiveLabel(*lead.AILabel)
		if lead.Status == models.LeadStatusWon || positiveLabel {
			bundle.OpportunityCount++
		}
		if models.IsConversionStatus(lead.Status) {
			bundle.ConversionCount++
		}
	}
	bundle.OpportunityValue = int64(bundle.OpportunityCount) * in.OpportunityValue
	bundle.ConversionValue = int64(bundle.ConversionCount) * in.OpportunityValue

	excluded := autoReplyLeads
	if in.IncludeAutoReplies {
		excluded = nil
	}

	bundle.Funnel = buildFunnel(sent, len(bounceLeads), len(openLeads), len(clickLeads), len(replyLeads), bundle.ConversionCount)
	bundle.Heatmap = buildHeatmap(in.Events)
	bundle.TimeSeries = buildTimeSeries(in.Events, in.Start, in.End, excluded)

	return bundle
}

// tracksOpens reports whether any campaign in scope has open tracking on.
// An empty campaign set (lookup degraded) keeps rates numeric: "Disabled"
// only appears when tracking is genuinely off everywhere.
func tracksOpens(campaigns []models.Campaign) bool {
	if len(campaigns) == 0 {
		return true
	}
	for _, c := range campaigns {
		if c.TrackOpens {
			return true
		}
	}
	return false
}

func tracksLinks(campaigns []models.Campaign) bool {
	if len(campaigns) == 0 {
		return true
	}
	for _, c := range campaigns {
		if c.TrackLinks {
			return true
		}
	}
	return false
}

func trackedRate(count, total int, enabled bool) string {
	if !enabled {
		return RateDisabled
	}
	return formatRate(count, total)
}

// formatRate renders count/total as a whole percentage string.
func formatRate(count, total int) string {
	return fmt.Sprintf("%d%%", ratePercent(count, total))
}

// ratePercent computes a rounded percentage clamped to [0, 100]. Unique
// counts can exceed the sent total in odd data sets; the clamp is a
// display guarantee, not an error.
func ratePercent(count, total int) int {
	if total <= 0 {
		return 0
	}
	p := int(math.Round(float64(count) / float64(total) * 100))
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
