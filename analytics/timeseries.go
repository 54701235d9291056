package analytics

import (
	"time"

	"outreachly/models"
)

// TimeSeriesPoint is one calendar day of activity.
type TimeSeriesPoint struct {
	Date         string `json:"date"` // YYYY-MM-DD
	Sent         int    `json:"sent"`
	TotalOpens   int    `json:"total_opens"`
	UniqueOpens  int    `json:"unique_opens"`
	TotalClicks  int    `json:"total_clicks"`
	UniqueClicks int    `json:"unique_clicks"`
	TotalReplies int    `json:"total_replies"`
}

const dayFormat = "2006-01-02"

type dayAgg struct {
	sent, opens, clicks, replies int
	openLeads                    map[uint]struct{}
	clickLeads                   map[uint]struct{}
}

// buildTimeSeries emits one bucket per full calendar day up to end,
// inclusive, with zero-valued buckets kept so charts get a dense series.
// A partial leading day rounds up to the next midnight: last_7_days yields
// exactly 7 buckets ending today. Reply events for leads in excludeLeads
// (auto-replies when filtering is on) are skipped.
func buildTimeSeries(events []models.SendingEvent, start, end time.Time, excludeLeads map[uint]struct{}) []TimeSeriesPoint {
	days := make(map[string]*dayAgg)
	for _, ev := range events {
		key := ev.CreatedAt.Format(dayFormat)
		agg, ok := days[key]
		if !ok {
			agg = &dayAgg{
				openLeads:  make(map[uint]struct{}),
				clickLeads: make(map[uint]struct{}),
			}
			days[key] = agg
		}

		switch ev.Type {
		case models.EventSent:
			agg.sent++
		case models.EventOpen:
			agg.opens++
			agg.openLeads[ev.LeadID] = struct{}{}
		case models.EventClick:
			agg.clicks++
			agg.clickLeads[ev.LeadID] = struct{}{}
		case models.EventReply:
			if _, skip := excludeLeads[ev.LeadID]; skip {
				continue
			}
			agg.replies++
		}
	}

	first := startOfDay(start)
	if !first.Equal(start) {
		first = first.AddDate(0, 0, 1)
	}

	var points []TimeSeriesPoint
	for day := first; !day.After(end); day = day.AddDate(0, 0, 1) {
		key := day.Format(dayFormat)
		point := TimeSeriesPoint{Date: key}
		if agg, ok := days[key]; ok {
			point.Sent = agg.sent
			point.TotalOpens = agg.opens
			point.UniqueOpens = len(agg.openLeads)
			point.TotalClicks = agg.clicks
			point.UniqueClicks = len(agg.clickLeads)
			point.TotalReplies = agg.replies
		}
		points = append(points, point)
	}
	return points
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
