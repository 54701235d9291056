package analytics

import (
	"sort"

	"outreachly/models"
)

// VariantStat counts activity for one A/B variant inside a step.
type VariantStat struct {
	VariantID     string `json:"variant_id"`
	Sent          int    `json:"sent"`
	UniqueOpens   int    `json:"unique_opens"`
	UniqueClicks  int    `json:"unique_clicks"`
	UniqueReplies int    `json:"unique_replies"`
}

// StepStat counts activity for one sequence step of a campaign.
type StepStat struct {
	Step          int           `json:"step"`
	Sent          int           `json:"sent"`
	UniqueOpens   int           `json:"unique_opens"`
	UniqueClicks  int           `json:"unique_clicks"`
	UniqueReplies int           `json:"unique_replies"`
	Variants      []VariantStat `json:"variants,omitempty"`
}

type stepCounter struct {
	sent       int
	openLeads  map[uint]struct{}
	clickLeads map[uint]struct{}
	replyLeads map[uint]struct{}
	variants   map[string]*stepCounter
}

func newStepCounter() *stepCounter {
	return &stepCounter{
		openLeads:  make(map[uint]struct{}),
		clickLeads: make(map[uint]struct{}),
		replyLeads: make(map[uint]struct{}),
	}
}

func (c *stepCounter) add(ev models.SendingEvent) {
	switch ev.Type {
	case models.EventSent:
		c.sent++
	case models.EventOpen:
		c.openLeads[ev.LeadID] = struct{}{}
	case models.EventClick:
		c.clickLeads[ev.LeadID] = struct{}{}
	case models.EventReply:
		c.replyLeads[ev.LeadID] = struct{}{}
	}
}

// BuildStepAnalytics partitions a campaign's events per sequence step and
// variant using the metadata envelope. Events with missing or malformed
// metadata stay in the overall totals elsewhere but are skipped here.
func BuildStepAnalytics(events []models.SendingEvent) []StepStat {
	steps := make(map[int]*stepCounter)

	for _, ev := range events {
		meta, ok := models.ParseEventMetadata(ev.Metadata)
		if !ok || meta.Step == nil {
			continue
		}

		agg, ok := steps[*meta.Step]
		if !ok {
			agg = newStepCounter()
			agg.variants = make(map[string]*stepCounter)
			steps[*meta.Step] = agg
		}
		agg.add(ev)

		if meta.VariantID != nil && *meta.VariantID != "" {
			vAgg, ok := agg.variants[*meta.VariantID]
			if !ok {
				vAgg = newStepCounter()
				agg.variants[*meta.VariantID] = vAgg
			}
			vAgg.add(ev)
		}
	}

	stats := make([]StepStat, 0, len(steps))
	for step, agg := range steps {
		stat := StepStat{
			Step:          step,
			Sent:          agg.sent,
			UniqueOpens:   len(agg.openLeads),
			UniqueClicks:  len(agg.clickLeads),
			UniqueReplies: len(agg.replyLeads),
		}
		for id, vAgg := range agg.variants {
			stat.Variants = append(stat.Variants, VariantStat{
				VariantID:     id,
				Sent:          vAgg.sent,
				UniqueOpens:   len(vAgg.openLeads),
				UniqueClicks:  len(vAgg.clickLeads),
				UniqueReplies: len(vAgg.replyLeads),
			})
		}
		sort.Slice(stat.Variants, func(i, j int) bool {
			return stat.Variants[i].VariantID < stat.Variants[j].VariantID
		})
		stats = append(stats, stat)
	}

	sort.Slice(stats, func(i, j int) bool { return stats[i].Step < stats[j].Step })
	return stats
}

// CampaignCompletion reports overall sequence progress as the share of
// scheduled sends already made, clamped to [0, 100].
func CampaignCompletion(sent, leadCount, stepCount int) int {
	if leadCount == 0 || stepCount == 0 {
		return 0
	}
	return ratePercent(sent, leadCount*stepCount)
}
