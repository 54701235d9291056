package analytics

import (
	"outreachly/models"
)

// HeatmapCell counts activity in one (day-of-week, hour) bucket.
type HeatmapCell struct {
	Sent    int `json:"sent"`
	Opens   int `json:"opens"`
	Clicks  int `json:"clicks"`
	Replies int `json:"replies"`
}

// buildHeatmap buckets every event in scope into a fixed 7x24 grid
// (Sunday=0). A single pass over the events is plenty at the volumes a
// single scope produces.
func buildHeatmap(events []models.SendingEvent) [][]HeatmapCell {
	grid := make([][]HeatmapCell, 7)
	for d := range grid {
		grid[d] = make([]HeatmapCell, 24)
	}

	for _, ev := range events {
		day := int(ev.CreatedAt.Weekday())
		hour := ev.CreatedAt.Hour()
		cell := &grid[day][hour]

		switch ev.Type {
		case models.EventSent:
			cell.Sent++
		case models.EventOpen:
			cell.Opens++
		case models.EventClick:
			cell.Clicks++
		case models.EventReply:
			cell.Replies++
		}
	}
	return grid
}
