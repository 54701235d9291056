package analytics

// FunnelStage is one stage of the delivery funnel.
type FunnelStage struct {
	Name    string `json:"name"`
	Value   int    `json:"value"`
	Percent int    `json:"percent"` // relative to sent; stage 0 is always 100

	// Conversion is the stage-to-stage continuation (next stage value over
	// this one), computed for presentation only. 0 for the last stage.
	Conversion int `json:"conversion"`
}

// buildFunnel derives the Sent → Delivered → Opened → Clicked → Replied →
// Converted funnel. Every stage percentage uses sent as the base, not the
// prior stage.
func buildFunnel(sent, bounced, opened, clicked, replied, converted int) []FunnelStage {
	delivered := sent - bounced
	if delivered < 0 {
		delivered = 0
	}

	values := []struct {
		name  string
		value int
	}{
		{"Sent", sent},
		{"Delivered", delivered},
		{"Opened", opened},
		{"Clicked", clicked},
		{"Replied", replied},
		{"Converted", converted},
	}

	stages := make([]FunnelStage, 0, len(values))
	for i, v := range values {
		percent := ratePercent(v.value, sent)
		if i == 0 && sent > 0 {
			percent = 100
		}

		conversion := 0
		if i < len(values)-1 && v.value > 0 {
			conversion = ratePercent(values[i+1].value, v.value)
		}

		stages = append(stages, FunnelStage{
			Name:       v.name,
			Value:      v.value,
			Percent:    percent,
			Conversion: conversion,
		})
	}
	return stages
}
