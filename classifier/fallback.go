package classifier

import (
	"strings"

	"outreachly/models"
)

// fallbackRule maps keywords to a label. Rules are evaluated in order and
// the first match wins, so rule priority decides the label when a reply
// contains keywords from several rules.
type fallbackRule struct {
	label    string
	keywords []string
}

var fallbackRules = []fallbackRule{
	{models.LabelOutOfOffice, []string{"out of office", "away until", "vacation"}},
	{models.LabelMeetingBooked, []string{"meeting", "calendar", "schedule a call"}},
	{models.LabelInterested, []string{"interested", "sounds good", "tell me more", "send over"}},
	{models.LabelNotInterested, []string{"not interested", "no thanks", "remove me"}},
	{models.LabelWrongPerson, []string{"wrong person", "not the right contact"}},
	{models.LabelLost, []string{"stop", "scam", "don't email", "fuck"}},
}

// FallbackClassify labels a reply with deterministic keyword heuristics.
// It always returns a label; replies matching nothing default to
// interested.
func FallbackClassify(subject, body string) string {
	text := strings.ToLower(subject + " " + body)
	for _, rule := range fallbackRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(text, keyword) {
				return rule.label
			}
		}
	}
	return models.LabelInterested
}
