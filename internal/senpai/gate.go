// Package senpai runs the group AI persona: frequency gating, prompt
// assembly, the completion call, posting the reply, and the random sweep.
package senpai

import "github.com/mmynk/crewchat/internal/models"

// Trigger types.
const (
	TriggerInactivityNudge = "inactivity_nudge"
	TriggerMilestone       = "milestone"
	TriggerThrowback       = "throwback"
	TriggerSuggestion      = "suggestion"
	TriggerWeShould        = "we_should"
	TriggerRandom          = "random"
)

var allowed = map[models.Frequency]map[string]bool{
	models.FrequencyQuiet: {
		TriggerInactivityNudge: true,
		TriggerMilestone:       true,
	},
	models.FrequencyNormal: {
		TriggerInactivityNudge: true,
		TriggerMilestone:       true,
		TriggerThrowback:       true,
		TriggerSuggestion:      true,
		TriggerWeShould:        true,
		TriggerRandom:          true,
	},
}

// ShouldRespond reports whether a group at freq answers trigger.
// Chatty groups answer everything; unknown frequencies answer nothing.
func ShouldRespond(freq models.Frequency, trigger string) bool {
	if freq == models.FrequencyChatty {
		return true
	}
	return allowed[freq][trigger]
}
