package senpai

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mmynk/crewchat/internal/models"
)

func TestShouldRespond(t *testing.T) {
	tests := []struct {
		freq    models.Frequency
		trigger string
		want    bool
	}{
		{models.FrequencyQuiet, TriggerRandom, false},
		{models.FrequencyQuiet, TriggerMilestone, true},
		{models.FrequencyQuiet, TriggerInactivityNudge, true},
		{models.FrequencyQuiet, TriggerThrowback, false},
		{models.FrequencyNormal, TriggerMilestone, true},
		{models.FrequencyNormal, TriggerRandom, true},
		{models.FrequencyNormal, TriggerWeShould, true},
		{models.FrequencyNormal, "roast", false},
		{models.FrequencyChatty, "roast", true},
		{models.FrequencyChatty, TriggerRandom, true},
		{"loud", TriggerMilestone, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.freq)+"/"+tt.trigger, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldRespond(tt.freq, tt.trigger))
		})
	}
}
