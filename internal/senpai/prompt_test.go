package senpai

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mmynk/crewchat/internal/models"
)

func TestBuildSystemPrompt(t *testing.T) {
	got := BuildSystemPrompt(PromptInput{
		GroupName:   "Crew",
		Personality: "sarcastic",
		Memories:    []*models.SenpaiMemory{{MemoryType: models.MemoryInsideJoke, Content: "the goat"}},
		HallOfFame:  []*models.HallOfFameEntry{{Body: "iconic line", TrophyCount: 6}},
		Trigger:     TriggerMilestone,
	})

	assert.Contains(t, got, `"Crew"`)
	assert.Contains(t, got, "sarcastic")
	assert.Contains(t, got, "(inside_joke) the goat")
	assert.Contains(t, got, `"iconic line" (6 trophies)`)
	assert.Contains(t, got, "triggered by: milestone")
}

func TestBuildSystemPrompt_OmitsEmptySections(t *testing.T) {
	got := BuildSystemPrompt(PromptInput{GroupName: "Crew", Trigger: TriggerRandom})
	assert.NotContains(t, got, "Personality")
	assert.NotContains(t, got, "remember")
	assert.NotContains(t, got, "Hall of Fame")
}

func TestBuildUserPrompt(t *testing.T) {
	msgs := []*models.Message{
		{AuthorID: "u1", Body: "anyone up?"},
		{AuthorID: "u2", Body: "me"},
		{AuthorID: "u1", Body: "hi all", MessageType: models.MessageSenpai},
	}
	got := BuildUserPrompt(msgs, map[string]string{"u1": "Alice"}, TriggerRandom)
	assert.Equal(t, "Recent chat:\n[Alice]: anyone up?\n[u2]: me\n[Senpai]: hi all\n\nTrigger: random", got)
}
