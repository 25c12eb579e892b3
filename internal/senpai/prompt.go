package senpai

import (
	"fmt"
	"strings"

	"github.com/mmynk/crewchat/internal/models"
)

// Context sizes fed into a prompt.
const (
	MemoryLimit     = 20
	HallOfFameLimit = 10
	RecentLimit     = 50
)

// PromptInput is everything the system prompt is built from.
type PromptInput struct {
	GroupName   string
	Personality string
	Memories    []*models.SenpaiMemory
	HallOfFame  []*models.HallOfFameEntry
	Trigger     string
}

// BuildSystemPrompt renders the persona instructions for one trigger.
func BuildSystemPrompt(in PromptInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are Senpai, the resident AI friend of the group chat %q.\n", in.GroupName)
	b.WriteString("You speak rarely, keep it short (one to three sentences), and sound like a friend, not an assistant.\n")
	b.WriteString("Never use markdown or HTML. Never mention that you are an AI.\n")

	if p := strings.TrimSpace(in.Personality); p != "" {
		fmt.Fprintf(&b, "\nPersonality notes from the group: %s\n", p)
	}

	if len(in.Memories) > 0 {
		b.WriteString("\nThings you remember about this group:\n")
		for _, m := range in.Memories {
			fmt.Fprintf(&b, "- (%s) %s\n", m.MemoryType, m.Content)
		}
	}

	if len(in.HallOfFame) > 0 {
		b.WriteString("\nLegendary messages from the Hall of Fame:\n")
		for _, e := range in.HallOfFame {
			fmt.Fprintf(&b, "- %q (%d trophies)\n", e.Body, e.TrophyCount)
		}
	}

	fmt.Fprintf(&b, "\nYou were triggered by: %s. %s\n", in.Trigger, triggerHint(in.Trigger))
	return b.String()
}

func triggerHint(trigger string) string {
	switch trigger {
	case TriggerInactivityNudge:
		return "The chat has gone quiet; nudge people to talk."
	case TriggerMilestone:
		return "Something just made the Hall of Fame; celebrate it."
	case TriggerThrowback:
		return "Bring back a fun memory."
	case TriggerSuggestion, TriggerWeShould:
		return "Suggest something the group could do together."
	case TriggerRandom:
		return "Drop in with a casual comment on the recent chat."
	default:
		return "Respond naturally."
	}
}

// BuildUserPrompt renders recent messages as "[author]: body" lines.
// names maps author IDs to display names; unknown authors keep their ID.
func BuildUserPrompt(messages []*models.Message, names map[string]string, trigger string) string {
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		author := m.AuthorID
		if name, ok := names[m.AuthorID]; ok && name != "" {
			author = name
		}
		if m.MessageType == models.MessageSenpai {
			author = "Senpai"
		}
		lines = append(lines, fmt.Sprintf("[%s]: %s", author, m.Body))
	}
	return fmt.Sprintf("Recent chat:\n%s\n\nTrigger: %s", strings.Join(lines, "\n"), trigger)
}
