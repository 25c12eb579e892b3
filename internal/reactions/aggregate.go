// Package reactions groups emoji reactions for display and runs the side
// effects attached to special emoji (pins and Hall of Fame enshrinement).
package reactions

import "github.com/mmynk/crewchat/internal/models"

// Summary is the per-emoji view of a message's reactions.
type Summary struct {
	Emoji   string   `json:"emoji"`
	Count   int      `json:"count"`
	UserIDs []string `json:"userIds"`
}

// Aggregate groups reactions by emoji in first-seen order.
// Count always equals len(UserIDs).
func Aggregate(reactions []*models.Reaction) []Summary {
	var out []Summary
	index := make(map[string]int)
	for _, r := range reactions {
		i, ok := index[r.Emoji]
		if !ok {
			i = len(out)
			index[r.Emoji] = i
			out = append(out, Summary{Emoji: r.Emoji, UserIDs: []string{}})
		}
		out[i].UserIDs = append(out[i].UserIDs, r.UserID)
		out[i].Count++
	}
	return out
}

// UniqueReactors counts distinct users among the reactions.
func UniqueReactors(reactions []*models.Reaction) int {
	seen := make(map[string]struct{}, len(reactions))
	for _, r := range reactions {
		seen[r.UserID] = struct{}{}
	}
	return len(seen)
}
