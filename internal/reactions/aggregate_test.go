package reactions

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mmynk/crewchat/internal/models"
)

func TestAggregate(t *testing.T) {
	tests := []struct {
		name      string
		reactions []*models.Reaction
		want      []Summary
	}{
		{
			name:      "empty",
			reactions: nil,
			want:      nil,
		},
		{
			name: "first seen order",
			reactions: []*models.Reaction{
				{UserID: "a", Emoji: "🔥"},
				{UserID: "b", Emoji: "😂"},
				{UserID: "c", Emoji: "🔥"},
			},
			want: []Summary{
				{Emoji: "🔥", Count: 2, UserIDs: []string{"a", "c"}},
				{Emoji: "😂", Count: 1, UserIDs: []string{"b"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate(tt.reactions)
			assert.Equal(t, tt.want, got)
			for _, s := range got {
				assert.Len(t, s.UserIDs, s.Count)
			}
		})
	}
}

func TestUniqueReactors(t *testing.T) {
	reactions := []*models.Reaction{
		{UserID: "a", Emoji: "🏆"},
		{UserID: "a", Emoji: "🏆"},
		{UserID: "b", Emoji: "🏆"},
	}
	assert.Equal(t, 2, UniqueReactors(reactions))
	assert.Equal(t, 0, UniqueReactors(nil))
}
