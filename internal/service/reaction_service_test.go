package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/mmynk/crewchat/internal/models"
	"github.com/mmynk/crewchat/internal/senpai"
	"github.com/mmynk/crewchat/pkg/api"
)

func react(t *testing.T, env *testEnv, u testUser, messageID, emoji string) *api.AddReactionResponse {
	t.Helper()
	return mustCall[api.AddReactionResponse](t, env, u.Token, api.ReactionServiceAddReactionProcedure,
		&api.AddReactionRequest{MessageID: messageID, Emoji: emoji})
}

func TestAddReactionIsIdempotent(t *testing.T) {
	env := setupTestServer(t)
	created, users := env.newGroup(t, "Alice", "Bob")
	alice, bob := users[0], users[1]
	msg := env.send(t, alice, created.Hangout.ID, "lol", "")

	react(t, env, bob, msg.ID, "😂")
	resp := react(t, env, bob, msg.ID, "😂")
	if len(resp.Reactions) != 1 || resp.Reactions[0].Count != 1 {
		t.Fatalf("reactions: expected one 😂 from bob, got %+v", resp.Reactions)
	}
	if resp.Pinned || resp.Enshrined != nil {
		t.Errorf("plain emoji should have no side effects, got %+v", resp)
	}

	react(t, env, alice, msg.ID, "😂")
	list := mustCall[api.ListReactionsResponse](t, env, alice.Token, api.ReactionServiceListReactionsProcedure,
		&api.ListReactionsRequest{MessageID: msg.ID})
	if len(list.Reactions) != 1 || list.Reactions[0].Count != 2 {
		t.Errorf("ListReactions: expected count 2, got %+v", list.Reactions)
	}

	// Removing a reaction that is not there is fine.
	mustCall[emptypb.Empty](t, env, bob.Token, api.ReactionServiceRemoveReactionProcedure,
		&api.RemoveReactionRequest{MessageID: msg.ID, Emoji: "🔥"})
	mustCall[emptypb.Empty](t, env, bob.Token, api.ReactionServiceRemoveReactionProcedure,
		&api.RemoveReactionRequest{MessageID: msg.ID, Emoji: "😂"})
	list = mustCall[api.ListReactionsResponse](t, env, alice.Token, api.ReactionServiceListReactionsProcedure,
		&api.ListReactionsRequest{MessageID: msg.ID})
	if len(list.Reactions) != 1 || list.Reactions[0].Count != 1 || list.Reactions[0].UserIDs[0] != alice.ID {
		t.Errorf("after remove: expected only alice, got %+v", list.Reactions)
	}

	outsider := env.register(t, "Mallory")
	_, err := call[api.AddReactionResponse](env, outsider.Token, api.ReactionServiceAddReactionProcedure,
		&api.AddReactionRequest{MessageID: msg.ID, Emoji: "😂"})
	expectCode(t, err, connect.CodePermissionDenied)
}

func TestPinReaction(t *testing.T) {
	env := setupTestServer(t)
	created, users := env.newGroup(t, "Alice", "Bob")
	alice, bob := users[0], users[1]
	channelID := created.Hangout.ID
	msg := env.send(t, alice, channelID, "meet at 8", "")

	first := react(t, env, bob, msg.ID, models.PinEmoji)
	if !first.Pinned {
		t.Error("first pin reaction should pin the message")
	}
	second := react(t, env, alice, msg.ID, models.PinEmoji)
	if second.Pinned {
		t.Error("second pin reaction should not pin again")
	}

	pins := mustCall[api.ListPinsResponse](t, env, alice.Token, api.ReactionServiceListPinsProcedure,
		&api.ListPinsRequest{ChannelID: channelID})
	if len(pins.Pins) != 1 {
		t.Fatalf("pins: expected 1, got %d", len(pins.Pins))
	}
	if pins.Pins[0].MessageID != msg.ID || pins.Pins[0].PinnedBy != bob.ID {
		t.Errorf("pin: got %+v", pins.Pins[0])
	}

	// The pin outlives the reaction.
	mustCall[emptypb.Empty](t, env, bob.Token, api.ReactionServiceRemoveReactionProcedure,
		&api.RemoveReactionRequest{MessageID: msg.ID, Emoji: models.PinEmoji})
	pins = mustCall[api.ListPinsResponse](t, env, alice.Token, api.ReactionServiceListPinsProcedure,
		&api.ListPinsRequest{ChannelID: channelID})
	if len(pins.Pins) != 1 {
		t.Errorf("pins after removal: expected 1, got %d", len(pins.Pins))
	}
}

func TestTrophyEnshrinement(t *testing.T) {
	env := setupTestServer(t)
	created, users := env.newGroup(t, "Alice", "Bob", "Carol")
	alice, bob, carol := users[0], users[1], users[2]
	groupID := created.Group.ID

	mustCall[api.GroupResponse](t, env, alice.Token, api.GroupServiceUpdateHallOfFameThresholdProcedure,
		&api.UpdateHallOfFameThresholdRequest{GroupID: groupID, Threshold: 2})
	msg := env.send(t, alice, created.Hangout.ID, "legendary take", "")

	if resp := react(t, env, bob, msg.ID, models.TrophyEmoji); resp.Enshrined != nil {
		t.Fatal("one trophy should not reach a threshold of two")
	}
	resp := react(t, env, carol, msg.ID, models.TrophyEmoji)
	if resp.Enshrined == nil {
		t.Fatal("second trophy should enshrine the message")
	}
	if resp.Enshrined.MessageID != msg.ID || resp.Enshrined.TrophyCount != 2 || resp.Enshrined.Body != "legendary take" {
		t.Errorf("entry: got %+v", resp.Enshrined)
	}

	memories, err := env.store.ListMemories(context.Background(), groupID, 0)
	if err != nil {
		t.Fatalf("failed to list memories: %v", err)
	}
	if len(memories) != 1 || memories[0].MemoryType != models.MemoryMilestone {
		t.Fatalf("expected one milestone memory, got %+v", memories)
	}
	if !strings.Contains(memories[0].Content, "legendary take") {
		t.Errorf("memory content: got %q", memories[0].Content)
	}

	tasks := env.tasks.Tasks()
	if len(tasks) != 1 || tasks[0].Type != senpai.TaskRespond {
		t.Fatalf("expected one %s task, got %+v", senpai.TaskRespond, tasks)
	}
	var payload senpai.RespondPayload
	if err := json.Unmarshal(tasks[0].Payload, &payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if payload.GroupID != groupID || payload.Trigger != senpai.TriggerMilestone {
		t.Errorf("payload: got %+v", payload)
	}
	if env.tasks.opts[0].ProcessIn != 30*time.Second || !env.tasks.opts[0].NoRetry {
		t.Errorf("options: got %+v", env.tasks.opts[0])
	}

	// Further trophies and trophy removal leave the single entry alone.
	react(t, env, alice, msg.ID, models.TrophyEmoji)
	mustCall[emptypb.Empty](t, env, bob.Token, api.ReactionServiceRemoveReactionProcedure,
		&api.RemoveReactionRequest{MessageID: msg.ID, Emoji: models.TrophyEmoji})
	mustCall[emptypb.Empty](t, env, carol.Token, api.ReactionServiceRemoveReactionProcedure,
		&api.RemoveReactionRequest{MessageID: msg.ID, Emoji: models.TrophyEmoji})

	hof := mustCall[api.ListHallOfFameResponse](t, env, bob.Token, api.ReactionServiceListHallOfFameProcedure,
		&api.ListHallOfFameRequest{GroupID: groupID})
	if len(hof.Entries) != 1 || hof.Entries[0].MessageID != msg.ID {
		t.Errorf("hall of fame: expected the one entry, got %+v", hof.Entries)
	}
	if len(env.tasks.Tasks()) != 1 {
		t.Errorf("expected no further senpai tasks, got %d", len(env.tasks.Tasks()))
	}
}
