package service

import (
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/crewchat/pkg/api"
)

func TestCreateAndListChannels(t *testing.T) {
	env := setupTestServer(t)
	created, users := env.newGroup(t, "Alice", "Bob")
	alice, bob := users[0], users[1]
	groupID := created.Group.ID

	bracket := mustCall[api.ChannelResponse](t, env, bob.Token, api.ChannelServiceCreateChannelProcedure, &api.CreateChannelRequest{
		GroupID:         groupID,
		Name:            "Best pizza",
		Type:            "bracket",
		BracketQuestion: "Which slice wins?",
	}).Channel
	if bracket.BracketStatus != "nominating" {
		t.Errorf("bracket status: expected nominating, got %q", bracket.BracketStatus)
	}
	event := mustCall[api.ChannelResponse](t, env, alice.Token, api.ChannelServiceCreateChannelProcedure, &api.CreateChannelRequest{
		GroupID:   groupID,
		Name:      "  Ski trip  ",
		Type:      "event",
		EventDate: 1767225600000,
	}).Channel
	if event.Name != "Ski trip" {
		t.Errorf("name: expected trimmed %q, got %q", "Ski trip", event.Name)
	}

	list := mustCall[api.ListChannelsResponse](t, env, bob.Token, api.ChannelServiceListChannelsProcedure,
		&api.ListChannelsRequest{GroupID: groupID})
	var types []string
	for _, c := range list.Channels {
		types = append(types, c.Type)
	}
	want := []string{"hangout", "event", "bracket"}
	if len(types) != len(want) {
		t.Fatalf("channels: expected %v, got %v", want, types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("channel %d: expected %s, got %s", i, want[i], types[i])
		}
	}

	_, err := call[api.ChannelResponse](env, alice.Token, api.ChannelServiceCreateChannelProcedure, &api.CreateChannelRequest{
		GroupID: groupID,
		Name:    "Party",
		Type:    "party",
	})
	expectCode(t, err, connect.CodeInvalidArgument)

	outsider := env.register(t, "Mallory")
	_, err = call[api.ListChannelsResponse](env, outsider.Token, api.ChannelServiceListChannelsProcedure,
		&api.ListChannelsRequest{GroupID: groupID})
	expectCode(t, err, connect.CodePermissionDenied)
}

func TestForkFromMessage(t *testing.T) {
	env := setupTestServer(t)
	created, users := env.newGroup(t, "Alice", "Bob")
	alice, bob := users[0], users[1]
	hangout := created.Hangout

	source := env.send(t, alice, hangout.ID, "we should go skiing", "")

	fork := mustCall[api.ForkFromMessageResponse](t, env, bob.Token, api.ChannelServiceForkFromMessageProcedure, &api.ForkFromMessageRequest{
		MessageID: source.ID,
		Name:      "ski-trip",
		Icon:      "🎿",
		Type:      "event",
	})
	if fork.Channel.ParentChannelID != hangout.ID || fork.Channel.ParentMessageID != source.ID {
		t.Errorf("fork lineage: got parent channel %q message %q", fork.Channel.ParentChannelID, fork.Channel.ParentMessageID)
	}
	if fork.Channel.ForkDepth != hangout.ForkDepth+1 {
		t.Errorf("fork depth: expected %d, got %d", hangout.ForkDepth+1, fork.Channel.ForkDepth)
	}
	if fork.SystemMessage.MessageType != "system" || fork.SystemMessage.Body != "Forked to #ski-trip" {
		t.Errorf("system message: got %+v", fork.SystemMessage)
	}
	if fork.SystemMessage.ChannelID != hangout.ID {
		t.Errorf("system message should be posted in the parent channel, got %q", fork.SystemMessage.ChannelID)
	}

	thread := mustCall[api.ListThreadResponse](t, env, alice.Token, api.MessageServiceListThreadProcedure,
		&api.ListThreadRequest{MessageID: source.ID})
	if thread.Parent.ForkedToChannelID != fork.Channel.ID {
		t.Errorf("forkedTo: expected %q, got %q", fork.Channel.ID, thread.Parent.ForkedToChannelID)
	}

	// A fork of a fork goes one level deeper.
	inner := env.send(t, bob, fork.Channel.ID, "which resort?", "")
	nested := mustCall[api.ForkFromMessageResponse](t, env, alice.Token, api.ChannelServiceForkFromMessageProcedure, &api.ForkFromMessageRequest{
		MessageID: inner.ID,
		Name:      "resorts",
		Type:      "bracket",
	})
	if nested.Channel.ForkDepth != fork.Channel.ForkDepth+1 {
		t.Errorf("nested depth: expected %d, got %d", fork.Channel.ForkDepth+1, nested.Channel.ForkDepth)
	}
	if nested.Channel.BracketStatus != "nominating" {
		t.Errorf("nested bracket status: got %q", nested.Channel.BracketStatus)
	}

	outsider := env.register(t, "Mallory")
	_, err := call[api.ForkFromMessageResponse](env, outsider.Token, api.ChannelServiceForkFromMessageProcedure, &api.ForkFromMessageRequest{
		MessageID: source.ID,
		Name:      "sneaky",
		Type:      "hangout",
	})
	expectCode(t, err, connect.CodePermissionDenied)
}

func TestUpdateAndArchiveChannel(t *testing.T) {
	env := setupTestServer(t)
	created, users := env.newGroup(t, "Alice", "Bob")
	alice, bob := users[0], users[1]
	channelID := created.Hangout.ID

	updated := mustCall[api.ChannelResponse](t, env, bob.Token, api.ChannelServiceUpdateChannelProcedure,
		&api.UpdateChannelRequest{ChannelID: channelID, Name: "  General  ", Icon: "🏠"})
	if updated.Channel.Name != "General" || updated.Channel.Icon != "🏠" {
		t.Errorf("update: got name %q icon %q", updated.Channel.Name, updated.Channel.Icon)
	}

	_, err := call[api.ChannelResponse](env, bob.Token, api.ChannelServiceUpdateChannelProcedure,
		&api.UpdateChannelRequest{ChannelID: channelID, Name: "   "})
	expectCode(t, err, connect.CodeInvalidArgument)

	_, err = call[api.ChannelResponse](env, bob.Token, api.ChannelServiceArchiveChannelProcedure,
		&api.ArchiveChannelRequest{ChannelID: channelID})
	expectCode(t, err, connect.CodePermissionDenied)

	archived := mustCall[api.ChannelResponse](t, env, alice.Token, api.ChannelServiceArchiveChannelProcedure,
		&api.ArchiveChannelRequest{ChannelID: channelID})
	if !archived.Channel.IsArchived || archived.Channel.ArchivedAt == 0 {
		t.Errorf("archive: got %+v", archived.Channel)
	}

	got := mustCall[api.ChannelResponse](t, env, bob.Token, api.ChannelServiceGetChannelProcedure,
		&api.GetChannelRequest{ChannelID: channelID})
	if !got.Channel.IsArchived {
		t.Error("GetChannel should report the channel as archived")
	}

	_, err = call[api.ChannelResponse](env, bob.Token, api.ChannelServiceGetChannelProcedure,
		&api.GetChannelRequest{ChannelID: "missing"})
	expectCode(t, err, connect.CodeNotFound)
}
