package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/crewchat/internal/auth"
	"github.com/mmynk/crewchat/internal/middleware"
	"github.com/mmynk/crewchat/internal/queue"
	"github.com/mmynk/crewchat/internal/storage/sqlite"
	"github.com/mmynk/crewchat/pkg/api"
)

// recordingQueue captures enqueued tasks.
type recordingQueue struct {
	mu    sync.Mutex
	tasks []queue.Task
	opts  []queue.EnqueueOption
}

func (r *recordingQueue) Enqueue(_ context.Context, t queue.Task, opts ...queue.EnqueueOption) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var opt queue.EnqueueOption
	if len(opts) > 0 {
		opt = opts[0]
	}
	r.tasks = append(r.tasks, t)
	r.opts = append(r.opts, opt)
	return "task-id", nil
}

func (r *recordingQueue) Close() error { return nil }

func (r *recordingQueue) Tasks() []queue.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]queue.Task(nil), r.tasks...)
}

type testEnv struct {
	server *httptest.Server
	store  *sqlite.SQLiteStore
	tasks  *recordingQueue
}

// setupTestServer serves every crewchat service over httptest against a
// temp-file SQLite store, with the production interceptor chain.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	tasks := &recordingQueue{}
	opts := connect.WithInterceptors(
		middleware.LoggingInterceptor(),
		middleware.RequireAuth(jwtManager, store),
		middleware.ValidationInterceptor(),
	)

	mux := http.NewServeMux()
	mux.Handle(api.NewAuthServiceHandler(NewAuthService(auth.NewPasswordAuthenticator(store), store, jwtManager, slog.Default()), opts))
	mux.Handle(api.NewGroupServiceHandler(NewGroupService(store), opts))
	mux.Handle(api.NewChannelServiceHandler(NewChannelService(store), opts))
	mux.Handle(api.NewMessageServiceHandler(NewMessageService(store), opts))
	mux.Handle(api.NewReactionServiceHandler(NewReactionService(store, tasks), opts))
	mux.Handle(api.NewSplitServiceHandler(NewSplitService(store), opts))
	mux.Handle(api.NewEventServiceHandler(NewEventService(store), opts))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})
	return &testEnv{server: server, store: store, tasks: tasks}
}

// call invokes procedure with an optional bearer token.
func call[Res, Req any](env *testEnv, token, procedure string, msg *Req) (*Res, error) {
	client := api.NewClient[Req, Res](env.server.Client(), env.server.URL, procedure)
	req := connect.NewRequest(msg)
	if token != "" {
		req.Header().Set("Authorization", "Bearer "+token)
	}
	resp, err := client.CallUnary(context.Background(), req)
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

// mustCall is call that fails the test on error.
func mustCall[Res, Req any](t *testing.T, env *testEnv, token, procedure string, msg *Req) *Res {
	t.Helper()
	res, err := call[Res](env, token, procedure, msg)
	if err != nil {
		t.Fatalf("%s failed: %v", procedure, err)
	}
	return res
}

// expectCode fails the test unless err carries want.
func expectCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		t.Fatalf("expected connect error, got %T: %v", err, err)
	}
	if connectErr.Code() != want {
		t.Fatalf("code: expected %v, got %v (%v)", want, connectErr.Code(), err)
	}
}

type testUser struct {
	ID    string
	Token string
}

func (env *testEnv) register(t *testing.T, name string) testUser {
	t.Helper()
	resp := mustCall[api.AuthResponse](t, env, "", api.AuthServiceRegisterProcedure, &api.RegisterRequest{
		Email:       strings.ToLower(name) + "@example.com",
		DisplayName: name,
		Password:    "password123",
	})
	return testUser{ID: resp.User.ID, Token: resp.Token}
}

// newGroup registers an owner, creates a group and joins every extra
// member. It returns the group response and the users in order.
func (env *testEnv) newGroup(t *testing.T, owner string, members ...string) (*api.CreateGroupResponse, []testUser) {
	t.Helper()
	users := []testUser{env.register(t, owner)}
	created := mustCall[api.CreateGroupResponse](t, env, users[0].Token, api.GroupServiceCreateGroupProcedure,
		&api.CreateGroupRequest{Name: "Crew"})
	for _, name := range members {
		u := env.register(t, name)
		mustCall[api.GroupResponse](t, env, u.Token, api.GroupServiceJoinGroupProcedure,
			&api.JoinGroupRequest{InviteCode: created.Group.InviteCode})
		users = append(users, u)
	}
	return created, users
}

func (env *testEnv) send(t *testing.T, u testUser, channelID, body, parentID string) *api.Message {
	t.Helper()
	return mustCall[api.MessageResponse](t, env, u.Token, api.MessageServiceSendMessageProcedure, &api.SendMessageRequest{
		ChannelID:      channelID,
		Body:           body,
		ThreadParentID: parentID,
	}).Message
}
