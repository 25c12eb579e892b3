package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/crewchat/internal/apperr"
	"github.com/mmynk/crewchat/internal/auth"
	"github.com/mmynk/crewchat/internal/models"
	"github.com/mmynk/crewchat/pkg/api"
)

type subjects map[string]*models.User

func (s subjects) GetUserBySubject(_ context.Context, subject string) (*models.User, error) {
	if u, ok := s[subject]; ok {
		return u, nil
	}
	return nil, apperr.NotFound("user", subject)
}

// whoAmI echoes the authenticated user ID back as the channel ID.
func whoAmI(ctx context.Context, _ *connect.Request[api.GetChannelRequest]) (*connect.Response[api.ChannelResponse], error) {
	return connect.NewResponse(&api.ChannelResponse{Channel: &api.Channel{ID: GetUserID(ctx)}}), nil
}

func newTestServer(t *testing.T, procedure string, interceptors ...connect.Interceptor) *connect.Client[api.GetChannelRequest, api.ChannelResponse] {
	t.Helper()
	mux := http.NewServeMux()
	mux.Handle(procedure, connect.NewUnaryHandler(procedure, whoAmI,
		connect.WithCodec(api.Codec()),
		connect.WithInterceptors(interceptors...),
	))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return api.NewClient[api.GetChannelRequest, api.ChannelResponse](server.Client(), server.URL, procedure)
}

func withToken(token string) *connect.Request[api.GetChannelRequest] {
	req := connect.NewRequest(&api.GetChannelRequest{ChannelID: "c1"})
	if token != "" {
		req.Header().Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestRequireAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	alice := models.NewUser("alice@example.com", "Alice", "")
	ghost := models.NewUser("ghost@example.com", "Ghost", "")
	users := subjects{alice.Subject: alice}

	client := newTestServer(t, api.ChannelServiceGetChannelProcedure, RequireAuth(jwtManager, users))

	aliceToken, err := jwtManager.Generate(alice)
	require.NoError(t, err)
	ghostToken, err := jwtManager.Generate(ghost)
	require.NoError(t, err)

	t.Run("valid token resolves user", func(t *testing.T) {
		resp, err := client.CallUnary(context.Background(), withToken(aliceToken))
		require.NoError(t, err)
		assert.Equal(t, alice.ID, resp.Msg.Channel.ID)
	})

	tests := []struct {
		name  string
		token string
		code  connect.Code
	}{
		{"missing token", "", connect.CodeUnauthenticated},
		{"garbage token", "not-a-jwt", connect.CodeUnauthenticated},
		{"unknown subject", ghostToken, connect.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.CallUnary(context.Background(), withToken(tt.token))
			require.Error(t, err)
			assert.Equal(t, tt.code, connect.CodeOf(err))
		})
	}
}

func TestRequireAuthSkipsPublicProcedures(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	client := newTestServer(t, api.AuthServiceLoginProcedure, RequireAuth(jwtManager, subjects{}))

	resp, err := client.CallUnary(context.Background(), withToken(""))
	require.NoError(t, err)
	assert.Empty(t, resp.Msg.Channel.ID)
}

func TestValidationInterceptor(t *testing.T) {
	client := newTestServer(t, api.ChannelServiceGetChannelProcedure, ValidationInterceptor())

	_, err := client.CallUnary(context.Background(), connect.NewRequest(&api.GetChannelRequest{}))
	require.Error(t, err)
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
	assert.Contains(t, err.Error(), "channelId")

	_, err = client.CallUnary(context.Background(), connect.NewRequest(&api.GetChannelRequest{ChannelID: "c1"}))
	assert.NoError(t, err)
}

func TestRateLimiter(t *testing.T) {
	t.Run("buckets are per key", func(t *testing.T) {
		l := NewRateLimiter(0.001, 2)
		assert.True(t, l.Allow("a"))
		assert.True(t, l.Allow("a"))
		assert.False(t, l.Allow("a"))
		assert.True(t, l.Allow("b"))
	})

	t.Run("non-positive rate disables limiting", func(t *testing.T) {
		l := NewRateLimiter(0, 1)
		for i := 0; i < 10; i++ {
			assert.True(t, l.Allow("a"))
		}
	})

	t.Run("idle buckets are evicted", func(t *testing.T) {
		l := NewRateLimiter(1, 5)
		now := time.Unix(1_700_000_000, 0)
		l.now = func() time.Time { return now }

		for i := 0; i < 100; i++ {
			assert.True(t, l.Allow(fmt.Sprintf("ip:10.0.0.%d", i)))
		}
		assert.Equal(t, 100, l.size())

		now = now.Add(minBucketIdle / 2)
		assert.True(t, l.Allow("user:active"))
		assert.Equal(t, 101, l.size())

		now = now.Add(minBucketIdle/2 + time.Second)
		assert.True(t, l.Allow("user:active"))
		assert.Equal(t, 1, l.size())
	})

	t.Run("slow refill keeps buckets until full", func(t *testing.T) {
		l := NewRateLimiter(0.001, 2)
		now := time.Unix(1_700_000_000, 0)
		l.now = func() time.Time { return now }

		assert.True(t, l.Allow("a"))
		assert.True(t, l.Allow("a"))
		now = now.Add(minBucketIdle + time.Minute)
		assert.True(t, l.Allow("b"))
		assert.False(t, l.Allow("a"))
	})

	t.Run("interceptor answers resource exhausted", func(t *testing.T) {
		client := newTestServer(t, api.ChannelServiceGetChannelProcedure, NewRateLimiter(0.001, 1).Interceptor())
		_, err := client.CallUnary(context.Background(), withToken(""))
		require.NoError(t, err)
		_, err = client.CallUnary(context.Background(), withToken(""))
		require.Error(t, err)
		assert.Equal(t, connect.CodeResourceExhausted, connect.CodeOf(err))
	})
}

func TestLoggingInterceptorSeesAuthenticatedUser(t *testing.T) {
	var seen string
	spy := connect.UnaryInterceptorFunc(func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			ctx = context.WithValue(ctx, callInfoKey{}, &callInfo{})
			info := callInfoFrom(ctx)
			resp, err := next(ctx, req)
			seen = info.userID
			return resp, err
		}
	})
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	bob := models.NewUser("bob@example.com", "Bob", "")
	token, err := jwtManager.Generate(bob)
	require.NoError(t, err)

	client := newTestServer(t, api.ChannelServiceGetChannelProcedure,
		LoggingInterceptor(), spy, RequireAuth(jwtManager, subjects{bob.Subject: bob}))
	_, err = client.CallUnary(context.Background(), withToken(token))
	require.NoError(t, err)
	assert.Equal(t, bob.ID, seen)
}
