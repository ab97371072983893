package session

import (
	"context"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamasit07/reversi-online/backend/internal/repository/memory"
	"github.com/iamasit07/reversi-online/backend/internal/repository/redis"
	"github.com/iamasit07/reversi-online/backend/pkg/auth"
)

func newTestService(t *testing.T, withCache bool) *AuthService {
	t.Helper()
	var cache CacheRepository
	if withCache {
		mr, err := miniredis.Run()
		require.NoError(t, err)
		t.Cleanup(mr.Close)
		client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { client.Close() })
		cache = redis.NewRedisCache(client)
	}
	return NewAuthService(memory.NewStore(), auth.NewIssuer("secret", time.Hour), cache, time.Hour, nil)
}

func TestLoginByName(t *testing.T) {
	s := newTestService(t, false)
	ctx := context.Background()

	first, err := s.Login(ctx, "  Alec ", "")
	require.NoError(t, err)
	assert.Equal(t, "Alec", first.Username)
	assert.NotEmpty(t, first.Token)

	second, err := s.Login(ctx, "alec", "")
	require.NoError(t, err)
	assert.Equal(t, first.UserID, second.UserID)
	assert.NotEqual(t, first.SessionID, second.SessionID)
}

func TestLoginRejectsBadNames(t *testing.T) {
	s := newTestService(t, false)
	for _, name := range []string{"", "   ", strings.Repeat("x", 33)} {
		_, err := s.Login(context.Background(), name, "")
		assert.ErrorIs(t, err, ErrInvalidName)
	}
}

func TestLoginResumesToken(t *testing.T) {
	s := newTestService(t, false)
	ctx := context.Background()

	id, err := s.Login(ctx, "alec", "")
	require.NoError(t, err)

	resumed, err := s.Login(ctx, "ignored", id.Token)
	require.NoError(t, err)
	assert.Equal(t, *id, *resumed)

	_, err = s.Login(ctx, "alec", "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogoutBlocksToken(t *testing.T) {
	s := newTestService(t, true)
	ctx := context.Background()

	id, err := s.Login(ctx, "alec", "")
	require.NoError(t, err)
	assert.False(t, s.IsSessionBlocked(ctx, id.SessionID))

	s.Logout(ctx, id.SessionID)
	assert.True(t, s.IsSessionBlocked(ctx, id.SessionID))

	_, err = s.Login(ctx, "", id.Token)
	assert.ErrorIs(t, err, ErrSessionRevoked)
}

func TestLogoutWithoutCacheIsNoop(t *testing.T) {
	s := newTestService(t, false)
	s.Logout(context.Background(), "whatever")
	assert.False(t, s.IsSessionBlocked(context.Background(), "whatever"))
}
