package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/iamasit07/reversi-online/backend/pkg/auth"
	"github.com/iamasit07/reversi-online/backend/pkg/uid"
)

const blockedSessionKeyPrefix = "blocked_session:"

const maxNameLength = 32

var (
	ErrInvalidName    = errors.New("player name must be 1 to 32 characters")
	ErrInvalidToken   = errors.New("invalid or expired token")
	ErrSessionRevoked = errors.New("session is blocked/revoked")
)

// UserStore resolves a display name to a stable player id.
type UserStore interface {
	FindOrCreate(ctx context.Context, name string) (int64, error)
}

type CacheRepository interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// Identity is who a connection speaks for after PROFILE.
type Identity struct {
	UserID    int64
	Username  string
	SessionID string
	Token     string
}

// AuthService handles PROFILE logins and token checks
type AuthService struct {
	users  UserStore
	issuer *auth.Issuer
	cache  CacheRepository // Optional, can be nil
	ttl    time.Duration
	logger *zap.Logger
}

func NewAuthService(users UserStore, issuer *auth.Issuer, cache CacheRepository, ttl time.Duration, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:  users,
		issuer: issuer,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// Login resumes the identity behind token when one is given, otherwise finds
// or creates the player called name and issues a new token.
func (s *AuthService) Login(ctx context.Context, name, token string) (*Identity, error) {
	if token != "" {
		return s.resume(ctx, token)
	}

	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxNameLength {
		return nil, ErrInvalidName
	}

	userID, err := s.users.FindOrCreate(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve player: %w", err)
	}

	sessionID := uid.NewSessionID()
	signed, err := s.issuer.Generate(userID, name, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &Identity{UserID: userID, Username: name, SessionID: sessionID, Token: signed}, nil
}

func (s *AuthService) resume(ctx context.Context, token string) (*Identity, error) {
	claims, err := s.issuer.Validate(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if s.IsSessionBlocked(ctx, claims.SessionID) {
		return nil, ErrSessionRevoked
	}
	return &Identity{
		UserID:    claims.UserID,
		Username:  claims.Username,
		SessionID: claims.SessionID,
		Token:     token,
	}, nil
}

// Logout blocklists the session so its token can no longer be resumed.
func (s *AuthService) Logout(ctx context.Context, sessionID string) {
	if s.cache == nil || sessionID == "" {
		return
	}
	if err := s.cache.Set(ctx, blockedSessionKeyPrefix+sessionID, "1", s.ttl); err != nil {
		s.logger.Warn("failed to blocklist session", zap.String("session_id", sessionID), zap.Error(err))
	}
}

// IsSessionBlocked checks if a session ID is in the blocklist.
func (s *AuthService) IsSessionBlocked(ctx context.Context, sessionID string) bool {
	if s.cache == nil {
		return false
	}
	val, err := s.cache.Get(ctx, blockedSessionKeyPrefix+sessionID)
	return err == nil && val != ""
}
