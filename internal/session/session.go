// Package session carries the signed-in user through a request.
package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gymrace/internal/cache"
	"gymrace/internal/models"
	"gymrace/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Session is the identity and cached profile of the caller. It lives for
// one request and is never shared between requests.
type Session struct {
	UserID    string
	TokenID   string
	ExpiresAt time.Time
	// Profile is nil until the user registers a profile.
	Profile *models.User
}

// Registered reports whether the user has a stored profile.
func (s *Session) Registered() bool {
	return s != nil && s.Profile != nil
}

// DisplayName is the username, or the user ID before registration.
func (s *Session) DisplayName() string {
	if s == nil {
		return ""
	}
	if s.Profile != nil {
		return s.Profile.DisplayName()
	}
	return s.UserID
}

type contextKey struct{}

// NewContext returns ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored in ctx.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}

// ProfileLoader reads a user's profile.
type ProfileLoader interface {
	GetProfile(ctx context.Context, userID string) (*models.User, error)
}

// Manager opens sessions for verified identities and ends them on sign-out.
type Manager struct {
	profiles ProfileLoader
	rdb      *redis.Client
}

// NewManager returns a Manager. Without Redis, sign-out cannot revoke tokens
// and revocation checks always pass.
func NewManager(profiles ProfileLoader, rdb *redis.Client) *Manager {
	return &Manager{profiles: profiles, rdb: rdb}
}

// Begin builds the session for a verified token. Profile lookup failures
// leave the profile empty rather than failing the request.
func (m *Manager) Begin(ctx context.Context, userID, tokenID string, expiresAt time.Time) *Session {
	s := &Session{UserID: userID, TokenID: tokenID, ExpiresAt: expiresAt}
	if m.profiles == nil {
		return s
	}

	profile, err := m.profiles.GetProfile(ctx, userID)
	switch {
	case err == nil:
		s.Profile = profile
	case models.HasCode(err, models.CodeNotFound):
	default:
		observability.Logger.WarnContext(ctx, "failed to load session profile",
			slog.String("user_id", userID), slog.String("error", err.Error()))
	}
	return s
}

// IsRevoked reports whether tokenID was signed out.
func (m *Manager) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if m.rdb == nil || tokenID == "" {
		return false, nil
	}
	n, err := m.rdb.Exists(ctx, cache.RevokedTokenKey(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ErrNoTokenID is returned when signing out a token that cannot be revoked.
var ErrNoTokenID = errors.New("session: token has no id")

// SignOut revokes the session's token until it would have expired anyway.
func (m *Manager) SignOut(ctx context.Context, s *Session) error {
	if s.TokenID == "" {
		return ErrNoTokenID
	}
	if m.rdb == nil {
		observability.Logger.WarnContext(ctx, "sign-out without Redis; token stays valid until expiry",
			slog.String("user_id", s.UserID))
		return nil
	}

	ttl := time.Until(s.ExpiresAt)
	if s.ExpiresAt.IsZero() || ttl > 24*time.Hour {
		ttl = 24 * time.Hour
	}
	if ttl < time.Second {
		ttl = time.Second
	}
	return m.rdb.Set(ctx, cache.RevokedTokenKey(s.TokenID), s.UserID, ttl).Err()
}
