// Package middleware provides authentication, logging, and rate limiting for the HTTP API.
package middleware

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"gymrace/internal/config"
	"gymrace/internal/observability"
	"gymrace/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Locals keys set by Auth.
const (
	LocalUserID  = "userID"
	LocalSession = "session"
)

var (
	errMissingSubject = errors.New("token has no subject")
	errInvalidToken   = errors.New("invalid or expired token")
)

// Auth verifies bearer tokens issued by the identity provider and opens a
// session for the caller.
type Auth struct {
	secret   []byte
	issuer   string
	sessions *session.Manager
}

// NewAuth returns an Auth using the JWT settings in cfg.
func NewAuth(cfg *config.Config, sessions *session.Manager) *Auth {
	return &Auth{
		secret:   []byte(cfg.JWTSecret),
		issuer:   cfg.JWTIssuer,
		sessions: sessions,
	}
}

type identity struct {
	userID    string
	tokenID   string
	expiresAt time.Time
}

func (a *Auth) parse(tokenString string) (identity, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return a.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return identity{}, errInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return identity{}, errInvalidToken
	}

	sub, err := claims.GetSubject()
	if err != nil || strings.TrimSpace(sub) == "" {
		return identity{}, errMissingSubject
	}

	id := identity{userID: sub}
	if jti, ok := claims["jti"].(string); ok {
		id.tokenID = jti
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		id.expiresAt = exp.Time
	}
	return id, nil
}

func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg})
}

// Required enforces a valid bearer token on protected routes.
func (a *Auth) Required(c *fiber.Ctx) error {
	header := c.Get("Authorization")
	if header == "" {
		return unauthorized(c, "Authorization header required")
	}
	token, ok := bearerToken(header)
	if !ok {
		return unauthorized(c, "Invalid authorization header format")
	}
	return a.authenticate(c, token)
}

// WebSocketRequired accepts the token from the "token" query parameter, which
// browsers can send on an upgrade, and falls back to the Authorization header.
func (a *Auth) WebSocketRequired(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		header := c.Get("Authorization")
		if header == "" {
			return unauthorized(c, "Token required")
		}
		var ok bool
		if token, ok = bearerToken(header); !ok {
			return unauthorized(c, "Invalid authorization header format")
		}
	}
	return a.authenticate(c, token)
}

func (a *Auth) authenticate(c *fiber.Ctx, token string) error {
	id, err := a.parse(token)
	if errors.Is(err, errMissingSubject) {
		return unauthorized(c, "Invalid token structure - missing subject")
	}
	if err != nil {
		return unauthorized(c, "Invalid or expired token")
	}

	ctx := c.UserContext()
	if a.sessions != nil {
		revoked, err := a.sessions.IsRevoked(ctx, id.tokenID)
		if err != nil {
			// Fail open: an unreachable Redis leaves tokens valid.
			observability.Logger.WarnContext(ctx, "token revocation check failed",
				slog.String("error", err.Error()))
		}
		if revoked {
			return unauthorized(c, "Token has been revoked")
		}
	}

	ctx = observability.WithUserID(ctx, id.userID)
	var s *session.Session
	if a.sessions != nil {
		s = a.sessions.Begin(ctx, id.userID, id.tokenID, id.expiresAt)
	} else {
		s = &session.Session{UserID: id.userID, TokenID: id.tokenID, ExpiresAt: id.expiresAt}
	}

	c.Locals(LocalUserID, id.userID)
	c.Locals(LocalSession, s)
	c.SetUserContext(session.NewContext(ctx, s))
	return c.Next()
}
