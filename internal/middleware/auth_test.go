package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gymrace/internal/cache"
	"gymrace/internal/config"
	"gymrace/internal/models"
	"gymrace/internal/observability"
	"gymrace/internal/session"
	"gymrace/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

type profileStub struct{}

func (profileStub) GetProfile(_ context.Context, userID string) (*models.User, error) {
	if userID == "registered" {
		return &models.User{ID: userID, Username: "alice"}, nil
	}
	return nil, models.NewNotFoundError("User", userID)
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func userToken(t *testing.T, sub string, exp time.Duration) string {
	return signToken(t, testSecret, jwt.MapClaims{
		"sub": sub,
		"jti": "tok-" + sub,
		"exp": time.Now().Add(exp).Unix(),
	})
}

func newAuthApp(auth *Auth) *fiber.App {
	app := fiber.New()
	handler := func(c *fiber.Ctx) error {
		s, ok := session.FromContext(c.UserContext())
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		logged, _ := c.UserContext().Value(observability.UserIDKey).(string)
		return c.JSON(fiber.Map{
			"userID":     c.Locals(LocalUserID),
			"name":       s.DisplayName(),
			"registered": s.Registered(),
			"logged":     logged,
		})
	}
	app.Get("/test", auth.Required, handler)
	app.Get("/ws", auth.WebSocketRequired, handler)
	return app
}

func TestAuthRequired(t *testing.T) {
	auth := NewAuth(&config.Config{JWTSecret: testSecret}, session.NewManager(profileStub{}, nil))
	app := newAuthApp(auth)

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedUserID string
	}{
		{
			name:           "Happy Path",
			authHeader:     "Bearer " + userToken(t, "user-123", time.Hour),
			expectedStatus: http.StatusOK,
			expectedUserID: "user-123",
		},
		{
			name:           "Missing Header",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Invalid Format",
			authHeader:     "Basic dXNlcjpwYXNz",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Malformed Token",
			authHeader:     "Bearer malformed.token.here",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Expired Token",
			authHeader:     "Bearer " + userToken(t, "user-123", -time.Hour),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Wrong Secret",
			authHeader:     "Bearer " + signToken(t, "another-secret", jwt.MapClaims{"sub": "user-123"}),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Missing Subject",
			authHeader:     "Bearer " + signToken(t, testSecret, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Numeric Subject",
			authHeader:     "Bearer " + signToken(t, testSecret, jwt.MapClaims{"sub": 42}),
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			var body map[string]any
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, tt.expectedUserID, body["userID"])
				assert.Equal(t, tt.expectedUserID, body["logged"])
			} else {
				assert.NotEmpty(t, body["error"])
			}
		})
	}
}

func TestAuthRequired_SessionProfile(t *testing.T) {
	auth := NewAuth(&config.Config{JWTSecret: testSecret}, session.NewManager(profileStub{}, nil))
	app := newAuthApp(auth)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+userToken(t, "registered", time.Hour))
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "alice", body["name"])
	assert.Equal(t, true, body["registered"])
}

func TestAuthRequired_Issuer(t *testing.T) {
	auth := NewAuth(&config.Config{JWTSecret: testSecret, JWTIssuer: "https://id.gymrace.app"}, nil)
	app := newAuthApp(auth)

	for iss, want := range map[string]int{
		"https://id.gymrace.app": http.StatusOK,
		"https://evil.example":   http.StatusUnauthorized,
	} {
		token := signToken(t, testSecret, jwt.MapClaims{"sub": "u1", "iss": iss})
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, want, resp.StatusCode, iss)
	}
}

func TestAuthRequired_RevokedToken(t *testing.T) {
	mr, rdb := testutil.NewRedis(t)
	auth := NewAuth(&config.Config{JWTSecret: testSecret}, session.NewManager(nil, rdb))
	app := newAuthApp(auth)

	token := userToken(t, "u1", time.Hour)
	require.NoError(t, mr.Set(cache.RevokedTokenKey("tok-u1"), "u1"))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// A Redis outage must not lock users out.
	mr.Close()
	resp, err = app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWebSocketRequired(t *testing.T) {
	auth := NewAuth(&config.Config{JWTSecret: testSecret}, nil)
	app := newAuthApp(auth)
	token := userToken(t, "u1", time.Hour)

	tests := []struct {
		name   string
		target string
		header string
		want   int
	}{
		{"query token", "/ws?token=" + token, "", http.StatusOK},
		{"header fallback", "/ws", "Bearer " + token, http.StatusOK},
		{"no token", "/ws", "", http.StatusUnauthorized},
		{"bad query token", "/ws?token=nope", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
