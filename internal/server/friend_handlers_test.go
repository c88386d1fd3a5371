package server

import (
	"context"
	"net/http"
	"testing"
	"time"

	"gymrace/internal/config"
	"gymrace/internal/models"
	"gymrace/internal/notifications"
	"gymrace/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type connectResponse struct {
	Outcome service.ConnectOutcome `json:"outcome"`
	Request *models.Notification   `json:"request"`
}

func (e *testEnv) friendsOf(t *testing.T, userID string) []string {
	t.Helper()
	status, raw := e.call(t, http.MethodGet, "/api/friends", userID, nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	var ids []string
	for _, p := range decode[[]map[string]any](t, raw) {
		ids = append(ids, p["id"].(string))
	}
	return ids
}

func TestConnectPublicUser(t *testing.T) {
	e := newTestEnv(t)
	e.seedUser(t, "alice", "alice", false)
	e.seedUser(t, "bob", "bob", false)

	events := make(chan notifications.Event, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, e.srv.notifier.SubscribeUser(ctx, "bob", func(ev notifications.Event) {
		events <- ev
	}))

	status, raw := e.call(t, http.MethodPost, "/api/friends/bob", "alice", nil)
	require.Equal(t, http.StatusCreated, status, string(raw))
	assert.Equal(t, service.OutcomeAdded, decode[connectResponse](t, raw).Outcome)

	assert.Equal(t, []string{"bob"}, e.friendsOf(t, "alice"))
	assert.Empty(t, e.friendsOf(t, "bob"))

	select {
	case ev := <-events:
		assert.Equal(t, notifications.EventFriendAdded, ev.Type)
		user := ev.Payload["user"].(map[string]any)
		assert.Equal(t, "alice", user["id"])
	case <-time.After(2 * time.Second):
		t.Fatal("no friend_added event")
	}

	// Adding twice keeps a single entry.
	status, _ = e.call(t, http.MethodPost, "/api/friends/bob", "alice", nil)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, []string{"bob"}, e.friendsOf(t, "alice"))

	status, _ = e.call(t, http.MethodDelete, "/api/friends/bob", "alice", nil)
	assert.Equal(t, http.StatusNoContent, status)
	assert.Empty(t, e.friendsOf(t, "alice"))
}

func TestConnectEdgeCases(t *testing.T) {
	e := newTestEnv(t)

	status, _ := e.call(t, http.MethodPost, "/api/friends/alice", "alice", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = e.call(t, http.MethodPost, "/api/friends/ghost", "alice", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestFriendRequestToPrivateUser(t *testing.T) {
	e := newTestEnv(t)
	e.seedUser(t, "alice", "alice", false)
	e.seedUser(t, "carol", "carol", true)

	status, raw := e.call(t, http.MethodPost, "/api/friends/carol", "alice", nil)
	require.Equal(t, http.StatusCreated, status, string(raw))
	resp := decode[connectResponse](t, raw)
	assert.Equal(t, service.OutcomeRequested, resp.Outcome)
	require.NotNil(t, resp.Request)
	assert.Equal(t, models.NotificationRequest, resp.Request.Type)

	// A request changes no friend list.
	assert.Empty(t, e.friendsOf(t, "alice"))

	// Only the recipient can accept.
	status, _ = e.call(t, http.MethodPost, "/api/friends/requests/carol/accept", "alice", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, raw = e.call(t, http.MethodPost, "/api/friends/requests/alice/accept", "carol", nil)
	require.Equal(t, http.StatusOK, status, string(raw))

	assert.Equal(t, []string{"carol"}, e.friendsOf(t, "alice"))
	assert.Empty(t, e.friendsOf(t, "carol"))

	status, _ = e.call(t, http.MethodPost, "/api/friends/requests/alice/accept", "carol", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, raw = e.call(t, http.MethodGet, "/api/notifications", "carol", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decode[[]models.Notification](t, raw))
}

func TestMutualAcceptAddsBothEdges(t *testing.T) {
	e := newTestEnv(t, func(c *config.Config) { c.SocialMutualAccept = true })
	e.seedUser(t, "alice", "alice", false)
	e.seedUser(t, "carol", "carol", true)

	status, _ := e.call(t, http.MethodPost, "/api/friends/carol", "alice", nil)
	require.Equal(t, http.StatusCreated, status)
	status, _ = e.call(t, http.MethodPost, "/api/friends/requests/alice/accept", "carol", nil)
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, []string{"carol"}, e.friendsOf(t, "alice"))
	assert.Equal(t, []string{"alice"}, e.friendsOf(t, "carol"))
}

func TestDismissNotification(t *testing.T) {
	e := newTestEnv(t)
	e.seedUser(t, "carol", "carol", true)

	status, raw := e.call(t, http.MethodPost, "/api/friends/carol", "alice", nil)
	require.Equal(t, http.StatusCreated, status, string(raw))
	id := decode[connectResponse](t, raw).Request.ID

	status, _ = e.call(t, http.MethodDelete, "/api/notifications/"+id, "alice", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = e.call(t, http.MethodDelete, "/api/notifications/"+id, "carol", nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, raw = e.call(t, http.MethodGet, "/api/notifications", "carol", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decode[[]models.Notification](t, raw))
}
