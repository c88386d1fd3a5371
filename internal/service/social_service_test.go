package service

import (
	"context"
	"errors"
	"testing"

	"gymrace/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSocialService(t *testing.T, mutual bool) (*SocialService, repos) {
	r := newRepos(t)
	return NewSocialService(r.friends, r.notifications, r.users, mutual), r
}

func TestAddFriendIsIdempotent(t *testing.T) {
	svc, r := newSocialService(t, false)
	ctx := context.Background()

	require.NoError(t, svc.AddFriend(ctx, "alice", "bob"))
	require.NoError(t, svc.AddFriend(ctx, "alice", "bob"))

	ids, err := r.friends.ListFriendIDs(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, ids)
}

func TestAddFriendValidation(t *testing.T) {
	svc := NewSocialService(noopFriendRepo(), nil, nil, false)

	assert.True(t, models.HasCode(svc.AddFriend(context.Background(), "alice", "alice"), models.CodeValidation))
	assert.True(t, models.HasCode(svc.AddFriend(context.Background(), "", "bob"), models.CodeValidation))
}

func TestRemoveFriendIsIdempotent(t *testing.T) {
	svc, r := newSocialService(t, false)
	ctx := context.Background()

	require.NoError(t, svc.RemoveFriend(ctx, "alice", "bob"))
	require.NoError(t, svc.AddFriend(ctx, "alice", "bob"))
	require.NoError(t, svc.RemoveFriend(ctx, "alice", "bob"))
	require.NoError(t, svc.RemoveFriend(ctx, "alice", "bob"))

	ids, err := r.friends.ListFriendIDs(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestFriendWriteFailureIsWriteError(t *testing.T) {
	friends := noopFriendRepo()
	friends.addEdgeFn = func(context.Context, string, string) error {
		return models.NewInternalError(errors.New("store unavailable"))
	}
	svc := NewSocialService(friends, nil, nil, false)

	err := svc.AddFriend(context.Background(), "alice", "bob")
	we, ok := AsWriteError(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, "add_friend", we.Op)
}

func TestSendFriendRequestDeduplicates(t *testing.T) {
	svc, r := newSocialService(t, false)
	ctx := context.Background()

	first, err := svc.SendFriendRequest(ctx, "bob", "alice", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice wants to be your friend", first.Message)

	second, err := svc.SendFriendRequest(ctx, "bob", "alice", "Alice")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	list, err := r.notifications.ListForRecipient(ctx, "bob")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	ids, err := r.friends.ListFriendIDs(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, ids, "a request does not touch friend lists")
}

func TestAcceptFriendRequestIsDirectional(t *testing.T) {
	svc, r := newSocialService(t, false)
	ctx := context.Background()

	_, err := svc.SendFriendRequest(ctx, "bob", "alice", "Alice")
	require.NoError(t, err)
	require.NoError(t, svc.AcceptFriendRequest(ctx, "bob", "alice"))

	aliceFriends, err := r.friends.ListFriendIDs(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, aliceFriends)

	bobFriends, err := r.friends.ListFriendIDs(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, bobFriends)

	pending, err := r.notifications.FindPendingRequest(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.Nil(t, pending)
}

func TestAcceptFriendRequestMutual(t *testing.T) {
	svc, r := newSocialService(t, true)
	ctx := context.Background()

	_, err := svc.SendFriendRequest(ctx, "bob", "alice", "Alice")
	require.NoError(t, err)
	require.NoError(t, svc.AcceptFriendRequest(ctx, "bob", "alice"))

	for owner, friend := range map[string]string{"alice": "bob", "bob": "alice"} {
		has, err := r.friends.HasEdge(ctx, owner, friend)
		require.NoError(t, err)
		assert.True(t, has, "%s -> %s", owner, friend)
	}
}

func TestAcceptWithoutRequest(t *testing.T) {
	svc, _ := newSocialService(t, false)
	err := svc.AcceptFriendRequest(context.Background(), "bob", "alice")
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestConnectPrivacyGate(t *testing.T) {
	svc, r := newSocialService(t, false)
	ctx := context.Background()

	require.NoError(t, r.users.Upsert(ctx, &models.User{ID: "alice", Username: "Alice"}))
	require.NoError(t, r.users.Upsert(ctx, &models.User{ID: "pub", Username: "Public"}))
	require.NoError(t, r.users.Upsert(ctx, &models.User{ID: "priv", Username: "Private", IsPrivate: true}))

	outcome, n, err := svc.Connect(ctx, "alice", "pub")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAdded, outcome)
	assert.Nil(t, n)
	has, _ := r.friends.HasEdge(ctx, "alice", "pub")
	assert.True(t, has)

	outcome, n, err = svc.Connect(ctx, "alice", "priv")
	require.NoError(t, err)
	assert.Equal(t, OutcomeRequested, outcome)
	require.NotNil(t, n)
	assert.Equal(t, "Alice wants to be your friend", n.Message)
	has, _ = r.friends.HasEdge(ctx, "alice", "priv")
	assert.False(t, has)

	_, _, err = svc.Connect(ctx, "alice", "ghost")
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestListFriendsKeepsOrderAndUnknownProfiles(t *testing.T) {
	svc, r := newSocialService(t, false)
	ctx := context.Background()

	require.NoError(t, r.users.Upsert(ctx, &models.User{ID: "carol", Username: "Carol"}))
	require.NoError(t, svc.AddFriend(ctx, "alice", "carol"))
	require.NoError(t, svc.AddFriend(ctx, "alice", "dave"))

	friends, err := svc.ListFriends(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, friends, 2)
	assert.Equal(t, "Carol", friends[0].Username)
	assert.Equal(t, "dave", friends[1].ID)
	assert.Equal(t, "dave", friends[1].DisplayName())
}

func TestDismissNotification(t *testing.T) {
	svc, _ := newSocialService(t, false)
	ctx := context.Background()

	n, err := svc.SendFriendRequest(ctx, "bob", "alice", "Alice")
	require.NoError(t, err)

	err = svc.DismissNotification(ctx, "carol", n.ID)
	assert.True(t, models.HasCode(err, models.CodeNotFound))

	require.NoError(t, svc.DismissNotification(ctx, "bob", n.ID))
	list, err := svc.ListNotifications(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, list)
}
