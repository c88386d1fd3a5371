package service

import (
	"context"
	"fmt"
	"strings"

	"gymrace/internal/models"
	"gymrace/internal/observability"
	"gymrace/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// ConnectOutcome is what a privacy-gated connect did.
type ConnectOutcome string

const (
	OutcomeAdded     ConnectOutcome = "added"
	OutcomeRequested ConnectOutcome = "requested"
)

// SocialService manages friend lists and friend requests. Friend lists are
// directed; see AcceptFriendRequest for how an accept writes them.
type SocialService struct {
	friends       repository.FriendRepository
	notifications repository.NotificationRepository
	users         repository.UserRepository
	mutualAccept  bool
}

// NewSocialService returns a new SocialService. With mutualAccept set, an
// accepted request adds an edge in both directions.
func NewSocialService(
	friends repository.FriendRepository,
	notifications repository.NotificationRepository,
	users repository.UserRepository,
	mutualAccept bool,
) *SocialService {
	return &SocialService{
		friends:       friends,
		notifications: notifications,
		users:         users,
		mutualAccept:  mutualAccept,
	}
}

func validatePair(a, b string) error {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return models.NewValidationError("User ID is required")
	}
	if a == b {
		return models.NewValidationError("Cannot befriend yourself")
	}
	return nil
}

// AddFriend puts friendID in ownerID's list. Adding twice keeps one entry.
func (s *SocialService) AddFriend(ctx context.Context, ownerID, friendID string) error {
	if err := validatePair(ownerID, friendID); err != nil {
		return err
	}
	return writeFailed("add_friend", s.friends.AddEdge(ctx, ownerID, friendID))
}

// RemoveFriend drops friendID from ownerID's list. Missing entries are not an error.
func (s *SocialService) RemoveFriend(ctx context.Context, ownerID, friendID string) error {
	if err := validatePair(ownerID, friendID); err != nil {
		return err
	}
	return writeFailed("remove_friend", s.friends.RemoveEdge(ctx, ownerID, friendID))
}

// SendFriendRequest leaves toID a request notification from fromID. No
// friend list changes. A repeat request while one is pending returns the
// pending one.
func (s *SocialService) SendFriendRequest(ctx context.Context, toID, fromID, fromName string) (*models.Notification, error) {
	if err := validatePair(toID, fromID); err != nil {
		return nil, err
	}

	existing, err := s.notifications.FindPendingRequest(ctx, toID, fromID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	if strings.TrimSpace(fromName) == "" {
		fromName = fromID
	}
	n := &models.Notification{
		RecipientID: toID,
		SenderID:    fromID,
		Type:        models.NotificationRequest,
		Message:     fmt.Sprintf("%s wants to be your friend", fromName),
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		return n, writeFailed("send_friend_request", err)
	}
	return n, nil
}

// AcceptFriendRequest adds accepterID to requesterID's list and consumes the
// pending request. The reverse edge is only written in mutual mode.
func (s *SocialService) AcceptFriendRequest(ctx context.Context, accepterID, requesterID string) (err error) {
	ctx, span := observability.StartSpan(ctx, "social", "accept_request",
		attribute.String("accepter_id", accepterID), attribute.String("requester_id", requesterID))
	defer span.EndWith(&err)

	if err := validatePair(accepterID, requesterID); err != nil {
		return err
	}

	pending, err := s.notifications.FindPendingRequest(ctx, accepterID, requesterID)
	if err != nil {
		return err
	}
	if pending == nil {
		return models.NewNotFoundError("Friend request from", requesterID)
	}

	if err := s.friends.AddEdge(ctx, requesterID, accepterID); err != nil {
		return writeFailed("accept_friend_request", err)
	}
	if s.mutualAccept {
		if err := s.friends.AddEdge(ctx, accepterID, requesterID); err != nil {
			return writeFailed("accept_friend_request", err)
		}
	}
	if _, err := s.notifications.DeleteRequests(ctx, accepterID, requesterID); err != nil {
		return writeFailed("consume_friend_request", err)
	}
	return nil
}

// Connect is the privacy gate in front of AddFriend: a private target gets
// a friend request instead of being added directly.
func (s *SocialService) Connect(ctx context.Context, ownerID, targetID string) (ConnectOutcome, *models.Notification, error) {
	if err := validatePair(ownerID, targetID); err != nil {
		return "", nil, err
	}

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return "", nil, err
	}

	if target.IsPrivate {
		name := ownerID
		if owner, err := s.users.GetByID(ctx, ownerID); err == nil {
			name = owner.DisplayName()
		}
		n, err := s.SendFriendRequest(ctx, targetID, ownerID, name)
		return OutcomeRequested, n, err
	}

	return OutcomeAdded, nil, s.AddFriend(ctx, ownerID, targetID)
}

// ListFriends returns the profiles in ownerID's list in the order they were
// added. Friends without a stored profile are returned with only their ID.
func (s *SocialService) ListFriends(ctx context.Context, ownerID string) ([]models.User, error) {
	ids, err := s.friends.ListFriendIDs(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	profiles, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.User, len(profiles))
	for _, u := range profiles {
		byID[u.ID] = u
	}
	out := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			out = append(out, u)
		} else {
			out = append(out, models.User{ID: id})
		}
	}
	return out, nil
}

func (s *SocialService) ListNotifications(ctx context.Context, recipientID string) ([]models.Notification, error) {
	return s.notifications.ListForRecipient(ctx, recipientID)
}

// DismissNotification deletes one of the recipient's notifications.
func (s *SocialService) DismissNotification(ctx context.Context, recipientID, id string) error {
	n, err := s.notifications.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n.RecipientID != recipientID {
		return models.NewNotFoundError("Notification", id)
	}
	return s.notifications.Delete(ctx, id)
}
