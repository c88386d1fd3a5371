package server

import (
	"gymrace/internal/notifications"
	"gymrace/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetFriends handles GET /api/friends
func (s *Server) GetFriends(c *fiber.Ctx) error {
	friends, err := s.socialService.ListFriends(c.UserContext(), userIDFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]fiber.Map, 0, len(friends))
	for i := range friends {
		out = append(out, publicProfile(&friends[i]))
	}
	return c.JSON(out)
}

// ConnectFriend handles POST /api/friends/:userId. Public users are added
// straight away; private users receive a friend request instead.
func (s *Server) ConnectFriend(c *fiber.Ctx) error {
	ctx := c.UserContext()
	targetID, ok := pathParam(c, "userId")
	if !ok {
		return nil
	}
	me := sessionFrom(c)

	outcome, request, err := s.socialService.Connect(ctx, me.UserID, targetID)
	body := fiber.Map{"outcome": outcome}
	if request != nil {
		body["request"] = request
	}
	if we, ok := service.AsWriteError(err); ok {
		return respondNotPersisted(c, we, body)
	}
	if err != nil {
		return respondError(c, err)
	}

	switch outcome {
	case service.OutcomeRequested:
		s.publishUserEvent(ctx, targetID, notifications.EventFriendRequestReceived, map[string]any{
			"request_id": request.ID,
			"from_user":  userSummary(me),
		})
	case service.OutcomeAdded:
		s.publishUserEvent(ctx, targetID, notifications.EventFriendAdded, map[string]any{
			"user": userSummary(me),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(body)
}

// RemoveFriend handles DELETE /api/friends/:userId
func (s *Server) RemoveFriend(c *fiber.Ctx) error {
	ctx := c.UserContext()
	friendID, ok := pathParam(c, "userId")
	if !ok {
		return nil
	}
	userID := userIDFrom(c)

	err := s.socialService.RemoveFriend(ctx, userID, friendID)
	if we, ok := service.AsWriteError(err); ok {
		return respondNotPersisted(c, we, nil)
	}
	if err != nil {
		return respondError(c, err)
	}

	s.publishUserEvent(ctx, friendID, notifications.EventFriendRemoved, map[string]any{
		"user_id": userID,
	})
	return c.SendStatus(fiber.StatusNoContent)
}

// AcceptFriendRequest handles POST /api/friends/requests/:userId/accept,
// where :userId is the requester.
func (s *Server) AcceptFriendRequest(c *fiber.Ctx) error {
	ctx := c.UserContext()
	requesterID, ok := pathParam(c, "userId")
	if !ok {
		return nil
	}
	me := sessionFrom(c)

	err := s.socialService.AcceptFriendRequest(ctx, me.UserID, requesterID)
	if we, ok := service.AsWriteError(err); ok {
		return respondNotPersisted(c, we, nil)
	}
	if err != nil {
		return respondError(c, err)
	}

	s.publishUserEvent(ctx, requesterID, notifications.EventFriendRequestAccepted, map[string]any{
		"friend": userSummary(me),
	})
	return c.JSON(fiber.Map{"message": "Friend request accepted"})
}
