package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"gymrace/internal/middleware"
	"gymrace/internal/models"
	"gymrace/internal/notifications"
	"gymrace/internal/observability"
	"gymrace/internal/poll"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const wsWriteTimeout = 10 * time.Second

// challengeFrame is one message on the challenges stream.
type challengeFrame struct {
	Type       string              `json:"type"`
	Challenges []challengeResponse `json:"challenges,omitempty"`
	Error      string              `json:"error,omitempty"`
	At         time.Time           `json:"at"`
}

// WebSocketChallengesHandler streams the caller's challenges. A snapshot is
// sent on connect and then every poll interval until the socket closes.
// Challenge events for the user, or a {"type":"refresh"} message from the
// client, trigger an early snapshot.
func (s *Server) WebSocketChallengesHandler() fiber.Handler {
	stream := websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals(middleware.LocalUserID).(string)
		if userID == "" {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"error","error":"unauthorized"}`))
			_ = conn.Close()
			return
		}

		observability.ActiveChallengeStreams.Inc()
		defer observability.ActiveChallengeStreams.Dec()

		ctx, cancel := context.WithCancel(s.shutdownCtx)
		defer cancel()
		ctx = observability.WithUserID(ctx, userID)

		fetch := func(ctx context.Context) ([]models.Challenge, error) {
			return s.challengeService.ListForUser(ctx, userID)
		}
		deliver := func(list []models.Challenge, err error) {
			frame := challengeFrame{Type: "challenges", At: time.Now().UTC()}
			if err != nil {
				frame.Type = "error"
				frame.Error = "failed to load challenges"
				observability.Logger.WarnContext(ctx, "challenge stream fetch failed",
					slog.String("error", err.Error()))
			} else {
				frame.Challenges = challengeResponses(list, userID)
			}
			if werr := writeFrame(conn, frame); werr != nil {
				// Unblocks the read loop below.
				_ = conn.Close()
			}
		}

		poller := poll.New(s.pollInterval, fetch, deliver)
		poller.Start(ctx)
		defer poller.Stop()

		if err := s.notifier.SubscribeUser(ctx, userID, func(ev notifications.Event) {
			if strings.HasPrefix(ev.Type, "challenge_") {
				poller.Trigger()
			}
		}); err != nil {
			observability.Logger.WarnContext(ctx, "challenge stream subscribe failed; polling only",
				slog.String("error", err.Error()))
		}

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var in struct {
				Type string `json:"type"`
			}
			if json.Unmarshal(msg, &in) == nil && in.Type == "refresh" {
				poller.Trigger()
			}
		}
	})

	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return stream(c)
	}
}

func writeFrame(conn *websocket.Conn, frame challengeFrame) error {
	b, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteMessage(websocket.TextMessage, b)
}
