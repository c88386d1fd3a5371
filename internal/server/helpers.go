package server

import (
	"errors"
	"log/slog"
	"strings"

	"gymrace/internal/middleware"
	"gymrace/internal/models"
	"gymrace/internal/observability"
	"gymrace/internal/service"
	"gymrace/internal/session"

	"github.com/gofiber/fiber/v2"
)

// userIDFrom returns the authenticated caller. Auth guarantees it is set on
// every protected route.
func userIDFrom(c *fiber.Ctx) string {
	id, _ := c.Locals(middleware.LocalUserID).(string)
	return id
}

func sessionFrom(c *fiber.Ctx) *session.Session {
	if s, ok := session.FromContext(c.UserContext()); ok {
		return s
	}
	return &session.Session{UserID: userIDFrom(c)}
}

// pathParam returns a trimmed route parameter, writing a 400 when it is empty.
func pathParam(c *fiber.Ctx, name string) (string, bool) {
	v := strings.TrimSpace(c.Params(name))
	if v == "" {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Missing "+name))
		return "", false
	}
	return v, true
}

// parseBody decodes the JSON body into dst, writing a 400 on failure.
func parseBody(c *fiber.Ctx, dst any) bool {
	if err := c.BodyParser(dst); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return false
	}
	return true
}

// respondError maps err to its status. Server-side failures are logged.
func respondError(c *fiber.Ctx, err error) error {
	status := models.StatusFor(err)
	if status >= fiber.StatusInternalServerError {
		observability.Logger.ErrorContext(c.UserContext(), "request failed",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
		var appErr *models.AppError
		if !errors.As(err, &appErr) {
			err = models.NewInternalError(err)
		}
	}
	return models.RespondWithError(c, status, err)
}

// respondNotPersisted answers a best-effort write that did not reach the
// store. The user flow continues; the body says the data was not saved.
func respondNotPersisted(c *fiber.Ctx, we *service.WriteError, body fiber.Map) error {
	observability.Logger.WarnContext(c.UserContext(), "best-effort write failed",
		slog.String("operation", we.Op),
		slog.String("error", we.Err.Error()),
	)
	if body == nil {
		body = fiber.Map{}
	}
	body["persisted"] = false
	return c.Status(fiber.StatusAccepted).JSON(body)
}
