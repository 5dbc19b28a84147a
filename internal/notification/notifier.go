package notification

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/teamboard/teamboard-api/internal/models"
)

// Notifier is a side channel for persisted notifications (email digest, push).
// Delivery is best-effort; the dispatcher logs and moves on.
type Notifier interface {
	Notify(ctx context.Context, notification models.Notification) error
}

func sanitizeRecipients(recipients []string) []string {
	var cleaned []string
	for _, recipient := range recipients {
		if trimmed := strings.TrimSpace(recipient); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}

func logNotifyError(logger zerolog.Logger, err error, channel string, notif models.Notification) {
	if err == nil {
		return
	}
	logger.Warn().
		Err(err).
		Str("notification_id", notif.ID).
		Str("type", string(notif.Type)).
		Str("channel", channel).
		Msg("failed to deliver notification")
}
