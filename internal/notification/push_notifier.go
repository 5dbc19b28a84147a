package notification

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/teamboard/teamboard-api/internal/config"
	"github.com/teamboard/teamboard-api/internal/models"
)

// PushNotifier mirrors notifications to a mobile push topic. Delivery is
// stubbed behind config until the push backend is provisioned.
type PushNotifier struct {
	enabled   bool
	projectID string
	topic     string
	logger    zerolog.Logger
}

func NewPushNotifier(cfg config.PushConfig, logger zerolog.Logger) *PushNotifier {
	enabled := cfg.Enabled && cfg.ProjectID != "" && cfg.Topic != ""
	return &PushNotifier{
		enabled:   enabled,
		projectID: cfg.ProjectID,
		topic:     cfg.Topic,
		logger:    logger.With().Str("notifier", "push").Logger(),
	}
}

func (n *PushNotifier) Notify(_ context.Context, notif models.Notification) error {
	if !n.enabled {
		return nil
	}
	n.logger.Info().
		Str("notification_id", notif.ID).
		Str("recipient_id", notif.RecipientID).
		Str("type", string(notif.Type)).
		Str("topic", n.topic).
		Msg("push notification dispatched (mock)")
	return nil
}

func (n *PushNotifier) String() string {
	if !n.enabled {
		return "PushNotifier(disabled)"
	}
	return fmt.Sprintf("PushNotifier(project=%s, topic=%s)", n.projectID, n.topic)
}
