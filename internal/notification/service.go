package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/teamboard/teamboard-api/internal/models"
	"github.com/teamboard/teamboard-api/internal/repository"
)

type Event struct {
	RecipientID string
	Type        models.NotificationType
	Severity    models.NotificationSeverity
	Title       string
	Message     string
	Link        string
	Data        map[string]interface{}
}

// Service is the notification dispatcher. Publishing persists the in-app
// notification and fans it out to any configured side channels; channel
// failures are logged, never returned.
type Service interface {
	Publish(ctx context.Context, evt Event) (models.Notification, error)
	NotifyInvitationCreated(ctx context.Context, recipientID, teamName, inviterName, invitationID string) error
	NotifyInvitationAccepted(ctx context.Context, inviterID, teamName, inviteeEmail string) error
	NotifyInvitationRejected(ctx context.Context, inviterID, teamName, inviteeEmail string) error
	NotifyRoleChanged(ctx context.Context, userID, teamName string, role models.TeamRole) error
	NotifyMemberRemoved(ctx context.Context, userID, teamName string) error
	NotifyTeamDeleted(ctx context.Context, userID, teamName string) error
	ListRecent(ctx context.Context, recipientID string, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, recipientID, notificationID string) (models.Notification, error)
}

type service struct {
	repo      repository.NotificationRepository
	logger    zerolog.Logger
	notifiers []Notifier
}

func NewService(repo repository.NotificationRepository, logger zerolog.Logger, notifiers ...Notifier) Service {
	active := make([]Notifier, 0, len(notifiers))
	for _, notifier := range notifiers {
		if notifier != nil {
			active = append(active, notifier)
		}
	}
	return &service{
		repo:      repo,
		logger:    logger.With().Str("component", "notification_service").Logger(),
		notifiers: active,
	}
}

func (s *service) Publish(ctx context.Context, evt Event) (models.Notification, error) {
	if evt.Type == "" {
		return models.Notification{}, fmt.Errorf("notification type is required")
	}
	if evt.RecipientID == "" {
		return models.Notification{}, fmt.Errorf("recipient is required")
	}
	if evt.Severity == "" {
		evt.Severity = models.NotificationSeverityInfo
	}
	title := strings.TrimSpace(evt.Title)
	message := strings.TrimSpace(evt.Message)
	if title == "" {
		title = string(evt.Type)
	}

	notif, err := s.repo.Create(ctx, repository.CreateNotificationParams{
		RecipientID: evt.RecipientID,
		Type:        evt.Type,
		Severity:    evt.Severity,
		Title:       title,
		Message:     message,
		Link:        evt.Link,
		Data:        evt.Data,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("type", string(evt.Type)).Msg("failed to persist notification")
		return models.Notification{}, err
	}
	for _, notifier := range s.notifiers {
		if err := notifier.Notify(ctx, notif); err != nil {
			logNotifyError(s.logger, err, notifierChannelName(notifier), notif)
		}
	}
	return notif, nil
}

func (s *service) NotifyInvitationCreated(ctx context.Context, recipientID, teamName, inviterName, invitationID string) error {
	_, err := s.Publish(ctx, Event{
		RecipientID: recipientID,
		Type:        models.NotificationInvitationCreated,
		Severity:    models.NotificationSeverityInfo,
		Title:       fmt.Sprintf("Invitation to join %s", teamName),
		Message:     fmt.Sprintf("%s invited you to join the team %s.", inviterName, teamName),
		Link:        fmt.Sprintf("/invitations/%s", invitationID),
		Data: map[string]interface{}{
			"invitation_id": invitationID,
			"team":          teamName,
		},
	})
	return err
}

func (s *service) NotifyInvitationAccepted(ctx context.Context, inviterID, teamName, inviteeEmail string) error {
	_, err := s.Publish(ctx, Event{
		RecipientID: inviterID,
		Type:        models.NotificationInvitationAccepted,
		Severity:    models.NotificationSeverityInfo,
		Title:       fmt.Sprintf("Invitation accepted: %s", teamName),
		Message:     fmt.Sprintf("%s accepted your invitation to join %s.", inviteeEmail, teamName),
		Data: map[string]interface{}{
			"team":    teamName,
			"invitee": inviteeEmail,
		},
	})
	return err
}

func (s *service) NotifyInvitationRejected(ctx context.Context, inviterID, teamName, inviteeEmail string) error {
	_, err := s.Publish(ctx, Event{
		RecipientID: inviterID,
		Type:        models.NotificationInvitationRejected,
		Severity:    models.NotificationSeverityInfo,
		Title:       fmt.Sprintf("Invitation declined: %s", teamName),
		Message:     fmt.Sprintf("%s declined your invitation to join %s.", inviteeEmail, teamName),
		Data: map[string]interface{}{
			"team":    teamName,
			"invitee": inviteeEmail,
		},
	})
	return err
}

func (s *service) NotifyRoleChanged(ctx context.Context, userID, teamName string, role models.TeamRole) error {
	_, err := s.Publish(ctx, Event{
		RecipientID: userID,
		Type:        models.NotificationRoleChanged,
		Severity:    models.NotificationSeverityInfo,
		Title:       fmt.Sprintf("Role updated: %s", teamName),
		Message:     fmt.Sprintf("Your role in %s is now %s.", teamName, role),
		Data: map[string]interface{}{
			"team": teamName,
			"role": string(role),
		},
	})
	return err
}

func (s *service) NotifyMemberRemoved(ctx context.Context, userID, teamName string) error {
	_, err := s.Publish(ctx, Event{
		RecipientID: userID,
		Type:        models.NotificationMemberRemoved,
		Severity:    models.NotificationSeverityWarning,
		Title:       fmt.Sprintf("Removed from %s", teamName),
		Message:     fmt.Sprintf("You are no longer a member of %s.", teamName),
		Data: map[string]interface{}{
			"team": teamName,
		},
	})
	return err
}

func (s *service) NotifyTeamDeleted(ctx context.Context, userID, teamName string) error {
	_, err := s.Publish(ctx, Event{
		RecipientID: userID,
		Type:        models.NotificationTeamDeleted,
		Severity:    models.NotificationSeverityWarning,
		Title:       fmt.Sprintf("Team deleted: %s", teamName),
		Message:     fmt.Sprintf("The team %s was deleted by its owner.", teamName),
		Data: map[string]interface{}{
			"team": teamName,
		},
	})
	return err
}

func (s *service) ListRecent(ctx context.Context, recipientID string, limit int) ([]models.Notification, error) {
	return s.repo.ListRecent(ctx, recipientID, limit)
}

func (s *service) MarkRead(ctx context.Context, recipientID, notificationID string) (models.Notification, error) {
	return s.repo.MarkRead(ctx, recipientID, notificationID)
}

func notifierChannelName(n Notifier) string {
	type named interface {
		String() string
	}
	if v, ok := n.(named); ok {
		return v.String()
	}
	return fmt.Sprintf("%T", n)
}
