package notification

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamboard/teamboard-api/internal/models"
	"github.com/teamboard/teamboard-api/internal/repository"
)

type fakeNotificationRepo struct {
	created []repository.CreateNotificationParams
	err     error
}

func (f *fakeNotificationRepo) Create(_ context.Context, params repository.CreateNotificationParams) (models.Notification, error) {
	if f.err != nil {
		return models.Notification{}, f.err
	}
	f.created = append(f.created, params)
	return models.Notification{
		ID:          fmt.Sprintf("n-%d", len(f.created)),
		RecipientID: params.RecipientID,
		Type:        params.Type,
		Severity:    params.Severity,
		Title:       params.Title,
		Message:     params.Message,
	}, nil
}

func (f *fakeNotificationRepo) ListRecent(_ context.Context, _ string, _ int) ([]models.Notification, error) {
	return nil, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, _, _ string) (models.Notification, error) {
	return models.Notification{}, nil
}

type recordingNotifier struct {
	delivered []models.Notification
	err       error
}

func (n *recordingNotifier) Notify(_ context.Context, notif models.Notification) error {
	if n.err != nil {
		return n.err
	}
	n.delivered = append(n.delivered, notif)
	return nil
}

func TestPublishPersistsAndFansOut(t *testing.T) {
	repo := &fakeNotificationRepo{}
	channel := &recordingNotifier{}
	svc := NewService(repo, zerolog.Nop(), channel)

	notif, err := svc.Publish(context.Background(), Event{
		RecipientID: "u1",
		Type:        models.NotificationInvitationCreated,
		Title:       "Invitation to join Platform",
		Message:     "You have been invited.",
	})
	require.NoError(t, err)

	assert.Equal(t, models.NotificationSeverityInfo, notif.Severity)
	require.Len(t, repo.created, 1)
	require.Len(t, channel.delivered, 1)
	assert.Equal(t, notif.ID, channel.delivered[0].ID)
}

func TestPublishRequiresTypeAndRecipient(t *testing.T) {
	svc := NewService(&fakeNotificationRepo{}, zerolog.Nop())

	_, err := svc.Publish(context.Background(), Event{RecipientID: "u1"})
	assert.Error(t, err)

	_, err = svc.Publish(context.Background(), Event{Type: models.NotificationTeamDeleted})
	assert.Error(t, err)
}

func TestPublishSwallowsChannelFailures(t *testing.T) {
	repo := &fakeNotificationRepo{}
	broken := &recordingNotifier{err: fmt.Errorf("channel down")}
	svc := NewService(repo, zerolog.Nop(), broken)

	_, err := svc.Publish(context.Background(), Event{
		RecipientID: "u1",
		Type:        models.NotificationMemberRemoved,
		Severity:    models.NotificationSeverityWarning,
	})
	require.NoError(t, err)
	assert.Len(t, repo.created, 1)
}

func TestPublishSurfacesPersistenceFailure(t *testing.T) {
	repo := &fakeNotificationRepo{err: fmt.Errorf("insert failed")}
	svc := NewService(repo, zerolog.Nop())

	_, err := svc.Publish(context.Background(), Event{
		RecipientID: "u1",
		Type:        models.NotificationRoleChanged,
	})
	assert.Error(t, err)
}

func TestHelperEventsCarryContext(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewService(repo, zerolog.Nop())

	err := svc.NotifyInvitationCreated(context.Background(), "u2", "Platform", "Ada", "inv-1")
	require.NoError(t, err)

	require.Len(t, repo.created, 1)
	created := repo.created[0]
	assert.Equal(t, "u2", created.RecipientID)
	assert.Equal(t, models.NotificationInvitationCreated, created.Type)
	assert.Contains(t, created.Message, "Ada")
	assert.Contains(t, created.Link, "inv-1")
}
