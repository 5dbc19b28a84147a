package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/teamboard/teamboard-api/internal/models"
)

type NotificationRepository interface {
	Create(ctx context.Context, params CreateNotificationParams) (models.Notification, error)
	ListRecent(ctx context.Context, recipientID string, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, recipientID, notificationID string) (models.Notification, error)
}

type notificationRepository struct {
	db *sql.DB
}

type CreateNotificationParams struct {
	RecipientID string
	Type        models.NotificationType
	Severity    models.NotificationSeverity
	Title       string
	Message     string
	Link        string
	Data        map[string]interface{}
}

func NewNotificationRepository(db *sql.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, params CreateNotificationParams) (models.Notification, error) {
	const query = `
		INSERT INTO notifications (recipient_id, type, severity, title, message, link, data)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, recipient_id, type, severity, title, message, link, data, created_at, read_at
	`

	var data interface{}
	if len(params.Data) > 0 {
		bytes, err := json.Marshal(params.Data)
		if err != nil {
			return models.Notification{}, fmt.Errorf("marshal data: %w", err)
		}
		data = bytes
	}

	row := getConn(ctx, r.db).QueryRowContext(ctx, query,
		params.RecipientID, params.Type, params.Severity, params.Title, params.Message, params.Link, data)
	return scanNotification(row)
}

func (r *notificationRepository) ListRecent(ctx context.Context, recipientID string, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}

	const query = `
		SELECT id, recipient_id, type, severity, title, message, link, data, created_at, read_at
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := getConn(ctx, r.db).QueryContext(ctx, query, recipientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		notif, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, notif)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, recipientID, notificationID string) (models.Notification, error) {
	const query = `
		UPDATE notifications
		SET read_at = now()
		WHERE id = $1 AND recipient_id = $2 AND read_at IS NULL
		RETURNING id, recipient_id, type, severity, title, message, link, data, created_at, read_at
	`
	row := getConn(ctx, r.db).QueryRowContext(ctx, query, notificationID, recipientID)
	return scanNotification(row)
}

func scanNotification(scanner interface {
	Scan(dest ...interface{}) error
}) (models.Notification, error) {
	var (
		notif   models.Notification
		link    sql.NullString
		dataRaw []byte
		readAt  sql.NullTime
	)

	if err := scanner.Scan(
		&notif.ID,
		&notif.RecipientID,
		&notif.Type,
		&notif.Severity,
		&notif.Title,
		&notif.Message,
		&link,
		&dataRaw,
		&notif.CreatedAt,
		&readAt,
	); err != nil {
		return models.Notification{}, err
	}

	if link.Valid {
		notif.Link = link.String
	}
	if len(dataRaw) > 0 {
		notif.Data = dataRaw
	}
	if readAt.Valid {
		t := readAt.Time
		notif.ReadAt = &t
	}

	return notif, nil
}
