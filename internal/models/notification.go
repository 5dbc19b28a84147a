package models

import (
	"encoding/json"
	"time"
)

type NotificationSeverity string

const (
	NotificationSeverityInfo    NotificationSeverity = "info"
	NotificationSeverityWarning NotificationSeverity = "warning"
	NotificationSeverityError   NotificationSeverity = "error"
)

type NotificationType string

const (
	NotificationInvitationCreated  NotificationType = "invitation_created"
	NotificationInvitationAccepted NotificationType = "invitation_accepted"
	NotificationInvitationRejected NotificationType = "invitation_rejected"
	NotificationRoleChanged        NotificationType = "role_changed"
	NotificationMemberRemoved      NotificationType = "member_removed"
	NotificationTeamDeleted        NotificationType = "team_deleted"
)

type Notification struct {
	ID          string               `json:"id" db:"id"`
	RecipientID string               `json:"recipient_id" db:"recipient_id"`
	Type        NotificationType     `json:"type" db:"type"`
	Severity    NotificationSeverity `json:"severity" db:"severity"`
	Title       string               `json:"title" db:"title"`
	Message     string               `json:"message" db:"message"`
	Link        string               `json:"link,omitempty" db:"link"`
	Data        json.RawMessage      `json:"data,omitempty" db:"data"`
	CreatedAt   time.Time            `json:"created_at" db:"created_at"`
	ReadAt      *time.Time           `json:"read_at,omitempty" db:"read_at"`
}

// IsRead indicates whether the recipient has seen the notification.
func (n Notification) IsRead() bool {
	return n.ReadAt != nil
}
