package models

import "time"

// InvitationStatus is the stored lifecycle state of an invitation. Expiry is
// derived: a stored "pending" row whose expires_at has passed reads as expired.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRejected InvitationStatus = "rejected"
	InvitationExpired  InvitationStatus = "expired"
)

// TeamInvitation invites a registered user, identified by email, into a team.
// Rows are kept after resolution as an audit trail and are never deleted.
type TeamInvitation struct {
	ID           string           `json:"id"`
	TeamID       string           `json:"team_id"`
	InviterID    string           `json:"inviter_id"`
	InviteeEmail string           `json:"invitee_email"`
	Role         TeamRole         `json:"role"`
	TokenHash    string           `json:"-"`
	Status       InvitationStatus `json:"status"`
	ExpiresAt    time.Time        `json:"expires_at"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// IsExpired determines whether the invitation window has closed.
func (i TeamInvitation) IsExpired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

// EffectiveStatus resolves the derived expired state on top of the stored one.
func (i TeamInvitation) EffectiveStatus(now time.Time) InvitationStatus {
	if i.Status == InvitationPending && i.IsExpired(now) {
		return InvitationExpired
	}
	return i.Status
}
