package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveStatus(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		stored    InvitationStatus
		expiresAt time.Time
		want      InvitationStatus
	}{
		{"pending before expiry", InvitationPending, now.Add(time.Hour), InvitationPending},
		{"pending past expiry", InvitationPending, now.Add(-time.Hour), InvitationExpired},
		{"pending at exact expiry", InvitationPending, now, InvitationExpired},
		{"accepted is stable past expiry", InvitationAccepted, now.Add(-time.Hour), InvitationAccepted},
		{"rejected is stable past expiry", InvitationRejected, now.Add(-time.Hour), InvitationRejected},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			inv := TeamInvitation{Status: tc.stored, ExpiresAt: tc.expiresAt}
			assert.Equal(t, tc.want, inv.EffectiveStatus(now))
		})
	}
}
