package team

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/teamboard/teamboard-api/internal/authz"
	"github.com/teamboard/teamboard-api/internal/models"
	"github.com/teamboard/teamboard-api/internal/notification"
	"github.com/teamboard/teamboard-api/internal/repository"
)

const defaultInviteTTL = 7 * 24 * time.Hour

// InvitationAction is what an invitee may do with a pending invitation.
type InvitationAction string

const (
	ActionAccept InvitationAction = "accept"
	ActionReject InvitationAction = "reject"
)

// Engine drives the invitation and membership lifecycle. All operations take
// the acting principal explicitly and translate persistence failures into the
// package error kinds.
type Engine struct {
	teams         repository.TeamRepository
	members       repository.MemberRepository
	invitations   repository.InvitationRepository
	users         repository.UserRepository
	tx            repository.TxRunner
	notifications notification.Service
	mailer        notification.InviteMailer
	urlTpl        string
	inviteTTL     time.Duration
	clock         func() time.Time
	logger        zerolog.Logger
}

func NewEngine(
	teams repository.TeamRepository,
	members repository.MemberRepository,
	invitations repository.InvitationRepository,
	users repository.UserRepository,
	tx repository.TxRunner,
	notifications notification.Service,
	mailer notification.InviteMailer,
	inviteURLTemplate string,
	logger zerolog.Logger,
) *Engine {
	if inviteURLTemplate == "" {
		inviteURLTemplate = "https://app.teamboard.dev/invitations?token=%s"
	}
	return &Engine{
		teams:         teams,
		members:       members,
		invitations:   invitations,
		users:         users,
		tx:            tx,
		notifications: notifications,
		mailer:        mailer,
		urlTpl:        inviteURLTemplate,
		inviteTTL:     defaultInviteTTL,
		clock:         time.Now,
		logger:        logger.With().Str("component", "invitation_engine").Logger(),
	}
}

// CreateInvitation invites a registered user, identified by email, into a
// team. Only the owner and admin members may invite.
func (e *Engine) CreateInvitation(ctx context.Context, actor authz.Principal, teamID, inviteeEmail string, role models.TeamRole) (models.TeamInvitation, error) {
	role = models.TeamRole(strings.ToLower(strings.TrimSpace(string(role))))
	if role == "" {
		role = models.RoleMember
	}
	if !models.IsValidTeamRole(role) {
		return models.TeamInvitation{}, errors.WithMessagef(ErrValidation, "invalid role %q", role)
	}

	inviteeEmail = strings.TrimSpace(strings.ToLower(inviteeEmail))
	if _, err := mail.ParseAddress(inviteeEmail); err != nil {
		return models.TeamInvitation{}, errors.WithMessage(ErrValidation, "invalid invitee email")
	}

	t, err := e.teams.GetTeamByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.TeamInvitation{}, errors.WithMessage(ErrNotFound, "team")
		}
		return models.TeamInvitation{}, persistenceErr(err, "find team")
	}

	membership, err := e.actorMembership(ctx, t.ID, actor.ID)
	if err != nil {
		return models.TeamInvitation{}, err
	}
	if !CanInvite(t, actor, membership) {
		return models.TeamInvitation{}, errors.WithMessage(ErrForbidden, "not allowed to invite")
	}

	now := e.clock()
	if _, err := e.invitations.GetPendingInvitation(ctx, t.ID, inviteeEmail, now); err == nil {
		return models.TeamInvitation{}, errors.WithMessage(ErrConflict, "a pending invitation already exists for this email")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return models.TeamInvitation{}, persistenceErr(err, "check pending invitation")
	}

	// Invitees must be registered users; the invitation is still addressed by
	// email so the binding survives email-based resolution checks.
	invitee, err := e.users.GetUserByEmail(ctx, inviteeEmail)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.TeamInvitation{}, errors.WithMessage(ErrValidation, "invitee is not a registered user")
		}
		return models.TeamInvitation{}, persistenceErr(err, "find invitee")
	}
	if t.IsOwner(invitee.ID) {
		return models.TeamInvitation{}, errors.WithMessage(ErrConflict, "invitee owns this team")
	}
	if _, err := e.members.GetMember(ctx, t.ID, invitee.ID); err == nil {
		return models.TeamInvitation{}, errors.WithMessage(ErrConflict, "invitee is already a member")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return models.TeamInvitation{}, persistenceErr(err, "check membership")
	}

	token, err := generateInviteToken()
	if err != nil {
		return models.TeamInvitation{}, errors.Wrap(err, "generate invite token")
	}

	inv, err := e.invitations.CreateInvitation(ctx, models.TeamInvitation{
		TeamID:       t.ID,
		InviterID:    actor.ID,
		InviteeEmail: inviteeEmail,
		Role:         role,
		TokenHash:    hashInviteToken(token),
		ExpiresAt:    now.Add(e.inviteTTL),
	})
	if err != nil {
		if isUniqueViolation(err) {
			return models.TeamInvitation{}, errors.WithMessage(ErrConflict, "a pending invitation already exists for this email")
		}
		return models.TeamInvitation{}, persistenceErr(err, "create invitation")
	}

	// Side channels are best-effort; the invitation row is already committed.
	if e.mailer != nil {
		inviteURL := fmt.Sprintf(e.urlTpl, token)
		if err := e.mailer.SendInvite(inv.InviteeEmail, t.Name, inviteURL); err != nil {
			e.logger.Warn().Err(err).Str("invitation_id", inv.ID).Msg("failed to send invitation email")
		}
	}
	inviterName := actor.Email
	if inviter, err := e.users.GetUserByID(ctx, actor.ID); err == nil && inviter.DisplayName != "" {
		inviterName = inviter.DisplayName
	}
	if err := e.notifications.NotifyInvitationCreated(ctx, invitee.ID, t.Name, inviterName, inv.ID); err != nil {
		e.logger.Warn().Err(err).Str("invitation_id", inv.ID).Msg("failed to notify invitee")
	}

	return inv, nil
}

// ResolveInvitation applies an accept or reject to a pending invitation. Only
// the invited principal, matched by email, may resolve it. The read-check-write
// sequence runs in one transaction; the unique constraint on team_members is
// the final guard against concurrent duplicate joins.
func (e *Engine) ResolveInvitation(ctx context.Context, actor authz.Principal, invitationID string, action InvitationAction) (models.TeamInvitation, error) {
	if action != ActionAccept && action != ActionReject {
		return models.TeamInvitation{}, errors.WithMessagef(ErrValidation, "unknown action %q", action)
	}

	var (
		resolved      models.TeamInvitation
		resolvedTeam  models.Team
		createdMember bool
	)

	err := e.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		inv, err := e.invitations.GetInvitationForUpdate(ctx, invitationID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errors.WithMessage(ErrNotFound, "invitation")
			}
			return persistenceErr(err, "find invitation")
		}

		if !strings.EqualFold(actor.Email, inv.InviteeEmail) {
			return errors.WithMessage(ErrForbidden, "invitation is addressed to someone else")
		}

		now := e.clock()
		switch inv.EffectiveStatus(now) {
		case models.InvitationAccepted, models.InvitationRejected:
			return errors.WithMessage(ErrConflict, "invitation already processed")
		case models.InvitationExpired:
			// Rejecting a lapsed invitation is harmless; accepting is not.
			if action == ActionAccept {
				return errors.WithMessage(ErrInvitationExpired, "invitation")
			}
		}

		t, err := e.teams.GetTeamByID(ctx, inv.TeamID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errors.WithMessage(ErrNotFound, "team")
			}
			return persistenceErr(err, "find team")
		}
		resolvedTeam = t

		if action == ActionAccept {
			// A principal who already joined through another path keeps the
			// invitation acceptable; membership creation is skipped.
			alreadyMember := t.IsOwner(actor.ID)
			if !alreadyMember {
				if _, err := e.members.GetMember(ctx, t.ID, actor.ID); err == nil {
					alreadyMember = true
				} else if !errors.Is(err, sql.ErrNoRows) {
					return persistenceErr(err, "check membership")
				}
			}
			if !alreadyMember {
				if _, err := e.members.CreateMember(ctx, t.ID, actor.ID, inv.Role); err != nil {
					if isUniqueViolation(err) {
						return errors.WithMessage(ErrConflict, "membership already exists")
					}
					return persistenceErr(err, "create membership")
				}
				createdMember = true
			}
		}

		target := models.InvitationAccepted
		if action == ActionReject {
			target = models.InvitationRejected
		}
		updated, err := e.invitations.SetInvitationStatus(ctx, inv.ID, models.InvitationPending, target)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errors.WithMessage(ErrConflict, "invitation already processed")
			}
			return persistenceErr(err, "update invitation")
		}
		resolved = updated
		return nil
	})
	if err != nil {
		return models.TeamInvitation{}, err
	}

	// Inviter notification happens after the transaction commits so a
	// dispatch failure can never be mistaken for a lifecycle failure.
	switch action {
	case ActionAccept:
		if err := e.notifications.NotifyInvitationAccepted(ctx, resolved.InviterID, resolvedTeam.Name, resolved.InviteeEmail); err != nil {
			e.logger.Warn().Err(err).Str("invitation_id", resolved.ID).Msg("failed to notify inviter of acceptance")
		}
	case ActionReject:
		if err := e.notifications.NotifyInvitationRejected(ctx, resolved.InviterID, resolvedTeam.Name, resolved.InviteeEmail); err != nil {
			e.logger.Warn().Err(err).Str("invitation_id", resolved.ID).Msg("failed to notify inviter of rejection")
		}
	}

	e.logger.Info().
		Str("invitation_id", resolved.ID).
		Str("team_id", resolved.TeamID).
		Str("action", string(action)).
		Bool("member_created", createdMember).
		Msg("invitation resolved")

	return resolved, nil
}

// CountPendingInvitations backs a UI badge. It fails soft: any internal error
// is logged and reported as zero.
func (e *Engine) CountPendingInvitations(ctx context.Context, actor authz.Principal) int {
	email := strings.TrimSpace(strings.ToLower(actor.Email))
	count, err := e.invitations.CountPendingInvitations(ctx, email, e.clock())
	if err != nil {
		e.logger.Warn().Err(err).Str("email", email).Msg("failed to count pending invitations")
		return 0
	}
	return count
}

// ListTeamInvitations returns a team's invitations, newest first, with the
// derived expired status applied. Owner and admins only.
func (e *Engine) ListTeamInvitations(ctx context.Context, actor authz.Principal, teamID string) ([]models.TeamInvitation, error) {
	t, err := e.teams.GetTeamByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.WithMessage(ErrNotFound, "team")
		}
		return nil, persistenceErr(err, "find team")
	}

	membership, err := e.actorMembership(ctx, t.ID, actor.ID)
	if err != nil {
		return nil, err
	}
	if !CanInvite(t, actor, membership) {
		return nil, errors.WithMessage(ErrForbidden, "not allowed to view invitations")
	}

	invitations, err := e.invitations.ListInvitationsByTeam(ctx, t.ID)
	if err != nil {
		return nil, persistenceErr(err, "list invitations")
	}

	now := e.clock()
	for i := range invitations {
		invitations[i].Status = invitations[i].EffectiveStatus(now)
	}
	return invitations, nil
}

// ListMembers returns the team roster. Only the owner and members may view it.
func (e *Engine) ListMembers(ctx context.Context, actor authz.Principal, teamID string) ([]models.TeamMember, error) {
	t, err := e.teams.GetTeamByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.WithMessage(ErrNotFound, "team")
		}
		return nil, persistenceErr(err, "find team")
	}

	members, err := e.members.ListMembersByTeam(ctx, t.ID)
	if err != nil {
		return nil, persistenceErr(err, "list members")
	}

	if !t.IsOwner(actor.ID) {
		visible := false
		for _, member := range members {
			if member.UserID == actor.ID {
				visible = true
				break
			}
		}
		if !visible {
			return nil, errors.WithMessage(ErrForbidden, "not a member of this team")
		}
	}
	return members, nil
}

// ChangeRole updates a member's role. The owner's implicit role can never be
// changed, by anyone.
func (e *Engine) ChangeRole(ctx context.Context, actor authz.Principal, teamID, targetUserID string, newRole models.TeamRole) (models.TeamMember, error) {
	newRole = models.TeamRole(strings.ToLower(strings.TrimSpace(string(newRole))))
	if !models.IsValidTeamRole(newRole) {
		return models.TeamMember{}, errors.WithMessagef(ErrValidation, "invalid role %q", newRole)
	}

	t, err := e.teams.GetTeamByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.TeamMember{}, errors.WithMessage(ErrNotFound, "team")
		}
		return models.TeamMember{}, persistenceErr(err, "find team")
	}

	if t.IsOwner(targetUserID) {
		return models.TeamMember{}, errors.WithMessage(ErrInvalidOperation, "the owner's role cannot be changed")
	}

	membership, err := e.actorMembership(ctx, t.ID, actor.ID)
	if err != nil {
		return models.TeamMember{}, err
	}
	if !CanChangeRole(t, actor, membership, targetUserID) {
		return models.TeamMember{}, errors.WithMessage(ErrForbidden, "not allowed to change roles")
	}

	member, err := e.members.UpdateMemberRole(ctx, t.ID, targetUserID, newRole)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.TeamMember{}, errors.WithMessage(ErrNotFound, "member")
		}
		return models.TeamMember{}, persistenceErr(err, "update member role")
	}

	if err := e.notifications.NotifyRoleChanged(ctx, targetUserID, t.Name, newRole); err != nil {
		e.logger.Warn().Err(err).Str("team_id", t.ID).Str("user_id", targetUserID).Msg("failed to notify member of role change")
	}
	return member, nil
}

// RemoveMember removes a membership. Self-removal is always allowed; removing
// others requires owner or admin standing. The owner cannot be removed.
func (e *Engine) RemoveMember(ctx context.Context, actor authz.Principal, teamID, targetUserID string) error {
	t, err := e.teams.GetTeamByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errors.WithMessage(ErrNotFound, "team")
		}
		return persistenceErr(err, "find team")
	}

	if t.IsOwner(targetUserID) {
		return errors.WithMessage(ErrInvalidOperation, "the owner cannot be removed")
	}

	membership, err := e.actorMembership(ctx, t.ID, actor.ID)
	if err != nil {
		return err
	}
	if !CanRemoveMember(t, actor, membership, targetUserID) {
		return errors.WithMessage(ErrForbidden, "not allowed to remove members")
	}

	if err := e.members.DeleteMember(ctx, t.ID, targetUserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errors.WithMessage(ErrNotFound, "member")
		}
		return persistenceErr(err, "delete member")
	}

	if actor.ID != targetUserID {
		if err := e.notifications.NotifyMemberRemoved(ctx, targetUserID, t.Name); err != nil {
			e.logger.Warn().Err(err).Str("team_id", t.ID).Str("user_id", targetUserID).Msg("failed to notify removed member")
		}
	}
	return nil
}

// DeleteTeam removes a team and, through the schema's cascades, its members
// and invitations. Owner only.
func (e *Engine) DeleteTeam(ctx context.Context, actor authz.Principal, teamID string) error {
	t, err := e.teams.GetTeamByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errors.WithMessage(ErrNotFound, "team")
		}
		return persistenceErr(err, "find team")
	}

	if !CanDeleteTeam(t, actor) {
		return errors.WithMessage(ErrForbidden, "only the owner may delete the team")
	}

	members, err := e.members.ListMembersByTeam(ctx, t.ID)
	if err != nil {
		return persistenceErr(err, "list members")
	}

	if err := e.teams.DeleteTeam(ctx, t.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errors.WithMessage(ErrNotFound, "team")
		}
		return persistenceErr(err, "delete team")
	}

	for _, member := range members {
		if err := e.notifications.NotifyTeamDeleted(ctx, member.UserID, t.Name); err != nil {
			e.logger.Warn().Err(err).Str("team_id", t.ID).Str("user_id", member.UserID).Msg("failed to notify member of team deletion")
		}
	}
	return nil
}

func (e *Engine) actorMembership(ctx context.Context, teamID, userID string) (*models.TeamMember, error) {
	member, err := e.members.GetMember(ctx, teamID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, persistenceErr(err, "find actor membership")
	}
	return &member, nil
}

func generateInviteToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashInviteToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
