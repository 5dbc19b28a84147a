package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/teamboard/teamboard-api/internal/models"
)

type InvitationRepository interface {
	CreateInvitation(ctx context.Context, inv models.TeamInvitation) (models.TeamInvitation, error)
	GetInvitationByID(ctx context.Context, id string) (models.TeamInvitation, error)
	// GetInvitationForUpdate locks the row for the duration of the enclosing
	// transaction. Must be called through TxRunner.
	GetInvitationForUpdate(ctx context.Context, id string) (models.TeamInvitation, error)
	GetPendingInvitation(ctx context.Context, teamID, email string, now time.Time) (models.TeamInvitation, error)
	SetInvitationStatus(ctx context.Context, id string, from, to models.InvitationStatus) (models.TeamInvitation, error)
	ListInvitationsByTeam(ctx context.Context, teamID string) ([]models.TeamInvitation, error)
	CountPendingInvitations(ctx context.Context, email string, now time.Time) (int, error)
}

type invitationRepository struct {
	db *sql.DB
}

func NewInvitationRepository(db *sql.DB) InvitationRepository {
	return &invitationRepository{db: db}
}

const invitationColumns = `id, team_id, inviter_id, invitee_email, role, token_hash, status, expires_at, created_at, updated_at`

func (r *invitationRepository) CreateInvitation(ctx context.Context, inv models.TeamInvitation) (models.TeamInvitation, error) {
	const query = `
		INSERT INTO team_invitations (team_id, inviter_id, invitee_email, role, token_hash, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + invitationColumns + `;
	`

	row := getConn(ctx, r.db).QueryRowContext(ctx, query,
		inv.TeamID,
		inv.InviterID,
		inv.InviteeEmail,
		inv.Role,
		inv.TokenHash,
		models.InvitationPending,
		inv.ExpiresAt,
	)
	return scanInvitation(row)
}

func (r *invitationRepository) GetInvitationByID(ctx context.Context, id string) (models.TeamInvitation, error) {
	const query = `
		SELECT ` + invitationColumns + `
		FROM team_invitations
		WHERE id = $1;
	`
	return scanInvitation(getConn(ctx, r.db).QueryRowContext(ctx, query, id))
}

func (r *invitationRepository) GetInvitationForUpdate(ctx context.Context, id string) (models.TeamInvitation, error) {
	const query = `
		SELECT ` + invitationColumns + `
		FROM team_invitations
		WHERE id = $1
		FOR UPDATE;
	`
	return scanInvitation(getConn(ctx, r.db).QueryRowContext(ctx, query, id))
}

func (r *invitationRepository) GetPendingInvitation(ctx context.Context, teamID, email string, now time.Time) (models.TeamInvitation, error) {
	const query = `
		SELECT ` + invitationColumns + `
		FROM team_invitations
		WHERE team_id = $1 AND invitee_email = $2 AND status = 'pending' AND expires_at > $3
		ORDER BY created_at DESC
		LIMIT 1;
	`
	return scanInvitation(getConn(ctx, r.db).QueryRowContext(ctx, query, teamID, email, now))
}

// SetInvitationStatus transitions an invitation from one stored status to
// another. Returns sql.ErrNoRows when the row is no longer in the expected
// state, which callers treat as a lost race.
func (r *invitationRepository) SetInvitationStatus(ctx context.Context, id string, from, to models.InvitationStatus) (models.TeamInvitation, error) {
	const query = `
		UPDATE team_invitations
		SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
		RETURNING ` + invitationColumns + `;
	`
	return scanInvitation(getConn(ctx, r.db).QueryRowContext(ctx, query, id, from, to))
}

func (r *invitationRepository) ListInvitationsByTeam(ctx context.Context, teamID string) ([]models.TeamInvitation, error) {
	const query = `
		SELECT ` + invitationColumns + `
		FROM team_invitations
		WHERE team_id = $1
		ORDER BY created_at DESC;
	`

	rows, err := getConn(ctx, r.db).QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invitations []models.TeamInvitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invitations = append(invitations, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return invitations, nil
}

func (r *invitationRepository) CountPendingInvitations(ctx context.Context, email string, now time.Time) (int, error) {
	const query = `
		SELECT COUNT(*)
		FROM team_invitations
		WHERE invitee_email = $1 AND status = 'pending' AND expires_at > $2;
	`
	var count int
	err := getConn(ctx, r.db).QueryRowContext(ctx, query, email, now).Scan(&count)
	return count, err
}

func scanInvitation(scanner interface {
	Scan(dest ...interface{}) error
}) (models.TeamInvitation, error) {
	var inv models.TeamInvitation
	if err := scanner.Scan(
		&inv.ID,
		&inv.TeamID,
		&inv.InviterID,
		&inv.InviteeEmail,
		&inv.Role,
		&inv.TokenHash,
		&inv.Status,
		&inv.ExpiresAt,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	); err != nil {
		return models.TeamInvitation{}, err
	}
	return inv, nil
}
