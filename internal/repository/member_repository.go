package repository

import (
	"context"
	"database/sql"

	"github.com/teamboard/teamboard-api/internal/models"
)

type MemberRepository interface {
	CreateMember(ctx context.Context, teamID, userID string, role models.TeamRole) (models.TeamMember, error)
	GetMember(ctx context.Context, teamID, userID string) (models.TeamMember, error)
	ListMembersByTeam(ctx context.Context, teamID string) ([]models.TeamMember, error)
	UpdateMemberRole(ctx context.Context, teamID, userID string, role models.TeamRole) (models.TeamMember, error)
	DeleteMember(ctx context.Context, teamID, userID string) error
}

type memberRepository struct {
	db *sql.DB
}

func NewMemberRepository(db *sql.DB) MemberRepository {
	return &memberRepository{db: db}
}

const memberColumns = `id, team_id, user_id, role, joined_at`

// CreateMember inserts the membership row. The unique constraint on
// (team_id, user_id) surfaces concurrent duplicate joins as a pq unique
// violation, which the lifecycle engine translates.
func (r *memberRepository) CreateMember(ctx context.Context, teamID, userID string, role models.TeamRole) (models.TeamMember, error) {
	const query = `
		INSERT INTO team_members (team_id, user_id, role)
		VALUES ($1, $2, $3)
		RETURNING ` + memberColumns + `;
	`
	return scanMember(getConn(ctx, r.db).QueryRowContext(ctx, query, teamID, userID, role))
}

func (r *memberRepository) GetMember(ctx context.Context, teamID, userID string) (models.TeamMember, error) {
	const query = `
		SELECT ` + memberColumns + `
		FROM team_members
		WHERE team_id = $1 AND user_id = $2;
	`
	return scanMember(getConn(ctx, r.db).QueryRowContext(ctx, query, teamID, userID))
}

func (r *memberRepository) ListMembersByTeam(ctx context.Context, teamID string) ([]models.TeamMember, error) {
	const query = `
		SELECT ` + memberColumns + `
		FROM team_members
		WHERE team_id = $1
		ORDER BY joined_at;
	`

	rows, err := getConn(ctx, r.db).QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.TeamMember
	for rows.Next() {
		var member models.TeamMember
		if err := rows.Scan(&member.ID, &member.TeamID, &member.UserID, &member.Role, &member.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return members, nil
}

func (r *memberRepository) UpdateMemberRole(ctx context.Context, teamID, userID string, role models.TeamRole) (models.TeamMember, error) {
	const query = `
		UPDATE team_members
		SET role = $3
		WHERE team_id = $1 AND user_id = $2
		RETURNING ` + memberColumns + `;
	`
	return scanMember(getConn(ctx, r.db).QueryRowContext(ctx, query, teamID, userID, role))
}

func (r *memberRepository) DeleteMember(ctx context.Context, teamID, userID string) error {
	const query = `DELETE FROM team_members WHERE team_id = $1 AND user_id = $2;`

	result, err := getConn(ctx, r.db).ExecContext(ctx, query, teamID, userID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func scanMember(row *sql.Row) (models.TeamMember, error) {
	var member models.TeamMember
	err := row.Scan(&member.ID, &member.TeamID, &member.UserID, &member.Role, &member.JoinedAt)
	if err != nil {
		return models.TeamMember{}, err
	}
	return member, nil
}
