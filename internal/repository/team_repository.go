package repository

import (
	"context"
	"database/sql"

	"github.com/teamboard/teamboard-api/internal/models"
)

type TeamRepository interface {
	CreateTeam(ctx context.Context, name, description, ownerID string) (models.Team, error)
	GetTeamByID(ctx context.Context, id string) (models.Team, error)
	ListTeamsByUser(ctx context.Context, userID string) ([]models.Team, error)
	// DeleteTeam removes the team; members and invitations go with it via
	// ON DELETE CASCADE.
	DeleteTeam(ctx context.Context, id string) error
}

type teamRepository struct {
	db *sql.DB
}

func NewTeamRepository(db *sql.DB) TeamRepository {
	return &teamRepository{db: db}
}

func (r *teamRepository) CreateTeam(ctx context.Context, name, description, ownerID string) (models.Team, error) {
	const query = `
		INSERT INTO teams (name, description, owner_id)
		VALUES ($1, $2, $3)
		RETURNING id, name, description, owner_id, created_at, updated_at;
	`
	var team models.Team
	err := getConn(ctx, r.db).QueryRowContext(ctx, query, name, description, ownerID).Scan(
		&team.ID, &team.Name, &team.Description, &team.OwnerID, &team.CreatedAt, &team.UpdatedAt,
	)
	return team, err
}

func (r *teamRepository) GetTeamByID(ctx context.Context, id string) (models.Team, error) {
	const query = `
		SELECT id, name, description, owner_id, created_at, updated_at
		FROM teams
		WHERE id = $1;
	`
	var team models.Team
	err := getConn(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&team.ID, &team.Name, &team.Description, &team.OwnerID, &team.CreatedAt, &team.UpdatedAt,
	)
	return team, err
}

func (r *teamRepository) ListTeamsByUser(ctx context.Context, userID string) ([]models.Team, error) {
	const query = `
		SELECT DISTINCT t.id, t.name, t.description, t.owner_id, t.created_at, t.updated_at
		FROM teams t
		LEFT JOIN team_members m ON m.team_id = t.id
		WHERE t.owner_id = $1 OR m.user_id = $1
		ORDER BY t.created_at DESC;
	`

	rows, err := getConn(ctx, r.db).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []models.Team
	for rows.Next() {
		var team models.Team
		if err := rows.Scan(&team.ID, &team.Name, &team.Description, &team.OwnerID, &team.CreatedAt, &team.UpdatedAt); err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *teamRepository) DeleteTeam(ctx context.Context, id string) error {
	const query = `DELETE FROM teams WHERE id = $1;`

	result, err := getConn(ctx, r.db).ExecContext(ctx, query, id)
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
