package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/teamboard/teamboard-api/internal/models"
	"golang.org/x/crypto/bcrypt"
)

type UserRepository interface {
	CreateUser(ctx context.Context, email, displayName, password string) (models.User, error)
	AuthenticateUser(ctx context.Context, email, password string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetUserByID(ctx context.Context, userID string) (models.User, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, display_name, password_hash, is_active, created_at`

func (u *userRepository) CreateUser(ctx context.Context, email, displayName, password string) (models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	displayName = strings.TrimSpace(displayName)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	const query = `
		INSERT INTO users (email, display_name, password_hash, is_active)
		VALUES ($1, $2, $3, TRUE)
		RETURNING ` + userColumns + `;
	`
	return scanUser(getConn(ctx, u.db).QueryRowContext(ctx, query, email, displayName, string(hash)))
}

func (u *userRepository) AuthenticateUser(ctx context.Context, email, password string) (models.User, error) {
	user, err := u.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, errors.New("invalid credentials")
		}
		return models.User{}, err
	}

	if !user.IsActive {
		return models.User{}, errors.New("user is inactive")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, errors.New("invalid credentials")
	}
	return user, nil
}

func (u *userRepository) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1;
	`
	return scanUser(getConn(ctx, u.db).QueryRowContext(ctx, query, strings.TrimSpace(strings.ToLower(email))))
}

func (u *userRepository) GetUserByID(ctx context.Context, userID string) (models.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1;
	`
	return scanUser(getConn(ctx, u.db).QueryRowContext(ctx, query, userID))
}

func scanUser(row *sql.Row) (models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.DisplayName,
		&user.PasswordHash,
		&user.IsActive,
		&user.CreatedAt,
	)
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}
