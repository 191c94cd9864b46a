package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	database "github.com/mfcoelho/go-todo-api/app/db"
	"github.com/mfcoelho/go-todo-api/internal/types"
)

var _ AuthRepo = (*PostgresAuthRepo)(nil)

// AuthRepo is the persistence surface the auth service depends on.
type AuthRepo interface {
	// GetUserByEmail returns types.ErrNotFound when no user has that email.
	// Email matching is exact and case-sensitive, as stored.
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*types.User, error)
	CreateUser(ctx context.Context, name, email, passwordHash string) (*types.User, error)
}

type PostgresAuthRepo struct {
	logger *slog.Logger
	pgpool database.Querier
}

func NewPostgresAuthRepo(pgpool database.Querier, logger *slog.Logger) *PostgresAuthRepo {
	return &PostgresAuthRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresAuthRepo) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	var user types.User
	err := r.pgpool.QueryRow(ctx,
		"SELECT id, name, email, password_hash, created_at, updated_at FROM users WHERE email = $1",
		email).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query user by email: %w", err)
	}
	return &user, nil
}

func (r *PostgresAuthRepo) GetUserByID(ctx context.Context, id uuid.UUID) (*types.User, error) {
	var user types.User
	err := r.pgpool.QueryRow(ctx,
		"SELECT id, name, email, password_hash, created_at, updated_at FROM users WHERE id = $1",
		id).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query user by id: %w", err)
	}
	return &user, nil
}

func (r *PostgresAuthRepo) CreateUser(ctx context.Context, name, email, passwordHash string) (*types.User, error) {
	var user types.User
	err := r.pgpool.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, name, email, password_hash, created_at, updated_at`,
		name, email, passwordHash).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}
