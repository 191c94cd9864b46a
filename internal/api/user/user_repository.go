package user

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

var _ UserRepo = (*PostgresUserRepo)(nil)

type UserRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*types.User, error)
}

type PostgresUserRepo struct {
	logger *slog.Logger
	pgpool database.Querier
}

func NewPostgresUserRepo(pgpool database.Querier, logger *slog.Logger) *PostgresUserRepo {
	return &PostgresUserRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*types.User, error) {
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
