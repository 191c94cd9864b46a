package task

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

var _ TaskRepo = (*PostgresTaskRepo)(nil)

// TaskRepo is the persistence surface for tasks. Lookup misses surface as
// types.ErrNotFound.
type TaskRepo interface {
	List(ctx context.Context) ([]types.Task, error)
	GetByID(ctx context.Context, id uuid.UUID) (*types.Task, error)
	Create(ctx context.Context, description string) (*types.Task, error)
	Update(ctx context.Context, id uuid.UUID, params types.UpdateTaskParams) (*types.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type PostgresTaskRepo struct {
	logger *slog.Logger
	pgpool database.Querier
}

func NewPostgresTaskRepo(pgpool database.Querier, logger *slog.Logger) *PostgresTaskRepo {
	return &PostgresTaskRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresTaskRepo) List(ctx context.Context) ([]types.Task, error) {
	rows, err := r.pgpool.Query(ctx,
		"SELECT id, description, completed, created_at, updated_at FROM tasks ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []types.Task{}
	for rows.Next() {
		var t types.Task
		if err := rows.Scan(&t.ID, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating tasks: %w", err)
	}
	return tasks, nil
}

func (r *PostgresTaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*types.Task, error) {
	var t types.Task
	err := r.pgpool.QueryRow(ctx,
		"SELECT id, description, completed, created_at, updated_at FROM tasks WHERE id = $1",
		id).Scan(&t.ID, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query task by id: %w", err)
	}
	return &t, nil
}

func (r *PostgresTaskRepo) Create(ctx context.Context, description string) (*types.Task, error) {
	var t types.Task
	err := r.pgpool.QueryRow(ctx,
		`INSERT INTO tasks (description, completed)
		 VALUES ($1, FALSE)
		 RETURNING id, description, completed, created_at, updated_at`,
		description).Scan(&t.ID, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return &t, nil
}

func (r *PostgresTaskRepo) Update(ctx context.Context, id uuid.UUID, params types.UpdateTaskParams) (*types.Task, error) {
	var t types.Task
	err := r.pgpool.QueryRow(ctx,
		`UPDATE tasks
		 SET description = COALESCE($2, description),
		     completed = COALESCE($3, completed),
		     updated_at = now()
		 WHERE id = $1
		 RETURNING id, description, completed, created_at, updated_at`,
		id, params.Description, params.Completed).Scan(&t.ID, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return &t, nil
}

func (r *PostgresTaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}
