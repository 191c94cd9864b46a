package types

import (
	"time"

	"github.com/google/uuid"
)

// Task is a single to-do item.
type Task struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateTaskParams carries the fields accepted by task creation.
type CreateTaskParams struct {
	Description string `json:"description"`
}

// UpdateTaskParams allows partial updates; nil means "leave unchanged".
type UpdateTaskParams struct {
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}
