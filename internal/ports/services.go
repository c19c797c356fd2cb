package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/jsamuelsen11/todo-service/internal/domain/todo"
)

// TodoService defines the service port for todo operations.
// Implemented by the application layer; called by inbound adapters (handlers).
type TodoService interface {
	// CreateTodo validates the draft and stores a new todo.
	// Returns domain.ErrValidation if the draft fails validation.
	CreateTodo(ctx context.Context, draft todo.Draft) (*todo.Todo, error)

	// ListTodos returns all todos, newest first.
	ListTodos(ctx context.Context) ([]todo.Todo, error)

	// GetTodo returns a single todo by ID.
	// Returns domain.ErrNotFound if the todo does not exist.
	GetTodo(ctx context.Context, id uuid.UUID) (*todo.Todo, error)

	// UpdateTodo merges the patch onto the stored todo and writes it back.
	// Returns domain.ErrNotFound if the todo does not exist and
	// domain.ErrValidation if the patch fails validation.
	UpdateTodo(ctx context.Context, id uuid.UUID, patch todo.Patch) (*todo.Todo, error)

	// DeleteTodo removes a todo.
	// Returns domain.ErrNotFound if the todo does not exist.
	DeleteTodo(ctx context.Context, id uuid.UUID) error
}
