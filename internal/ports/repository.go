package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/jsamuelsen11/todo-service/internal/domain/todo"
)

// TodoRepository defines the storage port for the todos table.
// Implemented by the PostgreSQL adapter; called by the application layer.
// Failures other than absence are returned as wrapped store errors.
type TodoRepository interface {
	// Insert stores a new todo with completed=false and both timestamps set to
	// the insertion time, returning the full persisted row.
	Insert(ctx context.Context, title string, description *string) (*todo.Todo, error)

	// ListAll returns every todo ordered by creation time, newest first.
	// An empty table yields an empty, non-nil slice.
	ListAll(ctx context.Context) ([]todo.Todo, error)

	// FindByID returns a single todo.
	// Returns *domain.NotFoundError if no row matches.
	FindByID(ctx context.Context, id uuid.UUID) (*todo.Todo, error)

	// Update rewrites the mutable fields and refreshes updated_at.
	// Returns *domain.NotFoundError if no row matches.
	Update(ctx context.Context, id uuid.UUID, title string, description *string, completed bool) (*todo.Todo, error)

	// Delete removes the row and reports the number of rows affected.
	// Zero rows is not an error.
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}
