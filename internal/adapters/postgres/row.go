package postgres

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jsamuelsen11/todo-service/internal/domain/todo"
)

// todoColumns is the projection shared by every statement that returns rows.
const todoColumns = `id, title, description, completed, created_at, updated_at`

// todoRow is the storage representation of a row in the todos table.
type todoRow struct {
	ID          uuid.UUID
	Title       string
	Description *string
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// scanTodo reads one todoColumns row.
func scanTodo(row pgx.Row) (todoRow, error) {
	var r todoRow
	err := row.Scan(&r.ID, &r.Title, &r.Description, &r.Completed, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

// toDomain translates a row into the domain entity. Timestamps are normalized
// to UTC.
func (r todoRow) toDomain() todo.Todo {
	return todo.Todo{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}
