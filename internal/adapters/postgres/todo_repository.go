// Package postgres implements the storage ports on top of the shared
// PostgreSQL pool. Every statement is parameterized.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jsamuelsen11/todo-service/internal/domain/todo"
	"github.com/jsamuelsen11/todo-service/internal/platform/postgres"
	"github.com/jsamuelsen11/todo-service/internal/ports"
)

// Compile-time interface check.
var _ ports.TodoRepository = (*TodoRepository)(nil)

const (
	insertTodoSQL = `INSERT INTO todos (id, title, description, completed, created_at, updated_at)
VALUES ($1, $2, $3, FALSE, NOW(), NOW())
RETURNING ` + todoColumns

	listTodosSQL = `SELECT ` + todoColumns + `
FROM todos
ORDER BY created_at DESC, id DESC`

	findTodoSQL = `SELECT ` + todoColumns + `
FROM todos
WHERE id = $1`

	// GREATEST keeps updated_at strictly increasing even when the clock
	// resolution would otherwise repeat the previous value.
	updateTodoSQL = `UPDATE todos
SET title = $2,
    description = $3,
    completed = $4,
    updated_at = GREATEST(NOW(), updated_at + INTERVAL '1 microsecond')
WHERE id = $1
RETURNING ` + todoColumns

	deleteTodoSQL = `DELETE FROM todos WHERE id = $1`
)

// runner is implemented by *postgres.DB.
type runner interface {
	Run(ctx context.Context, op string, fn func(ctx context.Context, q postgres.Querier) error) error
}

// TodoRepository is the Storage Gateway for the todos table. It implements
// [ports.TodoRepository]. Absence is reported as *domain.NotFoundError; all
// other failures are returned wrapped with the statement that failed.
type TodoRepository struct {
	db runner
}

// NewTodoRepository creates a repository over the shared pool.
func NewTodoRepository(db runner) *TodoRepository {
	return &TodoRepository{db: db}
}

// Insert stores a new todo with a fresh random id.
func (r *TodoRepository) Insert(ctx context.Context, title string, description *string) (*todo.Todo, error) {
	var row todoRow
	err := r.db.Run(ctx, "insert_todo", func(ctx context.Context, q postgres.Querier) error {
		var scanErr error
		row, scanErr = scanTodo(q.QueryRow(ctx, insertTodoSQL, uuid.New(), title, description))
		return scanErr
	})
	if err != nil {
		return nil, fmt.Errorf("inserting todo: %w", err)
	}

	t := row.toDomain()
	return &t, nil
}

// ListAll returns every todo, newest first.
func (r *TodoRepository) ListAll(ctx context.Context) ([]todo.Todo, error) {
	todos := make([]todo.Todo, 0)
	err := r.db.Run(ctx, "list_todos", func(ctx context.Context, q postgres.Querier) error {
		rows, err := q.Query(ctx, listTodosSQL)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			row, err := scanTodo(rows)
			if err != nil {
				return err
			}
			todos = append(todos, row.toDomain())
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("listing todos: %w", err)
	}

	return todos, nil
}

// FindByID returns the todo with the given id.
func (r *TodoRepository) FindByID(ctx context.Context, id uuid.UUID) (*todo.Todo, error) {
	var row todoRow
	err := r.db.Run(ctx, "select_todo", func(ctx context.Context, q postgres.Querier) error {
		var scanErr error
		row, scanErr = scanTodo(q.QueryRow(ctx, findTodoSQL, id))
		return scanErr
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, todo.NotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("selecting todo %s: %w", id, err)
	}

	t := row.toDomain()
	return &t, nil
}

// Update rewrites title, description and completed and refreshes updated_at.
func (r *TodoRepository) Update(ctx context.Context, id uuid.UUID, title string, description *string, completed bool) (*todo.Todo, error) {
	var row todoRow
	err := r.db.Run(ctx, "update_todo", func(ctx context.Context, q postgres.Querier) error {
		var scanErr error
		row, scanErr = scanTodo(q.QueryRow(ctx, updateTodoSQL, id, title, description, completed))
		return scanErr
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, todo.NotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("updating todo %s: %w", id, err)
	}

	t := row.toDomain()
	return &t, nil
}

// Delete removes the todo and reports how many rows were affected.
func (r *TodoRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	var affected int64
	err := r.db.Run(ctx, "delete_todo", func(ctx context.Context, q postgres.Querier) error {
		tag, err := q.Exec(ctx, deleteTodoSQL, id)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("deleting todo %s: %w", id, err)
	}

	return affected, nil
}
