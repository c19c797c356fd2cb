// Package app provides application services that orchestrate use cases by
// coordinating between domain logic and infrastructure through port interfaces.
package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jsamuelsen11/todo-service/internal/domain"
	"github.com/jsamuelsen11/todo-service/internal/domain/todo"
	"github.com/jsamuelsen11/todo-service/internal/ports"
)

// Compile-time check that TodoService implements ports.TodoService.
var _ ports.TodoService = (*TodoService)(nil)

// Storage actions used in StorageError messages ("Failed to <action>").
const (
	actionCreate = "create todo"
	actionList   = "fetch todos"
	actionGet    = "fetch todo"
	actionUpdate = "update todo"
	actionDelete = "delete todo"
)

// TodoService implements ports.TodoService on top of the TodoRepository port.
// It validates input, merges partial updates and turns store failures into
// *domain.StorageError. Absence and validation outcomes pass through unchanged.
type TodoService struct {
	repo   ports.TodoRepository
	logger *slog.Logger
}

// NewTodoService creates a TodoService.
func NewTodoService(repo ports.TodoRepository, logger *slog.Logger) *TodoService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &TodoService{
		repo:   repo,
		logger: logger,
	}
}

// CreateTodo validates the draft and inserts it. Nothing reaches the store
// when validation fails.
func (s *TodoService) CreateTodo(ctx context.Context, draft todo.Draft) (*todo.Todo, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	created, err := s.repo.Insert(ctx, draft.Title, draft.Description)
	if err != nil {
		return nil, s.storageFailure(ctx, "CreateTodo", actionCreate, uuid.Nil, err)
	}

	s.logger.InfoContext(ctx, "created todo", slog.String("todo_id", created.ID.String()))
	return created, nil
}

// ListTodos returns all todos, newest first.
func (s *TodoService) ListTodos(ctx context.Context) ([]todo.Todo, error) {
	todos, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, s.storageFailure(ctx, "ListTodos", actionList, uuid.Nil, err)
	}
	return todos, nil
}

// GetTodo returns a single todo.
func (s *TodoService) GetTodo(ctx context.Context, id uuid.UUID) (*todo.Todo, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, s.storageFailure(ctx, "GetTodo", actionGet, id, err)
	}
	return t, nil
}

// UpdateTodo fetches the current row, merges the patch onto it and writes the
// merged fields back with a fresh updated_at.
//
// The fetch and the write are separate statements, so concurrent updates to
// the same id race and the last write wins.
func (s *TodoService) UpdateTodo(ctx context.Context, id uuid.UUID, patch todo.Patch) (*todo.Todo, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, s.storageFailure(ctx, "UpdateTodo", actionGet, id, err)
	}

	merged := patch.Apply(*current)
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, merged.Title, merged.Description, merged.Completed)
	if err != nil {
		// Deleted between fetch and write.
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, s.storageFailure(ctx, "UpdateTodo", actionUpdate, id, err)
	}

	s.logger.InfoContext(ctx, "updated todo", slog.String("todo_id", id.String()))
	return updated, nil
}

// DeleteTodo removes a todo. Zero affected rows is reported as not found.
func (s *TodoService) DeleteTodo(ctx context.Context, id uuid.UUID) error {
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return s.storageFailure(ctx, "DeleteTodo", actionDelete, id, err)
	}
	if affected == 0 {
		return todo.NotFound(id)
	}

	s.logger.InfoContext(ctx, "deleted todo", slog.String("todo_id", id.String()))
	return nil
}

// storageFailure logs a store error and wraps it for the handler boundary.
func (s *TodoService) storageFailure(ctx context.Context, operation, action string, id uuid.UUID, err error) error {
	attrs := []any{slog.String("operation", operation)}
	if id != uuid.Nil {
		attrs = append(attrs, slog.String("todo_id", id.String()))
	}
	attrs = append(attrs, slog.Any("error", err))

	s.logger.ErrorContext(ctx, "failed to "+action, attrs...)

	return &domain.StorageError{Action: action, Err: err}
}
