package app

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/jsamuelsen11/todo-service/internal/domain"
	"github.com/jsamuelsen11/todo-service/internal/domain/todo"
	"github.com/jsamuelsen11/todo-service/mocks"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool    { return &v }

var testID = uuid.MustParse("9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d")

func storedTodo() todo.Todo {
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return todo.Todo{
		ID:          testID,
		Title:       "buy milk",
		Description: strPtr("2 litres"),
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
}

// requireStorageError asserts err is a *domain.StorageError for action.
func requireStorageError(t *testing.T, err error, action string, cause error) {
	t.Helper()

	var serr *domain.StorageError
	if !errors.As(err, &serr) {
		t.Fatalf("error = %v (%T), want *domain.StorageError", err, err)
	}
	if serr.Action != action {
		t.Errorf("StorageError.Action = %q, want %q", serr.Action, action)
	}
	if !errors.Is(err, domain.ErrStorage) {
		t.Error("errors.Is(err, ErrStorage) = false")
	}
	if cause != nil && !errors.Is(err, cause) {
		t.Errorf("errors.Is(err, cause) = false, err = %v", err)
	}
}

// --- NewTodoService ---

func TestNewTodoService_NilLogger(t *testing.T) {
	t.Parallel()

	svc := NewTodoService(mocks.NewMockTodoRepository(t), nil)
	if svc.logger == nil {
		t.Fatal("NewTodoService(nil logger) should create a no-op logger, got nil")
	}
}

// --- CreateTodo ---

func TestTodoService_CreateTodo(t *testing.T) {
	t.Parallel()

	t.Run("inserts valid draft", func(t *testing.T) {
		t.Parallel()
		repo := mocks.NewMockTodoRepository(t)
		svc := NewTodoService(repo, discardLogger())

		want := storedTodo()
		repo.EXPECT().Insert(mock.Anything, "buy milk", mock.MatchedBy(func(d *string) bool {
			return d != nil && *d == "2 litres"
		})).Return(&want, nil)

		got, err := svc.CreateTodo(context.Background(), todo.Draft{Title: "buy milk", Description: strPtr("2 litres")})
		if err != nil {
			t.Fatalf("CreateTodo() error = %v, want nil", err)
		}
		if got.ID != want.ID {
			t.Errorf("CreateTodo().ID = %v, want %v", got.ID, want.ID)
		}
	})

	t.Run("validation failure never reaches the store", func(t *testing.T) {
		t.Parallel()
		repo := mocks.NewMockTodoRepository(t)
		svc := NewTodoService(repo, discardLogger())

		_, err := svc.CreateTodo(context.Background(), todo.Draft{Title: "  "})
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("CreateTodo() error = %v, want ErrValidation", err)
		}
		repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("store failure becomes StorageError", func(t *testing.T) {
		t.Parallel()
		repo := mocks.NewMockTodoRepository(t)
		svc := NewTodoService(repo, discardLogger())

		cause := errors.New("unique violation")
		repo.EXPECT().Insert(mock.Anything, "t", (*string)(nil)).Return(nil, cause)

		_, err := svc.CreateTodo(context.Background(), todo.Draft{Title: "t"})
		requireStorageError(t, err, "create todo", cause)
		if err.Error() != "Failed to create todo: unique violation" {
			t.Errorf("Error() = %q", err.Error())
		}
	})
}

// --- ListTodos ---

func TestTodoService_ListTodos(t *testing.T) {
	t.Parallel()

	t.Run("returns empty list", func(t *testing.T) {
		t.Parallel()
		repo := mocks.NewMockTodoRepository(t)
		svc := NewTodoService(repo, discardLogger())

		repo.EXPECT().ListAll(mock.Anything).Return([]todo.Todo{}, nil)

		got, err := svc.ListTodos(context.Background())
		if err != nil {
			t.Fatalf("ListTodos() error = %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("ListTodos() = %#v, want empty non-nil slice", got)
		}
	})

	t.Run("store failure becomes StorageError", func(t *testing.T) {
		t.Parallel()
		repo := mocks.NewMockTodoRepository(t)
		svc := NewTodoService(repo, discardLogger())

		repo.EXPECT().ListAll(mock.Anything).Return(nil, errors.New("timeout"))

		_, err := svc.ListTodos(context.Background())
		requireStorageError(t, err, "fetch todos", nil)
	})
}

// --- GetTodo ---

func TestTodoService_GetTodo(t *testing.T) {
	t.Parallel()

	t.Run("not found passes through", func(t *testing.T) {
		t.Parallel()
		repo := mocks.NewMockTodoRepository(t)
		svc := NewTodoService(repo, discardLogger())

		repo.EXPECT().FindByID(mock.Anything, testID).Return(nil, todo.NotFound(testID))

		_, err := svc.GetTodo(context.Background(), testID)
		var nf *domain.NotFoundError
		if !errors.As(err, &nf) {
			t.Fatalf("GetTodo() error = %v, want *domain.NotFoundError", err)
		}
		if errors.Is(err, domain.ErrStorage) {
			t.Error("not found must not be a storage error")
		}
	})

	t.Run("store failure becomes StorageError", func(t *testing.T) {
		t.Parallel()
		repo := mocks.NewMockTodoRepository(t)
		svc := NewTodoService(repo, discardLogger())

		repo.EXPECT().FindByID(mock.Anything, testID).Return(nil, errors.New("conn reset"))

		_, err := svc.GetTodo(context.Background(), testID)
		requireStorageError(t, err, "fetch todo", nil)
	})
}

// --- UpdateTodo ---

func TestTodoService_UpdateTodo(t *testing.T) {
	t.Parallel()

	t.Run("completed only keeps title and description", func(t *testing.T) {
		t.Parallel()
		repo := mocks.NewMockTodoRepository(t)
		svc := NewTodoService(repo, discardLogger())

		current := storedTodo()
		repo.EXPECT().FindByID(mock.Anything, testID).Return(&current, nil)
		repo.EXPECT().Update(mock.Anything, testID, "buy milk",
			mock.MatchedBy(func(d *string) bool { return d != nil && *d == "2 litres" }),
			true,
		).RunAndReturn(func(_ context.Context, id uuid.UUID, title string, desc *string, completed bool) (*todo.Todo, error) {
			out := current
			out.Title, out.Description, out.Completed = title, desc, completed
			out.UpdatedAt = current.UpdatedAt.Add(time.Millisecond)
			return &out, nil
		})

		got, err := svc.UpdateTodo(context.Background(), testID, todo.Patch{Completed: boolPtr(true)})
		if err != nil {
			t.Fatalf("UpdateTodo() error = %v", err)
		}
		if !got.Completed || got.Title != "buy milk" || got.Description == nil || *got.Description != "2 litres" {
			t.Errorf("UpdateTodo() = %+v", got)
		}
		if !got.UpdatedAt.After(current.UpdatedAt) {
			t.Error("UpdatedAt did not advance")
		}
	})

	t.Run("explicit null clears description", func(t *testing.T) {
		t.Parallel()
		repo := mocks.NewMockTodoRepository(t)
		svc := NewTodoService(repo, discardLogger())

		current := storedTodo()
		cleared := current
		cleared.Description = nil
		repo.EXPECT().FindByID(mock.Anything, testID).Return(&current, nil)
		repo.EXPECT().Update(mock.Anything, testID, "buy milk", (*string)(nil), false).Return(&cleared, nil)

		patch := todo.Patch{Description: todo.DescriptionChange{Set: true}}
		if _, err := svc.UpdateTodo(context.Background(), testID, patch); err != nil {
			t.Fatalf("UpdateTodo() error = %v", err)
		}
	})

	t.Run("missing row is not found without a write", func(t *testing.T) {
		t.Parallel()
		repo := mocks.NewMockTodoRepository(t)
		svc := NewTodoService(repo, discardLogger())

		repo.EXPECT().FindByID(mock.Anything, testID).Return(nil, todo.NotFound(testID))

		_, err := svc.UpdateTodo(context.Background(), testID, todo.Patch{Completed: boolPtr(true)})
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("UpdateTodo() error = %v, want ErrNotFound", err)
		}
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("row deleted between fetch and write is not found", func(t *testing.T) {
		t.Parallel()
		repo := mocks.NewMockTodoRepository(t)
		svc := NewTodoService(repo, discardLogger())

		current := storedTodo()
		repo.EXPECT().FindByID(mock.Anything, testID).Return(&current, nil)
		repo.EXPECT().Update(mock.Anything, testID, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, todo.NotFound(testID))

		_, err := svc.UpdateTodo(context.Background(), testID, todo.Patch{})
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("UpdateTodo() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("empty title rejected before fetch", func(t *testing.T) {
		t.Parallel()
		repo := mocks.NewMockTodoRepository(t)
		svc := NewTodoService(repo, discardLogger())

		_, err := svc.UpdateTodo(context.Background(), testID, todo.Patch{Title: strPtr("")})
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("UpdateTodo() error = %v, want ErrValidation", err)
		}
	})

	t.Run("merged row with blank title is rejected without a write", func(t *testing.T) {
		t.Parallel()
		repo := mocks.NewMockTodoRepository(t)
		svc := NewTodoService(repo, discardLogger())

		current := storedTodo()
		current.Title = "   "
		repo.EXPECT().FindByID(mock.Anything, testID).Return(&current, nil)

		_, err := svc.UpdateTodo(context.Background(), testID, todo.Patch{Completed: boolPtr(true)})
		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("UpdateTodo() error = %v, want *domain.ValidationError", err)
		}
		if _, ok := verr.Fields["title"]; !ok {
			t.Errorf("ValidationError.Fields = %v, want a title entry", verr.Fields)
		}
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("fetch failure is reported as fetch", func(t *testing.T) {
		t.Parallel()
		repo := mocks.NewMockTodoRepository(t)
		svc := NewTodoService(repo, discardLogger())

		repo.EXPECT().FindByID(mock.Anything, testID).Return(nil, errors.New("conn reset"))

		_, err := svc.UpdateTodo(context.Background(), testID, todo.Patch{})
		requireStorageError(t, err, "fetch todo", nil)
	})

	t.Run("write failure is reported as update", func(t *testing.T) {
		t.Parallel()
		repo := mocks.NewMockTodoRepository(t)
		svc := NewTodoService(repo, discardLogger())

		current := storedTodo()
		cause := errors.New("check constraint")
		repo.EXPECT().FindByID(mock.Anything, testID).Return(&current, nil)
		repo.EXPECT().Update(mock.Anything, testID, mock.Anything, mock.Anything, mock.Anything).Return(nil, cause)

		_, err := svc.UpdateTodo(context.Background(), testID, todo.Patch{})
		requireStorageError(t, err, "update todo", cause)
	})
}

// --- DeleteTodo ---

func TestTodoService_DeleteTodo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		affected   int64
		repoErr    error
		wantErr    error
		wantAction string
	}{
		{name: "one row deleted", affected: 1},
		{name: "zero rows is not found", affected: 0, wantErr: domain.ErrNotFound},
		{name: "store failure", repoErr: errors.New("down"), wantErr: domain.ErrStorage, wantAction: "delete todo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			repo := mocks.NewMockTodoRepository(t)
			svc := NewTodoService(repo, discardLogger())

			repo.EXPECT().Delete(mock.Anything, testID).Return(tt.affected, tt.repoErr)

			err := svc.DeleteTodo(context.Background(), testID)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("DeleteTodo() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("DeleteTodo() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantAction != "" {
				requireStorageError(t, err, tt.wantAction, tt.repoErr)
			}
		})
	}
}
