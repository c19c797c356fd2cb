// Package todo defines the Todo entity and the payload shapes used to create
// and change it.
package todo

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jsamuelsen11/todo-service/internal/domain"
)

// EntityName is the name used in not-found and storage error messages.
const EntityName = "Todo"

// Todo represents a titled, optionally described, completable task record.
// A nil Description means the todo has no description, which is distinct from
// an empty string.
type Todo struct {
	ID          uuid.UUID
	Title       string
	Description *string
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks a row about to be written back: the title must not be blank
// and updated_at must not precede created_at.
func (t *Todo) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(t.Title) == "" {
		fields["title"] = domain.MsgRequired
	}
	if !t.CreatedAt.IsZero() && t.UpdatedAt.Before(t.CreatedAt) {
		fields["updated_at"] = "must not be before created_at"
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// NotFound returns the absence outcome for the given id.
func NotFound(id uuid.UUID) *domain.NotFoundError {
	return &domain.NotFoundError{Entity: EntityName, ID: id.String()}
}

// Draft holds the caller-supplied fields of a todo that does not exist yet.
// Completed and both timestamps are assigned by the store.
type Draft struct {
	Title       string
	Description *string
}

// Validate requires a non-blank title.
func (d *Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return &domain.ValidationError{Fields: map[string]string{"title": domain.MsgRequired}}
	}
	return nil
}
