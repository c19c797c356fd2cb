package dto

import (
	"bytes"
	"encoding/json"

	"github.com/jsamuelsen11/todo-service/internal/domain/todo"
)

// CreateTodoRequest represents the JSON body for creating a new todo.
type CreateTodoRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// ToDraft converts the request to a domain Draft.
func (r *CreateTodoRequest) ToDraft() todo.Draft {
	return todo.Draft{
		Title:       r.Title,
		Description: r.Description,
	}
}

// Validate checks that required fields are present.
// Returns a *domain.ValidationError if any checks fail.
func (r *CreateTodoRequest) Validate() error {
	draft := r.ToDraft()
	return draft.Validate()
}

// NullableString is a JSON string field that records whether the key was
// present in the payload. A present null yields Set with a nil Value.
type NullableString struct {
	Set   bool
	Value *string
}

// UnmarshalJSON is only invoked when the key is present, including for null.
func (n *NullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(data, []byte("null")) {
		n.Value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

// UpdateTodoRequest represents the JSON body for updating an existing todo.
// Absent fields leave the stored value unchanged. A null title or completed is
// treated as absent; a null description clears it.
type UpdateTodoRequest struct {
	Title       *string        `json:"title"`
	Description NullableString `json:"description"`
	Completed   *bool          `json:"completed"`
}

// ToPatch converts the request to a domain Patch.
func (r *UpdateTodoRequest) ToPatch() todo.Patch {
	return todo.Patch{
		Title: r.Title,
		Description: todo.DescriptionChange{
			Set:   r.Description.Set,
			Value: r.Description.Value,
		},
		Completed: r.Completed,
	}
}

// Validate checks that any provided fields have valid values.
// Returns a *domain.ValidationError if any checks fail.
func (r *UpdateTodoRequest) Validate() error {
	patch := r.ToPatch()
	return patch.Validate()
}
