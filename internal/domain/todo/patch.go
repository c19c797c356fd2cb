package todo

import (
	"strings"

	"github.com/jsamuelsen11/todo-service/internal/domain"
)

// DescriptionChange is a tri-state update to the description field:
//
//	Set == false              leave the description unchanged
//	Set == true, Value == nil clear the description
//	Set == true, Value != nil overwrite with *Value
type DescriptionChange struct {
	Set   bool
	Value *string
}

// Patch is a partial update. Nil pointers leave the corresponding field of the
// stored row unchanged.
type Patch struct {
	Title       *string
	Description DescriptionChange
	Completed   *bool
}

// Validate checks that any provided fields have valid values.
func (p *Patch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return &domain.ValidationError{Fields: map[string]string{"title": domain.MsgMustNotEmpty}}
	}
	return nil
}

// Apply merges the patch onto current and returns the result. Identity and
// timestamps are carried over from current; the store refreshes UpdatedAt
// when the merged row is written back.
func (p *Patch) Apply(current Todo) Todo {
	merged := current
	if p.Title != nil {
		merged.Title = *p.Title
	}
	if p.Description.Set {
		merged.Description = cloneString(p.Description.Value)
	}
	if p.Completed != nil {
		merged.Completed = *p.Completed
	}
	return merged
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
