package survey

import (
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
)

// Form state failures blocking a submission.
var (
	ErrFormInactive = errors.New("form is inactive")
	ErrFormExpired  = errors.New("form has expired")
)

// NotFoundError means the id did not resolve to an entity.
type NotFoundError struct {
	Entity string
	ID     uuid.UUID
}

func (e NotFoundError) Error() string {
	return e.Entity + " not found"
}

// ForbiddenError means the actor is not the creator of the form owning the
// targeted entity.
type ForbiddenError struct {
	Entity string
}

func (e ForbiddenError) Error() string {
	return "you do not have permission to modify this " + e.Entity
}

type ValidationError struct {
	Reason string
}

func (e ValidationError) Error() string {
	return e.Reason
}

// DisplayOrderConflictError means the requested display order is already held
// by another active sibling under the same parent.
type DisplayOrderConflictError struct {
	Entity       string
	DisplayOrder int
}

func (e DisplayOrderConflictError) Error() string {
	return fmt.Sprintf("display order %d is already used by another active %s", e.DisplayOrder, e.Entity)
}

// RequiredAnswerError names the required question that was left blank.
type RequiredAnswerError struct {
	Question string
}

func (e RequiredAnswerError) Error() string {
	return fmt.Sprintf("question %q is required", e.Question)
}

// ConflictError means a destructive operation is blocked by dependent data.
type ConflictError struct {
	Reason string
}

func (e ConflictError) Error() string {
	return e.Reason
}
