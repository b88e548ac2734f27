package services

import (
	"fmt"
	"strings"

	"lamah/internal/models"
)

// PermissionError is returned when the caller's role does not allow an
// operation. Nothing has been written when it is returned.
type PermissionError struct {
	Action string
	Role   models.Role
}

func (e *PermissionError) Error() string {
	role := string(e.Role)
	if role == "" {
		role = "anonymous"
	}
	return fmt.Sprintf("permission denied: %s may not %s", role, e.Action)
}

func newPermissionError(caller *models.Caller, action string) *PermissionError {
	err := &PermissionError{Action: action}
	if caller != nil {
		err.Role = caller.Role
	}
	return err
}

// CategoryConflictError rejects a category operation before any write.
type CategoryConflictError struct {
	CategoryID string
	Reason     string
}

func (e *CategoryConflictError) Error() string {
	if e.CategoryID == "" {
		return "category conflict: " + e.Reason
	}
	return fmt.Sprintf("category conflict on %s: %s", e.CategoryID, e.Reason)
}

// StateError is returned for a moderation decision on a submission that is
// no longer pending.
type StateError struct {
	PendingID string
	Status    models.PendingStatus
}

func (e *StateError) Error() string {
	return fmt.Sprintf("pending question %s is already %s", e.PendingID, e.Status)
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// WriteError describes one failed chunk: the op indexes it covered and the
// store error, enough to retry by hand.
type WriteError struct {
	Chunk int
	Start int
	End   int
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("chunk %d (ops %d-%d): %v", e.Chunk, e.Start, e.End-1, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// OrphanMediaError reports uploaded media that could not be removed after
// the question it belonged to failed to write.
type OrphanMediaError struct {
	URLs []string
	Err  error
}

func (e *OrphanMediaError) Error() string {
	return fmt.Sprintf("orphaned media %s: %v", strings.Join(e.URLs, ", "), e.Err)
}

func (e *OrphanMediaError) Unwrap() error {
	return e.Err
}
