package domain

import (
	"errors"
	"fmt"
)

// Error kinds shared by every module. Handlers map them to HTTP statuses in
// response.FromError, so services should wrap rather than invent new kinds.
var (
	ErrValidation        = errors.New("validation failed")
	ErrUnauthenticated   = errors.New("authentication required")
	ErrPermission        = errors.New("permission denied")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrConflict          = errors.New("already exists")
	ErrStore             = errors.New("store unavailable")
	ErrUpload            = errors.New("upload failed")
	ErrLimitReached      = errors.New("plan limit reached")
)

// ValidationError names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// UploadError is returned when an object could not be accepted or stored.
// TooLarge and BadType let the HTTP layer answer 413 / 415.
type UploadError struct {
	Reason   string
	TooLarge bool
	BadType  bool
	Err      error
}

func (e *UploadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *UploadError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrUpload, e.Err}
	}
	return []error{ErrUpload}
}

// TransitionError reports a lifecycle action attempted from a state that
// does not allow it.
type TransitionError struct {
	Action string
	From   ListingStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s a listing in status %q", e.Action, e.From)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// LimitError carries the plan context for the client.
type LimitError struct {
	Resource string
	Current  int
	Limit    int
	PlanName string
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s limit reached for plan %q (%d/%d)", e.Resource, e.PlanName, e.Current, e.Limit)
}

func (e *LimitError) Unwrap() error { return ErrLimitReached }

// StoreError wraps a driver failure.
func StoreError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStore, err)
}
