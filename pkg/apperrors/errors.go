package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials is returned for any login mismatch
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUnauthorized is returned when a request carries no usable token
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError reports a missing or malformed input field
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

// Required builds the ValidationError for an empty required field
func Required(field string) *ValidationError {
	return &ValidationError{Field: field, Message: "is required"}
}

// NotFoundError reports an unknown record id
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// AlreadyAcceptedError reports a volunteer accepting the same emergency twice
type AlreadyAcceptedError struct {
	EmergencyID string
	Volunteer   string
}

func (e *AlreadyAcceptedError) Error() string {
	return fmt.Sprintf("%s has already accepted emergency %s", e.Volunteer, e.EmergencyID)
}

// NotAcceptedError reports a decline by a volunteer who never accepted
type NotAcceptedError struct {
	EmergencyID string
	Volunteer   string
}

func (e *NotAcceptedError) Error() string {
	return fmt.Sprintf("%s has not accepted emergency %s", e.Volunteer, e.EmergencyID)
}

// ConflictError reports a uniqueness violation such as a duplicate email
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// StorageError wraps a datastore failure. Its message never reaches clients.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Storage wraps err as a StorageError unless it already carries a domain error
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	var (
		nf *NotFoundError
		ve *ValidationError
		aa *AlreadyAcceptedError
		na *NotAcceptedError
		ce *ConflictError
		se *StorageError
	)
	if errors.As(err, &nf) || errors.As(err, &ve) || errors.As(err, &aa) ||
		errors.As(err, &na) || errors.As(err, &ce) || errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
