package core

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

// ErrDuplicateID is the cause of the error returned when inserting a record whose id is taken.
var ErrDuplicateID = errors.New("this id is already taken")

// NewDuplicateIDError reports a taken id as a validation error on the id field.
func NewDuplicateIDError() error {
	return NewValidationError(ErrDuplicateID, FieldError{Field: "id", Error: ErrDuplicateID.Error()})
}

// IsDuplicateID reports whether err was caused by a taken id.
func IsDuplicateID(err error) bool {
	vErr, ok := errors.Cause(err).(*ValidationError)
	return ok && vErr.Err == ErrDuplicateID
}

// CheckIDFree fails with a duplicate id error when a client supplied id already exists.
func CheckIDFree(ctx context.Context, id uuid.UUID, exists func(context.Context, uuid.UUID) (bool, error)) error {
	if id == uuid.Nil {
		return nil
	}
	found, err := exists(ctx, id)
	if err != nil {
		return errors.Wrap(err, "checking id availability")
	}
	if found {
		return NewDuplicateIDError()
	}
	return nil
}

// ArgumentError reports an invalid argument passed to a service, eg. a page number < 1.
type ArgumentError struct {
	msg string
}

func NewArgumentError(msg string) *ArgumentError {
	return &ArgumentError{msg}
}

func (err *ArgumentError) Error() string {
	return err.msg
}

// NotFoundError is returned when the requested Resource does not exist.
type NotFoundError struct {
	Resource string
}

func NewNotFoundError(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

func (err *NotFoundError) Error() string {
	return err.Resource + " not found"
}

// IsNotFound reports whether the cause of err is a *NotFoundError.
func IsNotFound(err error) bool {
	_, ok := errors.Cause(err).(*NotFoundError)
	return ok
}

// AuthorizationError is returned when the caller may not act on a resource.
type AuthorizationError struct {
	msg string
}

func NewAuthorizationError(msg string) *AuthorizationError {
	return &AuthorizationError{msg}
}

func (err *AuthorizationError) Error() string {
	return err.msg
}

func IsAuthorizationError(err error) bool {
	_, ok := errors.Cause(err).(*AuthorizationError)
	return ok
}

type shutdown struct {
	message string
}

// NewShutdownError reports a failure the process cannot recover from, like a closed database.
// The API server stops gracefully when one reaches its error handler.
func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
