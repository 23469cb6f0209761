// Package server provides the HTTP REST API of the Hirely job board.
package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/hirely/hirely/internal/hiring"
	"github.com/hirely/hirely/internal/storage"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrUnauthenticated indicates a protected route was reached without a
// usable identity, e.g. a valid token for a deleted account
type ErrUnauthenticated struct{}

func (e *ErrUnauthenticated) Error() string {
	return "Unauthorized"
}

// ErrUserNotFound indicates user was not found
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// ErrPasswordMismatch indicates current password is incorrect
type ErrPasswordMismatch struct{}

func (e *ErrPasswordMismatch) Error() string {
	return "current password is incorrect"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrNotFound indicates a missing job, company, application or notification
type ErrNotFound struct {
	Resource string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// ErrForbidden indicates the caller may not act on a resource
type ErrForbidden struct {
	Reason string
}

func (e *ErrForbidden) Error() string {
	if e.Reason == "" {
		return "forbidden"
	}
	return "forbidden: " + e.Reason
}

// ErrProfileIncomplete blocks posting and applying until the required
// profile fields are filled
type ErrProfileIncomplete struct {
	Missing []string
}

func (e *ErrProfileIncomplete) Error() string {
	return "profile incomplete: missing " + strings.Join(e.Missing, ", ")
}

// ErrInvalidTransition wraps a rejected application status change
type ErrInvalidTransition struct {
	From string
	To   string
	err  error
}

func (e *ErrInvalidTransition) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}

func (e *ErrInvalidTransition) Unwrap() error {
	return e.err
}

// newInvalidTransition converts a state machine error
func newInvalidTransition(err *hiring.TransitionError) *ErrInvalidTransition {
	return &ErrInvalidTransition{From: err.From, To: err.To, err: err}
}

// ErrAlreadyApplied indicates a second application to the same job
type ErrAlreadyApplied struct {
	JobID uuid.UUID
}

func (e *ErrAlreadyApplied) Error() string {
	return fmt.Sprintf("already applied to job %s", e.JobID)
}

// ErrJobClosed indicates the job no longer accepts applications
type ErrJobClosed struct {
	JobID uuid.UUID
}

func (e *ErrJobClosed) Error() string {
	return fmt.Sprintf("job %s is closed", e.JobID)
}

// ErrStorageUnavailable is returned by upload endpoints when no object
// store is configured
var ErrStorageUnavailable = errors.New("file storage is not configured")

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		emailExists    *ErrEmailAlreadyExists
		badCredentials *ErrInvalidCredentials
		unauthed       *ErrUnauthenticated
		mismatch       *ErrPasswordMismatch
		userNotFound   *ErrUserNotFound
		notFound       *ErrNotFound
		validation     *ErrValidation
		forbidden      *ErrForbidden
		incomplete     *ErrProfileIncomplete
		transition     *ErrInvalidTransition
		applied        *ErrAlreadyApplied
		closed         *ErrJobClosed
	)
	switch {
	case errors.As(err, &emailExists), errors.As(err, &applied):
		return http.StatusConflict
	case errors.As(err, &badCredentials), errors.As(err, &mismatch), errors.As(err, &unauthed):
		return http.StatusUnauthorized
	case errors.As(err, &userNotFound), errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &validation), errors.Is(err, storage.ErrInvalidUpload):
		return http.StatusBadRequest
	case errors.As(err, &forbidden):
		return http.StatusForbidden
	case errors.As(err, &incomplete), errors.As(err, &transition), errors.As(err, &closed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
