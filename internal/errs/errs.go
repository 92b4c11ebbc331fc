// Package errs defines the business error taxonomy shared by services and
// handlers. Services return these sentinels (possibly wrapped); handlers map
// them to HTTP status codes and machine-readable error codes.
package errs

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound            = errors.New("resource not found")
	ErrValidation          = errors.New("validation failed")
	ErrNotCreator          = errors.New("caller is not the task creator")
	ErrAlreadyApplied      = errors.New("user already applied to this task")
	ErrSelfApplication     = errors.New("task creator cannot apply to own task")
	ErrTaskFull            = errors.New("task has reached its participant limit")
	ErrCapacityExceeded    = errors.New("accepted participant limit reached")
	ErrInvalidTransition   = errors.New("invalid participant status transition")
	ErrNotParticipant      = errors.New("user is not a participant of this task")
	ErrDuplicateSubmission = errors.New("submission already exists for this participant")
	ErrPaymentInitiation   = errors.New("payment initiation failed")
	ErrInternal            = errors.New("internal error")
)

// Code returns the machine-readable code carried in API error responses.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrValidation):
		return "VALIDATION_ERROR"
	case errors.Is(err, ErrNotCreator):
		return "NOT_CREATOR"
	case errors.Is(err, ErrAlreadyApplied):
		return "ALREADY_APPLIED"
	case errors.Is(err, ErrSelfApplication):
		return "SELF_APPLICATION"
	case errors.Is(err, ErrTaskFull):
		return "TASK_FULL"
	case errors.Is(err, ErrCapacityExceeded):
		return "CAPACITY_EXCEEDED"
	case errors.Is(err, ErrInvalidTransition):
		return "INVALID_TRANSITION"
	case errors.Is(err, ErrNotParticipant):
		return "NOT_PARTICIPANT"
	case errors.Is(err, ErrDuplicateSubmission):
		return "DUPLICATE_SUBMISSION"
	case errors.Is(err, ErrPaymentInitiation):
		return "PAYMENT_INITIATION_ERROR"
	default:
		return "INTERNAL_ERROR"
	}
}

// HTTPStatus maps a business error to the HTTP status returned to the caller.
// Unknown errors never leak internals: they map to 500.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNotCreator):
		return http.StatusForbidden
	case errors.Is(err, ErrDuplicateSubmission):
		return http.StatusConflict
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrAlreadyApplied),
		errors.Is(err, ErrSelfApplication),
		errors.Is(err, ErrTaskFull),
		errors.Is(err, ErrCapacityExceeded),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrNotParticipant):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
