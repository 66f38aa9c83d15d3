package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"lactacare/internal/domain"
)

// StandardError represents a standardized error response
type StandardError struct {
	Code    string `json:"error"`   // Error code/type (e.g., "InvalidInput", "CapacityExceeded")
	Message string `json:"message"` // Human-readable error message
	Details string `json:"details"` // Additional details (field name, entity id, etc.)
}

// Error implements the error interface
func (e *StandardError) Error() string {
	return e.Message
}

// HTTPStatus returns the appropriate HTTP status code for the error
func (e *StandardError) HTTPStatus() int {
	switch e.Code {
	case "InvalidInput", "InvalidRequest", "ValidationError":
		return http.StatusBadRequest
	case "Unauthorized":
		return http.StatusUnauthorized
	case "NotFound":
		return http.StatusNotFound
	case "InvalidTransition", "CapacityExceeded", "VersionConflict":
		return http.StatusConflict
	case "TooManyRequests":
		return http.StatusTooManyRequests
	case "ServiceUnavailable":
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func NewStandardError(errorCode, message, details string) *StandardError {
	return &StandardError{
		Code:    errorCode,
		Message: message,
		Details: details,
	}
}

func NewInvalidRequest(message, details string) *StandardError {
	return NewStandardError("InvalidRequest", message, details)
}

func NewValidationError(message, field string) *StandardError {
	return NewStandardError("ValidationError", message, fmt.Sprintf("Field: %s", field))
}

func NewNotFound(resource, id string) *StandardError {
	return NewStandardError("NotFound", resource+" not found", fmt.Sprintf("ID: %s", id))
}

func NewUnauthorized(message, details string) *StandardError {
	return NewStandardError("Unauthorized", message, details)
}

func NewTooManyRequests(details string) *StandardError {
	return NewStandardError("TooManyRequests", "rate limit exceeded", details)
}

func NewServiceUnavailable(message string, err error) *StandardError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return NewStandardError("ServiceUnavailable", message, details)
}

func NewInternalError(message string, err error) *StandardError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return NewStandardError("InternalError", message, details)
}

// FromDomain translates a domain error, wrapped or not, into its HTTP form.
// Anything else becomes an InternalError.
func FromDomain(err error) *StandardError {
	var std *StandardError
	if stderrors.As(err, &std) {
		return std
	}

	var de *domain.DomainError
	if !stderrors.As(err, &de) {
		return NewInternalError("internal server error", err)
	}

	switch de.Kind {
	case domain.KindInvalidInput:
		return NewStandardError("InvalidInput", "invalid input", de.Message)
	case domain.KindInvalidTransition:
		return NewStandardError("InvalidTransition", "invalid state transition", de.Message)
	case domain.KindCapacityExceeded:
		return NewStandardError("CapacityExceeded", "room capacity exceeded", de.Message)
	case domain.KindNotFound:
		return NewStandardError("NotFound", "resource not found", de.Message)
	case domain.KindVersionConflict:
		return NewStandardError("VersionConflict", "concurrent modification, retry the request", de.Message)
	default:
		return NewInternalError("internal server error", err)
	}
}
