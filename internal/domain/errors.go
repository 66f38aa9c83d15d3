package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies domain failures so callers can tell them apart
type ErrorKind string

const (
	KindInvalidInput      ErrorKind = "InvalidInput"
	KindInvalidTransition ErrorKind = "InvalidTransition"
	KindCapacityExceeded  ErrorKind = "CapacityExceeded"
	KindNotFound          ErrorKind = "NotFound"
	KindVersionConflict   ErrorKind = "VersionConflict"
)

// DomainError represents a domain error
type DomainError struct {
	Kind    ErrorKind
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches any DomainError of the same kind, so sentinels work with errors.Is
// regardless of the message carried by the concrete error.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrInvalidInput      = &DomainError{Kind: KindInvalidInput, Message: "invalid input"}
	ErrInvalidTransition = &DomainError{Kind: KindInvalidTransition, Message: "invalid state transition"}
	ErrCapacityExceeded  = &DomainError{Kind: KindCapacityExceeded, Message: "room capacity exceeded"}
	ErrNotFound          = &DomainError{Kind: KindNotFound, Message: "not found"}
	ErrVersionConflict   = &DomainError{Kind: KindVersionConflict, Message: "version conflict"}

	ErrContainerNotFound   = &DomainError{Kind: KindNotFound, Message: "container not found"}
	ErrReservationNotFound = &DomainError{Kind: KindNotFound, Message: "reservation not found"}
	ErrRoomNotFound        = &DomainError{Kind: KindNotFound, Message: "room not found"}
)

func NewInvalidInput(format string, args ...interface{}) error {
	return &DomainError{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

func NewInvalidTransition(format string, args ...interface{}) error {
	return &DomainError{Kind: KindInvalidTransition, Message: fmt.Sprintf(format, args...)}
}

func NewCapacityExceeded(format string, args ...interface{}) error {
	return &DomainError{Kind: KindCapacityExceeded, Message: fmt.Sprintf(format, args...)}
}

func NewNotFound(format string, args ...interface{}) error {
	return &DomainError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first DomainError in err's chain, or "" if there is none.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
