// Package apperrors defines the error taxonomy shared by every service in
// the mesh. Transport layers translate to and from it so callers never see
// raw storage or HTTP errors.
package apperrors

import (
	"errors"
	"fmt"
)

// Store-level sentinels, raised by the persistence layer and translated at
// the domain-service boundary.
var (
	ErrDuplicateKey   = errors.New("duplicate key violation")
	ErrOptimisticLock = errors.New("data has been updated earlier by another object")
)

// Kind classifies a domain error.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindInvalidInput
	KindBadRequest
	KindInternal
	KindEventProcessing
)

// Error is a domain error carrying a human-readable message. The message is
// passed through to API responses unchanged.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// NewNotFound reports a missing entity.
func NewNotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// NewInvalidInput reports a semantically invalid argument, such as a
// non-positive id.
func NewInvalidInput(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// NewBadRequest reports a malformed or conflicting request, such as a
// duplicate key.
func NewBadRequest(format string, args ...interface{}) *Error {
	return &Error{Kind: KindBadRequest, Message: fmt.Sprintf(format, args...)}
}

// NewInternal reports an unexpected upstream failure.
func NewInternal(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf(format, args...)}
}

// NewEventProcessing reports a malformed or unrecognized channel event.
func NewEventProcessing(format string, args ...interface{}) *Error {
	return &Error{Kind: KindEventProcessing, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the classification of err, or KindUnknown when err is not
// a domain error.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}
