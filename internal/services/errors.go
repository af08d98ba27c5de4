package services

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindAuthorization
	KindConflict
	KindNotFound
	KindDependency
)

// Error carries the failure taxonomy across the service boundary so the
// transport layer can map it onto the response envelope.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func NewAuthorizationError(message string) *Error {
	return &Error{Kind: KindAuthorization, Message: message}
}

func NewConflictError(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func NewNotFoundError(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func NewDependencyError(message string, err error) *Error {
	return &Error{Kind: KindDependency, Message: message, Err: err}
}

// KindOf extracts the taxonomy kind, or zero for untyped errors.
func KindOf(err error) ErrorKind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return 0
}

var (
	ErrChatNotFound    = NewNotFoundError("chat not found")
	ErrMessageNotFound = NewNotFoundError("message not found")
	ErrUserNotFound    = NewNotFoundError("user not found")
	ErrNotChatMember   = NewAuthorizationError("user is not a member of this chat")
)
