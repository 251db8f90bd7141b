package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a core error.
type ErrorKind string

const (
	// KindValidation covers missing or malformed input.
	KindValidation ErrorKind = "VALIDATION"
	// KindAuth covers password verification failures.
	KindAuth ErrorKind = "AUTH"
	// KindPermission covers operations the current identity may not perform.
	KindPermission ErrorKind = "PERMISSION"
	// KindStorage covers persistence failures. The in-memory state has
	// already advanced when one of these is returned.
	KindStorage ErrorKind = "STORAGE"
	// KindNotFound covers references to members or items that do not exist.
	KindNotFound ErrorKind = "NOT_FOUND"
)

// Error is a classified core error.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind, so any
// validation error matches ErrValidation and so on.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Kind sentinels for use with errors.Is.
var (
	ErrValidation = &Error{Kind: KindValidation, Message: "invalid input"}
	ErrAuth       = &Error{Kind: KindAuth, Message: "incorrect password"}
	ErrPermission = &Error{Kind: KindPermission, Message: "not allowed"}
	ErrStorage    = &Error{Kind: KindStorage, Message: "storage failure"}
	ErrNotFound   = &Error{Kind: KindNotFound, Message: "not found"}
)

// NewValidationError returns a validation error with the given message.
func NewValidationError(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NewAuthError returns an authentication error with the given message.
func NewAuthError(format string, args ...any) error {
	return &Error{Kind: KindAuth, Message: fmt.Sprintf(format, args...)}
}

// NewPermissionError returns a permission error with the given message.
func NewPermissionError(format string, args ...any) error {
	return &Error{Kind: KindPermission, Message: fmt.Sprintf(format, args...)}
}

// NewNotFoundError returns a not-found error with the given message.
func NewNotFoundError(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// NewStorageError wraps a persistence failure.
func NewStorageError(err error, format string, args ...any) error {
	return &Error{Kind: KindStorage, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of err, or "" when err is not a core error.
func KindOf(err error) ErrorKind {
	for _, k := range []*Error{ErrValidation, ErrAuth, ErrPermission, ErrStorage, ErrNotFound} {
		if errors.Is(err, k) {
			return k.Kind
		}
	}
	return ""
}
