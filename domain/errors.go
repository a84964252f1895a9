package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeInvalid            ErrorCode = "INVALID"
	ErrCodeInvalidQuery       ErrorCode = "INVALID_QUERY"
	ErrCodeUnauthenticated    ErrorCode = "UNAUTHENTICATED"
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeEmailTaken         ErrorCode = "EMAIL_ALREADY_REGISTERED"
	ErrCodeUserNotFound       ErrorCode = "USER_NOT_FOUND"
	ErrCodeTaskNotFound       ErrorCode = "TASK_NOT_FOUND"
	ErrCodeDecryption         ErrorCode = "DECRYPTION_FAILED"
	ErrCodeUnavailable        ErrorCode = "STORE_UNAVAILABLE"
	ErrCodeInternal           ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches any domain error carrying the same code, so wrapped variants
// compare equal to the sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Invalid builds a validation error with a caller-facing message.
func Invalid(message string) *Error {
	return NewError(ErrCodeInvalid, message)
}

// Unavailable classifies an infrastructure failure. The cause is kept for logs only.
func Unavailable(err error) *Error {
	return WrapError(ErrCodeUnavailable, "storage unavailable", err)
}

// Common domain errors.
var (
	ErrValidation         = NewError(ErrCodeInvalid, "invalid payload")
	ErrInvalidQuery       = NewError(ErrCodeInvalidQuery, "search query is required")
	ErrUnauthenticated    = NewError(ErrCodeUnauthenticated, "not authenticated")
	ErrInvalidCredentials = NewError(ErrCodeInvalidCredentials, "invalid email or password")
	ErrEmailTaken         = NewError(ErrCodeEmailTaken, "email already registered")
	ErrUserNotFound       = NewError(ErrCodeUserNotFound, "user not found")
	ErrTaskNotFound       = NewError(ErrCodeTaskNotFound, "task not found")
	ErrDecryptionFailed   = NewError(ErrCodeDecryption, "decryption failed")
	ErrStoreUnavailable   = NewError(ErrCodeUnavailable, "storage unavailable")
	ErrInternal           = NewError(ErrCodeInternal, "internal error")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// CodeOf returns the classification of err, INTERNAL for anything unclassified.
func CodeOf(err error) ErrorCode {
	var dErr *Error
	if errors.As(err, &dErr) && dErr != nil {
		return dErr.Code
	}
	return ErrCodeInternal
}

// PublicMessage returns the stable message safe to hand to callers.
func PublicMessage(err error) string {
	var dErr *Error
	if errors.As(err, &dErr) && dErr != nil && dErr.Code != ErrCodeInternal {
		return dErr.Message
	}
	return ErrInternal.Message
}
