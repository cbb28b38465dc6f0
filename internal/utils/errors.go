// internal/utils/errors.go
package utils

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindInvalidRequest
	KindNotFound
	KindUnauthorized
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidRequest:
		return "INVALID_REQUEST"
	case KindNotFound:
		return "NOT_FOUND"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	default:
		return "INTERNAL_ERROR"
	}
}

// AppError carries the error kind the HTTP layer maps to a status code.
// Key is an i18n key; Message is the English fallback.
type AppError struct {
	Kind    ErrorKind
	Key     string
	Message string
	Details interface{}
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

func NewInvalidRequest(key, message string) *AppError {
	return &AppError{Kind: KindInvalidRequest, Key: key, Message: message}
}

func NewNotFound(key, message string) *AppError {
	return &AppError{Kind: KindNotFound, Key: key, Message: message}
}

func NewUnauthorized(key, message string, err error) *AppError {
	return &AppError{Kind: KindUnauthorized, Key: key, Message: message, Err: err}
}

func NewInternal(message string, err error) *AppError {
	return &AppError{Kind: KindInternal, Key: "error.internal", Message: message, Err: err}
}

// KindOf reports the kind of err; anything that is not an AppError is internal.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
