package spyder

import (
	"errors"
	"fmt"
)

// Application error codes.
const (
	ECONFIG     = "config"
	EFETCH      = "fetch"
	EINTERNAL   = "internal"
	EINVALID    = "invalid"
	EMODEL      = "model_unavailable"
	ENOTFOUND   = "not_found"
	ESTORE      = "store"
	EUNREADABLE = "unreadable"
)

// Error represents an application-specific error. Errors carrying a code
// are safe to show to the end user; Err holds the underlying cause, if any.
type Error struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("spyder error: code=%s message=%s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("spyder error: code=%s message=%s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf is a helper function to return an Error with a given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapError returns an Error with the given code that wraps err.
func WrapError(code string, err error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		if e.Err != nil {
			return e.Message + ": " + e.Err.Error()
		}
		return e.Message
	}
	return "Internal error."
}

// IsRecoverable reports whether err is a per-document failure that should be
// logged and skipped rather than abort an ingestion run.
func IsRecoverable(err error) bool {
	switch ErrorCode(err) {
	case EUNREADABLE, EFETCH:
		return true
	}
	return false
}
