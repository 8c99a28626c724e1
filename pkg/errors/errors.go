package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Violation describes a single rejected input field.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code       string      `json:"errorCode"`
	Message    string      `json:"message"`
	Status     int         `json:"-"`
	Violations []Violation `json:"violations,omitempty"`
	Err        error       `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target carries the same code, so clones and wraps of a
// predefined error still match it.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound     = New("RESOURCE_NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrUnauthorized = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrValidation   = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal     = New("INTERNAL_SERVER_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss    = New("CACHE_MISS", http.StatusNotFound, "cache miss")

	ErrNoticeNotFound       = New("NOTICE_NOT_FOUND", http.StatusNotFound, "notice not found")
	ErrNoticeCreationFailed = New("NOTICE_CREATION_FAILED", http.StatusInternalServerError, "failed to create notice")
	ErrNoticeUpdateFailed   = New("NOTICE_UPDATE_FAILED", http.StatusInternalServerError, "failed to update notice")
	ErrNoticeDeletionFailed = New("NOTICE_DELETION_FAILED", http.StatusInternalServerError, "failed to delete notice")

	ErrAttachmentEmpty            = New("ATTACHMENT_EMPTY", http.StatusBadRequest, "file must not be empty")
	ErrAttachmentInvalidExtension = New("ATTACHMENT_INVALID_EXTENSION", http.StatusBadRequest, "invalid file type")
	ErrAttachmentTooLarge         = New("ATTACHMENT_TOO_LARGE", http.StatusBadRequest, "file exceeds the maximum size")
	ErrAttachmentDirectory        = New("ATTACHMENT_DIRECTORY_FAILED", http.StatusInternalServerError, "failed to create attachment directory")
	ErrAttachmentWrite            = New("ATTACHMENT_WRITE_FAILED", http.StatusInternalServerError, "failed to save file")
)

// Validation builds a VALIDATION_ERROR carrying every violation. The message
// joins the individual violation messages.
func Validation(violations []Violation) *Error {
	clone := Clone(ErrValidation, "")
	clone.Violations = violations
	if len(violations) > 0 {
		msg := violations[0].Message
		for _, v := range violations[1:] {
			msg += ", " + v.Message
		}
		clone.Message = msg
	}
	return clone
}

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// CloneWrap returns a copy of err with a new message wrapping cause.
func CloneWrap(err *Error, cause error, message string) *Error {
	clone := Clone(err, message)
	if clone != nil {
		clone.Err = cause
	}
	return clone
}
