package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"barterhub/internal/models"
)

type Kind string

const (
	KindNotFound          Kind = "NOT_FOUND"
	KindForbidden         Kind = "FORBIDDEN"
	KindInvalidTransition Kind = "INVALID_STATE_TRANSITION"
	KindConflict          Kind = "CONFLICT"
	KindValidation        Kind = "VALIDATION_ERROR"
	KindInvalidOperation  Kind = "INVALID_OPERATION"
	KindInternal          Kind = "INTERNAL_ERROR"
)

// AppError is the error type every service returns to its callers.
type AppError struct {
	Kind    Kind                `json:"code"`
	Message string              `json:"message"`
	Status  models.BarterStatus `json:"status,omitempty"`
	Details interface{}         `json:"details,omitempty"`
	Err     error               `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

// HTTPStatus maps the error kind onto a response status code.
func (e *AppError) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindInvalidTransition, KindValidation, KindInvalidOperation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func NotFound(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

func Forbidden(message string) *AppError {
	return &AppError{Kind: KindForbidden, Message: message}
}

func Conflict(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message}
}

func Validation(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

func InvalidOperation(message string) *AppError {
	return &AppError{Kind: KindInvalidOperation, Message: message}
}

// InvalidTransition reports an action that the current status does not allow,
// e.g. "Cannot accept a rejected request".
func InvalidTransition(action string, current models.BarterStatus) *AppError {
	return &AppError{
		Kind:    KindInvalidTransition,
		Message: fmt.Sprintf("Cannot %s %s %s request", action, article(string(current)), current),
		Status:  current,
	}
}

// Internal wraps an unexpected failure. The message never carries the cause.
func Internal(err error) *AppError {
	return &AppError{Kind: KindInternal, Message: "Internal server error", Err: err}
}

func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns KindInternal for anything that is not an *AppError.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func article(word string) string {
	if word != "" && strings.ContainsRune("aeiou", rune(word[0])) {
		return "an"
	}
	return "a"
}
