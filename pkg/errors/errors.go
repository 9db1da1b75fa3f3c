package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
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
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid enrollment number or password")
	ErrInactiveAccount    = New("ACCOUNT_INACTIVE", http.StatusForbidden, "account is inactive")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
)

// Lifecycle rejection codes. The lifecycle services report these as outcome
// values rather than raised errors; handlers map them back through ByCode.
var (
	ErrNotRegistered       = New("NOT_REGISTERED", http.StatusNotFound, "no registration found for this event")
	ErrPrerequisiteMissing = New("PREREQUISITE_MISSING", http.StatusPreconditionFailed, "required lifecycle step missing")
	ErrAlreadyCompleted    = New("ALREADY_COMPLETED", http.StatusConflict, "step already completed")
	ErrPhaseClosed         = New("PHASE_CLOSED", http.StatusConflict, "operation not allowed in current event phase")
	ErrCapacityViolation   = New("CAPACITY_VIOLATION", http.StatusUnprocessableEntity, "capacity limit violated")
	ErrStoreUnavailable    = New("STORE_UNAVAILABLE", http.StatusServiceUnavailable, "data store unavailable")
)

var byCode = map[string]*Error{}

func init() {
	for _, e := range []*Error{
		ErrInvalidCredentials, ErrInactiveAccount, ErrNotFound, ErrForbidden,
		ErrUnauthorized, ErrConflict, ErrValidation, ErrInternal,
		ErrNotRegistered, ErrPrerequisiteMissing, ErrAlreadyCompleted,
		ErrPhaseClosed, ErrCapacityViolation, ErrStoreUnavailable,
	} {
		byCode[e.Code] = e
	}
}

// ByCode resolves a predefined error by its code, with an optional message
// override. Unknown codes map to ErrInternal.
func ByCode(code, message string) *Error {
	base, ok := byCode[code]
	if !ok {
		base = ErrInternal
	}
	return Clone(base, message)
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
