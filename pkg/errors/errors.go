package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies an application error.
type Kind string

// Error kinds
const (
	KindValidation         Kind = "VALIDATION"
	KindSelfBooking        Kind = "SELF_BOOKING"
	KindNotAProvider       Kind = "NOT_A_PROVIDER"
	KindPastDate           Kind = "PAST_DATE"
	KindSlotUnavailable    Kind = "SLOT_UNAVAILABLE"
	KindPermission         Kind = "PERMISSION"
	KindCancellationWindow Kind = "CANCELLATION_WINDOW"
	KindNotFound           Kind = "NOT_FOUND"
	KindUnauthorized       Kind = "UNAUTHORIZED"
	KindInfrastructure     Kind = "INFRASTRUCTURE"
)

// AppError represents an application error
type AppError struct {
	Kind    Kind   `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
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

// New creates an AppError of the given kind.
func New(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

// Wrap creates an AppError of the given kind around a cause.
func Wrap(kind Kind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

// Error constructors
func Validation(message string) *AppError {
	return New(KindValidation, message)
}

func SelfBooking() *AppError {
	return New(KindSelfBooking, "you cannot book an appointment with yourself")
}

func NotAProvider(message string) *AppError {
	return New(KindNotAProvider, message)
}

func PastDate() *AppError {
	return New(KindPastDate, "past dates are not permitted")
}

func SlotUnavailable() *AppError {
	return New(KindSlotUnavailable, "appointment date is not available")
}

func Permission(message string) *AppError {
	return New(KindPermission, message)
}

func CancellationWindow(hours int) *AppError {
	return New(KindCancellationWindow, fmt.Sprintf("appointments can only be cancelled at least %d hours in advance", hours))
}

func NotFound(resource string) *AppError {
	return New(KindNotFound, fmt.Sprintf("%s not found", resource))
}

func Unauthorized(message string) *AppError {
	return New(KindUnauthorized, message)
}

func Infrastructure(message string, err error) *AppError {
	return Wrap(KindInfrastructure, message, err)
}

// KindOf returns the kind of the first AppError in err's chain, or
// KindInfrastructure for foreign errors.
func KindOf(err error) Kind {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInfrastructure
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
