package usermanagement

import "errors"

// ErrorKind is the stable, machine-readable classification of an
// authentication failure. Clients branch on the kind (e.g. offering
// "resend code" only for expired_code), the message is for humans.
type ErrorKind string

const (
	ErrorKindValidation      ErrorKind = "validation"
	ErrorKindConflict        ErrorKind = "conflict"
	ErrorKindNotFound        ErrorKind = "not_found"
	ErrorKindInvalidCode     ErrorKind = "invalid_code"
	ErrorKindExpiredCode     ErrorKind = "expired_code"
	ErrorKindDelivery        ErrorKind = "delivery"
	ErrorKindOAuth           ErrorKind = "oauth"
	ErrorKindUnauthenticated ErrorKind = "unauthenticated"
	ErrorKindInternal        ErrorKind = "internal"
)

type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func WrapError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the error kind, defaulting to internal for errors that did
// not originate in this package.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrorKindInternal
}

// Errors returned by user store implementations. The store signals these so
// the flows can distinguish a missing account from an infrastructure failure.
var (
	ErrAccountExists   = NewError(ErrorKindConflict, "account already exists for this email")
	ErrAccountNotFound = NewError(ErrorKindNotFound, "account not found")
)
