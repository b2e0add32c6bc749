package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	ErrUnsupportedSystem     = errors.New("unsupported amortization system")
	ErrNoPendingInstallments = errors.New("no pending installments to restructure")
	ErrInvalidInput          = errors.New("invalid input")
	ErrPersistence           = errors.New("persistence error")
)

// BusinessError carries a machine-readable code next to a human message.
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeValidation            = "VALIDATION_ERROR"
	ErrCodeUnsupportedSystem     = "UNSUPPORTED_SYSTEM"
	ErrCodeNoPendingInstallments = "NO_PENDING_INSTALLMENTS"
	ErrCodePersistence           = "PERSISTENCE_ERROR"
)

// WrapValidation reports malformed creation/update input. Nothing is
// generated or persisted once one of these is raised.
func WrapValidation(field, reason string) *BusinessError {
	return NewBusinessError(
		ErrCodeValidation,
		fmt.Sprintf("invalid %s: %s", field, reason),
		ErrInvalidInput,
	)
}

// WrapUnsupportedSystem reports a schedule request for an amortization
// system the calculator does not implement. Never silently defaulted.
func WrapUnsupportedSystem(system string) *BusinessError {
	return NewBusinessError(
		ErrCodeUnsupportedSystem,
		fmt.Sprintf("unsupported amortization system %q", system),
		ErrUnsupportedSystem,
	)
}

// WrapNoPendingInstallments reports an extra amortization against a
// financing whose schedule is fully paid.
func WrapNoPendingInstallments(financingID string) *BusinessError {
	return NewBusinessError(
		ErrCodeNoPendingInstallments,
		fmt.Sprintf("financing %s has no pending installments to restructure", financingID),
		ErrNoPendingInstallments,
	)
}

// WrapPersistence reports a failed store round-trip. The in-memory mutation
// that preceded it is not rolled back.
func WrapPersistence(err error) *BusinessError {
	return NewBusinessError(
		ErrCodePersistence,
		"persistence operation failed",
		errors.Join(ErrPersistence, err),
	)
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsPersistence reports whether err is a store failure.
func IsPersistence(err error) bool {
	return errors.Is(err, ErrPersistence)
}
