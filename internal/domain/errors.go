package domain

import "errors"

// Error taxonomy shared by services and handlers. Services wrap or return
// these sentinels; handlers map them to HTTP status codes. Anything not in
// this list surfaces as an internal error with the cause logged server-side.
var (
	ErrValidation        = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrConflict          = errors.New("conflict")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrInvalidPricing    = errors.New("invalid pricing configuration")
)

// Refinements of ErrConflict so callers can still match the broad class
// with errors.Is(err, ErrConflict).
var (
	ErrRoomUnavailable  = Conflict("room is not available for the requested period")
	ErrPaymentInFlight  = Conflict("booking already has a payment in flight")
	ErrDuplicateBooking = Conflict("duplicate booking code")
)

type conflictError struct{ msg string }

func (e *conflictError) Error() string { return e.msg }

func (e *conflictError) Is(target error) bool { return target == ErrConflict }

// Conflict builds a conflict error with a specific message that still
// satisfies errors.Is(err, ErrConflict).
func Conflict(msg string) error { return &conflictError{msg: msg} }
