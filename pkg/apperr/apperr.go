// Package apperr is the error taxonomy shared by every service. Each kind
// carries a gRPC code so transports can map it without knowing the domain.
package apperr

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindNotFound
	KindConflict
	KindForbidden
	KindInvalidTransition
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindForbidden:
		return "forbidden"
	case KindInvalidTransition:
		return "invalid_transition"
	default:
		return "internal"
	}
}

func (k Kind) code() codes.Code {
	switch k {
	case KindValidation:
		return codes.InvalidArgument
	case KindAuth:
		return codes.Unauthenticated
	case KindNotFound:
		return codes.NotFound
	case KindConflict:
		return codes.Aborted
	case KindForbidden:
		return codes.PermissionDenied
	case KindInvalidTransition:
		return codes.FailedPrecondition
	default:
		return codes.Internal
	}
}

type Error struct {
	Kind    Kind
	Message string

	// Available is set on insufficient stock conflicts.
	Available *int
	VariantID string

	Err error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Kind == KindInternal {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on kind so callers can write errors.Is(err, apperr.ErrNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// GRPCStatus lets status.FromError and status.Code understand app errors.
// Internal errors never leak their cause.
func (e *Error) GRPCStatus() *status.Status {
	if e.Kind == KindInternal {
		return status.New(codes.Internal, "internal error")
	}
	return status.New(e.Kind.code(), e.Message)
}

// Kind-only sentinels for errors.Is.
var (
	ErrValidation        = &Error{Kind: KindValidation}
	ErrAuth              = &Error{Kind: KindAuth}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrConflict          = &Error{Kind: KindConflict}
	ErrForbidden         = &Error{Kind: KindForbidden}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition}
	ErrInternal          = &Error{Kind: KindInternal}
)

func Validation(msg string) error { return &Error{Kind: KindValidation, Message: msg} }

func Auth(msg string) error { return &Error{Kind: KindAuth, Message: msg} }

func NotFound(msg string) error { return &Error{Kind: KindNotFound, Message: msg} }

func Conflict(msg string) error { return &Error{Kind: KindConflict, Message: msg} }

func Forbidden(msg string) error { return &Error{Kind: KindForbidden, Message: msg} }

func InsufficientStock(variantID string, available int) error {
	return &Error{
		Kind:      KindConflict,
		Message:   "insufficient stock",
		Available: &available,
		VariantID: variantID,
	}
}

func InvalidTransition(from, to string) error {
	return &Error{
		Kind:    KindInvalidTransition,
		Message: fmt.Sprintf("invalid status transition %s -> %s", from, to),
	}
}

// Internal wraps a lower level failure. The message is safe to show; err is
// for logs only.
func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf reports the kind of err. Errors outside the taxonomy are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// ToStatus maps err onto a gRPC status error.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if e, ok := As(err); ok {
		return e.GRPCStatus().Err()
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return status.Error(codes.DeadlineExceeded, "request timed out")
	}
	return status.Error(codes.Internal, "internal error")
}
