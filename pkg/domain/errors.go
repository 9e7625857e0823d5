package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidFormat is returned when a birthdate can't be parsed as YYYY-MM-DD.
var ErrInvalidFormat = errors.New("invalid date format")

// ErrStorageUnavailable is returned by a snapshot substrate that can't be reached.
// The journey store reacts by degrading to memory for the rest of its life.
var ErrStorageUnavailable = errors.New("storage unavailable")

// ErrSnapshotNotFound is returned when no snapshot exists for a key.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// ErrInvalidTransition is returned when a trigger is not defined for the current phase.
var ErrInvalidTransition = errors.New("invalid transition")

// ErrStaleCompletion is returned when a completion signal carries an outdated token.
// The signal is ignored.
var ErrStaleCompletion = errors.New("stale completion signal")

// ErrControllerClosed is returned by every transition after Close.
var ErrControllerClosed = errors.New("controller closed")

// Wish guard failures.
var (
	ErrEmptyWish     = errors.New("wish is empty")
	ErrWishTooLong   = errors.New("wish is too long")
	ErrDuplicateWish = errors.New("wish already recorded")

	ErrInvalidWishText = errors.New("wish is not valid UTF-8 text")
)

// Gateway failures.
var (
	ErrUnreachable     = errors.New("lantern service unreachable")
	ErrRejected        = errors.New("lantern rejected")
	ErrUnauthorized    = errors.New("lantern service unauthorized")
	ErrLanternNotFound = errors.New("lantern not found")
	// ErrUnconfirmed means the service accepted the lantern but its reply
	// could not be read. The lantern exists; retrying would create another.
	ErrUnconfirmed = errors.New("lantern created but response unreadable")
)

// TransitionError describes a rejected trigger.
type TransitionError struct {
	From    Phase
	Locked  bool
	Trigger Trigger
}

func (e *TransitionError) Error() string {
	if e.Locked {
		return fmt.Sprintf("invalid transition: %s not allowed in %s (locked)", e.Trigger, e.From)
	}
	return fmt.Sprintf("invalid transition: %s not allowed in %s", e.Trigger, e.From)
}

// Unwrap allows errors.Is(err, ErrInvalidTransition).
func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// GatewayErrorKind classifies remote failures.
type GatewayErrorKind string

const (
	GatewayUnreachable  GatewayErrorKind = "unreachable"
	GatewayRejected     GatewayErrorKind = "rejected"
	GatewayUnauthorized GatewayErrorKind = "unauthorized"
	GatewayNotFound     GatewayErrorKind = "not_found"
	GatewayUnconfirmed  GatewayErrorKind = "unconfirmed"
)

// GatewayError is returned by lantern gateways.
type GatewayError struct {
	Kind   GatewayErrorKind
	Status int    // HTTP status, zero for transport failures
	Detail string // Remote explanation, if any
	Err    error  // Underlying cause, if any
}

func (e *GatewayError) Error() string {
	msg := fmt.Sprintf("lantern gateway: %s", e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is matches the sentinel for the error kind.
func (e *GatewayError) Is(target error) bool {
	switch e.Kind {
	case GatewayUnreachable:
		return target == ErrUnreachable
	case GatewayRejected:
		return target == ErrRejected
	case GatewayUnauthorized:
		return target == ErrUnauthorized
	case GatewayNotFound:
		return target == ErrLanternNotFound
	case GatewayUnconfirmed:
		return target == ErrUnconfirmed
	}
	return false
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
