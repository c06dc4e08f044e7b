package session

import "errors"

// Session package errors.
var (
	// ErrInvalidSessionID is returned when a session ID is invalid (0 is
	// reserved for the unsecured/clear-text "session").
	ErrInvalidSessionID = errors.New("session: invalid session ID")

	// ErrSessionNotFound is returned when a session lookup fails.
	ErrSessionNotFound = errors.New("session: session not found")

	// ErrSessionTableFull is returned when no more sessions can be allocated.
	ErrSessionTableFull = errors.New("session: session table full")

	// ErrSessionIDExhausted is returned when no more session IDs are
	// available (both 16-bit halves of the 32-bit session ID space in use).
	ErrSessionIDExhausted = errors.New("session: session ID space exhausted")

	// ErrDuplicateSession is returned when adding a session with an
	// already-occupied ID.
	ErrDuplicateSession = errors.New("session: duplicate session ID")

	// ErrSequenceExhausted is returned when a direction's sequence counter
	// has reached its maximum; the session must be rekeyed or terminated.
	ErrSequenceExhausted = errors.New("session: sequence counter exhausted")

	// ErrInvalidKeySize is returned when a derived key does not match the
	// negotiated AEAD algorithm's expected key size.
	ErrInvalidKeySize = errors.New("session: invalid key size")

	// ErrWrongState is returned when an operation is attempted in a state
	// that does not permit it (e.g. encrypting before Handshaking begins).
	ErrWrongState = errors.New("session: operation not valid in current state")
)
