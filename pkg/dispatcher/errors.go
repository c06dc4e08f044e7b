package dispatcher

import "errors"

// Dispatcher-level sentinel errors. Handlers and the send/receive path
// wrap these with fmt.Errorf("%w: ...") for additional context; callers
// match against the sentinel with errors.Is.
var (
	ErrInvalidMsgField     = errors.New("dispatcher: invalid message field")
	ErrUnsupportedCap      = errors.New("dispatcher: capability not negotiated")
	ErrPeerReportedStatus  = errors.New("dispatcher: peer reported an ERROR status")
	ErrCrypto              = errors.New("dispatcher: cryptographic operation failed")
	ErrSessionLimitExceeded = errors.New("dispatcher: session table at capacity")
	ErrDecrypt             = errors.New("dispatcher: secured message decrypt failed")
	ErrTimeout             = errors.New("dispatcher: peer did not respond in time")
	ErrIO                  = errors.New("dispatcher: transport I/O failed")
	ErrNoRoute             = errors.New("dispatcher: no route for this (state, code) pair")
	ErrResponseTooLarge    = errors.New("dispatcher: encoded response exceeds sender buffer")
)
