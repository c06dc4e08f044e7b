package session

import (
	"sync"

	"github.com/openspdm/responder-core/pkg/crypto"
	"github.com/openspdm/responder-core/pkg/protocol"
)

// DirectionKeys holds the AEAD key/IV material and sequence counter for one
// traffic direction of an established or handshaking session.
type DirectionKeys struct {
	Key        []byte
	IV         []byte
	SequenceNo uint64
}

// EncapState tracks an in-progress GET_ENCAPSULATED_REQUEST /
// DELIVER_ENCAPSULATED_RESPONSE sub-protocol run for mutual authentication.
type EncapState struct {
	Active       bool
	NextRequestID uint8
	PendingCode  protocol.RequestResponseCode
}

// Session holds all per-session state for one SPDM secure session: its
// lifecycle State, handshake/data AEAD keys and sequence counters in both
// directions, transcript hash accumulators, and the bookkeeping needed for
// heartbeat, key update, and the encapsulated-request sub-protocol.
//
// Session is safe for concurrent use; every accessor and mutator takes the
// internal mutex, mirroring the teacher's SecureContext.
type Session struct {
	mu sync.RWMutex

	id    uint32 // full 32-bit session ID: low 16 bits requester, high 16 bits responder
	sType Type
	state State

	transcript *Transcript

	requestDirection  DirectionKeys
	responseDirection DirectionKeys

	heartbeatPeriod uint8
	mutAuthRequested bool
	usePSK           bool

	// handshakeSecret is the shared or pre-shared secret KEY_EXCHANGE/
	// PSK_EXCHANGE produced, retained so FINISH/PSK_FINISH can recompute
	// the requester's verify data and derive the Established-state data
	// keys without re-running the exchange.
	handshakeSecret []byte

	encap EncapState
}

// Config supplies the fields needed to construct a Session once
// KEY_EXCHANGE or PSK_EXCHANGE has been accepted and the responder is
// about to emit *_RSP.
type Config struct {
	ID               uint32
	Type             Type
	Hasher           crypto.Hasher
	ConnectionPrefix []byte
	UsePSK           bool
}

// New creates a Session in the Handshaking state. Its transcript's K slot
// is seeded from cfg.ConnectionPrefix (the accumulated connection
// transcript up through the request that opened this session).
func New(cfg Config) (*Session, error) {
	if cfg.ID == 0 {
		return nil, ErrInvalidSessionID
	}
	return &Session{
		id:         cfg.ID,
		sType:      cfg.Type,
		state:      Handshaking,
		transcript: NewTranscript(cfg.Hasher, cfg.ConnectionPrefix),
		usePSK:     cfg.UsePSK,
	}, nil
}

// ID returns the session's full 32-bit identifier.
func (s *Session) ID() uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Type reports whether this session was established via KEY_EXCHANGE
// (TypeDHE) or PSK_EXCHANGE (TypePSK).
func (s *Session) Type() Type {
	return s.sType
}

// Transcript returns the session's hash accumulators. Callers must hold no
// assumption about concurrent mutation safety beyond what crypto.HashState
// itself documents; Session does not additionally lock around Transcript
// field access since the dispatcher drives each session from a single
// goroutine at a time.
func (s *Session) Transcript() *Transcript {
	return s.transcript
}

// AdvanceToEstablished transitions Handshaking -> Established after FINISH
// or PSK_FINISH succeeds, installing the data-phase direction keys.
// Returns ErrWrongState if the session is not currently Handshaking.
func (s *Session) AdvanceToEstablished(reqKeys, rspKeys DirectionKeys) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Handshaking {
		return ErrWrongState
	}
	s.requestDirection = reqKeys
	s.responseDirection = rspKeys
	s.state = Established
	return nil
}

// InstallHandshakeKeys sets the direction keys used during the
// Handshaking state (derived from the handshake secret, before FINISH).
func (s *Session) InstallHandshakeKeys(reqKeys, rspKeys DirectionKeys) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requestDirection = reqKeys
	s.responseDirection = rspKeys
}

// NextRequestSequence returns and increments the request-direction
// sequence counter used to decrypt/verify an incoming secured request.
func (s *Session) NextRequestSequence() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.requestDirection.SequenceNo == ^uint64(0) {
		return 0, ErrSequenceExhausted
	}
	n := s.requestDirection.SequenceNo
	s.requestDirection.SequenceNo++
	return n, nil
}

// NextResponseSequence returns and increments the response-direction
// sequence counter used to encrypt an outgoing secured response.
func (s *Session) NextResponseSequence() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.responseDirection.SequenceNo == ^uint64(0) {
		return 0, ErrSequenceExhausted
	}
	n := s.responseDirection.SequenceNo
	s.responseDirection.SequenceNo++
	return n, nil
}

// SetRequestKey installs a new request-direction AEAD key/IV pair (and
// resets its sequence counter), used by KEY_UPDATE to roll that direction
// forward independently of the other.
func (s *Session) SetRequestKey(keys DirectionKeys) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requestDirection = keys
}

// SetResponseKey installs a new response-direction AEAD key/IV pair, the
// KEY_UPDATE counterpart to SetRequestKey.
func (s *Session) SetResponseKey(keys DirectionKeys) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responseDirection = keys
}

// RequestKey returns a copy of the current request-direction AEAD key/IV.
func (s *Session) RequestKey() DirectionKeys {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.requestDirection
}

// ResponseKey returns a copy of the current response-direction AEAD key/IV.
func (s *Session) ResponseKey() DirectionKeys {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.responseDirection
}

// SetHeartbeatPeriod records the negotiated heartbeat period in seconds
// (0 disables heartbeat monitoring for this session).
func (s *Session) SetHeartbeatPeriod(period uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.heartbeatPeriod = period
}

// HeartbeatPeriod returns the negotiated heartbeat period in seconds.
func (s *Session) HeartbeatPeriod() uint8 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.heartbeatPeriod
}

// SetMutAuthRequested records whether this session's KEY_EXCHANGE flow
// requested mutual authentication of the requester.
func (s *Session) SetMutAuthRequested(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mutAuthRequested = v
}

// MutAuthRequested reports whether mutual authentication was requested.
func (s *Session) MutAuthRequested() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mutAuthRequested
}

// UsePSK reports whether this session was established via PSK_EXCHANGE.
func (s *Session) UsePSK() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usePSK
}

// BeginEncap marks the encapsulated-request sub-protocol active for this
// session, assigning the first request ID.
func (s *Session) BeginEncap(firstRequestID uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.encap = EncapState{Active: true, NextRequestID: firstRequestID}
}

// EndEncap clears the encapsulated-request sub-protocol state.
func (s *Session) EndEncap() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.encap = EncapState{}
}

// Encap returns a copy of the current encapsulated-request state.
func (s *Session) Encap() EncapState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.encap
}

// SetHandshakeSecret records the shared or pre-shared secret the exchange
// that opened this session produced.
func (s *Session) SetHandshakeSecret(secret []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handshakeSecret = secret
}

// HandshakeSecret returns the secret recorded by SetHandshakeSecret.
func (s *Session) HandshakeSecret() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.handshakeSecret
}

// ZeroizeKeys clears session key material from memory. Call when removing
// a session from its Table (on END_SESSION or responder shutdown).
func (s *Session) ZeroizeKeys() {
	s.mu.Lock()
	defer s.mu.Unlock()
	zero(s.requestDirection.Key)
	zero(s.requestDirection.IV)
	zero(s.responseDirection.Key)
	zero(s.responseDirection.IV)
	zero(s.handshakeSecret)
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
