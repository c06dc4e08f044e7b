package spdmcontext

import (
	"sync"

	"github.com/openspdm/responder-core/pkg/crypto"
	"github.com/openspdm/responder-core/pkg/session"
	"github.com/openspdm/responder-core/pkg/transport"
)

// Context is the root aggregate a Responder holds for one connected peer:
// negotiation outcome, connection-wide transcript, the session table for
// every secure session opened under this connection, cached peer
// information, this responder's own provisioning material, and the
// transport handles the dispatcher sends/receives through.
type Context struct {
	mu sync.RWMutex

	state ConnectionState

	Negotiation Negotiation
	Transcript  *ConnectionTranscript
	Peer        PeerInfo
	Provisioning *Provisioning

	Sessions *session.Table

	DeviceIO transport.DeviceIO
	Encap    transport.TransportEncap

	// LastSessionID records the most recently established session's ID,
	// consulted when a FINISH arrives on the unsecured channel under
	// HANDSHAKE_IN_THE_CLEAR_CAP (DSP0274's one exception to "FINISH is
	// always itself encrypted").
	LastSessionID uint32

	Registry *crypto.Registry
}

// Config supplies the fixed, connection-lifetime fields New needs.
type Config struct {
	Hasher         crypto.Hasher
	Registry       *crypto.Registry
	Provisioning   *Provisioning
	DeviceIO       transport.DeviceIO
	Encap          transport.TransportEncap
	SessionCapacity int
}

// New creates a Context in the NotStarted state with an empty transcript
// and session table.
func New(cfg Config) *Context {
	encap := cfg.Encap
	if encap == nil {
		encap = transport.NoEncap{}
	}
	return &Context{
		state:        NotStarted,
		Transcript:   NewConnectionTranscript(cfg.Hasher),
		Provisioning: cfg.Provisioning,
		Sessions:     session.NewTable(cfg.SessionCapacity),
		DeviceIO:     cfg.DeviceIO,
		Encap:        encap,
		Registry:     cfg.Registry,
	}
}

// State returns the connection's current state.
func (c *Context) State() ConnectionState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// AdvanceTo sets the connection state to target. Used when a message
// unconditionally moves the state forward (e.g. a successful VERSION
// response always sets AfterVersion); callers are responsible for not
// calling this with a target behind the current state.
func (c *Context) AdvanceTo(target ConnectionState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = target
}

// AdvanceToAtLeast sets the connection state to the larger of its current
// value and target, so a retried or out-of-order message can never regress
// progress already made.
func (c *Context) AdvanceToAtLeast(target ConnectionState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if target > c.state {
		c.state = target
	}
}

// GetSession looks up a secure session by its full 32-bit ID.
func (c *Context) GetSession(id uint32) *session.Session {
	return c.Sessions.Get(id)
}

// SetLastSessionID records id as the most recently established session,
// for the handshake-in-the-clear FINISH lookup.
func (c *Context) SetLastSessionID(id uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.LastSessionID = id
}

// GetLastSessionID returns the most recently recorded session ID, or 0 if
// none has been established yet.
func (c *Context) GetLastSessionID() uint32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.LastSessionID
}
