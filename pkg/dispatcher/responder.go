// Package dispatcher implements the responder-side SPDM message state
// machine: receiving one transport frame, classifying it as clear or
// secured, routing it through a table-driven (state, code) dispatch to a
// handler, and sending the resulting response back with the matching
// post-condition update to connection or session state.
package dispatcher

import (
	"github.com/pion/logging"

	"github.com/openspdm/responder-core/pkg/crypto"
	"github.com/openspdm/responder-core/pkg/protocol"
	"github.com/openspdm/responder-core/pkg/spdmcontext"
	"github.com/openspdm/responder-core/pkg/wire"
)

// Responder wraps a connection's spdmcontext.Context with the message
// dispatch loop. One Responder serves exactly one peer connection, the
// same granularity spdmcontext.Context itself is scoped to.
type Responder struct {
	ctx *spdmcontext.Context
	log logging.LeveledLogger

	// senderBufferSize bounds the size of an encoded response this
	// Responder will attempt to send, mirroring the policy-configured
	// SenderBufferSize (internal/config.TransferConfig).
	senderBufferSize int

	// capabilities/ctExponent/dataTransferSize/maxSPDMMsgSize are this
	// responder's own advertised values, echoed into CAPABILITIES and
	// consulted by NEGOTIATE_ALGORITHMS's selection step.
	capabilities     protocol.ResponseCapabilityFlags
	ctExponent       uint8
	dataTransferSize uint32
	maxSPDMMsgSize   uint32
	heartbeatPeriod  uint8

	// keySchedule is the one SPDM 1.x key-derivation algorithm
	// (HMAC/HKDF-based); unlike Hasher/Signer/AEAD it is not
	// algorithm-selected per connection, so it is supplied directly
	// rather than looked up in crypto.Registry.
	keySchedule crypto.KeySchedule

	// measurements are the static measurement blocks this responder
	// reports to GET_MEASUREMENTS. A production embedder would refresh
	// these from live device state; this core only carries them.
	measurements []wire.MeasurementBlock
}

// Config supplies the fields New needs beyond the already-constructed
// spdmcontext.Context.
type Config struct {
	Context *spdmcontext.Context

	// Logger receives the three out-of-band log records this core emits:
	// a frame that fails decap, a decrypt failure that tears down a
	// session, and a secured frame for an unknown session that is dropped.
	// Defaults to a logger named "spdm" from
	// logging.NewDefaultLoggerFactory() if nil.
	Logger logging.LeveledLogger

	// SenderBufferSize bounds outgoing encoded message size; 0 defaults
	// to 4096, matching internal/config's TransferConfig default.
	SenderBufferSize int

	Capabilities     protocol.ResponseCapabilityFlags
	CTExponent       uint8
	DataTransferSize uint32
	MaxSPDMMsgSize   uint32
	HeartbeatPeriod  uint8

	KeySchedule  crypto.KeySchedule
	Measurements []wire.MeasurementBlock
}

// New creates a Responder over an already-constructed Context.
func New(cfg Config) *Responder {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewDefaultLoggerFactory().NewLogger("spdm")
	}
	bufSize := cfg.SenderBufferSize
	if bufSize == 0 {
		bufSize = 4096
	}
	dataTransferSize := cfg.DataTransferSize
	if dataTransferSize == 0 {
		dataTransferSize = uint32(bufSize)
	}
	maxMsgSize := cfg.MaxSPDMMsgSize
	if maxMsgSize == 0 {
		maxMsgSize = dataTransferSize
	}
	return &Responder{
		ctx:              cfg.Context,
		log:              logger,
		senderBufferSize: bufSize,
		capabilities:     cfg.Capabilities,
		ctExponent:       cfg.CTExponent,
		dataTransferSize: dataTransferSize,
		maxSPDMMsgSize:   maxMsgSize,
		heartbeatPeriod:  cfg.HeartbeatPeriod,
		keySchedule:      cfg.KeySchedule,
		measurements:     cfg.Measurements,
	}
}

// Context returns the Responder's underlying connection aggregate, for
// callers (tests, cmd/spdmresponderd) that need to inspect or provision it
// directly.
func (d *Responder) Context() *spdmcontext.Context {
	return d.ctx
}
