package spdmcontext

import "github.com/openspdm/responder-core/pkg/crypto"

// ConnectionTranscript accumulates the hash states spanning an unsecured
// SPDM connection's negotiation and authentication exchange, per DSP0274's
// transcript letters:
//
//	A  - GET_VERSION..VERSION
//	B  - GET_CAPABILITIES..CAPABILITIES
//	C  - NEGOTIATE_ALGORITHMS..ALGORITHMS
//	M1 - A+B+C plus GET_DIGESTS..DIGESTS, GET_CERTIFICATE..CERTIFICATE, and
//	     the CHALLENGE request, used to verify CHALLENGE_AUTH's signature
//	M2 - M1 truncated before CHALLENGE_AUTH's own signature field
type ConnectionTranscript struct {
	A, B, C, M1, M2 crypto.HashState
}

// NewConnectionTranscript creates empty accumulators from hasher.
func NewConnectionTranscript(hasher crypto.Hasher) *ConnectionTranscript {
	return &ConnectionTranscript{
		A:  hasher.New(),
		B:  hasher.New(),
		C:  hasher.New(),
		M1: hasher.New(),
		M2: hasher.New(),
	}
}

// AppendVCA writes data (one full request or response message) into every
// slot that accumulates the version/capabilities/algorithms exchange.
func (t *ConnectionTranscript) AppendVCA(data []byte) {
	t.A.Write(data)
	t.B.Write(data)
	t.C.Write(data)
	t.M1.Write(data)
}

// AppendM1Only writes data into M1 alone, for the GET_DIGESTS/DIGESTS,
// GET_CERTIFICATE/CERTIFICATE, and CHALLENGE messages that follow
// algorithm negotiation but are not part of the VCA exchange itself.
func (t *ConnectionTranscript) AppendM1Only(data []byte) {
	t.M1.Write(data)
}

// Bytes snapshots M1 is not directly exposed; callers needing the
// transcript hash call Sum() on the relevant HashState field instead.
// Snapshot returns the prefix of this transcript to seed a new session's
// K slot (session.NewTranscript's connectionPrefix argument): the M1 hash
// state so far, as a finished digest rather than a live HashState, since
// crypto.HashState does not expose a way to fork mid-accumulation for hash
// functions without internal state export (see refimpl.hashState.Clone's
// re-hash-from-buffer fallback for why this core treats that as expensive
// rather than free).
func (t *ConnectionTranscript) Snapshot() []byte {
	return t.M1.Sum()
}
