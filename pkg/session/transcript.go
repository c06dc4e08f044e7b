package session

import "github.com/openspdm/responder-core/pkg/crypto"

// Transcript accumulates the hash states a secure session's key schedule
// and verify-data computations depend on, keyed by the DSP0274 transcript
// letter each slot corresponds to:
//
//	K - the handshake transcript up to and including KEY_EXCHANGE_RSP (or
//	    PSK_EXCHANGE_RSP), used to derive the handshake secret and the
//	    FINISH/PSK_FINISH verify-data
//	F - K extended through FINISH/PSK_FINISH, used to derive the data
//	    secret for the Established state
//	L - the running in-session transcript used by KEY_UPDATE's verify step
//
// The connection-wide transcript slots (A, B, C, M1, M2) that precede any
// session's existence live on spdmcontext.ConnectionTranscript instead,
// since GET_DIGESTS/GET_CERTIFICATE/CHALLENGE are unsecured-channel
// operations that run before a session is created.
type Transcript struct {
	K, F, L crypto.HashState
}

// NewTranscript creates an empty Transcript, seeded from connectionPrefix
// (the connection transcript accumulated so far, M1 through the request
// that opened this session) so K includes everything VCA+Challenge
// established, per DSP0274's definition of the handshake transcript.
func NewTranscript(hasher crypto.Hasher, connectionPrefix []byte) *Transcript {
	k := hasher.New()
	k.Write(connectionPrefix)
	f := hasher.New()
	f.Write(connectionPrefix)
	return &Transcript{
		K: k,
		F: f,
		L: hasher.New(),
	}
}

// AppendHandshake writes data (one full request or response message) into
// both K and F, mirroring spdmcontext.ConnectionTranscript.AppendVCA: every
// message up through FINISH/PSK_FINISH belongs to both the handshake-secret
// transcript (K) and its FINISH-extended form (F).
func (t *Transcript) AppendHandshake(data []byte) {
	t.K.Write(data)
	t.F.Write(data)
}

// AppendSession writes data into L alone, the running in-session
// transcript KEY_UPDATE's verify step consults.
func (t *Transcript) AppendSession(data []byte) {
	t.L.Write(data)
}
