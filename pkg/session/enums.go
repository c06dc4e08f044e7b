// Package session implements SPDM secure session state: the per-session
// lifecycle state machine, transcript hash accumulators used for the key
// schedule and verify-data computations, per-direction AEAD keys and
// sequence counters, and the responder-side session table.
//
// Spec References:
//   - DSP0274 Section 10: Secure Messages (session establishment and key
//     schedule)
//   - DSP0277 Section 4 (Secured Messages Using SPDM): AEAD framing and
//     sequence numbers
package session

// State identifies where a session sits in its establishment lifecycle.
// Sessions move strictly forward through this state machine; there is no
// regression back to an earlier state short of session termination.
type State int

const (
	// NotStarted is the zero value; no KEY_EXCHANGE/PSK_EXCHANGE has been
	// processed yet for this session slot.
	NotStarted State = iota

	// Handshaking covers the interval from KEY_EXCHANGE_RSP/PSK_EXCHANGE_RSP
	// through FINISH_RSP/PSK_FINISH_RSP: handshake secrets are derived and
	// in use, but the session is not yet authenticated for application data.
	Handshaking

	// Established is reached once FINISH/PSK_FINISH completes: data secrets
	// are derived and the session accepts ordinary secured requests.
	Established

	// Unknown covers any state value outside the defined range, used by
	// String to fail closed rather than silently print an empty label.
	Unknown
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case NotStarted:
		return "NotStarted"
	case Handshaking:
		return "Handshaking"
	case Established:
		return "Established"
	default:
		return "Unknown"
	}
}

// Type distinguishes a Diffie-Hellman session (established via
// KEY_EXCHANGE) from a pre-shared-key session (established via
// PSK_EXCHANGE); this governs whether FINISH carries a signature and
// whether mutual authentication is possible at all.
type Type int

const (
	TypeUnknown Type = iota
	TypeDHE
	TypePSK
)

func (t Type) String() string {
	switch t {
	case TypeDHE:
		return "DHE"
	case TypePSK:
		return "PSK"
	default:
		return "Unknown"
	}
}

// Direction identifies which side of a session a key/sequence-counter pair
// belongs to, independent of which peer is the SPDM "Requester" role.
type Direction int

const (
	DirectionRequestToResponse Direction = iota
	DirectionResponseToRequest
)
