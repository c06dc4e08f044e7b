package spdmcontext

import "github.com/openspdm/responder-core/pkg/protocol"

// Negotiation holds the outcome of GET_VERSION/GET_CAPABILITIES/
// NEGOTIATE_ALGORITHMS: the single version and algorithm selection this
// connection committed to, which every later exchange is validated
// against (a CHALLENGE signature size, a KEY_EXCHANGE DHE group, and so
// on all derive from these fields).
type Negotiation struct {
	Version protocol.Version

	RequesterCaps protocol.RequestCapabilityFlags
	ResponderCaps protocol.ResponseCapabilityFlags

	BaseHashAlgo        protocol.BaseHashAlgo
	BaseAsymAlgo        protocol.BaseAsymAlgo
	MeasurementHashAlgo protocol.MeasurementHashAlgo
	DHEGroup            protocol.DHEGroup
	AEADAlgo            protocol.AEADAlgo
	KeyScheduleAlgo     protocol.KeyScheduleAlgo

	DataTransferSize uint32
	MaxSPDMMsgSize   uint32
}

// EncapsulatedRequestSupported reports whether both sides advertised
// ENCAP_CAP and the negotiated version is at least 1.1, the precondition
// DSP0274 sets for the GET_ENCAPSULATED_REQUEST sub-protocol.
func (n Negotiation) EncapsulatedRequestSupported() bool {
	return n.Version.AtLeast(protocol.Version11) &&
		n.RequesterCaps.Has(protocol.ReqCapEncapCap) &&
		n.ResponderCaps.Has(protocol.RspCapEncapCap)
}

// HandshakeInTheClear reports whether both sides advertised
// HANDSHAKE_IN_THE_CLEAR_CAP, the precondition for FINISH/FINISH_RSP (and
// the session's first application data) being sent unencrypted.
func (n Negotiation) HandshakeInTheClear() bool {
	return n.RequesterCaps.Has(protocol.ReqCapHandshakeInTheClearCap) &&
		n.ResponderCaps.Has(protocol.RspCapHandshakeInTheClearCap)
}

// MutualAuthPossible reports whether the requester advertised MUT_AUTH_CAP
// and this side supports it, the gate on honoring a KEY_EXCHANGE request
// for mutual authentication.
func (n Negotiation) MutualAuthPossible() bool {
	return n.RequesterCaps.Has(protocol.ReqCapMutAuthCap) &&
		n.ResponderCaps.Has(protocol.RspCapMutAuthCap)
}
