package dispatcher

import (
	"github.com/openspdm/responder-core/pkg/codec"
	"github.com/openspdm/responder-core/pkg/protocol"
	"github.com/openspdm/responder-core/pkg/session"
	"github.com/openspdm/responder-core/pkg/wire"
)

// innerCertificateRequestSize bounds the certificate-chain chunk this core
// asks for in its one encapsulated GET_CERTIFICATE, sized well above any
// reference test certificate.
const innerCertificateRequestSize = 4096

// handleGetEncapsulatedRequest answers the peer's poll for a pending
// encapsulated request: this core's only use of the sub-protocol is
// retrieving the requester's own certificate chain during mutual
// authentication (see handleKeyExchange's BeginEncap call), so the inner
// message is always a GET_CERTIFICATE for slot 0.
func handleGetEncapsulatedRequest(d *Responder, sess *session.Session, header wire.MessageHeader, body []byte) (protocol.RequestResponseCode, []byte, error) {
	if !d.ctx.Negotiation.EncapsulatedRequestSupported() {
		return 0, nil, wire.ErrUnsupportedRequest()
	}
	encap := sess.Encap()
	if !encap.Active {
		return 0, nil, wire.NewError(protocol.ErrorNoPendingRequest, 0)
	}

	innerHeader := wire.MessageHeader{Version: d.ctx.Negotiation.Version, Code: protocol.CodeGetCertificate}
	innerReq := wire.GetCertificateRequest{SlotID: 0, Offset: 0, Length: innerCertificateRequestSize}
	innerW := codec.NewWriter(make([]byte, wire.HeaderSize+8))
	if !innerHeader.EncodeTo(innerW) ||
		!innerW.PutU8(innerReq.SlotID) || !innerW.PutU8(0) ||
		!innerW.PutU16(innerReq.Offset) || !innerW.PutU16(innerReq.Length) {
		return 0, nil, wire.ErrResponseTooLarge()
	}

	resp := wire.EncapsulatedRequestResponse{RequestID: encap.NextRequestID, EncapRequest: innerW.UsedSlice()}
	w := d.newResponseWriter()
	if !resp.EncodeTo(w) {
		return 0, nil, wire.ErrResponseTooLarge()
	}
	return protocol.CodeEncapsulatedRequest, w.UsedSlice(), nil
}

// handleDeliverEncapsulatedResponse receives the peer's answer to the
// encapsulated GET_CERTIFICATE, extracts and validates the leaf public key,
// and closes out the sub-protocol (this core only ever asks one question).
func handleDeliverEncapsulatedResponse(d *Responder, sess *session.Session, header wire.MessageHeader, body []byte) (protocol.RequestResponseCode, []byte, error) {
	if !d.ctx.Negotiation.EncapsulatedRequestSupported() {
		return 0, nil, wire.ErrUnsupportedRequest()
	}
	if !d.ctx.Negotiation.RequesterCaps.Has(protocol.ReqCapCertCap) {
		return 0, nil, wire.ErrUnsupportedRequest()
	}
	req, ok := wire.DecodeDeliverEncapsulatedResponseRequest(codec.NewReader(body))
	if !ok {
		return 0, nil, wire.ErrInvalidRequest()
	}
	encap := sess.Encap()
	if !encap.Active || req.RequestID != encap.NextRequestID {
		return 0, nil, wire.NewError(protocol.ErrorUnexpectedRequest, 0)
	}

	innerR := codec.NewReader(req.EncapResponse)
	innerHeader, ok := wire.DecodeHeader(innerR)
	if !ok || innerHeader.Code != protocol.CodeCertificate {
		return 0, nil, wire.ErrInvalidRequest()
	}
	innerResp, ok := wire.DecodeCertificateResponse(innerR)
	if !ok {
		return 0, nil, wire.ErrInvalidRequest()
	}

	certOps, err := d.ctx.Registry.CertOps()
	if err != nil {
		return 0, nil, wire.ErrUnsupportedRequest()
	}
	rootOfTrust := d.ctx.Provisioning.RootOfTrust
	leafKey, err := certOps.ParseChain(innerResp.CertChainData, rootOfTrust)
	if err != nil {
		return 0, nil, wire.NewError(protocol.ErrorInvalidRequest, 0)
	}
	d.ctx.Peer.LeafPublicKey = leafKey

	sess.EndEncap()

	resp := wire.EncapsulatedResponseAckResponse{RequestID: req.RequestID, PayloadType: 0}
	w := d.newResponseWriter()
	if !resp.EncodeTo(w) {
		return 0, nil, wire.ErrResponseTooLarge()
	}
	return protocol.CodeEncapsulatedResponseAck, w.UsedSlice(), nil
}
