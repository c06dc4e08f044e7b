package dispatcher

import (
	"crypto/hmac"
	"fmt"

	"github.com/openspdm/responder-core/pkg/codec"
	"github.com/openspdm/responder-core/pkg/protocol"
	"github.com/openspdm/responder-core/pkg/session"
	"github.com/openspdm/responder-core/pkg/wire"
)

// handleFinish closes out a DHE session's handshake: verifies the
// requester's HMAC verify data over the handshake transcript, derives the
// Established-state data keys, and (unless HANDSHAKE_IN_THE_CLEAR was
// negotiated) returns its own verify data.
//
// The mutual-authentication signature is not verified here: a
// SignatureIncluded FINISH is accepted on the strength of its HMAC verify
// data alone, even when the encapsulated GET_CERTIFICATE sub-protocol has
// stored the requester's leaf key in spdmcontext.PeerInfo.LeafPublicKey.
// See DESIGN.md.
func handleFinish(d *Responder, sess *session.Session, header wire.MessageHeader, body []byte) (protocol.RequestResponseCode, []byte, error) {
	hasher, err := d.ctx.Registry.Hasher(d.ctx.Negotiation.BaseHashAlgo)
	if err != nil {
		return 0, nil, wire.ErrUnsupportedRequest()
	}
	aead, err := aeadForSession(d.ctx.Registry, d.ctx.Negotiation.AEADAlgo)
	if err != nil {
		return 0, nil, err
	}

	sigSize := 0
	if sess.MutAuthRequested() {
		sigSize = asymSignatureSize(d.ctx.Negotiation.BaseAsymAlgo)
	}
	req, ok := wire.DecodeFinishRequest(codec.NewReader(body), sigSize, hasher.Algo().Size())
	if !ok {
		return 0, nil, wire.ErrInvalidRequest()
	}
	if sess.MutAuthRequested() && !req.SignatureIncluded {
		return 0, nil, wire.ErrInvalidRequest()
	}

	secret := sess.HandshakeSecret()
	reqFinishedKey := d.keySchedule.Derive(secret, []byte("req finished"), nil, hasher.Algo().Size())
	expected := hasher.HMAC(reqFinishedKey, sess.Transcript().K.Sum())
	if !hmac.Equal(expected, req.VerifyData) {
		return 0, nil, wire.ErrDecryptError()
	}

	resp := wire.FinishResponse{}
	if !d.ctx.Negotiation.HandshakeInTheClear() {
		rspFinishedKey := d.keySchedule.Derive(secret, []byte("rsp finished"), nil, hasher.Algo().Size())
		resp.ResponderVerifyData = hasher.HMAC(rspFinishedKey, sess.Transcript().F.Sum())
	}

	dataHash := sess.Transcript().F.Sum()
	reqKeys, rspKeys := deriveDirectionKeys(d.keySchedule, secret, dataHash, aead.KeySize(), aead.NonceSize(), "req app traffic", "rsp app traffic")
	if err := sess.AdvanceToEstablished(reqKeys, rspKeys); err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrCrypto, err)
	}

	w := d.newResponseWriter()
	if !resp.EncodeTo(w) {
		return 0, nil, wire.ErrResponseTooLarge()
	}
	return protocol.CodeFinishRsp, w.UsedSlice(), nil
}

// handlePSKFinish is FINISH's PSK analogue: no signature, verify data keyed
// off the pre-shared secret instead of a DHE-derived one.
func handlePSKFinish(d *Responder, sess *session.Session, header wire.MessageHeader, body []byte) (protocol.RequestResponseCode, []byte, error) {
	hasher, err := d.ctx.Registry.Hasher(d.ctx.Negotiation.BaseHashAlgo)
	if err != nil {
		return 0, nil, wire.ErrUnsupportedRequest()
	}
	aead, err := aeadForSession(d.ctx.Registry, d.ctx.Negotiation.AEADAlgo)
	if err != nil {
		return 0, nil, err
	}

	req, ok := wire.DecodePSKFinishRequest(codec.NewReader(body), hasher.Algo().Size())
	if !ok {
		return 0, nil, wire.ErrInvalidRequest()
	}

	secret := sess.HandshakeSecret()
	reqFinishedKey := d.keySchedule.Derive(secret, []byte("req finished"), nil, hasher.Algo().Size())
	expected := hasher.HMAC(reqFinishedKey, sess.Transcript().K.Sum())
	if !hmac.Equal(expected, req.VerifyData) {
		return 0, nil, wire.ErrDecryptError()
	}

	dataHash := sess.Transcript().F.Sum()
	reqKeys, rspKeys := deriveDirectionKeys(d.keySchedule, secret, dataHash, aead.KeySize(), aead.NonceSize(), "req app traffic", "rsp app traffic")
	if err := sess.AdvanceToEstablished(reqKeys, rspKeys); err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrCrypto, err)
	}

	w := d.newResponseWriter()
	resp := wire.PSKFinishResponse{}
	if !resp.EncodeTo(w) {
		return 0, nil, wire.ErrResponseTooLarge()
	}
	return protocol.CodePSKFinishRsp, w.UsedSlice(), nil
}

// handleHeartbeat acknowledges a HEARTBEAT with no further bookkeeping:
// this core does not itself run a liveness timer (that is an embedder
// concern, driven by how often HEARTBEAT_ACK arrives).
func handleHeartbeat(d *Responder, sess *session.Session, header wire.MessageHeader, body []byte) (protocol.RequestResponseCode, []byte, error) {
	w := d.newResponseWriter()
	resp := wire.HeartbeatAckResponse{}
	if !resp.EncodeTo(w) {
		return 0, nil, wire.ErrResponseTooLarge()
	}
	return protocol.CodeHeartbeatAck, w.UsedSlice(), nil
}

// handleKeyUpdate rolls this session's AEAD key(s) forward per the
// requested operation and acknowledges. VERIFY_NEW_KEY is a pure
// acknowledgement: both sides already rolled on the preceding UPDATE_KEY
// round trip.
func handleKeyUpdate(d *Responder, sess *session.Session, header wire.MessageHeader, body []byte) (protocol.RequestResponseCode, []byte, error) {
	if !d.capabilities.Has(protocol.RspCapKeyUpdCap) {
		return 0, nil, wire.ErrUnsupportedRequest()
	}
	req := wire.DecodeKeyUpdateRequest(header)

	switch req.Operation {
	case wire.KeyUpdateUpdateKey:
		sess.SetRequestKey(deriveUpdatedKey(d.keySchedule, sess.RequestKey()))
	case wire.KeyUpdateUpdateAllKeys, wire.KeyUpdateUpdateAllKeysNonVerify:
		sess.SetRequestKey(deriveUpdatedKey(d.keySchedule, sess.RequestKey()))
		sess.SetResponseKey(deriveUpdatedKey(d.keySchedule, sess.ResponseKey()))
	case wire.KeyUpdateVerifyNewKey:
		// no-op: confirms the prior round's roll.
	default:
		return 0, nil, wire.ErrInvalidRequest()
	}

	w := d.newResponseWriter()
	resp := wire.KeyUpdateAckResponse{Operation: req.Operation, Tag: req.Tag}
	if !resp.EncodeTo(w) {
		return 0, nil, wire.ErrResponseTooLarge()
	}
	return protocol.CodeKeyUpdateAck, w.UsedSlice(), nil
}

// handleEndSession acknowledges the close request; the session itself is
// torn down by applyPostCondition after the ACK has been encrypted and
// sent under the still-live keys.
func handleEndSession(d *Responder, sess *session.Session, header wire.MessageHeader, body []byte) (protocol.RequestResponseCode, []byte, error) {
	_ = wire.DecodeEndSessionRequest(header) // PreserveNegotiatedState: no resumption support, read for completeness
	w := d.newResponseWriter()
	resp := wire.EndSessionAckResponse{}
	if !resp.EncodeTo(w) {
		return 0, nil, wire.ErrResponseTooLarge()
	}
	return protocol.CodeEndSessionAck, w.UsedSlice(), nil
}
