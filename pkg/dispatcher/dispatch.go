package dispatcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/openspdm/responder-core/pkg/codec"
	"github.com/openspdm/responder-core/pkg/protocol"
	"github.com/openspdm/responder-core/pkg/session"
	"github.com/openspdm/responder-core/pkg/wire"
)

// ProcessMessage receives one transport frame, routes it through the
// table-driven dispatch in routes.go, and sends the response. It returns
// handled=true once a request/response round trip completed (successfully
// or with an ERROR sent to the peer). When the exchange could not be
// carried out at all — decode failure, transport error — it returns
// handled=false, err non-nil, and raw set to the bytes that were received
// (nil if Receive itself failed), so the caller can inspect or log the
// message that could not be processed.
func (d *Responder) ProcessMessage(ctx context.Context) (handled bool, raw []byte, err error) {
	raw, err = d.ctx.DeviceIO.Receive(ctx)
	if err != nil {
		return false, nil, fmt.Errorf("%w: %v", ErrIO, err)
	}

	tag, body, ok := unwrapFrame(raw)
	if !ok {
		d.log.Warnf("dispatcher: dropping frame that failed decap: %x", raw)
		return false, raw, fmt.Errorf("%w: empty transport frame", ErrInvalidMsgField)
	}

	switch tag {
	case TagClear:
		handled, err = d.dispatchClear(ctx, body)
	case TagSecured:
		handled, err = d.dispatchSecured(ctx, body)
	default:
		err = fmt.Errorf("%w: unknown frame tag %d", ErrNoRoute, tag)
	}
	if err != nil {
		return false, raw, err
	}
	return handled, nil, nil
}

// dispatchClear handles a clear-tagged frame: the normal negotiation/
// authentication sequence, and FINISH's one exception when
// HANDSHAKE_IN_THE_CLEAR_CAP was negotiated.
func (d *Responder) dispatchClear(ctx context.Context, body []byte) (bool, error) {
	header, ok := wire.DecodeHeader(codec.NewReader(body))
	if !ok {
		return false, fmt.Errorf("%w: truncated header", ErrInvalidMsgField)
	}
	payload := body[wire.HeaderSize:]

	if header.Code == protocol.CodeFinish && d.ctx.Negotiation.HandshakeInTheClear() {
		sessID := d.ctx.GetLastSessionID()
		if sessID != 0 {
			if sess := d.ctx.GetSession(sessID); sess != nil && sess.State() == session.Handshaking {
				return d.runHandshaking(ctx, sess, header, payload, body)
			}
		}
	}

	rt, ok := routeTable[routeKey{scopeClear, header.Code}]
	if !ok {
		return d.sendError(ctx, nil, wire.ErrUnsupportedRequest())
	}
	if !d.ctx.State().AtLeast(rt.minState) {
		return d.sendError(ctx, nil, wire.ErrUnexpectedRequest())
	}

	d.ctx.Transcript.AppendVCA(body)
	code, respBody, herr := rt.handler(d, nil, header, payload)
	return d.finishClear(ctx, header.Code, code, respBody, herr)
}

// finishClear sends the handler's outcome for a clear-scope request and
// applies the matching post-condition.
func (d *Responder) finishClear(ctx context.Context, reqCode protocol.RequestResponseCode, code protocol.RequestResponseCode, respBody []byte, herr error) (bool, error) {
	if herr != nil {
		var eresp *wire.ErrorResponse
		if !errors.As(herr, &eresp) {
			return false, herr
		}
		return d.sendError(ctx, nil, eresp)
	}

	w := d.newResponseWriter()
	hdr := wire.MessageHeader{Version: d.ctx.Negotiation.Version, Code: code}
	if !hdr.EncodeTo(w) || !w.PutBytes(respBody) {
		return d.sendError(ctx, nil, wire.ErrResponseTooLarge())
	}
	full := w.UsedSlice()

	if err := d.sendMessage(ctx, nil, full); err != nil {
		return false, err
	}

	// Every request routed through dispatchClear was appended to all VCA
	// slots above. The response to GET_DIGESTS/GET_CERTIFICATE/CHALLENGE
	// goes into M1 only; every other response goes into all VCA slots.
	switch reqCode {
	case protocol.CodeGetDigests, protocol.CodeGetCertificate, protocol.CodeChallenge:
		d.ctx.Transcript.AppendM1Only(full)
	default:
		d.ctx.Transcript.AppendVCA(full)
	}

	d.applyPostCondition(reqCode, nil)
	return true, nil
}

// dispatchSecured handles a secured-tagged frame: AEAD-opens it under the
// session the frame's SessionID names, then routes by that session's
// lifecycle state (Handshaking vs Established).
func (d *Responder) dispatchSecured(ctx context.Context, frame []byte) (bool, error) {
	aead, err := aeadForSession(d.ctx.Registry, d.ctx.Negotiation.AEADAlgo)
	if err != nil {
		return false, err
	}
	sess, plaintext, err := decodeSecuredMessage(d.ctx.Sessions, aead, frame)
	if err != nil {
		if sess != nil {
			d.log.Warnf("dispatcher: session %d: decrypt failed, tearing down session: %v", sess.ID(), err)
			handled, serr := d.sendError(ctx, sess, wire.ErrDecryptError())
			d.ctx.Sessions.Remove(sess.ID())
			return handled, serr
		}
		d.log.Debugf("dispatcher: dropping unroutable secured frame: %v", err)
		return false, err
	}

	header, ok := wire.DecodeHeader(codec.NewReader(plaintext))
	if !ok {
		return false, fmt.Errorf("%w: truncated secured header", ErrInvalidMsgField)
	}
	payload := plaintext[wire.HeaderSize:]

	// FINISH must arrive in the clear when both peers negotiated
	// HANDSHAKE_IN_THE_CLEAR_CAP; dispatchClear routes that case into
	// runHandshaking itself, so a FINISH reaching here secured is always
	// the disallowed combination.
	if header.Code == protocol.CodeFinish && d.ctx.Negotiation.HandshakeInTheClear() {
		return d.sendError(ctx, sess, wire.ErrUnsupportedRequest())
	}

	switch sess.State() {
	case session.Handshaking:
		return d.runHandshaking(ctx, sess, header, payload, plaintext)
	case session.Established:
		return d.runEstablished(ctx, sess, header, payload, plaintext)
	default:
		return d.sendError(ctx, sess, wire.ErrUnexpectedRequest())
	}
}

func (d *Responder) runHandshaking(ctx context.Context, sess *session.Session, header wire.MessageHeader, payload, full []byte) (bool, error) {
	rt, ok := routeTable[routeKey{scopeHandshaking, header.Code}]
	if !ok {
		return d.sendError(ctx, sess, wire.ErrUnsupportedRequest())
	}
	sess.Transcript().AppendHandshake(full)
	code, respBody, herr := rt.handler(d, sess, header, payload)
	return d.finishSecured(ctx, sess, header.Code, code, respBody, herr, true)
}

func (d *Responder) runEstablished(ctx context.Context, sess *session.Session, header wire.MessageHeader, payload, full []byte) (bool, error) {
	rt, ok := routeTable[routeKey{scopeEstablished, header.Code}]
	if !ok {
		return d.sendError(ctx, sess, wire.ErrUnsupportedRequest())
	}
	sess.Transcript().AppendSession(full)
	code, respBody, herr := rt.handler(d, sess, header, payload)
	return d.finishSecured(ctx, sess, header.Code, code, respBody, herr, false)
}

// finishSecured sends the handler's outcome for a secured-scope request
// and applies the matching post-condition. handshakeScope distinguishes
// which transcript slot (K/F vs L) the response bytes belong in.
func (d *Responder) finishSecured(ctx context.Context, sess *session.Session, reqCode protocol.RequestResponseCode, code protocol.RequestResponseCode, respBody []byte, herr error, handshakeScope bool) (bool, error) {
	if herr != nil {
		var eresp *wire.ErrorResponse
		if !errors.As(herr, &eresp) {
			return false, herr
		}
		return d.sendError(ctx, sess, eresp)
	}

	w := d.newResponseWriter()
	hdr := wire.MessageHeader{Version: d.ctx.Negotiation.Version, Code: code}
	if !hdr.EncodeTo(w) || !w.PutBytes(respBody) {
		return d.sendError(ctx, sess, wire.ErrResponseTooLarge())
	}
	full := w.UsedSlice()

	if err := d.sendMessage(ctx, sess, full); err != nil {
		return false, err
	}

	if handshakeScope {
		sess.Transcript().AppendHandshake(full)
	} else {
		sess.Transcript().AppendSession(full)
	}

	d.applyPostCondition(reqCode, sess)
	return true, nil
}

// sendError encodes and sends e as an SPDM ERROR response, clear or
// secured per sess. A send failure here is reported to the caller since
// there is no further fallback once the ERROR itself cannot be delivered.
func (d *Responder) sendError(ctx context.Context, sess *session.Session, e *wire.ErrorResponse) (bool, error) {
	w := d.newResponseWriter()
	if !e.EncodeTo(w, d.ctx.Negotiation.Version) {
		return false, errors.New("dispatcher: ERROR response itself exceeds sender buffer")
	}
	if err := d.sendMessage(ctx, sess, w.UsedSlice()); err != nil {
		return false, err
	}
	return true, nil
}
