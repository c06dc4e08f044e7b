package dispatcher

import (
	"context"

	"github.com/openspdm/responder-core/pkg/protocol"
	"github.com/openspdm/responder-core/pkg/session"
	"github.com/openspdm/responder-core/pkg/spdmcontext"
	"github.com/openspdm/responder-core/pkg/wire"
)

// sendMessage frames payload (clear or secured, per sess) and writes it to
// the transport. A nil sess sends it clear-tagged; a non-nil sess seals it
// under that session's response-direction key first. Transcript
// accumulation for payload is the caller's responsibility (finishClear and
// finishSecured append each response once sendMessage has returned).
func (d *Responder) sendMessage(ctx context.Context, sess *session.Session, payload []byte) error {
	encapOverhead := d.ctx.Encap.HeaderSize()
	if len(payload)+1+encapOverhead > d.senderBufferSize {
		return wire.ErrResponseTooLarge()
	}

	if sess == nil {
		return d.ctx.DeviceIO.Send(ctx, wrapFrame(TagClear, payload))
	}

	aead, err := aeadForSession(d.ctx.Registry, d.ctx.Negotiation.AEADAlgo)
	if err != nil {
		return err
	}
	secured, err := encodeSecuredMessage(aead, sess, payload)
	if err != nil {
		return err
	}
	return d.ctx.DeviceIO.Send(ctx, wrapFrame(TagSecured, secured))
}

// applyPostCondition advances connection or session state once a handler
// has successfully produced a response for opcode and that response has
// been sent, mirroring pkg/securechannel/manager.go's per-message
// post-condition updates. Running this after the send (rather than inside
// the handler) means a send failure never leaves state half-advanced.
//
// END_SESSION's teardown happens here rather than in handleEndSession
// itself: the ACK must still be encrypted and sent under the session's
// live keys before the session is removed from the table.
func (d *Responder) applyPostCondition(opcode protocol.RequestResponseCode, sess *session.Session) {
	switch opcode {
	case protocol.CodeGetVersion:
		d.ctx.AdvanceToAtLeast(spdmcontext.AfterVersion)
	case protocol.CodeGetCapabilities:
		d.ctx.AdvanceToAtLeast(spdmcontext.AfterCapabilities)
	case protocol.CodeNegotiateAlgorithms:
		d.ctx.AdvanceToAtLeast(spdmcontext.Negotiated)
	case protocol.CodeGetDigests:
		d.ctx.AdvanceToAtLeast(spdmcontext.AfterDigest)
	case protocol.CodeGetCertificate:
		d.ctx.AdvanceToAtLeast(spdmcontext.AfterCertificate)
	case protocol.CodeChallenge:
		d.ctx.AdvanceToAtLeast(spdmcontext.Authenticated)
	case protocol.CodeEndSession:
		if sess != nil {
			d.ctx.Sessions.Remove(sess.ID())
		}
	}
}
