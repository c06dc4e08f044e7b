package wire

import "github.com/openspdm/responder-core/pkg/codec"

// FinishRequest closes out the handshake phase of a non-PSK session,
// carrying a signature when SignatureIncluded is set (mutual auth),
// followed in every case by the requester's HMAC verify data.
type FinishRequest struct {
	SignatureIncluded bool
	SlotID            uint8
	Signature         []byte // present only if SignatureIncluded
	VerifyData        []byte
}

func DecodeFinishRequest(r *codec.Reader, sigSize, verifyDataSize int) (FinishRequest, bool) {
	var f FinishRequest
	attrs, ok := r.ReadU8()
	if !ok {
		return f, false
	}
	f.SignatureIncluded = attrs&0x01 != 0
	slot, ok := r.ReadU8()
	if !ok {
		return f, false
	}
	f.SlotID = slot
	if f.SignatureIncluded {
		sig, ok := r.ReadBytes(sigSize)
		if !ok {
			return f, false
		}
		f.Signature = append([]byte(nil), sig...)
	}
	vd, ok := r.ReadBytes(verifyDataSize)
	if !ok {
		return f, false
	}
	f.VerifyData = append([]byte(nil), vd...)
	return f, true
}

// FinishResponse carries the responder's own verify data, present only when
// the session was not negotiated HANDSHAKE_IN_THE_CLEAR.
type FinishResponse struct {
	ResponderVerifyData []byte // empty when handshake-in-the-clear
}

func (f FinishResponse) EncodeTo(w *codec.Writer) bool {
	if len(f.ResponderVerifyData) == 0 {
		return true
	}
	return w.PutBytes(f.ResponderVerifyData)
}

// PSKFinishRequest closes out a PSK session's handshake phase.
type PSKFinishRequest struct {
	VerifyData []byte
}

func DecodePSKFinishRequest(r *codec.Reader, verifyDataSize int) (PSKFinishRequest, bool) {
	var p PSKFinishRequest
	vd, ok := r.ReadBytes(verifyDataSize)
	if !ok {
		return p, false
	}
	p.VerifyData = append([]byte(nil), vd...)
	return p, true
}

// PSKFinishResponse carries no payload beyond the header.
type PSKFinishResponse struct{}

func (p PSKFinishResponse) EncodeTo(w *codec.Writer) bool {
	return true
}
