package wire

import "github.com/openspdm/responder-core/pkg/codec"

// GetEncapsulatedRequestRequest carries no payload beyond the header; it
// asks the peer (acting as encapsulated-requester) to start the mutual
// authentication sub-protocol.
type GetEncapsulatedRequestRequest struct{}

func DecodeGetEncapsulatedRequestRequest(r *codec.Reader) (GetEncapsulatedRequestRequest, bool) {
	return GetEncapsulatedRequestRequest{}, true
}

// EncapsulatedRequestResponse wraps one inner SPDM request message destined
// for the far side, tagged with a request ID the matching
// DELIVER_ENCAPSULATED_RESPONSE must echo.
type EncapsulatedRequestResponse struct {
	RequestID     uint8
	EncapRequest  []byte // the inner request's full framed bytes
}

func (e EncapsulatedRequestResponse) EncodeTo(w *codec.Writer) bool {
	if !w.PutU8(e.RequestID) {
		return false
	}
	if !w.PutU8(0) { // reserved
		return false
	}
	return w.PutBytes(e.EncapRequest)
}

// DeliverEncapsulatedResponseRequest carries the inner response to a
// previously issued encapsulated request, tagged by RequestID.
type DeliverEncapsulatedResponseRequest struct {
	RequestID      uint8
	EncapResponse  []byte
}

func DecodeDeliverEncapsulatedResponseRequest(r *codec.Reader) (DeliverEncapsulatedResponseRequest, bool) {
	var d DeliverEncapsulatedResponseRequest
	id, ok := r.ReadU8()
	if !ok {
		return d, false
	}
	d.RequestID = id
	d.EncapResponse = append([]byte(nil), r.Rest()...)
	r.Skip(r.Len())
	return d, true
}

// EncapsulatedResponseAckResponse acknowledges delivery and either signals
// completion (no further encapsulated exchange pending) or wraps the next
// encapsulated request to send, continuing the sub-protocol.
type EncapsulatedResponseAckResponse struct {
	RequestID      uint8
	PayloadType    uint8 // 0 = no further request, 1 = present, 2 = REQ_SLOT_NUMBER present (1.2+)
	NextEncapRequest []byte
}

func (e EncapsulatedResponseAckResponse) EncodeTo(w *codec.Writer) bool {
	if !w.PutU8(e.RequestID) {
		return false
	}
	if !w.PutU8(e.PayloadType) {
		return false
	}
	if !w.PutU8(0) { // ack request slot, mutual-auth-with-slot only
		return false
	}
	return w.PutBytes(e.NextEncapRequest)
}
