package wire

import "github.com/openspdm/responder-core/pkg/codec"

// PSKExchangeRequest opens a new session under a pre-shared key, identified
// by PSKHint, instead of a Diffie-Hellman exchange.
type PSKExchangeRequest struct {
	MeasurementSummaryHashType uint8
	ReqSessionID               uint16
	PSKHint                    []byte
	PSKContext                 []byte
	OpaqueData                 []byte
}

func DecodePSKExchangeRequest(r *codec.Reader) (PSKExchangeRequest, bool) {
	var p PSKExchangeRequest
	mhtype, ok := r.ReadU8()
	if !ok {
		return p, false
	}
	p.MeasurementSummaryHashType = mhtype
	if _, ok := r.ReadU8(); !ok { // reserved
		return p, false
	}
	sid, ok := r.ReadU16()
	if !ok {
		return p, false
	}
	p.ReqSessionID = sid
	hintLen, ok := r.ReadU16()
	if !ok {
		return p, false
	}
	ctxLen, ok := r.ReadU16()
	if !ok {
		return p, false
	}
	opLen, ok := r.ReadU16()
	if !ok {
		return p, false
	}
	hint, ok := r.ReadBytes(int(hintLen))
	if !ok {
		return p, false
	}
	p.PSKHint = append([]byte(nil), hint...)
	ctx, ok := r.ReadBytes(int(ctxLen))
	if !ok {
		return p, false
	}
	p.PSKContext = append([]byte(nil), ctx...)
	op, ok := r.ReadBytes(int(opLen))
	if !ok {
		return p, false
	}
	p.OpaqueData = append([]byte(nil), op...)
	return p, true
}

// PSKExchangeResponse is PSK_EXCHANGE_RSP, the PSK analogue of
// KeyExchangeResponse (no DHE data, no signature — authentication comes
// from possession of the PSK).
type PSKExchangeResponse struct {
	HeartbeatPeriod        uint8
	RspSessionID           uint16
	MeasurementSummaryHash []byte
	ResponderContext       []byte
	OpaqueData             []byte
	ResponderVerifyData    []byte
}

func (p PSKExchangeResponse) EncodeTo(w *codec.Writer) bool {
	if !w.PutU8(p.HeartbeatPeriod) {
		return false
	}
	if !w.PutU8(0) { // reserved
		return false
	}
	if !w.PutU16(p.RspSessionID) {
		return false
	}
	if !w.PutU16(uint16(len(p.ResponderContext))) {
		return false
	}
	if !w.PutU16(uint16(len(p.OpaqueData))) {
		return false
	}
	if len(p.MeasurementSummaryHash) > 0 {
		if !w.PutBytes(p.MeasurementSummaryHash) {
			return false
		}
	}
	if !w.PutBytes(p.ResponderContext) {
		return false
	}
	if !w.PutBytes(p.OpaqueData) {
		return false
	}
	return w.PutBytes(p.ResponderVerifyData)
}
