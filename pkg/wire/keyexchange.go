package wire

import "github.com/openspdm/responder-core/pkg/codec"

// KeyExchangeRequest opens a new secure session: the requester's DHE
// public key exchange data plus a freshness nonce, and a measurement
// summary hash selector.
type KeyExchangeRequest struct {
	MeasurementSummaryHashType uint8
	SlotID                     uint8
	ReqSessionID               uint16
	RandomData                 []byte // fixed 32-byte session nonce per DSP0274
	ExchangeData               []byte // DHE public value, size depends on negotiated group
	OpaqueData                 []byte
}

func DecodeKeyExchangeRequest(r *codec.Reader, exchangeDataSize int) (KeyExchangeRequest, bool) {
	var k KeyExchangeRequest
	mhtype, ok := r.ReadU8()
	if !ok {
		return k, false
	}
	k.MeasurementSummaryHashType = mhtype
	slot, ok := r.ReadU8()
	if !ok {
		return k, false
	}
	k.SlotID = slot
	sid, ok := r.ReadU16()
	if !ok {
		return k, false
	}
	k.ReqSessionID = sid
	random, ok := r.ReadBytes(32)
	if !ok {
		return k, false
	}
	k.RandomData = append([]byte(nil), random...)
	exch, ok := r.ReadBytes(exchangeDataSize)
	if !ok {
		return k, false
	}
	k.ExchangeData = append([]byte(nil), exch...)
	opLen, ok := r.ReadU16()
	if !ok {
		return k, false
	}
	op, ok := r.ReadBytes(int(opLen))
	if !ok {
		return k, false
	}
	k.OpaqueData = append([]byte(nil), op...)
	return k, true
}

// KeyExchangeResponse is KEY_EXCHANGE_RSP: the responder's half of the
// session ID, its own DHE exchange data and freshness nonce, a measurement
// summary hash, opaque data, a signature over the transcript so far
// (written only when Signature is non-empty), and the HMAC "Responder
// verify data" derived from the handshake secret.
type KeyExchangeResponse struct {
	HeartbeatPeriod        uint8
	MutAuthRequested       bool
	SlotIDParam            uint8
	RspSessionID           uint16
	MeasurementSummaryHash []byte
	RandomData             []byte
	ExchangeData           []byte
	OpaqueData             []byte
	Signature              []byte
	ResponderVerifyData    []byte
}

func (k KeyExchangeResponse) EncodeTo(w *codec.Writer) bool {
	if !w.PutU8(k.HeartbeatPeriod) {
		return false
	}
	if !w.PutU8(0) { // reserved
		return false
	}
	if !w.PutU16(k.RspSessionID) {
		return false
	}
	mutAuth := uint8(0)
	if k.MutAuthRequested {
		mutAuth = 1
	}
	if !w.PutU8(mutAuth) {
		return false
	}
	if !w.PutU8(k.SlotIDParam) {
		return false
	}
	if !w.PutBytes(k.RandomData) {
		return false
	}
	if !w.PutBytes(k.ExchangeData) {
		return false
	}
	if len(k.MeasurementSummaryHash) > 0 {
		if !w.PutBytes(k.MeasurementSummaryHash) {
			return false
		}
	}
	if !w.PutU16(uint16(len(k.OpaqueData))) {
		return false
	}
	if !w.PutBytes(k.OpaqueData) {
		return false
	}
	if len(k.Signature) > 0 {
		if !w.PutBytes(k.Signature) {
			return false
		}
	}
	return w.PutBytes(k.ResponderVerifyData)
}
