package wire

import "github.com/openspdm/responder-core/pkg/codec"

// ChallengeRequest asks the responder to prove possession of the private
// key for a given certificate-chain slot over a requester-supplied nonce.
type ChallengeRequest struct {
	SlotID            uint8
	MeasurementSummaryHashType uint8
	Nonce             []byte
}

func DecodeChallengeRequest(r *codec.Reader, nonceSize int) (ChallengeRequest, bool) {
	var c ChallengeRequest
	slot, ok := r.ReadU8()
	if !ok {
		return c, false
	}
	c.SlotID = slot
	mhtype, ok := r.ReadU8()
	if !ok {
		return c, false
	}
	c.MeasurementSummaryHashType = mhtype
	nonce, ok := r.ReadBytes(nonceSize)
	if !ok {
		return c, false
	}
	c.Nonce = append([]byte(nil), nonce...)
	return c, true
}

// ChallengeAuthResponse is CHALLENGE_AUTH: the responder's certificate-chain
// hash, its own nonce, an optional measurement summary hash, opaque data,
// and a signature over the accumulated transcript.
type ChallengeAuthResponse struct {
	SlotID                  uint8
	CertChainHash           []byte
	Nonce                   []byte
	MeasurementSummaryHash  []byte
	OpaqueData              []byte
	Signature               []byte
}

func (c ChallengeAuthResponse) EncodeTo(w *codec.Writer) bool {
	if !w.PutU8(c.SlotID) {
		return false
	}
	if !w.PutU8(0) { // reserved, basic-mutual-auth bit unset
		return false
	}
	if !w.PutBytes(c.CertChainHash) {
		return false
	}
	if !w.PutBytes(c.Nonce) {
		return false
	}
	if len(c.MeasurementSummaryHash) > 0 {
		if !w.PutBytes(c.MeasurementSummaryHash) {
			return false
		}
	}
	if !w.PutU16(uint16(len(c.OpaqueData))) {
		return false
	}
	if !w.PutBytes(c.OpaqueData) {
		return false
	}
	return w.PutBytes(c.Signature)
}

func DecodeChallengeAuthResponse(r *codec.Reader, hashSize, nonceSize, sigSize int, hasMeasSummary bool) (ChallengeAuthResponse, bool) {
	var c ChallengeAuthResponse
	slot, ok := r.ReadU8()
	if !ok {
		return c, false
	}
	c.SlotID = slot
	if _, ok := r.ReadU8(); !ok {
		return c, false
	}
	hash, ok := r.ReadBytes(hashSize)
	if !ok {
		return c, false
	}
	c.CertChainHash = append([]byte(nil), hash...)
	nonce, ok := r.ReadBytes(nonceSize)
	if !ok {
		return c, false
	}
	c.Nonce = append([]byte(nil), nonce...)
	if hasMeasSummary {
		ms, ok := r.ReadBytes(hashSize)
		if !ok {
			return c, false
		}
		c.MeasurementSummaryHash = append([]byte(nil), ms...)
	}
	opLen, ok := r.ReadU16()
	if !ok {
		return c, false
	}
	op, ok := r.ReadBytes(int(opLen))
	if !ok {
		return c, false
	}
	c.OpaqueData = append([]byte(nil), op...)
	sig, ok := r.ReadBytes(sigSize)
	if !ok {
		return c, false
	}
	c.Signature = append([]byte(nil), sig...)
	return c, true
}
