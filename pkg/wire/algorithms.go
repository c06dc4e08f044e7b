package wire

import (
	"github.com/openspdm/responder-core/pkg/codec"
	"github.com/openspdm/responder-core/pkg/protocol"
)

// AlgoRequest is the decoded form of a NEGOTIATE_ALGORITHMS request. This
// core only tracks the fields the dispatcher's negotiation logic actually
// consults; the ReqAlgStruct extension table (DHE/AEAD/ReqBaseAsymAlg/
// KeySchedule priority entries) is preserved as raw bytes and reinterpreted
// by the crypto-selection step rather than fully modeled here, since its
// shape is a variable-count, variable-length TLV-like list.
type AlgoRequest struct {
	MeasurementSpec   uint8
	BaseAsymAlgo      protocol.BaseAsymAlgo
	BaseHashAlgo      protocol.BaseHashAlgo
	DHEGroups         protocol.DHEGroup
	AEADAlgos         protocol.AEADAlgo
	ReqBaseAsymAlgo   protocol.BaseAsymAlgo
	KeyScheduleAlgo   protocol.KeyScheduleAlgo
}

func DecodeAlgoRequest(r *codec.Reader) (AlgoRequest, bool) {
	var a AlgoRequest
	length, ok := r.ReadU16()
	if !ok {
		return a, false
	}
	measSpec, ok := r.ReadU8()
	if !ok {
		return a, false
	}
	a.MeasurementSpec = measSpec
	if _, ok := r.ReadU8(); !ok { // reserved
		return a, false
	}
	asym, ok := r.ReadU32()
	if !ok {
		return a, false
	}
	a.BaseAsymAlgo = protocol.BaseAsymAlgo(asym)
	hash, ok := r.ReadU32()
	if !ok {
		return a, false
	}
	a.BaseHashAlgo = protocol.BaseHashAlgo(hash)
	if !r.Skip(12) { // reserved + ext asym/hash counts, not modeled
		return a, false
	}
	dhe, ok := r.ReadU32()
	if !ok {
		return a, false
	}
	a.DHEGroups = protocol.DHEGroup(dhe)
	aead, ok := r.ReadU32()
	if !ok {
		return a, false
	}
	a.AEADAlgos = protocol.AEADAlgo(aead)
	reqAsym, ok := r.ReadU32()
	if !ok {
		return a, false
	}
	a.ReqBaseAsymAlgo = protocol.BaseAsymAlgo(reqAsym)
	ks, ok := r.ReadU32()
	if !ok {
		return a, false
	}
	a.KeyScheduleAlgo = protocol.KeyScheduleAlgo(ks)
	// Any remaining bytes up to the declared length are the extension
	// struct table; skip them rather than interpret.
	consumed := 32 // header through KeyScheduleAlgo inclusive, fixed portion
	if int(length) > consumed {
		r.Skip(int(length) - consumed)
	}
	return a, true
}

// AlgoResponse is the ALGORITHMS response this core sends back, selecting
// exactly one algorithm per category from the requester's offered set.
type AlgoResponse struct {
	MeasurementSpec uint8
	MeasurementHashAlgo protocol.MeasurementHashAlgo
	BaseAsymAlgo    protocol.BaseAsymAlgo
	BaseHashAlgo    protocol.BaseHashAlgo
	DHEGroup        protocol.DHEGroup
	AEADAlgo        protocol.AEADAlgo
	ReqBaseAsymAlgo protocol.BaseAsymAlgo
	KeyScheduleAlgo protocol.KeyScheduleAlgo
}

func (a AlgoResponse) EncodeTo(w *codec.Writer) bool {
	const fixedLen = 36
	return w.PutU16(fixedLen) &&
		w.PutU8(a.MeasurementSpec) &&
		w.PutU8(0) && // reserved
		w.PutU32(uint32(a.MeasurementHashAlgo)) &&
		w.PutU32(uint32(a.BaseAsymAlgo)) &&
		w.PutU32(uint32(a.BaseHashAlgo)) &&
		w.PutZero(12) && // reserved + ext count fields, none offered
		w.PutU32(uint32(a.DHEGroup)) &&
		w.PutU32(uint32(a.AEADAlgo)) &&
		w.PutU32(uint32(a.ReqBaseAsymAlgo)) &&
		w.PutU32(uint32(a.KeyScheduleAlgo))
}

func DecodeAlgoResponse(r *codec.Reader) (AlgoResponse, bool) {
	var a AlgoResponse
	if _, ok := r.ReadU16(); !ok { // length
		return a, false
	}
	measSpec, ok := r.ReadU8()
	if !ok {
		return a, false
	}
	a.MeasurementSpec = measSpec
	if _, ok := r.ReadU8(); !ok {
		return a, false
	}
	measHash, ok := r.ReadU32()
	if !ok {
		return a, false
	}
	a.MeasurementHashAlgo = protocol.MeasurementHashAlgo(measHash)
	asym, ok := r.ReadU32()
	if !ok {
		return a, false
	}
	a.BaseAsymAlgo = protocol.BaseAsymAlgo(asym)
	hash, ok := r.ReadU32()
	if !ok {
		return a, false
	}
	a.BaseHashAlgo = protocol.BaseHashAlgo(hash)
	if !r.Skip(12) {
		return a, false
	}
	dhe, ok := r.ReadU32()
	if !ok {
		return a, false
	}
	a.DHEGroup = protocol.DHEGroup(dhe)
	aead, ok := r.ReadU32()
	if !ok {
		return a, false
	}
	a.AEADAlgo = protocol.AEADAlgo(aead)
	reqAsym, ok := r.ReadU32()
	if !ok {
		return a, false
	}
	a.ReqBaseAsymAlgo = protocol.BaseAsymAlgo(reqAsym)
	ks, ok := r.ReadU32()
	if !ok {
		return a, false
	}
	a.KeyScheduleAlgo = protocol.KeyScheduleAlgo(ks)
	return a, true
}
