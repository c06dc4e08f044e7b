package wire

import "github.com/openspdm/responder-core/pkg/codec"

// GetMeasurementsRequest asks for one or all measurement blocks, optionally
// signed over a requester nonce.
type GetMeasurementsRequest struct {
	RequestSignature bool
	RequestAll       bool
	MeasurementIndex uint8
	Nonce            []byte // present only when RequestSignature is set
	SlotID           uint8
}

func DecodeGetMeasurementsRequest(r *codec.Reader, nonceSize int) (GetMeasurementsRequest, bool) {
	var g GetMeasurementsRequest
	attrs, ok := r.ReadU8()
	if !ok {
		return g, false
	}
	g.RequestSignature = attrs&0x01 != 0
	idx, ok := r.ReadU8()
	if !ok {
		return g, false
	}
	g.MeasurementIndex = idx
	g.RequestAll = idx == 0xFF
	if g.RequestSignature {
		nonce, ok := r.ReadBytes(nonceSize)
		if !ok {
			return g, false
		}
		g.Nonce = append([]byte(nil), nonce...)
		slot, ok := r.ReadU8()
		if !ok {
			return g, false
		}
		g.SlotID = slot
	}
	return g, true
}

// MeasurementBlock is one DMTF or vendor-defined measurement record.
type MeasurementBlock struct {
	Index        uint8
	MeasurementSpec uint8
	Value        []byte
}

func (m MeasurementBlock) encodedLen() int {
	return 4 + len(m.Value)
}

// MeasurementsResponse carries the requested measurement block(s) plus, if
// a signature was requested, the responder's nonce, opaque data, and
// signature over the transcript.
type MeasurementsResponse struct {
	NumberOfBlocks uint8
	Blocks         []MeasurementBlock
	Nonce          []byte
	OpaqueData     []byte
	Signature      []byte
}

func (m MeasurementsResponse) EncodeTo(w *codec.Writer) bool {
	if !w.PutU8(m.NumberOfBlocks) {
		return false
	}
	totalLen := 0
	for _, b := range m.Blocks {
		totalLen += b.encodedLen()
	}
	// 3-byte little-endian length field per DSP0274's MeasurementRecordLength.
	if !w.PutU8(uint8(totalLen)) || !w.PutU8(uint8(totalLen>>8)) || !w.PutU8(uint8(totalLen>>16)) {
		return false
	}
	for _, b := range m.Blocks {
		if !w.PutU8(b.Index) || !w.PutU8(b.MeasurementSpec) || !w.PutU16(uint16(len(b.Value))) || !w.PutBytes(b.Value) {
			return false
		}
	}
	if len(m.Nonce) > 0 {
		if !w.PutBytes(m.Nonce) {
			return false
		}
	}
	if !w.PutU16(uint16(len(m.OpaqueData))) {
		return false
	}
	if !w.PutBytes(m.OpaqueData) {
		return false
	}
	if len(m.Signature) > 0 {
		if !w.PutBytes(m.Signature) {
			return false
		}
	}
	return true
}
