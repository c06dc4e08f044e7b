package wire

import (
	"github.com/openspdm/responder-core/pkg/codec"
	"github.com/openspdm/responder-core/pkg/protocol"
)

// GetCapabilitiesRequest carries the requester's capability flags and
// timing/size parameters.
type GetCapabilitiesRequest struct {
	CTExponent uint8
	Flags      protocol.RequestCapabilityFlags
	DataTransferSize uint32
	MaxSPDMMsgSize   uint32
}

func DecodeGetCapabilitiesRequest(r *codec.Reader) (GetCapabilitiesRequest, bool) {
	var g GetCapabilitiesRequest
	if _, ok := r.ReadU8(); !ok { // reserved
		return g, false
	}
	ct, ok := r.ReadU8()
	if !ok {
		return g, false
	}
	g.CTExponent = ct
	if _, ok := r.ReadU16(); !ok { // reserved
		return g, false
	}
	flags, ok := r.ReadU32()
	if !ok {
		return g, false
	}
	g.Flags = protocol.RequestCapabilityFlags(flags)
	// DataTransferSize/MaxSPDMMsgSize are only present from 1.2 on; absent
	// on a 1.1-or-earlier request is not an error, just leaves zero values.
	if r.Len() >= 8 {
		dts, _ := r.ReadU32()
		mms, _ := r.ReadU32()
		g.DataTransferSize = dts
		g.MaxSPDMMsgSize = mms
	}
	return g, true
}

// CapabilitiesResponse carries the responder's own advertised capabilities.
type CapabilitiesResponse struct {
	CTExponent       uint8
	Flags            protocol.ResponseCapabilityFlags
	DataTransferSize uint32
	MaxSPDMMsgSize   uint32
}

func (c CapabilitiesResponse) EncodeTo(w *codec.Writer) bool {
	if w.Remaining() < 16 {
		return false
	}
	return w.PutU8(0) && // reserved
		w.PutU8(c.CTExponent) &&
		w.PutU16(0) && // reserved
		w.PutU32(uint32(c.Flags)) &&
		w.PutU32(c.DataTransferSize) &&
		w.PutU32(c.MaxSPDMMsgSize)
}

func DecodeCapabilitiesResponse(r *codec.Reader) (CapabilitiesResponse, bool) {
	var c CapabilitiesResponse
	if _, ok := r.ReadU8(); !ok {
		return c, false
	}
	ct, ok := r.ReadU8()
	if !ok {
		return c, false
	}
	c.CTExponent = ct
	if _, ok := r.ReadU16(); !ok {
		return c, false
	}
	flags, ok := r.ReadU32()
	if !ok {
		return c, false
	}
	c.Flags = protocol.ResponseCapabilityFlags(flags)
	if r.Len() >= 8 {
		dts, _ := r.ReadU32()
		mms, _ := r.ReadU32()
		c.DataTransferSize = dts
		c.MaxSPDMMsgSize = mms
	}
	return c, true
}
