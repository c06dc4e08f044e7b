package wire

import "github.com/openspdm/responder-core/pkg/codec"

// VendorDefinedRequest carries an opaque, vendor-interpreted payload tagged
// by a registry ID. The dispatcher routes it to a vendor handler without
// inspecting VendorPayload itself.
type VendorDefinedRequest struct {
	StandardID    uint16
	VendorID      []byte
	VendorPayload []byte
}

func DecodeVendorDefinedRequest(r *codec.Reader) (VendorDefinedRequest, bool) {
	var v VendorDefinedRequest
	std, ok := r.ReadU16()
	if !ok {
		return v, false
	}
	v.StandardID = std
	vidLen, ok := r.ReadU8()
	if !ok {
		return v, false
	}
	vid, ok := r.ReadBytes(int(vidLen))
	if !ok {
		return v, false
	}
	v.VendorID = append([]byte(nil), vid...)
	payloadLen, ok := r.ReadU16()
	if !ok {
		return v, false
	}
	payload, ok := r.ReadBytes(int(payloadLen))
	if !ok {
		return v, false
	}
	v.VendorPayload = append([]byte(nil), payload...)
	return v, true
}

// VendorDefinedResponse is the reply to VendorDefinedRequest, structurally
// identical.
type VendorDefinedResponse struct {
	StandardID    uint16
	VendorID      []byte
	VendorPayload []byte
}

func (v VendorDefinedResponse) EncodeTo(w *codec.Writer) bool {
	if !w.PutU16(v.StandardID) {
		return false
	}
	if !w.PutU8(uint8(len(v.VendorID))) {
		return false
	}
	if !w.PutBytes(v.VendorID) {
		return false
	}
	if !w.PutU16(uint16(len(v.VendorPayload))) {
		return false
	}
	return w.PutBytes(v.VendorPayload)
}
