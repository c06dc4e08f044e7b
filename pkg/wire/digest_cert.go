package wire

import "github.com/openspdm/responder-core/pkg/codec"

// GetDigestsRequest carries no payload beyond the header.
type GetDigestsRequest struct{}

func DecodeGetDigestsRequest(r *codec.Reader) (GetDigestsRequest, bool) {
	return GetDigestsRequest{}, true
}

// DigestsResponse reports one hash digest per populated certificate-chain
// slot. SlotMask has one bit set per slot whose digest is present, matching
// the order of Digests.
type DigestsResponse struct {
	SlotMask uint8
	Digests  [][]byte
}

func (d DigestsResponse) EncodeTo(w *codec.Writer) bool {
	if !w.PutU8(d.SlotMask) {
		return false
	}
	for _, dg := range d.Digests {
		if !w.PutBytes(dg) {
			return false
		}
	}
	return true
}

func DecodeDigestsResponse(r *codec.Reader, digestSize int) (DigestsResponse, bool) {
	var d DigestsResponse
	mask, ok := r.ReadU8()
	if !ok {
		return d, false
	}
	d.SlotMask = mask
	for slot := 0; slot < 8; slot++ {
		if mask&(1<<uint(slot)) == 0 {
			continue
		}
		dg, ok := r.ReadBytes(digestSize)
		if !ok {
			return d, false
		}
		d.Digests = append(d.Digests, append([]byte(nil), dg...))
	}
	return d, true
}

// GetCertificateRequest asks for one chunk of the certificate chain in a
// given slot, starting at Offset, up to Length bytes.
type GetCertificateRequest struct {
	SlotID uint8
	Offset uint16
	Length uint16
}

func DecodeGetCertificateRequest(r *codec.Reader) (GetCertificateRequest, bool) {
	var g GetCertificateRequest
	slot, ok := r.ReadU8()
	if !ok {
		return g, false
	}
	g.SlotID = slot
	if _, ok := r.ReadU8(); !ok { // reserved
		return g, false
	}
	off, ok := r.ReadU16()
	if !ok {
		return g, false
	}
	g.Offset = off
	length, ok := r.ReadU16()
	if !ok {
		return g, false
	}
	g.Length = length
	return g, true
}

// CertificateResponse returns one chunk of a certificate chain: the total
// remaining length after this chunk (PortionLength/RemainderLength per
// DSP0274) plus the chunk bytes themselves.
type CertificateResponse struct {
	SlotID          uint8
	PortionLength   uint16
	RemainderLength uint16
	CertChainData   []byte
}

func (c CertificateResponse) EncodeTo(w *codec.Writer) bool {
	return w.PutU8(c.SlotID) &&
		w.PutU8(0) && // reserved
		w.PutU16(c.PortionLength) &&
		w.PutU16(c.RemainderLength) &&
		w.PutBytes(c.CertChainData)
}

func DecodeCertificateResponse(r *codec.Reader) (CertificateResponse, bool) {
	var c CertificateResponse
	slot, ok := r.ReadU8()
	if !ok {
		return c, false
	}
	c.SlotID = slot
	if _, ok := r.ReadU8(); !ok {
		return c, false
	}
	portion, ok := r.ReadU16()
	if !ok {
		return c, false
	}
	c.PortionLength = portion
	remainder, ok := r.ReadU16()
	if !ok {
		return c, false
	}
	c.RemainderLength = remainder
	data, ok := r.ReadBytes(int(portion))
	if !ok {
		return c, false
	}
	c.CertChainData = append([]byte(nil), data...)
	return c, true
}
