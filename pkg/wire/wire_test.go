package wire

import (
	"bytes"
	"testing"

	"github.com/openspdm/responder-core/pkg/codec"
	"github.com/openspdm/responder-core/pkg/protocol"
)

func TestMessageHeaderRoundtrip(t *testing.T) {
	buf := make([]byte, HeaderSize)
	w := codec.NewWriter(buf)
	h := MessageHeader{Version: protocol.Version11, Code: protocol.CodeGetVersion, Param1: 1, Param2: 2}
	if !h.EncodeTo(w) {
		t.Fatalf("encode failed")
	}
	r := codec.NewReader(w.UsedSlice())
	got, ok := DecodeHeader(r)
	if !ok || got != h {
		t.Fatalf("roundtrip mismatch: got %+v, ok=%v", got, ok)
	}
}

func TestPeekCodeAndVersion(t *testing.T) {
	buf := make([]byte, HeaderSize)
	w := codec.NewWriter(buf)
	h := MessageHeader{Version: protocol.Version12, Code: protocol.CodeGetCapabilities}
	h.EncodeTo(w)
	code, ok := PeekCode(w.UsedSlice())
	if !ok || code != protocol.CodeGetCapabilities {
		t.Fatalf("PeekCode mismatch: %v ok=%v", code, ok)
	}
	v, ok := PeekVersion(w.UsedSlice())
	if !ok || v != protocol.Version12 {
		t.Fatalf("PeekVersion mismatch: %v ok=%v", v, ok)
	}
	if _, ok := PeekCode([]byte{1, 2}); ok {
		t.Fatalf("expected PeekCode to fail on short buffer")
	}
}

func TestErrorResponseRoundtrip(t *testing.T) {
	buf := make([]byte, 64)
	w := codec.NewWriter(buf)
	e := ErrInvalidRequest()
	if !e.EncodeTo(w, protocol.Version11) {
		t.Fatalf("encode failed")
	}
	r := codec.NewReader(w.UsedSlice())
	hdr, ok := DecodeHeader(r)
	if !ok || hdr.Code != protocol.CodeError {
		t.Fatalf("expected ERROR header")
	}
	got, ok := DecodeError(r, hdr)
	if !ok {
		t.Fatalf("decode failed")
	}
	if got.Code != protocol.ErrorInvalidRequest {
		t.Errorf("code mismatch: %v", got.Code)
	}
}

func TestVersionResponseRoundtrip(t *testing.T) {
	v := DefaultVersionResponse()
	buf := make([]byte, 64)
	w := codec.NewWriter(buf)
	if !v.EncodeTo(w) {
		t.Fatalf("encode failed")
	}
	r := codec.NewReader(w.UsedSlice())
	got, ok := DecodeVersionResponse(r)
	if !ok {
		t.Fatalf("decode failed")
	}
	if len(got.Entries) != len(v.Entries) {
		t.Fatalf("entry count mismatch: got %d want %d", len(got.Entries), len(v.Entries))
	}
	for i := range got.Entries {
		if got.Entries[i] != v.Entries[i] {
			t.Errorf("entry %d mismatch: got %+v want %+v", i, got.Entries[i], v.Entries[i])
		}
	}
}

func TestCapabilitiesResponseRoundtrip(t *testing.T) {
	c := CapabilitiesResponse{
		CTExponent:       12,
		Flags:            protocol.RspCapCertCap | protocol.RspCapChalCap,
		DataTransferSize: 4096,
		MaxSPDMMsgSize:   4096,
	}
	buf := make([]byte, 32)
	w := codec.NewWriter(buf)
	if !c.EncodeTo(w) {
		t.Fatalf("encode failed")
	}
	r := codec.NewReader(w.UsedSlice())
	got, ok := DecodeCapabilitiesResponse(r)
	if !ok || got != c {
		t.Fatalf("roundtrip mismatch: got %+v ok=%v", got, ok)
	}
}

func TestAlgoResponseRoundtrip(t *testing.T) {
	a := AlgoResponse{
		MeasurementSpec:     1,
		MeasurementHashAlgo: protocol.MeasurementHashSHA384,
		BaseAsymAlgo:        protocol.AsymECDSAP384,
		BaseHashAlgo:        protocol.HashSHA384,
		DHEGroup:            protocol.DHEGroupSECP384R1,
		AEADAlgo:            protocol.AEADAES256GCM,
		ReqBaseAsymAlgo:     protocol.AsymECDSAP384,
		KeyScheduleAlgo:     protocol.KeyScheduleHMACHash,
	}
	buf := make([]byte, 64)
	w := codec.NewWriter(buf)
	if !a.EncodeTo(w) {
		t.Fatalf("encode failed")
	}
	r := codec.NewReader(w.UsedSlice())
	got, ok := DecodeAlgoResponse(r)
	if !ok || got != a {
		t.Fatalf("roundtrip mismatch: got %+v ok=%v", got, ok)
	}
}

func TestDigestsResponseRoundtrip(t *testing.T) {
	digest := bytes.Repeat([]byte{0xAB}, 48)
	d := DigestsResponse{SlotMask: 0x01, Digests: [][]byte{digest}}
	buf := make([]byte, 64)
	w := codec.NewWriter(buf)
	if !d.EncodeTo(w) {
		t.Fatalf("encode failed")
	}
	r := codec.NewReader(w.UsedSlice())
	got, ok := DecodeDigestsResponse(r, 48)
	if !ok {
		t.Fatalf("decode failed")
	}
	if got.SlotMask != d.SlotMask || len(got.Digests) != 1 || !bytes.Equal(got.Digests[0], digest) {
		t.Fatalf("roundtrip mismatch: %+v", got)
	}
}

func TestCertificateResponseRoundtrip(t *testing.T) {
	chain := []byte("fake-der-cert-chain-bytes")
	c := CertificateResponse{SlotID: 0, PortionLength: uint16(len(chain)), RemainderLength: 0, CertChainData: chain}
	buf := make([]byte, 64)
	w := codec.NewWriter(buf)
	if !c.EncodeTo(w) {
		t.Fatalf("encode failed")
	}
	r := codec.NewReader(w.UsedSlice())
	got, ok := DecodeCertificateResponse(r)
	if !ok || !bytes.Equal(got.CertChainData, chain) {
		t.Fatalf("roundtrip mismatch: %+v ok=%v", got, ok)
	}
}

func TestWriterOverflowPropagatesThroughPayloadEncode(t *testing.T) {
	c := CapabilitiesResponse{Flags: protocol.RspCapCertCap}
	tiny := make([]byte, 3)
	w := codec.NewWriter(tiny)
	if c.EncodeTo(w) {
		t.Fatalf("expected encode to fail into an undersized buffer")
	}
	if w.Used() != 0 {
		t.Errorf("expected no partial writes to land, got Used()=%d", w.Used())
	}
}

func TestKeyUpdateRequestDecodesFromHeaderParams(t *testing.T) {
	h := MessageHeader{Code: protocol.CodeKeyUpdate, Param1: uint8(KeyUpdateUpdateKey), Param2: 0x42}
	got := DecodeKeyUpdateRequest(h)
	if got.Operation != KeyUpdateUpdateKey || got.Tag != 0x42 {
		t.Errorf("unexpected decode: %+v", got)
	}
}

func TestEndSessionRequestPreserveStateBit(t *testing.T) {
	h := MessageHeader{Code: protocol.CodeEndSession, Param1: EndSessionPreserveState}
	got := DecodeEndSessionRequest(h)
	if !got.PreserveNegotiatedState {
		t.Errorf("expected PreserveNegotiatedState to be set")
	}
	h2 := MessageHeader{Code: protocol.CodeEndSession, Param1: 0}
	if DecodeEndSessionRequest(h2).PreserveNegotiatedState {
		t.Errorf("expected PreserveNegotiatedState to be unset")
	}
}

func TestVendorDefinedRoundtrip(t *testing.T) {
	v := VendorDefinedResponse{StandardID: 0x8086, VendorID: []byte{0x01, 0x02}, VendorPayload: []byte("payload")}
	buf := make([]byte, 64)
	w := codec.NewWriter(buf)
	if !v.EncodeTo(w) {
		t.Fatalf("encode failed")
	}
	r := codec.NewReader(w.UsedSlice())
	got, ok := DecodeVendorDefinedRequest(r)
	if !ok {
		t.Fatalf("decode failed")
	}
	if got.StandardID != v.StandardID || !bytes.Equal(got.VendorID, v.VendorID) || !bytes.Equal(got.VendorPayload, v.VendorPayload) {
		t.Fatalf("roundtrip mismatch: %+v", got)
	}
}
