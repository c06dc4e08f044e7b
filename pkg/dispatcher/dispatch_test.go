package dispatcher

import (
	"context"
	"encoding/binary"
	"testing"
	"time"

	"github.com/openspdm/responder-core/pkg/codec"
	"github.com/openspdm/responder-core/pkg/crypto"
	"github.com/openspdm/responder-core/pkg/protocol"
	"github.com/openspdm/responder-core/pkg/session"
	"github.com/openspdm/responder-core/pkg/spdmcontext"
	"github.com/openspdm/responder-core/pkg/wire"
)

// sendClearRequest frames and sends a clear-scope request from the test's
// simulated requester.
func sendClearRequest(t *testing.T, pair *TestPair, version protocol.Version, code protocol.RequestResponseCode, payload []byte) {
	t.Helper()
	w := codec.NewWriter(make([]byte, wire.HeaderSize+len(payload)))
	hdr := wire.MessageHeader{Version: version, Code: code}
	if !hdr.EncodeTo(w) || !w.PutBytes(payload) {
		t.Fatalf("failed to build request for %s", code)
	}
	if err := pair.Peer.Send(context.Background(), wrapFrame(TagClear, w.UsedSlice())); err != nil {
		t.Fatalf("send %s: %v", code, err)
	}
}

// recvResponse reads and decodes the next clear-scope response the test's
// simulated requester receives.
func recvResponse(t *testing.T, pair *TestPair) (wire.MessageHeader, []byte) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	raw, err := pair.Peer.Receive(ctx)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	_, body, ok := unwrapFrame(raw)
	if !ok {
		t.Fatalf("malformed frame from responder")
	}
	header, ok := wire.DecodeHeader(codec.NewReader(body))
	if !ok {
		t.Fatalf("malformed response header")
	}
	return header, body[wire.HeaderSize:]
}

func processOne(t *testing.T, pair *TestPair) {
	t.Helper()
	handled, raw, err := pair.Responder.ProcessMessage(context.Background())
	if err != nil {
		t.Fatalf("ProcessMessage: %v (raw=%x)", err, raw)
	}
	if !handled {
		t.Fatalf("ProcessMessage reported unhandled with no error")
	}
}

func TestGetVersionRoundTrip(t *testing.T) {
	pair, err := NewTestPair(TestPairConfig{})
	if err != nil {
		t.Fatalf("NewTestPair: %v", err)
	}
	defer pair.Close()

	sendClearRequest(t, pair, protocol.Version11, protocol.CodeGetVersion, nil)
	processOne(t, pair)

	header, body := recvResponse(t, pair)
	if header.Code != protocol.CodeVersion {
		t.Fatalf("expected VERSION, got %s", header.Code)
	}
	resp, ok := wire.DecodeVersionResponse(codec.NewReader(body))
	if !ok {
		t.Fatalf("failed to decode VERSION response")
	}
	if len(resp.Entries) != len(protocol.SupportedVersions) {
		t.Fatalf("expected %d version entries, got %d", len(protocol.SupportedVersions), len(resp.Entries))
	}
	if pair.Responder.Context().State() != spdmcontext.AfterVersion {
		t.Fatalf("expected AfterVersion, got %v", pair.Responder.Context().State())
	}
}

func TestOutOfOrderCapabilitiesIsRejected(t *testing.T) {
	pair, err := NewTestPair(TestPairConfig{})
	if err != nil {
		t.Fatalf("NewTestPair: %v", err)
	}
	defer pair.Close()

	capReq := codec.NewWriter(make([]byte, 12))
	capReq.PutU8(0)
	capReq.PutU8(20)
	capReq.PutU16(0)
	capReq.PutU32(uint32(protocol.ReqCapCertCap | protocol.ReqCapChalCap))
	sendClearRequest(t, pair, protocol.Version11, protocol.CodeGetCapabilities, capReq.UsedSlice())
	processOne(t, pair)

	header, body := recvResponse(t, pair)
	if header.Code != protocol.CodeError {
		t.Fatalf("expected ERROR for out-of-order GET_CAPABILITIES, got %s", header.Code)
	}
	e, ok := wire.DecodeError(codec.NewReader(body), header)
	if !ok {
		t.Fatalf("failed to decode ERROR response")
	}
	if e.Code != protocol.ErrorUnexpectedRequest {
		t.Fatalf("expected ErrorUnexpectedRequest, got %s", e.Code)
	}
	if pair.Responder.Context().State() != spdmcontext.NotStarted {
		t.Fatalf("rejected request must not advance connection state, got %v", pair.Responder.Context().State())
	}
}

func TestNegotiationSequenceAdvancesState(t *testing.T) {
	pair, err := NewTestPair(TestPairConfig{})
	if err != nil {
		t.Fatalf("NewTestPair: %v", err)
	}
	defer pair.Close()

	sendClearRequest(t, pair, protocol.Version12, protocol.CodeGetVersion, nil)
	processOne(t, pair)
	recvResponse(t, pair)

	capReq := codec.NewWriter(make([]byte, 20))
	capReq.PutU8(0)
	capReq.PutU8(20)
	capReq.PutU16(0)
	capReq.PutU32(uint32(protocol.ReqCapCertCap | protocol.ReqCapChalCap | protocol.ReqCapEncapCap | protocol.ReqCapMutAuthCap))
	capReq.PutU32(4096)
	capReq.PutU32(4096)
	sendClearRequest(t, pair, protocol.Version12, protocol.CodeGetCapabilities, capReq.UsedSlice())
	processOne(t, pair)
	header, body := recvResponse(t, pair)
	if header.Code != protocol.CodeCapabilities {
		t.Fatalf("expected CAPABILITIES, got %s: %+v", header.Code, body)
	}
	if pair.Responder.Context().State() != spdmcontext.AfterCapabilities {
		t.Fatalf("expected AfterCapabilities, got %v", pair.Responder.Context().State())
	}

	algoReq := codec.NewWriter(make([]byte, 40))
	algoReq.PutU16(36)
	algoReq.PutU8(0) // measurement spec
	algoReq.PutU8(0)
	algoReq.PutU32(uint32(protocol.AsymECDSAP384))
	algoReq.PutU32(uint32(protocol.HashSHA384))
	algoReq.PutZero(12)
	algoReq.PutU32(uint32(protocol.DHEGroupSECP384R1))
	algoReq.PutU32(uint32(protocol.AEADAES256GCM))
	algoReq.PutU32(uint32(protocol.AsymECDSAP384))
	algoReq.PutU32(uint32(protocol.KeyScheduleHMACHash))
	sendClearRequest(t, pair, protocol.Version12, protocol.CodeNegotiateAlgorithms, algoReq.UsedSlice())
	processOne(t, pair)
	header, body = recvResponse(t, pair)
	if header.Code != protocol.CodeAlgorithms {
		t.Fatalf("expected ALGORITHMS, got %s: %+v", header.Code, body)
	}
	if pair.Responder.Context().State() != spdmcontext.Negotiated {
		t.Fatalf("expected Negotiated, got %v", pair.Responder.Context().State())
	}
	if pair.Responder.Context().Negotiation.BaseHashAlgo != protocol.HashSHA384 {
		t.Fatalf("expected SHA384 selected, got %v", pair.Responder.Context().Negotiation.BaseHashAlgo)
	}
}

func TestProcessMessageReturnsRawBytesOnUnroutableFrame(t *testing.T) {
	pair, err := NewTestPair(TestPairConfig{})
	if err != nil {
		t.Fatalf("NewTestPair: %v", err)
	}
	defer pair.Close()

	junk := []byte{0x99, 0x11, 0x84, 0x00, 0x00}
	if err := pair.Peer.Send(context.Background(), junk); err != nil {
		t.Fatalf("send junk frame: %v", err)
	}

	handled, raw, err := pair.Responder.ProcessMessage(context.Background())
	if handled {
		t.Fatalf("expected handled=false for an unrecognized frame tag")
	}
	if err == nil {
		t.Fatalf("expected a non-nil error for an unrecognized frame tag")
	}
	if string(raw) != string(junk) {
		t.Fatalf("expected raw to echo the received frame, got %x want %x", raw, junk)
	}
}

func TestSecuredFrameForUnknownSessionIsDroppedSilently(t *testing.T) {
	pair, err := NewTestPair(TestPairConfig{})
	if err != nil {
		t.Fatalf("NewTestPair: %v", err)
	}
	defer pair.Close()

	// SessionID 0xdeadbeef || SequenceNumber 0 || CipherLen 4 || 4 bytes of
	// ciphertext, naming a session the responder never allocated.
	body := make([]byte, 14+4)
	body[0], body[1], body[2], body[3] = 0xef, 0xbe, 0xad, 0xde
	body[12], body[13] = 4, 0
	if err := pair.Peer.Send(context.Background(), wrapFrame(TagSecured, body)); err != nil {
		t.Fatalf("send secured frame: %v", err)
	}

	handled, raw, err := pair.Responder.ProcessMessage(context.Background())
	if handled {
		t.Fatalf("expected handled=false for a frame naming an unknown session")
	}
	if err == nil {
		t.Fatalf("expected a non-nil error for a frame naming an unknown session")
	}
	if raw == nil {
		t.Fatalf("expected ProcessMessage to echo the received bytes on error")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := pair.Peer.Receive(ctx); err == nil {
		t.Fatalf("expected no response sent for an unrecognized session (silent drop)")
	}
}

// establishHandshakingSession drives GET_VERSION -> GET_CAPABILITIES ->
// NEGOTIATE_ALGORITHMS -> KEY_EXCHANGE to completion and returns the
// resulting Handshaking-state session plus the request-direction AEAD
// collaborator a test needs to hand-build a secured frame against it.
func establishHandshakingSession(t *testing.T, pair *TestPair, reqCaps protocol.RequestCapabilityFlags) (*session.Session, crypto.AEAD) {
	t.Helper()

	sendClearRequest(t, pair, protocol.Version12, protocol.CodeGetVersion, nil)
	processOne(t, pair)
	recvResponse(t, pair)

	capReq := codec.NewWriter(make([]byte, 20))
	capReq.PutU8(0)
	capReq.PutU8(20)
	capReq.PutU16(0)
	capReq.PutU32(uint32(reqCaps))
	capReq.PutU32(4096)
	capReq.PutU32(4096)
	sendClearRequest(t, pair, protocol.Version12, protocol.CodeGetCapabilities, capReq.UsedSlice())
	processOne(t, pair)
	if header, _ := recvResponse(t, pair); header.Code != protocol.CodeCapabilities {
		t.Fatalf("expected CAPABILITIES, got %s", header.Code)
	}

	algoReq := codec.NewWriter(make([]byte, 40))
	algoReq.PutU16(36)
	algoReq.PutU8(0)
	algoReq.PutU8(0)
	algoReq.PutU32(uint32(protocol.AsymECDSAP384))
	algoReq.PutU32(uint32(protocol.HashSHA384))
	algoReq.PutZero(12)
	algoReq.PutU32(uint32(protocol.DHEGroupSECP384R1))
	algoReq.PutU32(uint32(protocol.AEADAES256GCM))
	algoReq.PutU32(uint32(protocol.AsymECDSAP384))
	algoReq.PutU32(uint32(protocol.KeyScheduleHMACHash))
	sendClearRequest(t, pair, protocol.Version12, protocol.CodeNegotiateAlgorithms, algoReq.UsedSlice())
	processOne(t, pair)
	if header, _ := recvResponse(t, pair); header.Code != protocol.CodeAlgorithms {
		t.Fatalf("expected ALGORITHMS, got %s", header.Code)
	}

	const reqSessionID = uint16(0x1234)
	exchSize := 96 // SECP384R1 raw exchange data
	reqExchangeData := make([]byte, exchSize)
	for i := range reqExchangeData {
		reqExchangeData[i] = byte(i)
	}

	keReq := codec.NewWriter(make([]byte, 1+1+2+32+exchSize+2))
	keReq.PutU8(0) // MeasurementSummaryHashType: none requested
	keReq.PutU8(0) // SlotID
	keReq.PutU16(reqSessionID)
	keReq.PutZero(32) // RandomData
	keReq.PutBytes(reqExchangeData)
	keReq.PutU16(0) // no opaque data
	sendClearRequest(t, pair, protocol.Version12, protocol.CodeKeyExchange, keReq.UsedSlice())
	processOne(t, pair)
	header, body := recvResponse(t, pair)
	if header.Code != protocol.CodeKeyExchangeRsp {
		t.Fatalf("expected KEY_EXCHANGE_RSP, got %s: %+v", header.Code, body)
	}

	r := codec.NewReader(body)
	r.ReadU8()                              // HeartbeatPeriod
	r.ReadU8()                              // reserved
	rspSessionID, ok := r.ReadU16()
	if !ok {
		t.Fatalf("failed to read RspSessionID from KEY_EXCHANGE_RSP")
	}
	r.ReadU8() // MutAuthRequested
	r.ReadU8() // SlotIDParam
	r.ReadBytes(32)
	r.ReadBytes(exchSize) // ExchangeData, no MeasurementSummaryHash since type was 0

	sessionID := uint32(rspSessionID)<<16 | uint32(reqSessionID)
	sess := pair.Responder.Context().GetSession(sessionID)
	if sess == nil {
		t.Fatalf("KEY_EXCHANGE did not leave session %d in the table", sessionID)
	}
	if sess.State() != session.Handshaking {
		t.Fatalf("expected new session in Handshaking, got %v", sess.State())
	}

	aead, err := aeadForSession(pair.Responder.Context().Registry, pair.Responder.Context().Negotiation.AEADAlgo)
	if err != nil {
		t.Fatalf("aeadForSession: %v", err)
	}
	return sess, aead
}

// sendSecuredRequest AEAD-seals payload under sess's request-direction key
// at sequence number seq and sends it as a TagSecured frame, mirroring
// encodeSecuredMessage's framing but for the opposite direction (a test
// playing the requester rather than the responder sending a response).
func sendSecuredRequest(t *testing.T, pair *TestPair, sess *session.Session, aead crypto.AEAD, seq uint64, code protocol.RequestResponseCode, payload []byte) {
	t.Helper()
	w := codec.NewWriter(make([]byte, wire.HeaderSize+len(payload)))
	hdr := wire.MessageHeader{Version: protocol.Version12, Code: code}
	if !hdr.EncodeTo(w) || !w.PutBytes(payload) {
		t.Fatalf("failed to build secured request for %s", code)
	}
	plaintext := w.UsedSlice()

	keys := sess.RequestKey()
	nonce := buildNonce(keys.IV, aead.NonceSize(), seq)
	var aad [12]byte
	binary.LittleEndian.PutUint32(aad[0:4], sess.ID())
	binary.LittleEndian.PutUint64(aad[4:12], seq)
	ct := aead.Seal(keys.Key, nonce, plaintext, aad[:])

	frame := make([]byte, securedFrameHeaderSize+len(ct))
	binary.LittleEndian.PutUint32(frame[0:4], sess.ID())
	binary.LittleEndian.PutUint64(frame[4:12], seq)
	binary.LittleEndian.PutUint16(frame[12:14], uint16(len(ct)))
	copy(frame[14:], ct)

	if err := pair.Peer.Send(context.Background(), wrapFrame(TagSecured, frame)); err != nil {
		t.Fatalf("send secured %s: %v", code, err)
	}
}

// TestFinishOverSecuredChannelRejectedWhenHandshakeInTheClear exercises S5:
// once both peers negotiate HANDSHAKE_IN_THE_CLEAR_CAP, FINISH must arrive
// unencrypted, and a secured-channel FINISH is rejected rather than
// processed, even though the session it names is legitimately Handshaking.
func TestFinishOverSecuredChannelRejectedWhenHandshakeInTheClear(t *testing.T) {
	pair, err := NewTestPair(TestPairConfig{
		Capabilities: protocol.RspCapKeyExCap | protocol.RspCapHandshakeInTheClearCap,
	})
	if err != nil {
		t.Fatalf("NewTestPair: %v", err)
	}
	defer pair.Close()

	reqCaps := protocol.ReqCapHandshakeInTheClearCap
	sess, aead := establishHandshakingSession(t, pair, reqCaps)

	sendSecuredRequest(t, pair, sess, aead, 0, protocol.CodeFinish, []byte{0, 0})
	processOne(t, pair)

	header, body := recvResponse(t, pair)
	if header.Code != protocol.CodeError {
		t.Fatalf("expected ERROR for secured FINISH under HANDSHAKE_IN_THE_CLEAR_CAP, got %s", header.Code)
	}
	e, ok := wire.DecodeError(codec.NewReader(body), header)
	if !ok || e.Code != protocol.ErrorUnsupportedRequest {
		t.Fatalf("expected ErrorUnsupportedRequest, got %+v ok=%v", e, ok)
	}
	if sess.State() != session.Handshaking {
		t.Fatalf("rejected FINISH must not advance session state, got %v", sess.State())
	}
}

func TestVendorDefinedRequestAlwaysUnsupported(t *testing.T) {
	pair, err := NewTestPair(TestPairConfig{})
	if err != nil {
		t.Fatalf("NewTestPair: %v", err)
	}
	defer pair.Close()

	sendClearRequest(t, pair, protocol.Version11, protocol.CodeVendorDefinedRequest, []byte{0, 0})
	processOne(t, pair)
	header, body := recvResponse(t, pair)
	if header.Code != protocol.CodeError {
		t.Fatalf("expected ERROR, got %s", header.Code)
	}
	e, ok := wire.DecodeError(codec.NewReader(body), header)
	if !ok || e.Code != protocol.ErrorUnsupportedRequest {
		t.Fatalf("expected ErrorUnsupportedRequest, got %+v ok=%v", e, ok)
	}
}
