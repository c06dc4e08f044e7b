package dispatcher

import (
	"crypto/rand"
	"fmt"

	"github.com/openspdm/responder-core/pkg/codec"
	"github.com/openspdm/responder-core/pkg/protocol"
	"github.com/openspdm/responder-core/pkg/session"
	"github.com/openspdm/responder-core/pkg/spdmcontext"
	"github.com/openspdm/responder-core/pkg/wire"
)

// handleGetVersion answers GET_VERSION with every version this core
// supports; the requester picks the mutually-highest entry and uses it as
// the header version on every later message.
func handleGetVersion(d *Responder, sess *session.Session, header wire.MessageHeader, body []byte) (protocol.RequestResponseCode, []byte, error) {
	w := d.newResponseWriter()
	resp := wire.DefaultVersionResponse()
	if !resp.EncodeTo(w) {
		return 0, nil, wire.ErrResponseTooLarge()
	}
	d.ctx.AdvanceToAtLeast(spdmcontext.AfterVersion)
	return protocol.CodeVersion, w.UsedSlice(), nil
}

// handleGetCapabilities records the requester's capability flags and the
// version it has committed to (header.Version, fixed from here on for the
// connection), and echoes this responder's own capabilities.
func handleGetCapabilities(d *Responder, sess *session.Session, header wire.MessageHeader, body []byte) (protocol.RequestResponseCode, []byte, error) {
	req, ok := wire.DecodeGetCapabilitiesRequest(codec.NewReader(body))
	if !ok {
		return 0, nil, wire.ErrInvalidRequest()
	}
	d.ctx.Negotiation.Version = header.Version
	d.ctx.Negotiation.RequesterCaps = req.Flags
	d.ctx.Negotiation.ResponderCaps = d.capabilities

	w := d.newResponseWriter()
	resp := wire.CapabilitiesResponse{
		CTExponent:       d.ctExponent,
		Flags:            d.capabilities,
		DataTransferSize: d.dataTransferSize,
		MaxSPDMMsgSize:   d.maxSPDMMsgSize,
	}
	if !resp.EncodeTo(w) {
		return 0, nil, wire.ErrResponseTooLarge()
	}
	d.ctx.AdvanceToAtLeast(spdmcontext.AfterCapabilities)
	return protocol.CodeCapabilities, w.UsedSlice(), nil
}

// handleNegotiateAlgorithms selects exactly one algorithm per category from
// the requester's offered bitsets: the single hash, asymmetric, DHE and AEAD
// algorithm this core supports (see pickHash and its siblings), rejecting the
// request if any of them is not offered. The crypto.Registry is not consulted
// at this point. The result is recorded on Negotiation for every later
// exchange to consult.
func handleNegotiateAlgorithms(d *Responder, sess *session.Session, header wire.MessageHeader, body []byte) (protocol.RequestResponseCode, []byte, error) {
	req, ok := wire.DecodeAlgoRequest(codec.NewReader(body))
	if !ok {
		return 0, nil, wire.ErrInvalidRequest()
	}

	hashAlgo, ok := pickHash(req.BaseHashAlgo)
	if !ok {
		return 0, nil, wire.ErrUnsupportedRequest()
	}
	asymAlgo, ok := pickAsym(req.BaseAsymAlgo)
	if !ok {
		return 0, nil, wire.ErrUnsupportedRequest()
	}
	dheGroup, ok := pickDHE(req.DHEGroups)
	if !ok {
		return 0, nil, wire.ErrUnsupportedRequest()
	}
	aeadAlgo, ok := pickAEAD(req.AEADAlgos)
	if !ok {
		return 0, nil, wire.ErrUnsupportedRequest()
	}
	if req.KeyScheduleAlgo&protocol.KeyScheduleHMACHash == 0 {
		return 0, nil, wire.ErrUnsupportedRequest()
	}

	d.ctx.Negotiation.BaseHashAlgo = hashAlgo
	d.ctx.Negotiation.BaseAsymAlgo = asymAlgo
	d.ctx.Negotiation.DHEGroup = dheGroup
	d.ctx.Negotiation.AEADAlgo = aeadAlgo
	d.ctx.Negotiation.KeyScheduleAlgo = protocol.KeyScheduleHMACHash
	d.ctx.Negotiation.MeasurementHashAlgo = protocol.MeasurementHashSHA384

	w := d.newResponseWriter()
	resp := wire.AlgoResponse{
		MeasurementSpec:     req.MeasurementSpec,
		MeasurementHashAlgo: protocol.MeasurementHashSHA384,
		BaseAsymAlgo:        asymAlgo,
		BaseHashAlgo:        hashAlgo,
		DHEGroup:            dheGroup,
		AEADAlgo:            aeadAlgo,
		ReqBaseAsymAlgo:     asymAlgo,
		KeyScheduleAlgo:     protocol.KeyScheduleHMACHash,
	}
	if !resp.EncodeTo(w) {
		return 0, nil, wire.ErrResponseTooLarge()
	}
	d.ctx.AdvanceToAtLeast(spdmcontext.Negotiated)
	return protocol.CodeAlgorithms, w.UsedSlice(), nil
}

func pickHash(offered protocol.BaseHashAlgo) (protocol.BaseHashAlgo, bool) {
	if offered&protocol.HashSHA384 != 0 {
		return protocol.HashSHA384, true
	}
	return 0, false
}

func pickAsym(offered protocol.BaseAsymAlgo) (protocol.BaseAsymAlgo, bool) {
	if offered&protocol.AsymECDSAP384 != 0 {
		return protocol.AsymECDSAP384, true
	}
	return 0, false
}

func pickDHE(offered protocol.DHEGroup) (protocol.DHEGroup, bool) {
	if offered&protocol.DHEGroupSECP384R1 != 0 {
		return protocol.DHEGroupSECP384R1, true
	}
	return 0, false
}

func pickAEAD(offered protocol.AEADAlgo) (protocol.AEADAlgo, bool) {
	if offered&protocol.AEADAES256GCM != 0 {
		return protocol.AEADAES256GCM, true
	}
	return 0, false
}

// handleGetDigests reports a SHA-384 digest of every occupied certificate
// chain slot.
func handleGetDigests(d *Responder, sess *session.Session, header wire.MessageHeader, body []byte) (protocol.RequestResponseCode, []byte, error) {
	prov := d.ctx.Provisioning
	if prov == nil {
		return 0, nil, wire.ErrUnsupportedRequest()
	}
	hasher, err := d.ctx.Registry.Hasher(d.ctx.Negotiation.BaseHashAlgo)
	if err != nil {
		return 0, nil, wire.NewError(protocol.ErrorUnsupportedRequest, 0)
	}

	resp := wire.DigestsResponse{SlotMask: prov.SlotMask()}
	certOps, err := d.ctx.Registry.CertOps()
	if err != nil {
		return 0, nil, wire.NewError(protocol.ErrorUnsupportedRequest, 0)
	}
	for slot := 0; slot < spdmcontext.MaxSlots; slot++ {
		chain := prov.CertChains[slot]
		if chain == nil {
			continue
		}
		resp.Digests = append(resp.Digests, certOps.HashChain(chain, hasher))
	}

	w := d.newResponseWriter()
	if !resp.EncodeTo(w) {
		return 0, nil, wire.ErrResponseTooLarge()
	}
	d.ctx.AdvanceToAtLeast(spdmcontext.AfterDigest)
	return protocol.CodeDigests, w.UsedSlice(), nil
}

// handleGetCertificate returns one chunk of the requested slot's
// leaf-first DER certificate chain.
func handleGetCertificate(d *Responder, sess *session.Session, header wire.MessageHeader, body []byte) (protocol.RequestResponseCode, []byte, error) {
	req, ok := wire.DecodeGetCertificateRequest(codec.NewReader(body))
	if !ok {
		return 0, nil, wire.ErrInvalidRequest()
	}
	prov := d.ctx.Provisioning
	if prov == nil || !prov.SlotOccupied(spdmcontext.SlotID(req.SlotID)) {
		return 0, nil, wire.NewError(protocol.ErrorInvalidRequest, 0)
	}
	chain := prov.CertChains[req.SlotID]
	if int(req.Offset) > len(chain) {
		return 0, nil, wire.ErrInvalidRequest()
	}
	end := int(req.Offset) + int(req.Length)
	if end > len(chain) {
		end = len(chain)
	}
	portion := chain[req.Offset:end]

	resp := wire.CertificateResponse{
		SlotID:          req.SlotID,
		PortionLength:   uint16(len(portion)),
		RemainderLength: uint16(len(chain) - end),
		CertChainData:   portion,
	}
	w := d.newResponseWriter()
	if !resp.EncodeTo(w) {
		return 0, nil, wire.ErrResponseTooLarge()
	}
	if resp.RemainderLength == 0 {
		d.ctx.AdvanceToAtLeast(spdmcontext.AfterCertificate)
	}
	return protocol.CodeCertificate, w.UsedSlice(), nil
}

// handleChallenge proves possession of the private key bound to the
// requested slot, signing over the connection transcript accumulated so
// far (M1, already including this request, plus the response fields that
// precede the signature itself — DSP0274's M2).
func handleChallenge(d *Responder, sess *session.Session, header wire.MessageHeader, body []byte) (protocol.RequestResponseCode, []byte, error) {
	req, ok := wire.DecodeChallengeRequest(codec.NewReader(body), 32)
	if !ok {
		return 0, nil, wire.ErrInvalidRequest()
	}
	prov := d.ctx.Provisioning
	if prov == nil || !prov.SlotOccupied(spdmcontext.SlotID(req.SlotID)) {
		return 0, nil, wire.NewError(protocol.ErrorInvalidRequest, 0)
	}
	hasher, err := d.ctx.Registry.Hasher(d.ctx.Negotiation.BaseHashAlgo)
	if err != nil {
		return 0, nil, wire.ErrUnsupportedRequest()
	}
	certOps, err := d.ctx.Registry.CertOps()
	if err != nil {
		return 0, nil, wire.ErrUnsupportedRequest()
	}
	signer, err := d.ctx.Registry.Signer(d.ctx.Negotiation.BaseAsymAlgo)
	if err != nil {
		return 0, nil, wire.ErrUnsupportedRequest()
	}

	resp := wire.ChallengeAuthResponse{
		SlotID:        req.SlotID,
		CertChainHash: certOps.HashChain(prov.CertChains[req.SlotID], hasher),
	}
	resp.Nonce = make([]byte, 32)
	if _, err := rand.Read(resp.Nonce); err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrCrypto, err)
	}
	if req.MeasurementSummaryHashType != 0 {
		summary, err := summarizeMeasurements(d, hasher, req.MeasurementSummaryHashType)
		if err != nil {
			return 0, nil, err
		}
		resp.MeasurementSummaryHash = summary
	}

	// M2: M1 (already through this request) plus the response fields that
	// precede the signature, per DSP0274's definition of what CHALLENGE_AUTH
	// signs.
	m2 := d.ctx.Transcript.M1.Clone()
	m2.Write([]byte{resp.SlotID, 0})
	m2.Write(resp.CertChainHash)
	m2.Write(resp.Nonce)
	if len(resp.MeasurementSummaryHash) > 0 {
		m2.Write(resp.MeasurementSummaryHash)
	}
	sig, err := signer.Sign(m2.Sum())
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrCrypto, err)
	}
	resp.Signature = sig

	d.ctx.Peer.Authenticated = true
	d.ctx.Peer.CertChainHash = resp.CertChainHash

	w := d.newResponseWriter()
	if !resp.EncodeTo(w) {
		return 0, nil, wire.ErrResponseTooLarge()
	}
	d.ctx.AdvanceToAtLeast(spdmcontext.Authenticated)
	return protocol.CodeChallengeAuth, w.UsedSlice(), nil
}

// handleGetMeasurementsClear serves GET_MEASUREMENTS sent over the
// unsecured channel (permitted before a session exists, per DSP0274).
func handleGetMeasurementsClear(d *Responder, sess *session.Session, header wire.MessageHeader, body []byte) (protocol.RequestResponseCode, []byte, error) {
	return handleGetMeasurementsCommon(d, body)
}

// handleGetMeasurementsSecured serves GET_MEASUREMENTS inside an
// Established secure session; the measurement-block construction is
// identical to the clear path.
func handleGetMeasurementsSecured(d *Responder, sess *session.Session, header wire.MessageHeader, body []byte) (protocol.RequestResponseCode, []byte, error) {
	return handleGetMeasurementsCommon(d, body)
}

// handleKeyExchange opens a new DHE-keyed session: allocates a session ID,
// derives handshake secrets from a (simplified, see DESIGN.md) shared
// secret, and, when mutual authentication was requested, signs the
// handshake transcript hash so far.
func handleKeyExchange(d *Responder, sess *session.Session, header wire.MessageHeader, body []byte) (protocol.RequestResponseCode, []byte, error) {
	if !d.capabilities.Has(protocol.RspCapKeyExCap) {
		return 0, nil, wire.ErrUnsupportedRequest()
	}
	exchSize := dheExchangeSize(d.ctx.Negotiation.DHEGroup)
	req, ok := wire.DecodeKeyExchangeRequest(codec.NewReader(body), exchSize)
	if !ok {
		return 0, nil, wire.ErrInvalidRequest()
	}

	sessionID, err := d.ctx.Sessions.AllocateResponderID(req.ReqSessionID)
	if err != nil {
		return 0, nil, wire.ErrSessionLimitExceeded()
	}
	hasher, err := d.ctx.Registry.Hasher(d.ctx.Negotiation.BaseHashAlgo)
	if err != nil {
		return 0, nil, wire.ErrUnsupportedRequest()
	}

	sess2, err := session.New(session.Config{
		ID:               sessionID,
		Type:             session.TypeDHE,
		Hasher:           hasher,
		ConnectionPrefix: d.ctx.Transcript.Snapshot(),
	})
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrCrypto, err)
	}
	sess2.SetHeartbeatPeriod(d.heartbeatPeriod)
	sess2.SetMutAuthRequested(d.ctx.Negotiation.MutualAuthPossible())
	if sess2.MutAuthRequested() && d.ctx.Negotiation.EncapsulatedRequestSupported() {
		sess2.BeginEncap(1)
	}

	responderExchangeData := make([]byte, exchSize)
	if _, err := rand.Read(responderExchangeData); err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrCrypto, err)
	}

	// This core has no DHE collaborator (see crypto.Registry's lack of a
	// key-agreement slot); the shared secret is derived as a hash of both
	// sides' exchange data instead of a real Diffie-Hellman computation, a
	// documented simplification an embedder wiring a real DHE backend would
	// replace.
	sharedState := hasher.New()
	sharedState.Write(req.ExchangeData)
	sharedState.Write(responderExchangeData)
	sharedSecret := sharedState.Sum()

	aead, err := aeadForSession(d.ctx.Registry, d.ctx.Negotiation.AEADAlgo)
	if err != nil {
		return 0, nil, err
	}

	transcriptHash := sess2.Transcript().K.Sum()
	reqKeys, rspKeys := deriveDirectionKeys(d.keySchedule, sharedSecret, transcriptHash, aead.KeySize(), aead.NonceSize(), "req hs traffic", "rsp hs traffic")
	sess2.InstallHandshakeKeys(reqKeys, rspKeys)
	sess2.SetHandshakeSecret(sharedSecret)

	verifyData := d.keySchedule.Derive(sharedSecret, []byte("rsp hs verify"), transcriptHash, hasher.Algo().Size())

	resp := wire.KeyExchangeResponse{
		HeartbeatPeriod:     d.heartbeatPeriod,
		MutAuthRequested:    sess2.MutAuthRequested(),
		RspSessionID:        uint16(sessionID >> 16),
		RandomData:          make([]byte, 32),
		ExchangeData:        responderExchangeData,
		ResponderVerifyData: verifyData,
	}
	if _, err := rand.Read(resp.RandomData); err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrCrypto, err)
	}
	if req.MeasurementSummaryHashType != 0 {
		summary, err := summarizeMeasurements(d, hasher, req.MeasurementSummaryHashType)
		if err != nil {
			return 0, nil, err
		}
		resp.MeasurementSummaryHash = summary
	}
	if sess2.MutAuthRequested() {
		signer, err := d.ctx.Registry.Signer(d.ctx.Negotiation.BaseAsymAlgo)
		if err != nil {
			return 0, nil, wire.ErrUnsupportedRequest()
		}
		sig, err := signer.Sign(transcriptHash)
		if err != nil {
			return 0, nil, fmt.Errorf("%w: %v", ErrCrypto, err)
		}
		resp.Signature = sig
	}

	if err := d.ctx.Sessions.Add(sess2); err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrSessionLimitExceeded, err)
	}
	d.ctx.SetLastSessionID(sessionID)

	w := d.newResponseWriter()
	if !resp.EncodeTo(w) {
		return 0, nil, wire.ErrResponseTooLarge()
	}
	return protocol.CodeKeyExchangeRsp, w.UsedSlice(), nil
}

// handlePSKExchange opens a new pre-shared-key session: no DHE data, no
// signature — authentication comes from possession of the PSK itself.
func handlePSKExchange(d *Responder, sess *session.Session, header wire.MessageHeader, body []byte) (protocol.RequestResponseCode, []byte, error) {
	if !d.capabilities.Has(protocol.RspCapPSKCap) {
		return 0, nil, wire.ErrUnsupportedRequest()
	}
	req, ok := wire.DecodePSKExchangeRequest(codec.NewReader(body))
	if !ok {
		return 0, nil, wire.ErrInvalidRequest()
	}
	psk, ok := d.ctx.Provisioning.PSKs[string(req.PSKHint)]
	if !ok {
		return 0, nil, wire.NewError(protocol.ErrorInvalidRequest, 0)
	}

	sessionID, err := d.ctx.Sessions.AllocateResponderID(req.ReqSessionID)
	if err != nil {
		return 0, nil, wire.ErrSessionLimitExceeded()
	}
	hasher, err := d.ctx.Registry.Hasher(d.ctx.Negotiation.BaseHashAlgo)
	if err != nil {
		return 0, nil, wire.ErrUnsupportedRequest()
	}
	sess2, err := session.New(session.Config{
		ID:               sessionID,
		Type:             session.TypePSK,
		Hasher:           hasher,
		ConnectionPrefix: d.ctx.Transcript.Snapshot(),
		UsePSK:           true,
	})
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrCrypto, err)
	}
	sess2.SetHeartbeatPeriod(d.heartbeatPeriod)

	aead, err := aeadForSession(d.ctx.Registry, d.ctx.Negotiation.AEADAlgo)
	if err != nil {
		return 0, nil, err
	}
	transcriptHash := sess2.Transcript().K.Sum()
	reqKeys, rspKeys := deriveDirectionKeys(d.keySchedule, psk, transcriptHash, aead.KeySize(), aead.NonceSize(), "req hs traffic", "rsp hs traffic")
	sess2.InstallHandshakeKeys(reqKeys, rspKeys)
	sess2.SetHandshakeSecret(psk)

	verifyData := d.keySchedule.Derive(psk, []byte("rsp hs verify"), transcriptHash, hasher.Algo().Size())

	resp := wire.PSKExchangeResponse{
		HeartbeatPeriod:     d.heartbeatPeriod,
		RspSessionID:        uint16(sessionID >> 16),
		ResponderVerifyData: verifyData,
	}
	if req.MeasurementSummaryHashType != 0 {
		summary, err := summarizeMeasurements(d, hasher, req.MeasurementSummaryHashType)
		if err != nil {
			return 0, nil, err
		}
		resp.MeasurementSummaryHash = summary
	}

	if err := d.ctx.Sessions.Add(sess2); err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrSessionLimitExceeded, err)
	}
	d.ctx.SetLastSessionID(sessionID)

	w := d.newResponseWriter()
	if !resp.EncodeTo(w) {
		return 0, nil, wire.ErrResponseTooLarge()
	}
	return protocol.CodePSKExchangeRsp, w.UsedSlice(), nil
}

// handleVendorDefined has no vendor registry wired into this core; it
// always reports the request unsupported rather than silently dropping it.
func handleVendorDefined(d *Responder, sess *session.Session, header wire.MessageHeader, body []byte) (protocol.RequestResponseCode, []byte, error) {
	return 0, nil, wire.ErrUnsupportedRequest()
}

// handleResponseIfReadyReject rejects RESPONSE_IF_READY as an unsupported
// request: this core never defers a response (every handler above completes
// synchronously), so there is nothing for a requester to poll for.
func handleResponseIfReadyReject(d *Responder, sess *session.Session, header wire.MessageHeader, body []byte) (protocol.RequestResponseCode, []byte, error) {
	return 0, nil, wire.ErrUnsupportedRequest()
}
