package dispatcher

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/pion/logging"

	"github.com/openspdm/responder-core/pkg/crypto"
	"github.com/openspdm/responder-core/pkg/crypto/refimpl"
	"github.com/openspdm/responder-core/pkg/protocol"
	"github.com/openspdm/responder-core/pkg/spdmcontext"
	"github.com/openspdm/responder-core/pkg/transport"
)

// TestPair wires one Responder to a transport.Loopback endpoint and
// exposes the other endpoint as a raw peer a test drives directly — this
// package's analogue of pkg/exchange/testpair.go's NewTestManagerPair,
// collapsed to one side since this core has no requester implementation
// to pair two Responders against.
type TestPair struct {
	Responder *Responder
	Peer      *transport.Loopback
}

// TestPairConfig lets a test override the default capability/provisioning
// set NewTestPair wires in. Zero-value Config fields fall back to a
// reasonable default for exercising the full negotiation sequence.
type TestPairConfig struct {
	Capabilities protocol.ResponseCapabilityFlags
	Provisioning *spdmcontext.Provisioning
}

// defaultTestCapabilities advertises every capability this core
// implements a handler for, so a single TestPair can drive the full
// negotiation -> authentication -> session -> FINISH -> data sequence.
const defaultTestCapabilities = protocol.RspCapCertCap |
	protocol.RspCapChalCap |
	protocol.RspCapMeasCapSig |
	protocol.RspCapEncapCap |
	protocol.RspCapHBeatCap |
	protocol.RspCapKeyUpdCap |
	protocol.RspCapPSKCap |
	protocol.RspCapKeyExCap |
	protocol.RspCapMutAuthCap

// NewTestPair builds a Responder with the reference crypto collaborators
// registered in a fresh, isolated Registry, a self-signed P-384
// certificate chain in slot 0, and one Loopback endpoint as its transport,
// returning the other endpoint for the test to act as the requester.
func NewTestPair(cfg TestPairConfig) (*TestPair, error) {
	reg := crypto.NewRegistry()
	if err := refimpl.Register(reg); err != nil {
		return nil, err
	}

	priv, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	if err != nil {
		return nil, err
	}
	signer := refimpl.NewECDSAP384Signer(priv)
	if err := reg.RegisterSigner(signer); err != nil {
		return nil, err
	}

	hasher, err := reg.Hasher(protocol.HashSHA384)
	if err != nil {
		return nil, err
	}

	prov := cfg.Provisioning
	if prov == nil {
		chain, root, err := selfSignedTestChain(priv)
		if err != nil {
			return nil, err
		}
		prov = &spdmcontext.Provisioning{
			PSKs: map[string][]byte{"test-psk": []byte("0123456789abcdef0123456789abcdef")},
		}
		prov.CertChains[0] = chain
		prov.Signers[0] = signer
		prov.RootOfTrust = root
	}

	responderSide, peerSide := transport.NewLoopbackPair()

	caps := cfg.Capabilities
	if caps == 0 {
		caps = defaultTestCapabilities
	}

	ctx := spdmcontext.New(spdmcontext.Config{
		Hasher:       hasher,
		Registry:     reg,
		Provisioning: prov,
		DeviceIO:     responderSide,
	})

	// Suffix the logger scope with a short unique label so concurrently
	// running tests' log output (at -v) can be told apart by peer.
	loggerName := fmt.Sprintf("spdm-test-%s", uuid.New().String()[:8])

	r := New(Config{
		Context:      ctx,
		Logger:       logging.NewDefaultLoggerFactory().NewLogger(loggerName),
		Capabilities: caps,
		CTExponent:   20,
		KeySchedule:  refimpl.NewHKDFKeySchedule(),
	})

	return &TestPair{Responder: r, Peer: peerSide}, nil
}

// Close releases the loopback transport underlying this pair.
func (p *TestPair) Close() {
	p.Peer.Close()
}

// selfSignedTestChain generates a single self-signed certificate under
// priv, acting as its own root of trust, so NewX509CertOps.ParseChain has
// something to validate a CHALLENGE/FINISH signature against without a
// real PKI in tests.
func selfSignedTestChain(priv *ecdsa.PrivateKey) (chain, root []byte, err error) {
	template := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "spdm-test-responder"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(100 * 365 * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &priv.PublicKey, priv)
	if err != nil {
		return nil, nil, err
	}
	return der, der, nil
}
