// Package provision loads a responder's identity material — its slot-0
// signing key, certificate chain, and root of trust — from PEM files on
// disk into a spdmcontext.Provisioning, and falls back to generating a
// throwaway self-signed identity for local development when no files are
// given. Modeled on internal/config's load-then-default pattern.
package provision

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/openspdm/responder-core/pkg/crypto"
	"github.com/openspdm/responder-core/pkg/crypto/refimpl"
	"github.com/openspdm/responder-core/pkg/spdmcontext"
)

// FileConfig names the PEM files a responder's slot-0 identity is loaded
// from. CertPath and KeyPath must both be set together; RootPath defaults
// to CertPath (the common case of a single self-signed leaf acting as its
// own root).
type FileConfig struct {
	CertPath string
	KeyPath  string
	RootPath string
}

// Load builds a Provisioning and its matching Signer from PEM files named
// by fc. If fc is the zero value, it generates an ephemeral self-signed
// P-384 identity instead, suitable for local development but not for a
// deployment a requester is expected to actually trust.
func Load(fc FileConfig) (*spdmcontext.Provisioning, crypto.Signer, error) {
	if fc.CertPath == "" && fc.KeyPath == "" {
		return generateEphemeral()
	}
	if fc.CertPath == "" || fc.KeyPath == "" {
		return nil, nil, fmt.Errorf("provision: cert-path and key-path must both be set")
	}

	certDER, err := readPEMBlock(fc.CertPath, "CERTIFICATE")
	if err != nil {
		return nil, nil, err
	}
	keyDER, err := readPEMBlock(fc.KeyPath, "EC PRIVATE KEY")
	if err != nil {
		return nil, nil, err
	}
	priv, err := x509.ParseECPrivateKey(keyDER)
	if err != nil {
		return nil, nil, fmt.Errorf("provision: parse EC key %s: %w", fc.KeyPath, err)
	}

	rootPath := fc.RootPath
	if rootPath == "" {
		rootPath = fc.CertPath
	}
	rootDER, err := readPEMBlock(rootPath, "CERTIFICATE")
	if err != nil {
		return nil, nil, err
	}

	signer := refimpl.NewECDSAP384Signer(priv)
	prov := &spdmcontext.Provisioning{
		PSKs: map[string][]byte{},
	}
	prov.CertChains[0] = certDER
	prov.Signers[0] = signer
	prov.RootOfTrust = rootDER
	return prov, signer, nil
}

// WithPSK adds a PSK hint/secret pair to prov, for deployments that also
// advertise PSK_CAP.
func WithPSK(prov *spdmcontext.Provisioning, hint string, secret []byte) {
	prov.PSKs[hint] = secret
}

func readPEMBlock(path, wantType string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("provision: read %s: %w", path, err)
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("provision: %s contains no PEM data", path)
	}
	if block.Type != wantType && block.Type != "PRIVATE KEY" {
		return nil, fmt.Errorf("provision: %s has PEM type %q, want %q", path, block.Type, wantType)
	}
	return block.Bytes, nil
}

// generateEphemeral mints a throwaway P-384 key and a single self-signed
// CA certificate used as both the chain and the root of trust, the same
// shape dispatcher.NewTestPair builds for tests.
func generateEphemeral() (*spdmcontext.Provisioning, crypto.Signer, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	if err != nil {
		return nil, nil, err
	}
	template := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "spdm-responder-ephemeral"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(365 * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &priv.PublicKey, priv)
	if err != nil {
		return nil, nil, err
	}
	signer := refimpl.NewECDSAP384Signer(priv)
	prov := &spdmcontext.Provisioning{
		PSKs: map[string][]byte{},
	}
	prov.CertChains[0] = der
	prov.Signers[0] = signer
	prov.RootOfTrust = der
	return prov, signer, nil
}
