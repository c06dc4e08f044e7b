package refimpl

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"math/big"

	"github.com/openspdm/responder-core/pkg/crypto"
	"github.com/openspdm/responder-core/pkg/protocol"
)

// ecdsaP384Signer implements crypto.Signer over a single ECDSA P-384 key
// pair, the asymmetric algorithm this reference set advertises in
// ALGORITHMS. Generalized from the teacher's P-256 key-pair wrapper.
type ecdsaP384Signer struct {
	private *ecdsa.PrivateKey
}

// NewECDSAP384Signer returns a Signer wrapping an existing P-384 private
// key (loaded from the provisioning store by internal/provision).
func NewECDSAP384Signer(private *ecdsa.PrivateKey) crypto.Signer {
	return &ecdsaP384Signer{private: private}
}

// GenerateECDSAP384Key creates a fresh P-384 key pair, for tests and
// local-development provisioning.
func GenerateECDSAP384Key() (*ecdsa.PrivateKey, error) {
	return ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
}

func (s *ecdsaP384Signer) Algo() protocol.BaseAsymAlgo { return protocol.AsymECDSAP384 }

func (s *ecdsaP384Signer) Sign(transcriptHash []byte) ([]byte, error) {
	r, sVal, err := ecdsa.Sign(rand.Reader, s.private, transcriptHash)
	if err != nil {
		return nil, err
	}
	return encodeRawSignature(r, sVal, 48), nil
}

func (s *ecdsaP384Signer) Verify(publicKey, transcriptHash, signature []byte) error {
	pub, err := x509.ParsePKIXPublicKey(publicKey)
	if err != nil {
		return crypto.ErrVerifyFailed
	}
	ecdsaPub, ok := pub.(*ecdsa.PublicKey)
	if !ok {
		return crypto.ErrVerifyFailed
	}
	r, sVal, err := decodeRawSignature(signature, 48)
	if err != nil {
		return crypto.ErrVerifyFailed
	}
	if !ecdsa.Verify(ecdsaPub, transcriptHash, r, sVal) {
		return crypto.ErrVerifyFailed
	}
	return nil
}

// encodeRawSignature packs r||s into the fixed-width raw format SPDM's
// wire format uses (not ASN.1 DER, unlike TLS).
func encodeRawSignature(r, s *big.Int, coordSize int) []byte {
	out := make([]byte, coordSize*2)
	r.FillBytes(out[:coordSize])
	s.FillBytes(out[coordSize:])
	return out
}

func decodeRawSignature(sig []byte, coordSize int) (*big.Int, *big.Int, error) {
	if len(sig) != coordSize*2 {
		return nil, nil, crypto.ErrVerifyFailed
	}
	r := new(big.Int).SetBytes(sig[:coordSize])
	s := new(big.Int).SetBytes(sig[coordSize:])
	return r, s, nil
}
