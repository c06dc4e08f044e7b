package refimpl

import (
	"crypto/x509"
	"time"

	"github.com/openspdm/responder-core/pkg/crypto"
)

// x509CertOps implements crypto.CertOps over stdlib crypto/x509. Unlike the
// teacher's TLV-encoded NOC/ICAC/RCAC chain, SPDM certificate chains are
// plain DER-encoded X.509 certificates concatenated leaf-first (DSP0274
// CertificateResponse); the validate-then-extract structure below mirrors
// the teacher's chain-walk but the parse step is x509.ParseCertificate
// rather than a Matter TLV decode.
type x509CertOps struct{}

// NewX509CertOps returns the reference certificate-chain validator.
func NewX509CertOps() crypto.CertOps { return x509CertOps{} }

func (x509CertOps) ParseChain(chain []byte, rootOfTrust []byte) ([]byte, error) {
	certs, err := splitDERChain(chain)
	if err != nil || len(certs) == 0 {
		return nil, crypto.ErrCertChainInvalid
	}

	root, err := x509.ParseCertificate(rootOfTrust)
	if err != nil {
		return nil, crypto.ErrCertChainInvalid
	}

	pool := x509.NewCertPool()
	pool.AddCert(root)

	intermediates := x509.NewCertPool()
	for _, c := range certs[1:] {
		intermediates.AddCert(c)
	}

	leaf := certs[0]
	now := time.Now()
	if _, err := leaf.Verify(x509.VerifyOptions{
		Roots:         pool,
		Intermediates: intermediates,
		CurrentTime:   now,
		KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
	}); err != nil {
		return nil, crypto.ErrCertChainInvalid
	}

	return leaf.RawSubjectPublicKeyInfo, nil
}

func (x509CertOps) HashChain(chain []byte, hasher crypto.Hasher) []byte {
	state := hasher.New()
	state.Write(chain)
	return state.Sum()
}

// splitDERChain walks a concatenated sequence of DER certificates, as
// DSP0274 packs them in GetCertificate/Certificate responses, returning
// them leaf-first in the same order they appear on the wire.
func splitDERChain(chain []byte) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate
	rest := chain
	for len(rest) > 0 {
		cert, err := x509.ParseCertificate(rest)
		if err == nil {
			certs = append(certs, cert)
			break
		}
		// x509.ParseCertificate requires the input to be exactly one
		// certificate; walk the ASN.1 length prefix to find the next one.
		n, ok := asn1SequenceLength(rest)
		if !ok {
			return nil, err
		}
		cert, err = x509.ParseCertificate(rest[:n])
		if err != nil {
			return nil, err
		}
		certs = append(certs, cert)
		rest = rest[n:]
	}
	return certs, nil
}

// asn1SequenceLength reports the total encoded length (tag+length+content)
// of the leading DER SEQUENCE in buf, without fully parsing it.
func asn1SequenceLength(buf []byte) (int, bool) {
	if len(buf) < 2 || buf[0] != 0x30 {
		return 0, false
	}
	lenByte := buf[1]
	if lenByte < 0x80 {
		return 2 + int(lenByte), true
	}
	numBytes := int(lenByte &^ 0x80)
	if numBytes == 0 || numBytes > 4 || len(buf) < 2+numBytes {
		return 0, false
	}
	length := 0
	for i := 0; i < numBytes; i++ {
		length = length<<8 | int(buf[2+i])
	}
	return 2 + numBytes + length, true
}
