package refimpl

import "github.com/openspdm/responder-core/pkg/crypto"

// Register wires the reference Hasher (SHA-384), AEAD (AES-256-GCM) and
// CertOps (X.509) into reg; it registers no Signer (see the note below). Callers
// that want a different backend for one algorithm (e.g. a hardware signer)
// should call the individual New* constructors and Register* methods
// directly instead of using this convenience wrapper.
func Register(reg *crypto.Registry) error {
	if err := reg.RegisterHasher(NewSHA384Hasher()); err != nil {
		return err
	}
	if err := reg.RegisterAEAD(NewAES256GCM()); err != nil {
		return err
	}
	if err := reg.RegisterCertOps(NewX509CertOps()); err != nil {
		return err
	}
	return nil
}

// RegisterSigner is separated from Register because a Signer needs a
// provisioned private key, which Register's no-argument signature cannot
// supply; callers provision it explicitly via reg.RegisterSigner(
// NewECDSAP384Signer(key)).
