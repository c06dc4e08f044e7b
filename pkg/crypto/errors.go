package crypto

import "errors"

var (
	// ErrAlgoNotRegistered is returned when a Hasher/Signer/AEAD/CertOps
	// lookup finds no collaborator registered for the requested algorithm.
	ErrAlgoNotRegistered = errors.New("crypto: algorithm not registered")

	// ErrAlreadyRegistered is returned by a Register call made after a slot
	// has already been filled; the registry is write-once per algorithm.
	ErrAlreadyRegistered = errors.New("crypto: algorithm already registered")

	// ErrVerifyFailed is returned by Signer.Verify on a signature mismatch.
	ErrVerifyFailed = errors.New("crypto: signature verification failed")

	// ErrOpenFailed is returned by AEAD.Open on an authentication tag
	// mismatch or malformed ciphertext.
	ErrOpenFailed = errors.New("crypto: AEAD open failed")

	// ErrCertChainInvalid is returned by CertOps.ParseChain when the chain
	// does not parse or does not validate against the supplied root.
	ErrCertChainInvalid = errors.New("crypto: certificate chain invalid")
)
