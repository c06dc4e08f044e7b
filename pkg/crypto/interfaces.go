// Package crypto defines the cryptographic collaborator interfaces this
// responder core depends on, and a process-wide registry for wiring in
// concrete implementations.
//
// The core never hard-codes a specific hash, signature, or AEAD library:
// every cryptographic operation an SPDM responder performs (hashing the
// transcript, signing CHALLENGE_AUTH, deriving session secrets, encrypting
// secured messages, validating a certificate chain) goes through one of
// the interfaces below, selected at runtime by the algorithm negotiated in
// NEGOTIATE_ALGORITHMS. This mirrors how the Rust reference implementation
// keeps spdmlib's protocol state machine independent of any specific crypto
// backend via its crypto::*::register() hooks.
package crypto

import (
	"github.com/openspdm/responder-core/pkg/protocol"
)

// HashState accumulates bytes and produces a running or final digest. It is
// the incremental counterpart to Hasher, used to build the transcript hash
// accumulators (A, B, C, M1/M2, K, F, L) without re-hashing from scratch on
// every appended message.
type HashState interface {
	Write(p []byte)
	Sum() []byte
	Clone() HashState
}

// Hasher produces HashState instances for one negotiated hash algorithm.
type Hasher interface {
	Algo() protocol.BaseHashAlgo
	New() HashState
	HMAC(key, data []byte) []byte
}

// KeySchedule derives session secrets from a shared or pre-shared secret
// and the accumulated transcript hash, per DSP0274 Annex on the SPDM key
// schedule (itself modeled on TLS 1.3's HKDF-based schedule).
type KeySchedule interface {
	// Derive expands secret with label and context via HKDF-Expand-Label,
	// writing length bytes of output key material.
	Derive(secret, label, context []byte, length int) []byte
}

// Signer produces and (for mutual authentication) verifies signatures over
// an SPDM transcript hash, using the responder's slot-bound private key.
type Signer interface {
	Algo() protocol.BaseAsymAlgo
	Sign(transcriptHash []byte) ([]byte, error)
	Verify(publicKey, transcriptHash, signature []byte) error
}

// AEAD performs authenticated encryption/decryption of secured SPDM
// messages using one negotiated AEAD algorithm.
type AEAD interface {
	Algo() protocol.AEADAlgo
	KeySize() int
	NonceSize() int
	Seal(key, nonce, plaintext, additionalData []byte) []byte
	Open(key, nonce, ciphertext, additionalData []byte) ([]byte, error)
}

// CertOps validates certificate chains and extracts the leaf public key
// used to verify a CHALLENGE_AUTH or FINISH signature.
type CertOps interface {
	// ParseChain parses a DER-encoded certificate chain (leaf-first, per
	// DSP0274's CertificateResponse ordering convention) and validates it
	// against rootOfTrust. Returns the leaf certificate's public key bytes
	// in the form Signer.Verify expects.
	ParseChain(chain []byte, rootOfTrust []byte) (leafPublicKey []byte, err error)

	// HashChain returns the hash of the full certificate chain as stored in
	// the DIGESTS response, using hasher.
	HashChain(chain []byte, hasher Hasher) []byte
}
