// Package refimpl provides a reference set of crypto.Registry collaborators
// built entirely on the Go standard library and golang.org/x/crypto: SHA-384
// hashing and HMAC-based key schedule, AES-256-GCM AEAD, ECDSA P-384
// signing, and x509 certificate-chain validation. It exists so this module
// is runnable out of the box; a production deployment is expected to
// register hardware- or FIPS-module-backed collaborators instead.
package refimpl

import (
	"crypto/hmac"
	"crypto/sha512"
	"hash"

	"github.com/openspdm/responder-core/pkg/crypto"
	"github.com/openspdm/responder-core/pkg/protocol"
)

// sha384Hasher implements crypto.Hasher over stdlib crypto/sha512's
// SHA-384 variant.
type sha384Hasher struct{}

// NewSHA384Hasher returns the reference SHA-384 Hasher.
func NewSHA384Hasher() crypto.Hasher { return sha384Hasher{} }

func (sha384Hasher) Algo() protocol.BaseHashAlgo { return protocol.HashSHA384 }

func (sha384Hasher) New() crypto.HashState {
	return &hashState{h: sha512.New384()}
}

func (sha384Hasher) HMAC(key, data []byte) []byte {
	mac := hmac.New(sha512.New384, key)
	mac.Write(data)
	return mac.Sum(nil)
}

// hashState adapts stdlib hash.Hash to crypto.HashState, cloning via a
// fresh hash seeded by re-writing the accumulated bytes — sha512.New384
// does not expose internal state cloning, so Clone pays a re-hash of the
// buffered prefix rather than a true state copy.
type hashState struct {
	h    hash.Hash
	full []byte
}

func (s *hashState) Write(p []byte) {
	s.full = append(s.full, p...)
	s.h.Write(p)
}

func (s *hashState) Sum() []byte {
	return s.h.Sum(nil)
}

func (s *hashState) Clone() crypto.HashState {
	clone := sha512.New384()
	clone.Write(s.full)
	buf := make([]byte, len(s.full))
	copy(buf, s.full)
	return &hashState{h: clone, full: buf}
}
