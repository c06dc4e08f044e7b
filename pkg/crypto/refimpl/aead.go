package refimpl

import (
	"crypto/aes"
	"crypto/cipher"

	"github.com/openspdm/responder-core/pkg/crypto"
	"github.com/openspdm/responder-core/pkg/protocol"
)

// aes256GCM implements crypto.AEAD using stdlib crypto/aes + crypto/cipher,
// the standard-library AEAD construction the teacher codebase reaches for
// throughout its message-security layer, generalized here from AES-CCM to
// the GCM mode SPDM's AEADAlgo set mandates.
type aes256GCM struct{}

// NewAES256GCM returns the reference AES-256-GCM AEAD collaborator.
func NewAES256GCM() crypto.AEAD { return aes256GCM{} }

func (aes256GCM) Algo() protocol.AEADAlgo { return protocol.AEADAES256GCM }
func (aes256GCM) KeySize() int            { return 32 }
func (aes256GCM) NonceSize() int          { return 12 }

func (aes256GCM) Seal(key, nonce, plaintext, additionalData []byte) []byte {
	gcm, err := newGCM(key)
	if err != nil {
		return nil
	}
	return gcm.Seal(nil, nonce, plaintext, additionalData)
}

func (aes256GCM) Open(key, nonce, ciphertext, additionalData []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, crypto.ErrOpenFailed
	}
	pt, err := gcm.Open(nil, nonce, ciphertext, additionalData)
	if err != nil {
		return nil, crypto.ErrOpenFailed
	}
	return pt, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
