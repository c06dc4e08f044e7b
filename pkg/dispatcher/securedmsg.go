package dispatcher

import (
	"encoding/binary"
	"fmt"

	"github.com/openspdm/responder-core/pkg/crypto"
	"github.com/openspdm/responder-core/pkg/protocol"
	"github.com/openspdm/responder-core/pkg/session"
)

// securedFrameHeaderSize is SessionID (4) + SequenceNumber (8) + CipherLen (2).
const securedFrameHeaderSize = 4 + 8 + 2

// encodeSecuredMessage AEAD-seals payload under sess's response-direction
// key and frames it as SessionID || SequenceNumber || CipherLen || Ciphertext.
// The sequence number and session ID together form the AEAD additional
// data, binding the ciphertext to both.
func encodeSecuredMessage(aead crypto.AEAD, sess *session.Session, payload []byte) ([]byte, error) {
	seq, err := sess.NextResponseSequence()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCrypto, err)
	}
	keys := sess.ResponseKey()
	nonce := buildNonce(keys.IV, aead.NonceSize(), seq)

	var aad [12]byte
	binary.LittleEndian.PutUint32(aad[0:4], sess.ID())
	binary.LittleEndian.PutUint64(aad[4:12], seq)

	ct := aead.Seal(keys.Key, nonce, payload, aad[:])

	out := make([]byte, securedFrameHeaderSize+len(ct))
	binary.LittleEndian.PutUint32(out[0:4], sess.ID())
	binary.LittleEndian.PutUint64(out[4:12], seq)
	binary.LittleEndian.PutUint16(out[12:14], uint16(len(ct)))
	copy(out[14:], ct)
	return out, nil
}

// decodeSecuredMessage parses a secured frame, looks up its session, and
// opens the ciphertext under the request-direction key, verifying the
// sequence number on the wire matches the receiver's expected counter.
func decodeSecuredMessage(table *session.Table, aead crypto.AEAD, frame []byte) (*session.Session, []byte, error) {
	if len(frame) < securedFrameHeaderSize {
		return nil, nil, fmt.Errorf("%w: secured frame too short", ErrInvalidMsgField)
	}
	sessionID := binary.LittleEndian.Uint32(frame[0:4])
	seq := binary.LittleEndian.Uint64(frame[4:12])
	ctLen := int(binary.LittleEndian.Uint16(frame[12:14]))
	if len(frame) != securedFrameHeaderSize+ctLen {
		return nil, nil, fmt.Errorf("%w: secured frame length mismatch", ErrInvalidMsgField)
	}
	ct := frame[securedFrameHeaderSize:]

	sess := table.Get(sessionID)
	if sess == nil {
		return nil, nil, fmt.Errorf("%w: unknown session %d", ErrDecrypt, sessionID)
	}

	expected, err := sess.NextRequestSequence()
	if err != nil {
		return sess, nil, fmt.Errorf("%w: %v", ErrCrypto, err)
	}
	if seq != expected {
		return sess, nil, fmt.Errorf("%w: sequence number mismatch, want %d got %d", ErrDecrypt, expected, seq)
	}

	keys := sess.RequestKey()
	nonce := buildNonce(keys.IV, aead.NonceSize(), seq)

	var aad [12]byte
	binary.LittleEndian.PutUint32(aad[0:4], sessionID)
	binary.LittleEndian.PutUint64(aad[4:12], seq)

	pt, err := aead.Open(keys.Key, nonce, ct, aad[:])
	if err != nil {
		return sess, nil, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	return sess, pt, nil
}

// buildNonce XORs seq, big-endian, into the low-order bytes of iv, the
// fixed-IV-plus-counter construction DSP0277 uses to avoid transmitting a
// fresh nonce per secured message.
func buildNonce(iv []byte, nonceSize int, seq uint64) []byte {
	nonce := make([]byte, nonceSize)
	copy(nonce, iv)
	var seqBytes [8]byte
	binary.BigEndian.PutUint64(seqBytes[:], seq)
	for i := 0; i < 8 && i < nonceSize; i++ {
		nonce[nonceSize-1-i] ^= seqBytes[7-i]
	}
	return nonce
}

// aeadForSession returns the registered AEAD collaborator for the
// algorithm this connection negotiated.
func aeadForSession(reg *crypto.Registry, algo protocol.AEADAlgo) (crypto.AEAD, error) {
	a, err := reg.AEAD(algo)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedCap, err)
	}
	return a, nil
}
