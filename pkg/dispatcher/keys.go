package dispatcher

import (
	"github.com/openspdm/responder-core/pkg/crypto"
	"github.com/openspdm/responder-core/pkg/protocol"
	"github.com/openspdm/responder-core/pkg/session"
)

// dheExchangeSize reports the raw exchange-data size, in bytes, a DHE group
// carries on the wire. The reference set only supports SECP384R1 (raw
// x||y coordinates); the FFDHE entries are included for completeness of the
// NEGOTIATE_ALGORITHMS bit space even though this core has no FFDHE
// collaborator to exercise them.
func dheExchangeSize(group protocol.DHEGroup) int {
	switch group {
	case protocol.DHEGroupFFDHE2048:
		return 256
	case protocol.DHEGroupFFDHE3072:
		return 384
	case protocol.DHEGroupSECP256R1:
		return 64
	case protocol.DHEGroupSECP384R1:
		return 96
	default:
		return 0
	}
}

// asymSignatureSize reports the raw (non-DER) signature size, in bytes,
// produced by a base asymmetric algorithm — twice the curve's coordinate
// size for the ECDSA entries this core's refimpl signer supports.
func asymSignatureSize(algo protocol.BaseAsymAlgo) int {
	switch algo {
	case protocol.AsymECDSAP256:
		return 64
	case protocol.AsymECDSAP384:
		return 96
	case protocol.AsymECDSAP521:
		return 132
	default:
		return 0
	}
}

// deriveDirectionKeys expands secret into a request-direction and
// response-direction AEAD key/IV pair via ks, labeling each sub-derivation
// the way DSP0274's key schedule labels handshake/data secrets (itself
// modeled on TLS 1.3's HKDF-Expand-Label tree: one derivation per traffic
// secret, then key/iv sub-derivations from each).
func deriveDirectionKeys(ks crypto.KeySchedule, secret, transcriptHash []byte, keySize, ivSize int, reqLabel, rspLabel string) (reqKeys, rspKeys session.DirectionKeys) {
	reqSecret := ks.Derive(secret, []byte(reqLabel), transcriptHash, keySize)
	rspSecret := ks.Derive(secret, []byte(rspLabel), transcriptHash, keySize)

	reqKeys = session.DirectionKeys{
		Key: ks.Derive(reqSecret, []byte("key"), nil, keySize),
		IV:  ks.Derive(reqSecret, []byte("iv"), nil, ivSize),
	}
	rspKeys = session.DirectionKeys{
		Key: ks.Derive(rspSecret, []byte("key"), nil, keySize),
		IV:  ks.Derive(rspSecret, []byte("iv"), nil, ivSize),
	}
	return reqKeys, rspKeys
}

// deriveUpdatedKey rolls a single direction's key forward in place, per
// KEY_UPDATE's "traffic key update" operation: the new key is derived from
// the current one with no transcript input, so either side can advance
// independently without exchanging a fresh secret.
func deriveUpdatedKey(ks crypto.KeySchedule, current session.DirectionKeys) session.DirectionKeys {
	nextSecret := ks.Derive(current.Key, []byte("traffic upd"), nil, len(current.Key))
	return session.DirectionKeys{
		Key: ks.Derive(nextSecret, []byte("key"), nil, len(current.Key)),
		IV:  ks.Derive(nextSecret, []byte("iv"), nil, len(current.IV)),
	}
}
