package refimpl

import (
	"crypto/sha512"

	"golang.org/x/crypto/hkdf"

	"github.com/openspdm/responder-core/pkg/crypto"
)

// hkdfSchedule implements crypto.KeySchedule using golang.org/x/crypto/hkdf
// over SHA-384, matching the HMACHash key-schedule algorithm SPDM 1.x
// defines (DSP0274 Annex on the key schedule, modeled directly on TLS
// 1.3's HKDF-Expand-Label).
type hkdfSchedule struct{}

// NewHKDFKeySchedule returns the reference HKDF-SHA384 key schedule.
func NewHKDFKeySchedule() crypto.KeySchedule { return hkdfSchedule{} }

func (hkdfSchedule) Derive(secret, label, context []byte, length int) []byte {
	info := append(append([]byte{}, label...), context...)
	reader := hkdf.Expand(sha512.New384, secret, info)
	out := make([]byte, length)
	// hkdf.Expand's reader only fails if length exceeds 255*hashLen, far
	// beyond any SPDM-derived secret; a partial read here would indicate a
	// misconfigured schedule rather than a recoverable runtime condition.
	if _, err := reader.Read(out); err != nil {
		return nil
	}
	return out
}
