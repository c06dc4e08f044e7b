package spdmcontext

import "github.com/openspdm/responder-core/pkg/crypto"

// SlotID indexes one of the up to 8 certificate-chain slots DSP0274
// permits a responder to provision.
type SlotID uint8

// MaxSlots is the number of certificate-chain slots DSP0274 defines
// (the DIGESTS response's slot mask is 8 bits wide).
const MaxSlots = 8

// Provisioning holds the responder's own identity material: per-slot
// certificate chains and the signer bound to each, plus PSK hints for
// pre-shared-key sessions. This is populated once at startup by
// internal/provision and never mutated by the dispatcher.
type Provisioning struct {
	CertChains [MaxSlots][]byte // DER-encoded chains, leaf-first; nil if slot unused
	Signers    [MaxSlots]crypto.Signer
	RootOfTrust []byte // DER-encoded root CA certificate

	// PSKs maps a PSK hint (as advertised in PSK_EXCHANGE) to the shared
	// secret bytes.
	PSKs map[string][]byte
}

// SlotOccupied reports whether slot has a certificate chain provisioned.
func (p *Provisioning) SlotOccupied(slot SlotID) bool {
	if int(slot) >= MaxSlots {
		return false
	}
	return p.CertChains[slot] != nil
}

// SlotMask returns the 8-bit mask DIGESTS/CERTIFICATE responses report,
// with one bit set per occupied slot.
func (p *Provisioning) SlotMask() uint8 {
	var mask uint8
	for i := 0; i < MaxSlots; i++ {
		if p.CertChains[i] != nil {
			mask |= 1 << uint(i)
		}
	}
	return mask
}
