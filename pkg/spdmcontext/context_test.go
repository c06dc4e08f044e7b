package spdmcontext

import (
	"testing"

	"github.com/openspdm/responder-core/pkg/crypto"
	"github.com/openspdm/responder-core/pkg/crypto/refimpl"
	"github.com/openspdm/responder-core/pkg/transport"
)

func newTestContext(t *testing.T) *Context {
	t.Helper()
	a, _ := transport.NewLoopbackPair()
	reg := crypto.NewRegistry()
	if err := refimpl.Register(reg); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	return New(Config{
		Hasher:          refimpl.NewSHA384Hasher(),
		Registry:        reg,
		Provisioning:    &Provisioning{PSKs: map[string][]byte{}},
		DeviceIO:        a,
		SessionCapacity: 2,
	})
}

func TestNewContextStartsNotStarted(t *testing.T) {
	ctx := newTestContext(t)
	if ctx.State() != NotStarted {
		t.Errorf("expected NotStarted, got %v", ctx.State())
	}
}

func TestAdvanceToAtLeastNeverRegresses(t *testing.T) {
	ctx := newTestContext(t)
	ctx.AdvanceTo(Negotiated)
	ctx.AdvanceToAtLeast(AfterVersion)
	if ctx.State() != Negotiated {
		t.Errorf("expected state to remain Negotiated, got %v", ctx.State())
	}
	ctx.AdvanceToAtLeast(Authenticated)
	if ctx.State() != Authenticated {
		t.Errorf("expected state to advance to Authenticated, got %v", ctx.State())
	}
}

func TestConnectionStateAtLeast(t *testing.T) {
	if !Authenticated.AtLeast(Negotiated) {
		t.Errorf("expected Authenticated >= Negotiated")
	}
	if NotStarted.AtLeast(AfterVersion) {
		t.Errorf("expected NotStarted to not be >= AfterVersion")
	}
}

func TestNegotiationGating(t *testing.T) {
	n := Negotiation{}
	if n.EncapsulatedRequestSupported() {
		t.Errorf("expected no encap support with zero-value negotiation")
	}
	n.Version = 0x11
	n.RequesterCaps |= 1 << 10 // PSK_CAP, a bit other than ENCAP_CAP, just checks Has() composition
	if n.EncapsulatedRequestSupported() {
		t.Errorf("expected encap support to require explicit ENCAP_CAP bits on both sides")
	}
}

func TestSlotMaskReflectsOccupiedSlots(t *testing.T) {
	p := &Provisioning{}
	p.CertChains[0] = []byte("chain0")
	p.CertChains[3] = []byte("chain3")
	mask := p.SlotMask()
	if mask != 0b1001 {
		t.Errorf("expected mask 0b1001, got %b", mask)
	}
	if !p.SlotOccupied(0) || !p.SlotOccupied(3) {
		t.Errorf("expected slots 0 and 3 occupied")
	}
	if p.SlotOccupied(1) {
		t.Errorf("expected slot 1 unoccupied")
	}
}
