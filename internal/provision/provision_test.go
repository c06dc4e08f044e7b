package provision

import "testing"

func TestLoadGeneratesEphemeralIdentityWhenNoFilesGiven(t *testing.T) {
	prov, signer, err := Load(FileConfig{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if signer == nil {
		t.Fatalf("expected a non-nil signer")
	}
	if prov.CertChains[0] == nil {
		t.Fatalf("expected slot 0 to be provisioned")
	}
	if prov.RootOfTrust == nil {
		t.Fatalf("expected a root of trust")
	}
	if !prov.SlotOccupied(0) {
		t.Fatalf("expected slot 0 occupied")
	}
}

func TestLoadRejectsCertWithoutKey(t *testing.T) {
	_, _, err := Load(FileConfig{CertPath: "cert.pem"})
	if err == nil {
		t.Fatalf("expected an error when key-path is missing")
	}
}

func TestWithPSKAddsHint(t *testing.T) {
	prov, _, err := Load(FileConfig{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	WithPSK(prov, "hint-1", []byte("secret"))
	if string(prov.PSKs["hint-1"]) != "secret" {
		t.Fatalf("expected PSK to be recorded")
	}
}
