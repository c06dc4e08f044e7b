package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/openspdm/responder-core/pkg/protocol"
)

func TestDefaultProducesValidConfig(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default() produced an invalid config: %v", err)
	}
	if cfg.Session.TableCapacity != 4 {
		t.Errorf("expected default table capacity 4, got %d", cfg.Session.TableCapacity)
	}
	if cfg.Timing.HeartbeatPeriod != 30*time.Second {
		t.Errorf("expected default heartbeat period 30s, got %v", cfg.Timing.HeartbeatPeriod)
	}
}

func TestDefaultGeneratesUniqueInstanceIDs(t *testing.T) {
	a, b := Default(), Default()
	if a.InstanceID == "" {
		t.Fatalf("expected a non-empty instance ID")
	}
	if a.InstanceID == b.InstanceID {
		t.Fatalf("expected two Default() calls to mint distinct instance IDs")
	}
}

func TestLoadPreservesExplicitInstanceID(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	content := "instance_id: fixed-test-id\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.InstanceID != "fixed-test-id" {
		t.Errorf("expected explicit instance_id to survive defaulting, got %q", cfg.InstanceID)
	}
}

func TestLoadAppliesDefaultsForUnsetFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	content := "environment: staging\ncapabilities:\n  cert_cap: true\n  chal_cap: true\n  meas_cap: sig\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Environment != "staging" {
		t.Errorf("expected environment staging, got %q", cfg.Environment)
	}
	if !cfg.Capabilities.CertCap || !cfg.Capabilities.ChalCap {
		t.Errorf("expected cert_cap and chal_cap set from file")
	}
	if cfg.Session.TableCapacity != 4 {
		t.Errorf("expected session defaults applied, got %d", cfg.Session.TableCapacity)
	}
	if cfg.Transfer.SenderBufferSize != cfg.Transfer.DataTransferSize {
		t.Errorf("expected sender buffer to default to data transfer size")
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/policy.yaml"); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}

func TestValidateRejectsMaxBelowDataTransferSize(t *testing.T) {
	cfg := Default()
	cfg.Transfer.DataTransferSize = 8192
	cfg.Transfer.MaxSPDMMsgSize = 4096
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected an error when max_spdm_message_size < data_transfer_size")
	}
}

func TestValidateRejectsUnknownMeasCap(t *testing.T) {
	cfg := Default()
	cfg.Capabilities.MeasCap = "bogus"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected an error for an unrecognized meas_cap value")
	}
}

func TestCapabilitiesConfigToFlags(t *testing.T) {
	c := &CapabilitiesConfig{
		CertCap:  true,
		ChalCap:  true,
		MeasCap:  "sig",
		EncapCap: true,
		KeyExCap: true,
	}
	flags := c.ToFlags()
	want := protocol.RspCapCertCap | protocol.RspCapChalCap | protocol.RspCapMeasCapSig |
		protocol.RspCapEncapCap | protocol.RspCapKeyExCap
	if flags != want {
		t.Errorf("ToFlags() = %v, want %v", flags, want)
	}
	if flags.Has(protocol.RspCapPSKCap) {
		t.Errorf("unexpected PSK_CAP bit set")
	}
}

func TestCapabilitiesConfigToFlagsMeasCapNone(t *testing.T) {
	c := &CapabilitiesConfig{MeasCap: "none"}
	if flags := c.ToFlags(); flags != 0 {
		t.Errorf("expected zero flags for an all-false config with meas_cap none, got %v", flags)
	}
}
