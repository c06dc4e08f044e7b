// Package config loads the responder's policy configuration: capability
// defaults, session table sizing, timing parameters, and buffer sizes.
// Structure and load-then-default pattern are modeled on
// SAGE-X-project-sage's config package.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/openspdm/responder-core/pkg/protocol"
)

// Config is the top-level policy document a responder process loads at
// startup.
type Config struct {
	Environment string             `yaml:"environment"`
	// InstanceID labels this responder process in out-of-band log records;
	// it has no protocol meaning. Defaults to a freshly generated UUID when
	// left unset in the policy document.
	InstanceID  string             `yaml:"instance_id"`
	Capabilities *CapabilitiesConfig `yaml:"capabilities"`
	Session     *SessionConfig     `yaml:"session"`
	Timing      *TimingConfig      `yaml:"timing"`
	Transfer    *TransferConfig    `yaml:"transfer"`
	Logging     *LoggingConfig     `yaml:"logging"`
}

// CapabilitiesConfig lists which optional SPDM capabilities this responder
// advertises in CAPABILITIES.
type CapabilitiesConfig struct {
	CertCap                bool `yaml:"cert_cap"`
	ChalCap                bool `yaml:"chal_cap"`
	MeasCap                string `yaml:"meas_cap"` // "none", "no_sig", "sig"
	EncapCap               bool `yaml:"encap_cap"`
	HBeatCap               bool `yaml:"hbeat_cap"`
	KeyUpdCap              bool `yaml:"key_upd_cap"`
	HandshakeInTheClearCap bool `yaml:"handshake_in_the_clear_cap"`
	PSKCap                 bool `yaml:"psk_cap"`
	KeyExCap               bool `yaml:"key_ex_cap"`
	MutAuthCap             bool `yaml:"mut_auth_cap"`
}

// SessionConfig governs the session table's size limits.
type SessionConfig struct {
	TableCapacity int `yaml:"table_capacity"`
}

// TimingConfig holds the responder's advertised timing parameters.
// ST1 bounds the time a responder may take before a response (encoded as
// an exponent of 2 microseconds in CAPABILITIES' CTExponent field);
// HeartbeatPeriod is the heartbeat interval this responder advertises for
// its sessions.
type TimingConfig struct {
	ST1Exponent     uint8         `yaml:"st1_exponent"`
	HeartbeatPeriod time.Duration `yaml:"heartbeat_period"`
}

// TransferConfig bounds message and buffer sizes this responder will
// advertise and enforce.
type TransferConfig struct {
	DataTransferSize   uint32 `yaml:"data_transfer_size"`
	MaxSPDMMsgSize     uint32 `yaml:"max_spdm_message_size"`
	SenderBufferSize   uint32 `yaml:"sender_buffer_size"`
	ReceiverBufferSize uint32 `yaml:"receiver_buffer_size"`
}

// LoggingConfig configures the pion/logging-based leveled logger.
type LoggingConfig struct {
	Level string `yaml:"level"` // "trace", "debug", "info", "warn", "error"
}

// Load reads and parses a YAML policy document from path, applying
// defaults for any unset fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	setDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a Config populated entirely by defaults, for running
// without a policy document on disk.
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

// Validate checks that the loaded configuration's values are internally
// consistent, beyond what defaulting alone can guarantee.
func (c *Config) Validate() error {
	if c.Session.TableCapacity <= 0 {
		return fmt.Errorf("config: session.table_capacity must be positive, got %d", c.Session.TableCapacity)
	}
	if c.Transfer.MaxSPDMMsgSize < c.Transfer.DataTransferSize {
		return fmt.Errorf("config: transfer.max_spdm_message_size (%d) must be >= data_transfer_size (%d)",
			c.Transfer.MaxSPDMMsgSize, c.Transfer.DataTransferSize)
	}
	switch c.Capabilities.MeasCap {
	case "none", "no_sig", "sig":
	default:
		return fmt.Errorf("config: capabilities.meas_cap must be one of none|no_sig|sig, got %q", c.Capabilities.MeasCap)
	}
	return nil
}

func setDefaults(cfg *Config) {
	if cfg.Environment == "" {
		cfg.Environment = "production"
	}
	if cfg.InstanceID == "" {
		cfg.InstanceID = uuid.New().String()
	}
	if cfg.Capabilities == nil {
		cfg.Capabilities = &CapabilitiesConfig{}
	}
	if cfg.Capabilities.MeasCap == "" {
		cfg.Capabilities.MeasCap = "none"
	}
	if cfg.Session == nil {
		cfg.Session = &SessionConfig{}
	}
	if cfg.Session.TableCapacity == 0 {
		cfg.Session.TableCapacity = 4
	}
	if cfg.Timing == nil {
		cfg.Timing = &TimingConfig{}
	}
	if cfg.Timing.ST1Exponent == 0 {
		cfg.Timing.ST1Exponent = 12 // 4.096 ms, a conservative default
	}
	if cfg.Timing.HeartbeatPeriod == 0 {
		cfg.Timing.HeartbeatPeriod = 30 * time.Second
	}
	if cfg.Transfer == nil {
		cfg.Transfer = &TransferConfig{}
	}
	if cfg.Transfer.DataTransferSize == 0 {
		cfg.Transfer.DataTransferSize = 4096
	}
	if cfg.Transfer.MaxSPDMMsgSize == 0 {
		cfg.Transfer.MaxSPDMMsgSize = 4096
	}
	if cfg.Transfer.SenderBufferSize == 0 {
		cfg.Transfer.SenderBufferSize = cfg.Transfer.DataTransferSize
	}
	if cfg.Transfer.ReceiverBufferSize == 0 {
		cfg.Transfer.ReceiverBufferSize = cfg.Transfer.DataTransferSize
	}
	if cfg.Logging == nil {
		cfg.Logging = &LoggingConfig{}
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// ToFlags converts the YAML-level capability booleans into the bitmask
// dispatcher.Config expects.
func (c *CapabilitiesConfig) ToFlags() protocol.ResponseCapabilityFlags {
	var f protocol.ResponseCapabilityFlags
	if c.CertCap {
		f |= protocol.RspCapCertCap
	}
	if c.ChalCap {
		f |= protocol.RspCapChalCap
	}
	switch c.MeasCap {
	case "no_sig":
		f |= protocol.RspCapMeasCapNoSig
	case "sig":
		f |= protocol.RspCapMeasCapSig
	}
	if c.EncapCap {
		f |= protocol.RspCapEncapCap
	}
	if c.HBeatCap {
		f |= protocol.RspCapHBeatCap
	}
	if c.KeyUpdCap {
		f |= protocol.RspCapKeyUpdCap
	}
	if c.HandshakeInTheClearCap {
		f |= protocol.RspCapHandshakeInTheClearCap
	}
	if c.PSKCap {
		f |= protocol.RspCapPSKCap
	}
	if c.KeyExCap {
		f |= protocol.RspCapKeyExCap
	}
	if c.MutAuthCap {
		f |= protocol.RspCapMutAuthCap
	}
	return f
}
