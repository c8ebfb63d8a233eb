package config

import "time"

// OracleConfiguration is the config for the oracle service itself: the
// pipeline timing knobs, the peer set it exchanges signatures
// with, and the address it listens on for their signatures in return.
type OracleConfiguration struct {
	Enabled bool `yaml:"Enabled"`

	// OracleContract is the native Oracle contract's account hash, hex
	// encoded, big-endian.
	OracleContract string `yaml:"OracleContract"`
	// ResponseScript is the fixed invocation script every response
	// transaction carries, hex encoded.
	ResponseScript string `yaml:"ResponseScript"`

	// Nodes lists the other designated oracles' signature endpoints,
	// e.g. "https://oracle2.example.com:10333".
	Nodes []string `yaml:"Nodes"`
	// NodeTimeout bounds each outbound signature broadcast.
	NodeTimeout time.Duration `yaml:"NodeTimeout"`

	// ListenAddress is this node's own signature endpoint bind address.
	ListenAddress string `yaml:"ListenAddress"`

	AllowPrivateHost      bool          `yaml:"AllowPrivateHost"`
	AllowedContentTypes   []string      `yaml:"AllowedContentTypes"`
	MaxConcurrentRequests int           `yaml:"MaxConcurrentRequests"`
	RequestTimeout        time.Duration `yaml:"RequestTimeout"`
	ResponseTimeout       time.Duration `yaml:"ResponseTimeout"`

	MaxTaskTimeout   time.Duration `yaml:"MaxTaskTimeout"`
	FinishedCacheTTL time.Duration `yaml:"FinishedCacheTTL"`
	RefreshInterval  time.Duration `yaml:"RefreshInterval"`
	PollInterval     time.Duration `yaml:"PollInterval"`

	UnlockWallet Wallet `yaml:"UnlockWallet"`
}
