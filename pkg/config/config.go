// Package config defines the oracle node's on-disk configuration and
// loads it into the shapes the rest of the node consumes.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Version is the node's build version, set at build time via -ldflags.
var Version string

// Config is the top-level config file shape.
type Config struct {
	ApplicationConfiguration ApplicationConfiguration `yaml:"ApplicationConfiguration"`
}

// Load reads and parses the config file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	cfg := Config{
		ApplicationConfiguration: ApplicationConfiguration{
			RPCTimeout: defaultRPCTimeout,
			Oracle: OracleConfiguration{
				NodeTimeout:           defaultNodeTimeout,
				MaxConcurrentRequests: defaultMaxConcurrentRequests,
				RequestTimeout:        defaultRequestTimeout,
				ResponseTimeout:       defaultResponseTimeout,
			},
		},
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

const (
	defaultRPCTimeout            = 10 * time.Second
	defaultNodeTimeout           = 5 * time.Second
	defaultMaxConcurrentRequests = 10
	defaultRequestTimeout        = 5 * time.Second
	defaultResponseTimeout       = 5 * time.Second
)
