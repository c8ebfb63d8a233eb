package config

// BasicService is the shared config shape for auxiliary HTTP services
// like Pprof and Prometheus: an on/off switch plus one or more bind
// addresses.
type BasicService struct {
	Enabled   bool     `yaml:"Enabled"`
	Addresses []string `yaml:"Addresses"`
}
