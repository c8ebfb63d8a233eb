package config

// Wallet points a service at a wallet file to unlock on startup. It is
// distinct from wallet.Wallet, the in-memory decrypted container: this
// is only the config-file coordinates for finding and opening one.
type Wallet struct {
	Path     string `yaml:"Path"`
	Password string `yaml:"Password"`
}
