// Package wallet holds the oracle node's signing keys at rest: a JSON
// file of NEP-2-style encrypted accounts, unlocked with a passphrase at
// startup and never written back to disk in decrypted form.
package wallet

import (
	"encoding/json"
	"errors"
	"os"
)

const walletVersion = "1.0"

// Wallet is the on-disk container for one or more Accounts.
type Wallet struct {
	Version  string     `json:"version"`
	Accounts []*Account `json:"accounts"`

	path string
}

// NewWallet creates an empty Wallet that will save to path.
func NewWallet(path string) *Wallet {
	return &Wallet{Version: walletVersion, path: path}
}

// NewWalletFromFile reads and parses the wallet file at path.
func NewWalletFromFile(path string) (*Wallet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	w := &Wallet{path: path}
	if err := json.Unmarshal(data, w); err != nil {
		return nil, err
	}
	return w, nil
}

// Path returns the filesystem path this wallet was loaded from or will
// save to.
func (w *Wallet) Path() string { return w.path }

// Save writes the wallet, accounts encrypted, to its path.
func (w *Wallet) Save() error {
	if w.path == "" {
		return errors.New("wallet: no path set")
	}
	data, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(w.path, data, 0600)
}

// CreateAccount generates a new account, encrypts it with pass, labels
// it, and appends it to the wallet.
func (w *Wallet) CreateAccount(label, pass string) (*Account, error) {
	a, err := NewAccount()
	if err != nil {
		return nil, err
	}
	if err := a.Encrypt(pass); err != nil {
		return nil, err
	}
	a.Label = label
	w.AddAccount(a)
	return a, nil
}

// AddAccount appends a to the wallet's account list.
func (w *Wallet) AddAccount(a *Account) {
	w.Accounts = append(w.Accounts, a)
}

// RemoveAccount drops the account labeled label, or returns an error if
// no such account exists.
func (w *Wallet) RemoveAccount(label string) error {
	for i, a := range w.Accounts {
		if a.Label == label {
			w.Accounts = append(w.Accounts[:i], w.Accounts[i+1:]...)
			return nil
		}
	}
	return errors.New("wallet: account not found")
}

// DecryptAll decrypts every account with pass, returning the accounts
// that succeeded. Accounts that fail to decrypt (wrong pass, or
// none of the wallet's accounts share a passphrase) are skipped rather
// than treated as fatal, since a multi-key wallet may mix passphrases.
func (w *Wallet) DecryptAll(pass string) []*Account {
	var ok []*Account
	for _, a := range w.Accounts {
		if err := a.Decrypt(pass); err == nil {
			ok = append(ok, a)
		}
	}
	return ok
}
