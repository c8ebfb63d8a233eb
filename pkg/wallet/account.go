package wallet

import (
	"errors"

	"github.com/oraclegrid/node/pkg/crypto/keys"
)

// Account holds one oracle signing key, at rest as an encrypted blob and
// in memory as the decrypted key once Decrypt has been called.
type Account struct {
	privateKey *keys.PrivateKey

	PublicKey    []byte `json:"publicKey"`
	EncryptedKey string `json:"key"`
	Label        string `json:"label"`
	Locked       bool   `json:"lock"`
	Default      bool   `json:"isDefault"`
}

// NewAccount creates an Account around a freshly generated key.
func NewAccount() (*Account, error) {
	priv, err := keys.NewPrivateKey()
	if err != nil {
		return nil, err
	}
	return newAccountFromPrivateKey(priv), nil
}

// NewAccountFromPrivateKey wraps an already-loaded key in an Account,
// e.g. one supplied directly on the command line rather than from a
// wallet file.
func NewAccountFromPrivateKey(priv *keys.PrivateKey) *Account {
	return newAccountFromPrivateKey(priv)
}

// NewAccountFromEncryptedKey decrypts key with pass and wraps the result.
func NewAccountFromEncryptedKey(key, pass string) (*Account, error) {
	priv, err := NEP2Decrypt(key, pass)
	if err != nil {
		return nil, err
	}
	a := newAccountFromPrivateKey(priv)
	a.EncryptedKey = key
	return a, nil
}

func newAccountFromPrivateKey(priv *keys.PrivateKey) *Account {
	return &Account{
		privateKey: priv,
		PublicKey:  priv.PublicKey().Bytes(),
	}
}

// Decrypt populates the account's in-memory private key from its
// encrypted form.
func (a *Account) Decrypt(passphrase string) error {
	if a.EncryptedKey == "" {
		return errors.New("wallet: account has no encrypted key")
	}
	priv, err := NEP2Decrypt(a.EncryptedKey, passphrase)
	if err != nil {
		return err
	}
	a.privateKey = priv
	a.PublicKey = priv.PublicKey().Bytes()
	return nil
}

// Encrypt sets the account's encrypted key from its current in-memory
// private key.
func (a *Account) Encrypt(passphrase string) error {
	if a.privateKey == nil {
		return errors.New("wallet: account has no private key to encrypt")
	}
	enc, err := NEP2Encrypt(a.privateKey, passphrase)
	if err != nil {
		return err
	}
	a.EncryptedKey = enc
	return nil
}

// PrivateKey returns the account's decrypted key, or nil if Decrypt has
// not been called yet.
func (a *Account) PrivateKey() *keys.PrivateKey {
	return a.privateKey
}
