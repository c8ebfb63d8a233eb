package wallet

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAccount_EncryptDecryptRoundtrip(t *testing.T) {
	a, err := NewAccount()
	require.NoError(t, err)
	pub := a.PublicKey

	require.NoError(t, a.Encrypt("hunter2"))
	require.NotEmpty(t, a.EncryptedKey)

	a.privateKey = nil
	require.NoError(t, a.Decrypt("hunter2"))
	require.Equal(t, pub, a.PublicKey)
	require.NotNil(t, a.PrivateKey())
}

func TestAccount_DecryptWithoutEncryptedKey(t *testing.T) {
	a := &Account{}
	require.Error(t, a.Decrypt("anything"))
}

func TestNewAccountFromEncryptedKey(t *testing.T) {
	a, err := NewAccount()
	require.NoError(t, err)
	require.NoError(t, a.Encrypt("swordfish"))

	loaded, err := NewAccountFromEncryptedKey(a.EncryptedKey, "swordfish")
	require.NoError(t, err)
	require.Equal(t, a.PublicKey, loaded.PublicKey)
}
