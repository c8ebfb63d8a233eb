package oracle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oraclegrid/node/pkg/chain"
	"github.com/oraclegrid/node/pkg/crypto/keys"
	"github.com/oraclegrid/node/pkg/util"
)

func newSignerKeys(t *testing.T, n int) []*keys.PrivateKey {
	var privs []*keys.PrivateKey
	for i := 0; i < n; i++ {
		priv, err := keys.NewPrivateKey()
		require.NoError(t, err)
		privs = append(privs, priv)
	}
	return privs
}

func newFakeTx(seed byte) *chain.Transaction {
	return &chain.Transaction{
		Nonce:  uint32(seed),
		Script: []byte{seed},
		Signers: []chain.Signer{
			{Account: util.Uint160{}},
			{Account: util.Uint160{1}, AllowedContracts: []util.Uint160{{1}}},
		},
		Scripts: []chain.Witness{{}, {}},
	}
}

func TestOracleTask_AddSpeculativeThenInstall(t *testing.T) {
	priv, err := keys.NewPrivateKey()
	require.NoError(t, err)
	pub := priv.PublicKey()

	task := newOracleTask(&chain.Request{ID: 1}, time.Now())

	tx := newFakeTx(1)
	h := tx.SigningHash()
	sig, err := priv.Sign(h[:])
	require.NoError(t, err)

	task.addSpeculative(pub, sig)
	require.Contains(t, task.Signs, pub.String())
	require.Contains(t, task.BackupSigns, pub.String())
	require.False(t, task.Signs[pub.String()].verified)

	task.installTx(tx)
	require.True(t, task.Signs[pub.String()].verified)
}

func TestOracleTask_InstallPrunesMismatchedSignature(t *testing.T) {
	priv, err := keys.NewPrivateKey()
	require.NoError(t, err)
	pub := priv.PublicKey()

	task := newOracleTask(&chain.Request{ID: 1}, time.Now())
	task.addSpeculative(pub, []byte("garbage"))

	task.installTx(newFakeTx(2))
	require.NotContains(t, task.Signs, pub.String())
}

func TestOracleTask_AddVerifiedRejectsUnknownSig(t *testing.T) {
	priv, err := keys.NewPrivateKey()
	require.NoError(t, err)

	task := newOracleTask(&chain.Request{ID: 1}, time.Now())
	task.installTx(newFakeTx(3))
	task.installBackupTx(newFakeTx(4))

	_, err = task.addVerified(priv.PublicKey(), []byte("not a valid signature"))
	require.ErrorIs(t, err, errInvalidResponseSig)
}

func TestOracleTask_FinalizeRequiresThreshold(t *testing.T) {
	privs := newSignerKeys(t, 4) // threshold = 4 - floor(3/3) = 3
	var pubs keys.PublicKeys
	for _, p := range privs {
		pubs = append(pubs, p.PublicKey())
	}

	task := newOracleTask(&chain.Request{ID: 1}, time.Now())
	tx := newFakeTx(5)
	task.installTx(tx)
	h := tx.SigningHash()

	_, ready := task.finalize(pubs)
	require.False(t, ready, "no signatures recorded yet, must not finalize")

	for _, priv := range privs[:2] {
		sig, err := priv.Sign(h[:])
		require.NoError(t, err)
		_, err = task.addVerified(priv.PublicKey(), sig)
		require.NoError(t, err)
	}
	_, ready = task.finalize(pubs)
	require.False(t, ready, "two of three required signatures must not finalize")

	sig, err := privs[2].Sign(h[:])
	require.NoError(t, err)
	_, err = task.addVerified(privs[2].PublicKey(), sig)
	require.NoError(t, err)

	finalTx, ready := task.finalize(pubs)
	require.True(t, ready)
	require.Same(t, tx, finalTx)
	require.NotEmpty(t, finalTx.Scripts[1].InvocationScript)
}
