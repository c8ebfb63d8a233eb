package smartcontract

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oraclegrid/node/pkg/crypto/keys"
)

func TestThreshold(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{n: 0, want: 0},
		{n: 1, want: 1},
		{n: 2, want: 2},
		{n: 3, want: 3},
		{n: 4, want: 3},
		{n: 5, want: 4},
		{n: 6, want: 5},
		{n: 7, want: 5},
		{n: 8, want: 6},
		{n: 9, want: 7},
		{n: 10, want: 7},
		{n: 16, want: 11},
		{n: 21, want: 15},
		{n: 32, want: 22},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, Threshold(tc.n), "N=%d", tc.n)
	}
}

func TestCreateMultiSigVerificationScript_RejectsInvalidThreshold(t *testing.T) {
	privs := make(keys.PublicKeys, 0, 3)
	for i := 0; i < 3; i++ {
		priv, err := keys.NewPrivateKey()
		require.NoError(t, err)
		privs = append(privs, priv.PublicKey())
	}

	_, err := CreateMultiSigVerificationScript(0, privs)
	require.Error(t, err)

	_, err = CreateMultiSigVerificationScript(4, privs)
	require.Error(t, err)
}

func TestCreateMultiSigVerificationScript_EndsInCheckMultisig(t *testing.T) {
	privs := make(keys.PublicKeys, 0, 3)
	for i := 0; i < 3; i++ {
		priv, err := keys.NewPrivateKey()
		require.NoError(t, err)
		privs = append(privs, priv.PublicKey())
	}

	script, err := CreateMultiSigVerificationScript(Threshold(len(privs)), privs)
	require.NoError(t, err)
	require.Equal(t, byte(opCheckMultisig), script[len(script)-1])
}
