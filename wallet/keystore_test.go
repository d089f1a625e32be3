package wallet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeystoreRoundTrip(t *testing.T) {
	w, err := Generate("test-chain")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "validator.key")

	require.NoError(t, SaveKey(path, "hunter2", w.PrivKey()))
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	priv, err := LoadKey(path, "hunter2")
	require.NoError(t, err)
	require.Equal(t, w.PrivKey(), priv)

	_, err = LoadKey(path, "wrong")
	require.ErrorIs(t, err, ErrWrongPassword)

	_, err = LoadKey(filepath.Join(t.TempDir(), "missing.key"), "hunter2")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestWalletBuildsSignedTxs(t *testing.T) {
	w, err := Generate("test-chain")
	require.NoError(t, err)
	require.Equal(t, "test-chain", w.ChainID())

	tx, err := w.InitLeaderboard(3, 1)
	require.NoError(t, err)
	require.Equal(t, w.PubKey(), tx.From)
	require.Equal(t, uint64(3), tx.Nonce)
	require.Equal(t, uint64(1), tx.Fee)
	require.NoError(t, tx.Verify())
}
