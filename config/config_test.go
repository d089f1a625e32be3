package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tolelom/arcadechain/crypto"
	"github.com/tolelom/arcadechain/internal/testutil"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := DefaultConfig()
	cfg.NodeID = "node7"
	cfg.RPCPort = 9000
	cfg.Validators = []string{"aa", "bb"}
	cfg.Genesis.Alloc = map[string]uint64{"aa": 500}
	require.NoError(t, Save(cfg, path))

	t.Setenv("ARCADE_RPC_PORT", "9100")
	t.Setenv("ARCADE_LOG_LEVEL", "debug")

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "node7", loaded.NodeID)
	require.Equal(t, 9100, loaded.RPCPort)
	require.Equal(t, "debug", loaded.LogLevel)
	require.Equal(t, []string{"aa", "bb"}, loaded.Validators)
	require.Equal(t, uint64(500), loaded.Genesis.Alloc["aa"])
	require.Equal(t, "arcade-dev", loaded.Genesis.ChainID)
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"malformed":    `{`,
		"bad interval": `{"block_interval": "soon"}`,
		"neg interval": `{"block_interval": "-1s"}`,
		"bad level":    `{"log_level": "loud"}`,
		"no chain id":  `{"genesis": {"chain_id": ""}}`,
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".json")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := Load(path)
			require.Error(t, err)
		})
	}
}

func TestCreateGenesisBlock(t *testing.T) {
	priv, pub, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	cfg := DefaultConfig()
	cfg.Genesis.Alloc = map[string]uint64{pub.Hex(): 1_000}

	state := testutil.NewStateDB()
	block, err := CreateGenesisBlock(cfg, state, priv)
	require.NoError(t, err)
	require.Equal(t, int64(0), block.Header.Height)
	require.Equal(t, GenesisHash, block.Header.PrevHash)
	require.Equal(t, crypto.Hash([]byte(cfg.Genesis.ChainID)), block.Header.TxRoot)
	require.Equal(t, state.ComputeRoot(), block.Header.StateRoot)
	require.NoError(t, block.Verify(pub))

	acc, err := state.GetAccount(pub.Hex())
	require.NoError(t, err)
	require.Equal(t, uint64(1_000), acc.Balance)

	_, err = state.GetLeaderboard()
	require.Error(t, err)
}
