package storage_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tolelom/arcadechain/core"
	"github.com/tolelom/arcadechain/storage"
)

func TestLevelBlockStore(t *testing.T) {
	db, err := storage.NewLevelDB(filepath.Join(t.TempDir(), "blocks"))
	require.NoError(t, err)
	defer db.Close()
	store := storage.NewBlockStore(db)

	tip, err := store.GetTip()
	require.NoError(t, err)
	require.Empty(t, tip)

	block := core.NewBlockAt(0, "00", "proposer", 42, nil)
	block.Hash = block.ComputeHash()
	require.NoError(t, store.CommitBlock(block))

	tip, err = store.GetTip()
	require.NoError(t, err)
	require.Equal(t, block.Hash, tip)

	got, err := store.GetBlockByHeight(0)
	require.NoError(t, err)
	require.Equal(t, block.Header, got.Header)

	_, err = store.GetBlockByHeight(1)
	require.ErrorIs(t, err, core.ErrNotFound)
}
