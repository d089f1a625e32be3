package consensus_test

import (
	"context"
	"testing"
	"time"

	"cosmossdk.io/log"
	"github.com/stretchr/testify/require"

	"github.com/tolelom/arcadechain/config"
	"github.com/tolelom/arcadechain/consensus"
	"github.com/tolelom/arcadechain/core"
	"github.com/tolelom/arcadechain/events"
	"github.com/tolelom/arcadechain/internal/testutil"
	"github.com/tolelom/arcadechain/storage"
	"github.com/tolelom/arcadechain/vm"
	"github.com/tolelom/arcadechain/vm/modules/arcade"
	"github.com/tolelom/arcadechain/wallet"
)

type node struct {
	db      *testutil.MemDB
	bc      *core.Blockchain
	state   *storage.StateDB
	mempool *core.Mempool
	emitter *events.Emitter
	poa     *consensus.PoA
	w       *wallet.Wallet
}

func soloValidator(self string) []string { return []string{self} }

// newNode builds a node at height 0 whose validator set is validators(self).
func newNode(t *testing.T, validators func(self string) []string) *node {
	t.Helper()
	w, err := wallet.Generate("test-chain")
	require.NoError(t, err)
	cfg := config.DefaultConfig()
	cfg.Genesis.ChainID = "test-chain"
	cfg.Genesis.Alloc = map[string]uint64{w.PubKey(): 1_000}
	cfg.Validators = validators(w.PubKey())

	db := testutil.NewMemDB()
	state := storage.NewStateDB(db)
	bc := core.NewBlockchain(storage.NewBlockStore(db))
	require.NoError(t, bc.Init())
	genesis, err := config.CreateGenesisBlock(cfg, state, w.PrivKey())
	require.NoError(t, err)
	require.NoError(t, bc.AddBlock(genesis))

	logger := log.NewNopLogger()
	mempool := core.NewMempool(0)
	emitter := events.NewEmitter(logger)
	exec := vm.NewExecutor(state, logger)
	return &node{
		db:      db,
		bc:      bc,
		state:   state,
		mempool: mempool,
		emitter: emitter,
		poa:     consensus.New(cfg, bc, state, mempool, exec, emitter, logger, w.PrivKey()),
		w:       w,
	}
}

// pool returns a helper that queues a freshly built tx.
func (n *node) pool(t *testing.T) func(*core.Transaction, error) *core.Transaction {
	return func(tx *core.Transaction, err error) *core.Transaction {
		t.Helper()
		require.NoError(t, err)
		require.NoError(t, n.mempool.Add(tx))
		return tx
	}
}

func TestProduceBlockIncludesValidTxs(t *testing.T) {
	n := newNode(t, soloValidator)
	var seen []events.EventType
	for _, typ := range []events.EventType{events.EventGameStarted, events.EventTxFailed, events.EventBlockCommit} {
		n.emitter.Subscribe(typ, func(ev events.Event) { seen = append(seen, ev.Type) })
	}

	add := n.pool(t)
	initTx := add(n.w.InitLeaderboard(0, 0))
	startTx := add(n.w.StartGame(10, 1, 0))
	badTx := add(n.w.StartGame(5_000, 2, 0))

	block, err := n.poa.ProduceBlock()
	require.NoError(t, err)
	require.Equal(t, int64(1), block.Header.Height)
	require.Equal(t, []*core.Transaction{initTx, startTx}, block.Transactions)
	require.Equal(t, core.ComputeTxRoot(block.Transactions), block.Header.TxRoot)
	require.NoError(t, block.Verify(n.w.PrivKey().Public()))
	require.NotContains(t, block.Transactions, badTx)

	require.Zero(t, n.mempool.Size(), "included and failed txs both leave the pool")
	require.Equal(t, []events.EventType{events.EventGameStarted, events.EventTxFailed, events.EventBlockCommit}, seen)

	// State is committed and matches the header.
	require.Equal(t, block.Header.StateRoot, storage.NewStateDB(n.db).ComputeRoot())
	sess, err := n.state.GetGameSession(core.SessionKey{Player: n.w.PubKey(), StartedAt: block.Header.Timestamp})
	require.NoError(t, err)
	require.Equal(t, uint64(10), sess.AmountPaid)
	acc, err := n.state.GetAccount(arcade.CustodyAddress)
	require.NoError(t, err)
	require.Equal(t, uint64(10), acc.Balance)
}

func TestProduceBlockMonotonicTimestamp(t *testing.T) {
	n := newNode(t, soloValidator)
	frozen := time.Unix(0, n.bc.Tip().Header.Timestamp)
	n.poa.SetClock(func() time.Time { return frozen })

	b1, err := n.poa.ProduceBlock()
	require.NoError(t, err)
	b2, err := n.poa.ProduceBlock()
	require.NoError(t, err)
	require.Greater(t, b1.Header.Timestamp, frozen.UnixNano())
	require.Greater(t, b2.Header.Timestamp, b1.Header.Timestamp)
	require.Equal(t, b1.Hash, b2.Header.PrevHash)
}

func TestNotProposer(t *testing.T) {
	n := newNode(t, func(string) []string { return []string{"someone-else"} })
	require.False(t, n.poa.IsProposer())
	_, err := n.poa.ProduceBlock()
	require.ErrorIs(t, err, consensus.ErrNotProposer)
}

func TestRoundRobin(t *testing.T) {
	// Height h belongs to validators[h % len(validators)].
	n := newNode(t, func(self string) []string { return []string{"other", self} })
	require.True(t, n.poa.IsProposer())
	_, err := n.poa.ProduceBlock()
	require.NoError(t, err)
	require.False(t, n.poa.IsProposer())
	_, err = n.poa.ProduceBlock()
	require.ErrorIs(t, err, consensus.ErrNotProposer)
}

func TestRunStopsOnCancel(t *testing.T) {
	n := newNode(t, soloValidator)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- n.poa.Run(ctx, 5*time.Millisecond) }()

	require.Eventually(t, func() bool { return n.bc.Height() >= 2 }, 5*time.Second, 5*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
