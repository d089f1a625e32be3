package rpc_test

import (
	"encoding/json"
	"testing"

	"cosmossdk.io/log"
	"github.com/stretchr/testify/require"

	"github.com/tolelom/arcadechain/config"
	"github.com/tolelom/arcadechain/consensus"
	"github.com/tolelom/arcadechain/core"
	"github.com/tolelom/arcadechain/events"
	"github.com/tolelom/arcadechain/indexer"
	"github.com/tolelom/arcadechain/internal/testutil"
	"github.com/tolelom/arcadechain/rpc"
	"github.com/tolelom/arcadechain/storage"
	"github.com/tolelom/arcadechain/vm"
	"github.com/tolelom/arcadechain/wallet"

	_ "github.com/tolelom/arcadechain/vm/modules/arcade"
	_ "github.com/tolelom/arcadechain/vm/modules/economy"
)

const testChainID = "test-chain"

// testNode is a single-validator node over an in-memory DB with genesis
// committed. The validator wallet is funded at genesis.
type testNode struct {
	cfg     *config.Config
	bc      *core.Blockchain
	mempool *core.Mempool
	state   *storage.StateDB
	exec    *vm.Executor
	poa     *consensus.PoA
	handler *rpc.Handler
	w       *wallet.Wallet
}

func newTestNode(t *testing.T) *testNode {
	t.Helper()
	w, err := wallet.Generate(testChainID)
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	cfg.Validators = []string{w.PubKey()}
	cfg.Genesis = config.GenesisConfig{
		ChainID: testChainID,
		Alloc:   map[string]uint64{w.PubKey(): 10_000},
	}

	db := testutil.NewMemDB()
	state := storage.NewStateDB(db)
	bc := core.NewBlockchain(storage.NewBlockStore(db))
	require.NoError(t, bc.Init())
	genesis, err := config.CreateGenesisBlock(cfg, state, w.PrivKey())
	require.NoError(t, err)
	require.NoError(t, bc.AddBlock(genesis))

	logger := log.NewNopLogger()
	emitter := events.NewEmitter(logger)
	idx := indexer.New(db, emitter, logger)
	mempool := core.NewMempool(cfg.MempoolSize)
	exec := vm.NewExecutor(state, logger)
	return &testNode{
		cfg:     cfg,
		bc:      bc,
		mempool: mempool,
		state:   state,
		exec:    exec,
		poa:     consensus.New(cfg, bc, state, mempool, exec, emitter, logger, w.PrivKey()),
		handler: rpc.NewHandler(bc, mempool, state.Committed(), idx, testChainID),
		w:       w,
	}
}

func dispatch(h *rpc.Handler, method string, params any) rpc.Response {
	var raw json.RawMessage
	if params != nil {
		raw, _ = json.Marshal(params)
	}
	return h.Dispatch(rpc.Request{JSONRPC: "2.0", ID: 1, Method: method, Params: raw})
}

// decodeResult round-trips a Dispatch result through JSON, as a client sees it.
func decodeResult(t *testing.T, resp rpc.Response, out any) {
	t.Helper()
	require.Nil(t, resp.Error)
	data, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, out))
}
