package arcade_test

import (
	"cosmossdk.io/log"
	"github.com/stretchr/testify/require"

	"github.com/tolelom/arcadechain/core"
	"github.com/tolelom/arcadechain/events"
	"github.com/tolelom/arcadechain/internal/testutil"
	"github.com/tolelom/arcadechain/storage"
	"github.com/tolelom/arcadechain/vm"
	"github.com/tolelom/arcadechain/wallet"

	_ "github.com/tolelom/arcadechain/vm/modules/economy"
)

const testChainID = "test-chain"

// chain executes each transaction in its own block, one millisecond of
// block time apart.
type chain struct {
	t      require.TestingT
	state  *storage.StateDB
	exec   *vm.Executor
	height int64
	ts     int64
}

func newChain(t require.TestingT) *chain {
	state := testutil.NewStateDB()
	return &chain{
		t:     t,
		state: state,
		exec:  vm.NewExecutor(state, log.NewNopLogger()),
		ts:    1_700_000_000_000_000_000,
	}
}

// player returns a new wallet holding balance tokens.
func (c *chain) player(balance uint64) *wallet.Wallet {
	w, err := wallet.Generate(testChainID)
	require.NoError(c.t, err)
	require.NoError(c.t, c.state.SetAccount(&core.Account{Address: w.PubKey(), Balance: balance}))
	return w
}

func (c *chain) nextBlock(txs ...*core.Transaction) *core.Block {
	c.height++
	c.ts += 1_000_000
	return core.NewBlockAt(c.height, "prev", "proposer", c.ts, txs)
}

func (c *chain) tx(w *wallet.Wallet, typ core.TxType, payload any) *core.Transaction {
	acc, err := c.state.GetAccount(w.PubKey())
	require.NoError(c.t, err)
	tx, err := w.NewTx(typ, acc.Nonce, 0, payload)
	require.NoError(c.t, err)
	return tx
}

func (c *chain) do(w *wallet.Wallet, typ core.TxType, payload any) ([]events.Event, error) {
	tx := c.tx(w, typ, payload)
	return c.exec.ExecuteTx(c.nextBlock(tx), tx)
}

func (c *chain) init(w *wallet.Wallet) error {
	_, err := c.do(w, core.TxArcadeInit, core.ArcadeInitPayload{})
	return err
}

// start opens a session and returns the key it was stored under.
func (c *chain) start(w *wallet.Wallet, amount uint64) (core.SessionKey, error) {
	_, err := c.do(w, core.TxArcadeStart, core.ArcadeStartPayload{Amount: amount})
	return core.SessionKey{Player: w.PubKey(), StartedAt: c.ts}, err
}

func (c *chain) activate(w *wallet.Wallet, key core.SessionKey) error {
	_, err := c.do(w, core.TxArcadeActivate, core.ArcadeActivatePayload{Session: key.String()})
	return err
}

func (c *chain) submit(w *wallet.Wallet, key core.SessionKey, score uint64) ([]events.Event, error) {
	return c.do(w, core.TxArcadeSubmit, core.ArcadeSubmitPayload{Session: key.String(), Score: score})
}

// play runs one full start, activate, submit cycle.
func (c *chain) play(w *wallet.Wallet, amount, score uint64) core.SessionKey {
	key, err := c.start(w, amount)
	require.NoError(c.t, err)
	require.NoError(c.t, c.activate(w, key))
	_, err = c.submit(w, key, score)
	require.NoError(c.t, err)
	return key
}

func (c *chain) balance(addr string) uint64 {
	acc, err := c.state.GetAccount(addr)
	require.NoError(c.t, err)
	return acc.Balance
}

func (c *chain) session(key core.SessionKey) *core.GameSession {
	sess, err := c.state.GetGameSession(key)
	require.NoError(c.t, err)
	return sess
}

func (c *chain) leaderboard() *core.Leaderboard {
	lb, err := c.state.GetLeaderboard()
	require.NoError(c.t, err)
	return lb
}
