// Package vm executes signed transactions against chain state, one at a time,
// dispatching each to the module handler registered for its type.
package vm

import (
	"fmt"
	"math"

	"cosmossdk.io/log"

	"github.com/tolelom/arcadechain/core"
	"github.com/tolelom/arcadechain/events"
)

// Context is passed to every Handler. It exposes the state, the including
// block (whose timestamp is the transaction's "now"), the transaction itself
// and a module-scoped logger.
type Context struct {
	State  core.State
	Block  *core.Block
	Tx     *core.Transaction
	Logger log.Logger

	events []events.Event
}

// Now returns the block timestamp in unix nanoseconds.
func (ctx *Context) Now() int64 { return ctx.Block.Header.Timestamp }

// Emit queues an event. Queued events are only published if the transaction
// succeeds and its block is committed.
func (ctx *Context) Emit(typ events.EventType, data map[string]any) {
	ctx.events = append(ctx.events, events.Event{
		Type:        typ,
		TxID:        ctx.Tx.ID,
		BlockHeight: ctx.Block.Header.Height,
		Data:        data,
	})
}

// FailedTx records a transaction rejected during block execution.
type FailedTx struct {
	Tx  *core.Transaction
	Err error
}

// BlockResult is the outcome of executing a candidate block.
type BlockResult struct {
	Included []*core.Transaction
	Failed   []FailedTx
	Events   []events.Event
}

// Executor applies transactions to the state using the global registry.
type Executor struct {
	state  core.State
	logger log.Logger
}

// NewExecutor creates an Executor over state.
func NewExecutor(state core.State, logger log.Logger) *Executor {
	return &Executor{state: state, logger: logger.With("module", "vm")}
}

// ExecuteBlock applies block's transactions in order. A failing transaction
// is rolled back and left out of the block; the rest still apply. On return
// block.Transactions holds only the included transactions and TxRoot is
// recomputed to match.
func (e *Executor) ExecuteBlock(block *core.Block) *BlockResult {
	res := &BlockResult{}
	for _, tx := range block.Transactions {
		evs, err := e.ExecuteTx(block, tx)
		if err != nil {
			e.logger.Info("tx rejected", "tx", tx.ID, "type", tx.Type, "from", tx.From, "err", err)
			res.Failed = append(res.Failed, FailedTx{Tx: tx, Err: err})
			res.Events = append(res.Events, events.Event{
				Type:        events.EventTxFailed,
				TxID:        tx.ID,
				BlockHeight: block.Header.Height,
				Data:        map[string]any{"type": string(tx.Type), "from": tx.From, "error": err.Error()},
			})
			continue
		}
		res.Included = append(res.Included, tx)
		res.Events = append(res.Events, evs...)
	}
	block.Transactions = res.Included
	block.Header.TxRoot = core.ComputeTxRoot(res.Included)
	return res
}

// ExecuteTx verifies and executes one transaction inside a state snapshot.
// On any error the snapshot is restored, so a failed transaction leaves no
// trace (fee and nonce included). On success it returns the events the
// handler queued, followed by a tx_executed event.
func (e *Executor) ExecuteTx(block *core.Block, tx *core.Transaction) ([]events.Event, error) {
	if err := tx.Verify(); err != nil {
		return nil, fmt.Errorf("signature: %w", err)
	}

	snapID, err := e.state.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	ctx, err := e.applyTx(block, tx)
	if err != nil {
		if revertErr := e.state.RevertToSnapshot(snapID); revertErr != nil {
			return nil, fmt.Errorf("revert snapshot after tx failure: %w (revert: %v)", err, revertErr)
		}
		return nil, err
	}

	evs := append(ctx.events, events.Event{
		Type:        events.EventTxExecuted,
		TxID:        tx.ID,
		BlockHeight: block.Header.Height,
		Data:        map[string]any{"type": string(tx.Type), "from": tx.From},
	})
	return evs, nil
}

// applyTx charges the fee, bumps the nonce, then dispatches to the handler.
func (e *Executor) applyTx(block *core.Block, tx *core.Transaction) (*Context, error) {
	acc, err := e.state.GetAccount(tx.From)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	if acc.Nonce != tx.Nonce {
		return nil, fmt.Errorf("invalid nonce: expected %d got %d", acc.Nonce, tx.Nonce)
	}
	if acc.Balance < tx.Fee {
		return nil, fmt.Errorf("insufficient balance for fee: have %d need %d", acc.Balance, tx.Fee)
	}
	if acc.Nonce == math.MaxUint64 {
		return nil, fmt.Errorf("nonce overflow for account %s", tx.From)
	}
	acc.Balance -= tx.Fee
	acc.Nonce++
	if err := e.state.SetAccount(acc); err != nil {
		return nil, err
	}

	ctx := &Context{
		State:  e.state,
		Block:  block,
		Tx:     tx,
		Logger: e.logger.With("tx", tx.ID, "type", string(tx.Type)),
	}
	if err := globalRegistry.Execute(tx.Type, ctx, tx.Payload); err != nil {
		return nil, err
	}
	return ctx, nil
}
