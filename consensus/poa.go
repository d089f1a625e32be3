// Package consensus implements Proof-of-Authority block production.
// Validators propose blocks in round-robin order by height. Block production
// is the only writer of chain state: transactions are applied one at a time
// on the producing goroutine, which serialises every game session and the
// shared leaderboard.
package consensus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cosmossdk.io/log"

	"github.com/tolelom/arcadechain/config"
	"github.com/tolelom/arcadechain/core"
	"github.com/tolelom/arcadechain/crypto"
	"github.com/tolelom/arcadechain/events"
	"github.com/tolelom/arcadechain/vm"
)

// ErrNotProposer is returned by ProduceBlock when another validator owns
// the next height.
var ErrNotProposer = errors.New("not the proposer for this round")

// ErrStateCommit means a block was stored but its state could not be
// persisted. The node cannot safely produce further blocks.
var ErrStateCommit = errors.New("state commit failed")

const defaultMaxBlockTxs = 500

// PoA is the Proof-of-Authority consensus engine.
type PoA struct {
	validators  []string
	maxBlockTxs int
	bc          *core.Blockchain
	state       core.State
	mempool     *core.Mempool
	exec        *vm.Executor
	emitter     *events.Emitter
	logger      log.Logger
	privKey     crypto.PrivateKey
	pubKey      crypto.PublicKey

	// now is the block clock; replaceable in tests.
	now func() time.Time
}

// New creates a PoA engine for the local validator identified by privKey.
func New(
	cfg *config.Config,
	bc *core.Blockchain,
	state core.State,
	mempool *core.Mempool,
	exec *vm.Executor,
	emitter *events.Emitter,
	logger log.Logger,
	privKey crypto.PrivateKey,
) *PoA {
	limit := cfg.MaxBlockTxs
	if limit <= 0 {
		limit = defaultMaxBlockTxs
	}
	return &PoA{
		validators:  cfg.Validators,
		maxBlockTxs: limit,
		bc:          bc,
		state:       state,
		mempool:     mempool,
		exec:        exec,
		emitter:     emitter,
		logger:      logger.With("module", "consensus"),
		privKey:     privKey,
		pubKey:      privKey.Public(),
		now:         time.Now,
	}
}

// SetClock replaces the block clock.
func (p *PoA) SetClock(now func() time.Time) { p.now = now }

// IsProposer reports whether this node proposes the next block.
func (p *PoA) IsProposer() bool {
	if len(p.validators) == 0 {
		return false
	}
	next := p.bc.Height() + 1
	return p.validators[int(next%int64(len(p.validators)))] == p.pubKey.Hex()
}

// nextTimestamp keeps block time strictly increasing, so two blocks never
// share a "now" and a player's session keys never collide across blocks.
func (p *PoA) nextTimestamp(tip *core.Block) int64 {
	ts := p.now().UnixNano()
	if tip != nil && ts <= tip.Header.Timestamp {
		ts = tip.Header.Timestamp + 1
	}
	return ts
}

// ProduceBlock executes pending transactions, then signs and commits the
// resulting block. Transactions that fail are dropped from the mempool and
// left out of the block. Events are published only after the block and its
// state are committed.
func (p *PoA) ProduceBlock() (*core.Block, error) {
	if !p.IsProposer() {
		return nil, ErrNotProposer
	}

	tip := p.bc.Tip()
	prevHash, height := config.GenesisHash, int64(1)
	if tip != nil {
		prevHash, height = tip.Hash, tip.Header.Height+1
	}

	txs := p.mempool.Pending(p.maxBlockTxs)
	block := core.NewBlockAt(height, prevHash, p.pubKey.Hex(), p.nextTimestamp(tip), txs)
	res := p.exec.ExecuteBlock(block)

	block.Header.StateRoot = p.state.ComputeRoot()
	block.Sign(p.privKey)

	if err := p.bc.AddBlock(block); err != nil {
		p.state.Discard()
		return nil, fmt.Errorf("add block: %w", err)
	}
	if err := p.state.Commit(); err != nil {
		return nil, fmt.Errorf("block %d: %w: %w", height, ErrStateCommit, err)
	}

	done := make([]string, 0, len(txs))
	for _, tx := range txs {
		done = append(done, tx.ID)
	}
	p.mempool.Remove(done)

	p.emitter.EmitAll(res.Events)
	p.emitter.Emit(events.Event{
		Type:        events.EventBlockCommit,
		BlockHeight: height,
		Data:        map[string]any{"hash": block.Hash, "txs": len(res.Included), "rejected": len(res.Failed)},
	})
	return block, nil
}

// Run produces a block every interval while this node is the proposer,
// until ctx is cancelled. A state commit failure stops the loop with an
// error; other production errors are logged and retried next tick.
func (p *PoA) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if !p.IsProposer() {
				continue
			}
			block, err := p.ProduceBlock()
			if err != nil {
				if errors.Is(err, ErrStateCommit) {
					return err
				}
				p.logger.Error("produce block", "err", err)
				continue
			}
			if len(block.Transactions) > 0 {
				p.logger.Info("block committed", "height", block.Header.Height, "txs", len(block.Transactions), "hash", block.Hash)
			}
		}
	}
}
