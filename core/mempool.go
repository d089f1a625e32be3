package core

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

const (
	DefaultMempoolSize = 10_000
	maxTxAge           = time.Hour
	maxTxFuture        = 5 * time.Minute
)

// Mempool errors, distinguishable by callers (RPC maps them to messages).
var (
	ErrMempoolFull  = errors.New("mempool full")
	ErrTxKnown      = errors.New("tx already in pool")
	ErrTxExpired    = errors.New("transaction expired")
	ErrTxFromFuture = errors.New("transaction timestamp too far in the future")
)

// Mempool is a thread-safe FIFO of verified, not yet included transactions.
type Mempool struct {
	mu    sync.RWMutex
	limit int
	now   func() time.Time
	txs   map[string]*Transaction
	order []string
}

// NewMempool creates an empty pool holding at most limit transactions
// (DefaultMempoolSize when limit <= 0).
func NewMempool(limit int) *Mempool {
	if limit <= 0 {
		limit = DefaultMempoolSize
	}
	return &Mempool{limit: limit, now: time.Now, txs: make(map[string]*Transaction)}
}

// Add verifies the signature and timestamp window of tx and queues it.
func (m *Mempool) Add(tx *Transaction) error {
	if err := tx.Verify(); err != nil {
		return fmt.Errorf("invalid tx signature: %w", err)
	}
	now := m.now().UnixNano()
	if now-tx.Timestamp > int64(maxTxAge) {
		return ErrTxExpired
	}
	if tx.Timestamp-now > int64(maxTxFuture) {
		return ErrTxFromFuture
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.txs) >= m.limit {
		return ErrMempoolFull
	}
	if _, ok := m.txs[tx.ID]; ok {
		return ErrTxKnown
	}
	m.txs[tx.ID] = tx
	m.order = append(m.order, tx.ID)
	return nil
}

// Get returns a pending transaction by ID.
func (m *Mempool) Get(id string) (*Transaction, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tx, ok := m.txs[id]
	return tx, ok
}

// Pending returns up to n transactions in arrival order.
func (m *Mempool) Pending(n int) []*Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Transaction, 0, min(n, len(m.order)))
	for _, id := range m.order {
		if len(out) >= n {
			break
		}
		out = append(out, m.txs[id])
	}
	return out
}

// Remove drops the given IDs: included in a block, or rejected by execution.
func (m *Mempool) Remove(ids []string) {
	if len(ids) == 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.txs, id)
	}
	kept := m.order[:0]
	for _, id := range m.order {
		if _, ok := m.txs[id]; ok {
			kept = append(kept, id)
		}
	}
	m.order = kept
}

// Size returns the number of pending transactions.
func (m *Mempool) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.txs)
}
