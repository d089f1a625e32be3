package storage

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/tolelom/arcadechain/core"
	"github.com/tolelom/arcadechain/crypto"
)

// registerPrefix records a state-key prefix so ComputeRoot covers it.
func registerPrefix(p string) string {
	statePrefixes = append(statePrefixes, p)
	return p
}

var statePrefixes []string

var (
	prefixAccount = registerPrefix("acct:")
	prefixSession = registerPrefix("game:")
	prefixBoard   = registerPrefix("board:")
)

var keyLeaderboard = prefixBoard + "global"

// sessionKey zero-pads the timestamp so one player's sessions iterate in
// creation order.
func sessionKey(k core.SessionKey) string {
	return fmt.Sprintf("%s%s:%020d", prefixSession, k.Player, k.StartedAt)
}

// ErrReadOnly is returned by every mutating method of a committed view.
var ErrReadOnly = errors.New("state view is read-only")

// StateDB implements core.State on top of a DB with an in-memory write
// buffer, snapshot/rollback, and deterministic state-root computation.
// Records are never deleted, so the buffer only tracks writes.
// All methods are safe for concurrent use. The buffer belongs to the single
// block-producing goroutine; other readers should use Committed.
type StateDB struct {
	mu        sync.RWMutex
	db        DB
	dirty     map[string][]byte
	snapshots []map[string][]byte
	readOnly  bool
}

// NewStateDB creates a StateDB backed by db.
func NewStateDB(db DB) *StateDB {
	return &StateDB{db: db, dirty: make(map[string][]byte)}
}

// Committed returns a read-only view of the last committed state. It never
// sees the write buffer, so a block being executed or later discarded is
// invisible until Commit writes it to db in one batch.
func (s *StateDB) Committed() *StateDB {
	return &StateDB{db: s.db, dirty: make(map[string][]byte), readOnly: true}
}

func (s *StateDB) get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.dirty[key]; ok {
		return v, nil
	}
	return s.db.Get([]byte(key))
}

func (s *StateDB) setJSON(key string, v any) error {
	if s.readOnly {
		return ErrReadOnly
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty[key] = data
	return nil
}

func (s *StateDB) getJSON(key string, v any) error {
	data, err := s.get(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// ---- Account ----

// GetAccount returns the account at address, or a zero-balance account if
// it has never been written.
func (s *StateDB) GetAccount(address string) (*core.Account, error) {
	var acc core.Account
	err := s.getJSON(prefixAccount+address, &acc)
	if errors.Is(err, core.ErrNotFound) {
		return &core.Account{Address: address}, nil
	}
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

func (s *StateDB) SetAccount(acc *core.Account) error {
	return s.setJSON(prefixAccount+acc.Address, acc)
}

// ---- Game sessions ----

func (s *StateDB) GetGameSession(key core.SessionKey) (*core.GameSession, error) {
	var sess core.GameSession
	if err := s.getJSON(sessionKey(key), &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *StateDB) SetGameSession(sess *core.GameSession) error {
	return s.setJSON(sessionKey(sess.Key()), sess)
}

// ---- Leaderboard ----

func (s *StateDB) GetLeaderboard() (*core.Leaderboard, error) {
	var lb core.Leaderboard
	if err := s.getJSON(keyLeaderboard, &lb); err != nil {
		return nil, err
	}
	return &lb, nil
}

func (s *StateDB) SetLeaderboard(lb *core.Leaderboard) error {
	return s.setJSON(keyLeaderboard, lb)
}

// ---- Snapshot / Rollback / Commit ----

func copyBuffer(dirty map[string][]byte) map[string][]byte {
	cp := make(map[string][]byte, len(dirty))
	for k, v := range dirty {
		cp[k] = bytes.Clone(v)
	}
	return cp
}

// Snapshot saves the current write buffer and returns its ID.
func (s *StateDB) Snapshot() (int, error) {
	if s.readOnly {
		return 0, ErrReadOnly
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = append(s.snapshots, copyBuffer(s.dirty))
	return len(s.snapshots) - 1, nil
}

// RevertToSnapshot restores the write buffer saved by Snapshot(id) and
// discards id and every later snapshot.
func (s *StateDB) RevertToSnapshot(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id < 0 || id >= len(s.snapshots) {
		return fmt.Errorf("invalid snapshot id %d", id)
	}
	s.dirty = copyBuffer(s.snapshots[id])
	s.snapshots = s.snapshots[:id]
	return nil
}

// ComputeRoot hashes the complete world state: persisted entries under every
// registered prefix overlaid with the write buffer, sorted by key, each pair
// length-prefixed. It does not flush.
func (s *StateDB) ComputeRoot() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	merged := make(map[string][]byte)
	for _, prefix := range statePrefixes {
		it := s.db.NewIterator([]byte(prefix))
		for it.Next() {
			merged[string(it.Key())] = bytes.Clone(it.Value())
		}
		it.Release()
	}
	for k, v := range s.dirty {
		merged[k] = v
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	var lenBuf [4]byte
	for _, k := range keys {
		v := merged[k]
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(k)))
		buf.Write(lenBuf[:])
		buf.WriteString(k)
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(v)))
		buf.Write(lenBuf[:])
		buf.Write(v)
	}
	return crypto.Hash(buf.Bytes())
}

// Commit flushes the write buffer in one batch and clears it.
func (s *StateDB) Commit() error {
	if s.readOnly {
		return ErrReadOnly
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	batch := s.db.NewBatch()
	for k, v := range s.dirty {
		batch.Set([]byte(k), v)
	}
	if err := batch.Write(); err != nil {
		return err
	}
	s.dirty = make(map[string][]byte)
	s.snapshots = nil
	return nil
}

// Discard drops the write buffer without persisting it, e.g. after a block
// failed to commit.
func (s *StateDB) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = make(map[string][]byte)
	s.snapshots = nil
}
