package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Account holds a participant's token balance and replay-protection nonce.
// Address is the hex-encoded ed25519 public key, or a module address.
type Account struct {
	Address string `json:"address"`
	Balance uint64 `json:"balance"`
	Nonce   uint64 `json:"nonce"`
}

// SessionKey locates a GameSession: one player can open at most one session
// per block timestamp.
type SessionKey struct {
	Player    string `json:"player"`
	StartedAt int64  `json:"started_at"`
}

// String returns the canonical "<player>:<startedAt>" form.
func (k SessionKey) String() string {
	return k.Player + ":" + strconv.FormatInt(k.StartedAt, 10)
}

// ParseSessionKey is the inverse of SessionKey.String.
func ParseSessionKey(s string) (SessionKey, error) {
	player, ts, ok := strings.Cut(s, ":")
	if !ok || player == "" {
		return SessionKey{}, fmt.Errorf("session key %q: want <player>:<started_at>", s)
	}
	startedAt, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return SessionKey{}, fmt.Errorf("session key %q: %w", s, err)
	}
	if startedAt < 0 {
		return SessionKey{}, fmt.Errorf("session key %q: negative timestamp", s)
	}
	return SessionKey{Player: player, StartedAt: startedAt}, nil
}

// SessionState is the lifecycle position of a GameSession.
type SessionState string

const (
	SessionCreated   SessionState = "created"
	SessionActivated SessionState = "activated"
	SessionCompleted SessionState = "completed"
)

// GameSession is one paid attempt by one player.
// Player, AmountPaid and StartedAt never change after creation.
type GameSession struct {
	Player     string `json:"player"`
	AmountPaid uint64 `json:"amount_paid"`
	StartedAt  int64  `json:"started_at"`
	Activated  bool   `json:"activated"`
	Score      uint64 `json:"score"`
	Completed  bool   `json:"completed"`
}

// Key returns the session's composite key.
func (s *GameSession) Key() SessionKey {
	return SessionKey{Player: s.Player, StartedAt: s.StartedAt}
}

// State derives the lifecycle state from the flags.
func (s *GameSession) State() SessionState {
	switch {
	case s.Completed:
		return SessionCompleted
	case s.Activated:
		return SessionActivated
	default:
		return SessionCreated
	}
}

// LeaderboardEntry is one submitted score. Immutable once inserted.
type LeaderboardEntry struct {
	Player    string `json:"player"`
	Score     uint64 `json:"score"`
	Timestamp int64  `json:"timestamp"`
}

// Leaderboard is the global, capacity-bounded ranking.
type Leaderboard struct {
	Owner               string             `json:"owner"`
	TotalGamesCompleted uint64             `json:"total_games_completed"`
	Entries             []LeaderboardEntry `json:"entries"`
}

// State is the full chain state interface. Implementations must be
// snapshot-able so the executor can roll back failed transactions.
type State interface {
	// Accounts
	GetAccount(address string) (*Account, error)
	SetAccount(account *Account) error

	// Game sessions; GetGameSession returns ErrNotFound for unknown keys.
	GetGameSession(key SessionKey) (*GameSession, error)
	SetGameSession(s *GameSession) error

	// Leaderboard singleton; GetLeaderboard returns ErrNotFound before init.
	GetLeaderboard() (*Leaderboard, error)
	SetLeaderboard(lb *Leaderboard) error

	// Snapshot / rollback / commit
	Snapshot() (int, error)
	RevertToSnapshot(id int) error
	// ComputeRoot returns the deterministic state root from the current write
	// buffer without flushing. Call this before signing a block.
	ComputeRoot() string
	// Commit flushes the write buffer to the underlying DB and clears it.
	Commit() error
	// Discard drops the write buffer without flushing.
	Discard()
}
