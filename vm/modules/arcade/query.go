package arcade

import (
	"errors"

	errorsmod "cosmossdk.io/errors"

	"github.com/tolelom/arcadechain/core"
)

// RankedEntry is a leaderboard entry with its 1-based rank.
type RankedEntry struct {
	Rank int `json:"rank"`
	core.LeaderboardEntry
}

// LeaderboardView is the public projection of the leaderboard.
type LeaderboardView struct {
	Owner               string        `json:"owner"`
	TotalGamesCompleted uint64        `json:"total_games_completed"`
	Top                 []RankedEntry `json:"top"`
}

// Query returns the games counter and the first TopN entries. It never
// writes state.
func Query(state core.State) (*LeaderboardView, error) {
	lb, err := state.GetLeaderboard()
	if errors.Is(err, core.ErrNotFound) {
		return nil, ErrLeaderboardNotFound
	}
	if err != nil {
		return nil, err
	}
	n := min(len(lb.Entries), TopN)
	view := &LeaderboardView{
		Owner:               lb.Owner,
		TotalGamesCompleted: lb.TotalGamesCompleted,
		Top:                 make([]RankedEntry, n),
	}
	for i := 0; i < n; i++ {
		view.Top[i] = RankedEntry{Rank: i + 1, LeaderboardEntry: lb.Entries[i]}
	}
	return view, nil
}

// SessionView is a game session with its key and derived lifecycle state.
type SessionView struct {
	Key   string            `json:"key"`
	State core.SessionState `json:"state"`
	*core.GameSession
}

// GetSession looks a session up by its "<player>:<started_at>" reference.
func GetSession(state core.State, ref string) (*SessionView, error) {
	key, err := core.ParseSessionKey(ref)
	if err != nil {
		return nil, errorsmod.Wrap(ErrInvalidRequest, err.Error())
	}
	sess, err := state.GetGameSession(key)
	if errors.Is(err, core.ErrNotFound) {
		return nil, ErrSessionNotFound.Wrapf("session %s", ref)
	}
	if err != nil {
		return nil, err
	}
	return &SessionView{Key: key.String(), State: sess.State(), GameSession: sess}, nil
}
