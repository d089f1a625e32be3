package arcade

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/tolelom/arcadechain/core"
)

func TestRanksAbove(t *testing.T) {
	hi := core.LeaderboardEntry{Player: "a", Score: 10, Timestamp: 5}
	lo := core.LeaderboardEntry{Player: "b", Score: 9, Timestamp: 1}
	later := core.LeaderboardEntry{Player: "c", Score: 10, Timestamp: 6}

	require.True(t, RanksAbove(hi, lo))
	require.False(t, RanksAbove(lo, hi))
	require.True(t, RanksAbove(hi, later), "earlier timestamp wins a tie")
	require.False(t, RanksAbove(hi, hi))
}

func TestRecordTieKeepsIncumbent(t *testing.T) {
	lb := &core.Leaderboard{}
	first := core.LeaderboardEntry{Player: "first", Score: 5, Timestamp: 1}
	second := core.LeaderboardEntry{Player: "second", Score: 5, Timestamp: 1}

	_, err := Record(lb, first)
	require.NoError(t, err)
	p, err := Record(lb, second)
	require.NoError(t, err)
	require.Equal(t, 2, p.Rank)
	require.Equal(t, []string{"first", "second"}, []string{lb.Entries[0].Player, lb.Entries[1].Player})
}

func TestRecordCounterOverflow(t *testing.T) {
	lb := &core.Leaderboard{TotalGamesCompleted: math.MaxUint64}
	_, err := Record(lb, core.LeaderboardEntry{Score: 1})
	require.ErrorIs(t, err, ErrCounterOverflow)
	require.Empty(t, lb.Entries)
	require.Equal(t, uint64(math.MaxUint64), lb.TotalGamesCompleted)
}

func TestValidate(t *testing.T) {
	ok := &core.Leaderboard{
		TotalGamesCompleted: 2,
		Entries:             []core.LeaderboardEntry{{Score: 3, Timestamp: 1}, {Score: 3, Timestamp: 2}},
	}
	require.NoError(t, Validate(ok))

	unsorted := &core.Leaderboard{
		TotalGamesCompleted: 2,
		Entries:             []core.LeaderboardEntry{{Score: 1}, {Score: 2}},
	}
	require.Error(t, Validate(unsorted))

	undercounted := &core.Leaderboard{TotalGamesCompleted: 0, Entries: []core.LeaderboardEntry{{Score: 1}}}
	require.Error(t, Validate(undercounted))

	full := &core.Leaderboard{TotalGamesCompleted: Capacity + 1, Entries: make([]core.LeaderboardEntry, Capacity+1)}
	require.Error(t, Validate(full))
}

// entryGen draws entries with few distinct scores and timestamps so ties are
// common.
var entryGen = rapid.Custom(func(t *rapid.T) core.LeaderboardEntry {
	return core.LeaderboardEntry{
		Player:    rapid.SampledFrom([]string{"p1", "p2", "p3", "p4"}).Draw(t, "player"),
		Score:     rapid.Uint64Range(0, 20).Draw(t, "score"),
		Timestamp: rapid.Int64Range(0, 30).Draw(t, "ts"),
	}
})

// TestRecordMatchesSortAndTruncate checks Record against the direct
// definition: append, stable sort by rank, keep the first Capacity.
func TestRecordMatchesSortAndTruncate(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		entries := rapid.SliceOfN(entryGen, 0, 3*Capacity).Draw(t, "entries")

		lb := &core.Leaderboard{Entries: []core.LeaderboardEntry{}}
		var model []core.LeaderboardEntry
		for i, e := range entries {
			placed, err := Record(lb, e)
			require.NoError(t, err)

			model = append(model, e)
			slices.SortStableFunc(model, func(a, b core.LeaderboardEntry) int {
				switch {
				case RanksAbove(a, b):
					return -1
				case RanksAbove(b, a):
					return 1
				}
				return 0
			})
			model = model[:min(len(model), Capacity)]

			require.Equal(t, model, lb.Entries)
			require.Equal(t, uint64(i+1), lb.TotalGamesCompleted)
			require.NoError(t, Validate(lb))
			if placed.Rank > 0 {
				require.Equal(t, e, lb.Entries[placed.Rank-1])
			}
		}
	})
}
