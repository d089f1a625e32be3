package arcade

import (
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/tolelom/arcadechain/core"
)

// RanksAbove reports whether a is ranked strictly ahead of b: higher score
// first, then earlier timestamp. Entries equal on both keep board order, so
// an incumbent is never displaced by a later tie.
func RanksAbove(a, b core.LeaderboardEntry) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Timestamp < b.Timestamp
}

// Placement describes what Record did with a new entry.
type Placement struct {
	// Rank is the 1-based position of the new entry, or 0 if it did not make
	// the board.
	Rank int
	// Evicted is the entry pushed off the bottom, if any.
	Evicted *core.LeaderboardEntry
}

// Record counts one completed game and places e on the board.
//
// The result is the same as appending e, stably sorting by RanksAbove and
// truncating to Capacity, but done as one binary search and shift since the
// board is already sorted.
func Record(lb *core.Leaderboard, e core.LeaderboardEntry) (Placement, error) {
	if lb.TotalGamesCompleted == math.MaxUint64 {
		return Placement{}, ErrCounterOverflow
	}
	lb.TotalGamesCompleted++

	// First index whose entry e outranks; everything before it stays ahead.
	i := sort.Search(len(lb.Entries), func(i int) bool {
		return RanksAbove(e, lb.Entries[i])
	})
	if i >= Capacity {
		return Placement{}, nil
	}

	var p Placement
	lb.Entries = slices.Insert(lb.Entries, i, e)
	if len(lb.Entries) > Capacity {
		last := lb.Entries[Capacity]
		p.Evicted = &last
		lb.Entries = lb.Entries[:Capacity]
	}
	p.Rank = i + 1
	return p, nil
}

// Validate checks the leaderboard invariants: bounded length, ranked order,
// and a counter no smaller than the number of entries.
func Validate(lb *core.Leaderboard) error {
	if len(lb.Entries) > Capacity {
		return fmt.Errorf("leaderboard holds %d entries, capacity %d", len(lb.Entries), Capacity)
	}
	if lb.TotalGamesCompleted < uint64(len(lb.Entries)) {
		return fmt.Errorf("games counter %d below entry count %d", lb.TotalGamesCompleted, len(lb.Entries))
	}
	for i := 1; i < len(lb.Entries); i++ {
		if RanksAbove(lb.Entries[i], lb.Entries[i-1]) {
			return fmt.Errorf("entry %d outranks entry %d", i, i-1)
		}
	}
	return nil
}
