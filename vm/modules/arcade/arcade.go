// Package arcade implements the pay-to-play game: a player escrows tokens to
// open a session, a physical trigger activates it, the final score is
// submitted once, and a global top-100 leaderboard is kept.
//
// Sessions move strictly Created -> Activated -> Completed. Every operation
// is a transaction, so the executor's per-transaction snapshot gives
// all-or-nothing semantics, and the single block-producing goroutine gives
// the leaderboard its one writer at a time.
package arcade

import (
	"github.com/tolelom/arcadechain/core"
	"github.com/tolelom/arcadechain/crypto"
	"github.com/tolelom/arcadechain/vm"
)

// ModuleName is the error codespace and custody account seed.
const ModuleName = "arcade"

const (
	// Capacity is the maximum number of leaderboard entries kept.
	Capacity = 100
	// TopN is the number of entries the leaderboard query returns.
	TopN = 10
)

// CustodyAddress holds every escrowed stake.
var CustodyAddress = crypto.ModuleAddress(ModuleName)

func init() {
	vm.Register(core.TxArcadeInit, handleInit)
	vm.Register(core.TxArcadeStart, handleStart)
	vm.Register(core.TxArcadeActivate, handleActivate)
	vm.Register(core.TxArcadeSubmit, handleSubmit)
}
