package economy

import errorsmod "cosmossdk.io/errors"

// ModuleName is the error codespace of the economy module.
const ModuleName = "economy"

var (
	ErrInvalidTransfer   = errorsmod.Register(ModuleName, 1, "invalid transfer")
	ErrInsufficientFunds = errorsmod.Register(ModuleName, 2, "insufficient funds")
	ErrBalanceOverflow   = errorsmod.Register(ModuleName, 3, "balance overflows uint64")
)
