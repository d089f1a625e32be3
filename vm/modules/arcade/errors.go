package arcade

import errorsmod "cosmossdk.io/errors"

// Every error aborts the transaction; none is retryable without changing the
// request or waiting for another transaction to land first.
var (
	ErrInvalidRequest      = errorsmod.Register(ModuleName, 1, "invalid request")
	ErrAlreadyStarted      = errorsmod.Register(ModuleName, 2, "game has already been started")
	ErrGameNotStarted      = errorsmod.Register(ModuleName, 3, "game has not been started yet")
	ErrGameCompleted       = errorsmod.Register(ModuleName, 4, "game has already been completed")
	ErrInsufficientFunds   = errorsmod.Register(ModuleName, 5, "insufficient funds")
	ErrDuplicateSession    = errorsmod.Register(ModuleName, 6, "duplicate game session")
	ErrSessionNotFound     = errorsmod.Register(ModuleName, 7, "game session not found")
	ErrUnauthorized        = errorsmod.Register(ModuleName, 8, "signer is not the session player")
	ErrLeaderboardExists   = errorsmod.Register(ModuleName, 9, "leaderboard already initialized")
	ErrLeaderboardNotFound = errorsmod.Register(ModuleName, 10, "leaderboard not initialized")
	ErrCounterOverflow     = errorsmod.Register(ModuleName, 11, "games counter overflows uint64")
)
