// Package economy moves native tokens between accounts. Transfer is also the
// escrow primitive other modules call to take custody of a player's stake.
package economy

import (
	"encoding/json"

	errorsmod "cosmossdk.io/errors"

	"github.com/tolelom/arcadechain/core"
	"github.com/tolelom/arcadechain/events"
	"github.com/tolelom/arcadechain/vm"
)

func init() {
	vm.Register(core.TxTransfer, handleTransfer)
}

// Transfer moves amount from one account to another. Both balances are
// checked before either is written, so on error the state is untouched.
func Transfer(state core.State, from, to string, amount uint64) error {
	if amount == 0 {
		return ErrInvalidTransfer.Wrap("amount must be > 0")
	}
	if to == "" {
		return ErrInvalidTransfer.Wrap("recipient required")
	}
	if from == to {
		return ErrInvalidTransfer.Wrap("sender and recipient are the same account")
	}

	sender, err := state.GetAccount(from)
	if err != nil {
		return err
	}
	if sender.Balance < amount {
		return ErrInsufficientFunds.Wrapf("have %d, need %d", sender.Balance, amount)
	}
	recipient, err := state.GetAccount(to)
	if err != nil {
		return err
	}
	if recipient.Balance > ^uint64(0)-amount {
		return ErrBalanceOverflow.Wrapf("crediting %s", to)
	}

	sender.Balance -= amount
	recipient.Balance += amount
	if err := state.SetAccount(sender); err != nil {
		return err
	}
	return state.SetAccount(recipient)
}

// Balance returns the token balance of address.
func Balance(state core.State, address string) (uint64, error) {
	acc, err := state.GetAccount(address)
	if err != nil {
		return 0, err
	}
	return acc.Balance, nil
}

func handleTransfer(ctx *vm.Context, payload json.RawMessage) error {
	var p core.TransferPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return errorsmod.Wrap(ErrInvalidTransfer, err.Error())
	}
	if err := Transfer(ctx.State, ctx.Tx.From, p.To, p.Amount); err != nil {
		return err
	}
	ctx.Emit(events.EventTokenTransfer, map[string]any{
		"from":   ctx.Tx.From,
		"to":     p.To,
		"amount": p.Amount,
	})
	return nil
}
