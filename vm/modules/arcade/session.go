package arcade

import (
	"encoding/json"
	"errors"

	errorsmod "cosmossdk.io/errors"

	"github.com/tolelom/arcadechain/core"
	"github.com/tolelom/arcadechain/events"
	"github.com/tolelom/arcadechain/vm"
	"github.com/tolelom/arcadechain/vm/modules/economy"
)

func decode(payload json.RawMessage, v any) error {
	if len(payload) == 0 {
		return ErrInvalidRequest.Wrap("empty payload")
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return errorsmod.Wrap(ErrInvalidRequest, err.Error())
	}
	return nil
}

func handleInit(ctx *vm.Context, payload json.RawMessage) error {
	var p core.ArcadeInitPayload
	if err := decode(payload, &p); err != nil {
		return err
	}
	_, err := ctx.State.GetLeaderboard()
	switch {
	case err == nil:
		return ErrLeaderboardExists
	case !errors.Is(err, core.ErrNotFound):
		return err
	}

	lb := &core.Leaderboard{Owner: ctx.Tx.From, Entries: []core.LeaderboardEntry{}}
	if err := ctx.State.SetLeaderboard(lb); err != nil {
		return err
	}
	ctx.Logger.Info("leaderboard initialized", "owner", lb.Owner)
	ctx.Emit(events.EventLeaderboardInit, map[string]any{"owner": lb.Owner})
	return nil
}

func handleStart(ctx *vm.Context, payload json.RawMessage) error {
	var p core.ArcadeStartPayload
	if err := decode(payload, &p); err != nil {
		return err
	}
	if p.Amount == 0 {
		return ErrInvalidRequest.Wrap("amount must be > 0")
	}

	key := core.SessionKey{Player: ctx.Tx.From, StartedAt: ctx.Now()}
	if _, err := ctx.State.GetGameSession(key); err == nil {
		return ErrDuplicateSession.Wrapf("session %s", key)
	} else if !errors.Is(err, core.ErrNotFound) {
		return err
	}

	if err := economy.Transfer(ctx.State, key.Player, CustodyAddress, p.Amount); err != nil {
		if errors.Is(err, economy.ErrInsufficientFunds) {
			return errorsmod.Wrap(ErrInsufficientFunds, err.Error())
		}
		return err
	}

	sess := &core.GameSession{
		Player:     key.Player,
		AmountPaid: p.Amount,
		StartedAt:  key.StartedAt,
	}
	if err := ctx.State.SetGameSession(sess); err != nil {
		return err
	}

	ctx.Logger.Info("game session started", "session", key.String(), "amount", p.Amount)
	ctx.Emit(events.EventGameStarted, map[string]any{
		"session": key.String(),
		"player":  key.Player,
		"amount":  p.Amount,
	})
	return nil
}

// loadOwnSession resolves ref and checks that the signer owns the session.
func loadOwnSession(ctx *vm.Context, ref string) (*core.GameSession, error) {
	key, err := core.ParseSessionKey(ref)
	if err != nil {
		return nil, errorsmod.Wrap(ErrInvalidRequest, err.Error())
	}
	sess, err := ctx.State.GetGameSession(key)
	if errors.Is(err, core.ErrNotFound) {
		return nil, ErrSessionNotFound.Wrapf("session %s", ref)
	}
	if err != nil {
		return nil, err
	}
	if sess.Player != ctx.Tx.From {
		return nil, ErrUnauthorized.Wrapf("session %s", ref)
	}
	return sess, nil
}

func handleActivate(ctx *vm.Context, payload json.RawMessage) error {
	var p core.ArcadeActivatePayload
	if err := decode(payload, &p); err != nil {
		return err
	}
	sess, err := loadOwnSession(ctx, p.Session)
	if err != nil {
		return err
	}
	// A completed session is also activated; report the terminal state.
	if sess.Completed {
		return ErrGameCompleted.Wrapf("session %s", p.Session)
	}
	if sess.Activated {
		return ErrAlreadyStarted.Wrapf("session %s", p.Session)
	}

	sess.Activated = true
	if err := ctx.State.SetGameSession(sess); err != nil {
		return err
	}

	ctx.Logger.Info("game activated", "session", p.Session)
	ctx.Emit(events.EventGameActivated, map[string]any{
		"session": p.Session,
		"player":  sess.Player,
	})
	return nil
}

func handleSubmit(ctx *vm.Context, payload json.RawMessage) error {
	var p core.ArcadeSubmitPayload
	if err := decode(payload, &p); err != nil {
		return err
	}
	sess, err := loadOwnSession(ctx, p.Session)
	if err != nil {
		return err
	}
	if sess.Completed {
		return ErrGameCompleted.Wrapf("session %s", p.Session)
	}
	if !sess.Activated {
		return ErrGameNotStarted.Wrapf("session %s", p.Session)
	}

	lb, err := ctx.State.GetLeaderboard()
	if errors.Is(err, core.ErrNotFound) {
		return ErrLeaderboardNotFound
	}
	if err != nil {
		return err
	}

	entry := core.LeaderboardEntry{Player: sess.Player, Score: p.Score, Timestamp: ctx.Now()}
	placed, err := Record(lb, entry)
	if err != nil {
		return err
	}
	if err := Validate(lb); err != nil {
		return err
	}

	sess.Score = p.Score
	sess.Completed = true
	if err := ctx.State.SetGameSession(sess); err != nil {
		return err
	}
	if err := ctx.State.SetLeaderboard(lb); err != nil {
		return err
	}

	ctx.Logger.Info("score submitted", "session", p.Session, "score", p.Score, "rank", placed.Rank)
	ctx.Emit(events.EventScoreSubmitted, map[string]any{
		"session": p.Session,
		"player":  sess.Player,
		"score":   p.Score,
	})
	update := map[string]any{
		"player":      sess.Player,
		"score":       p.Score,
		"rank":        placed.Rank,
		"total_games": lb.TotalGamesCompleted,
	}
	if placed.Evicted != nil {
		update["evicted_player"] = placed.Evicted.Player
		update["evicted_score"] = placed.Evicted.Score
	}
	ctx.Emit(events.EventLeaderboardUpdated, update)
	return nil
}
