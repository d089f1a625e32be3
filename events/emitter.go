// Package events is a synchronous pub/sub bus for committed state changes.
package events

import (
	"sync"

	"cosmossdk.io/log"
)

// EventType labels what happened.
type EventType string

const (
	EventBlockCommit        EventType = "block_commit"
	EventTxExecuted         EventType = "tx_executed"
	EventTxFailed           EventType = "tx_failed"
	EventTokenTransfer      EventType = "token_transfer"
	EventLeaderboardInit    EventType = "leaderboard_init"
	EventGameStarted        EventType = "game_started"
	EventGameActivated      EventType = "game_activated"
	EventScoreSubmitted     EventType = "score_submitted"
	EventLeaderboardUpdated EventType = "leaderboard_updated"
)

// Event carries a typed payload describing a state change.
type Event struct {
	Type        EventType      `json:"type"`
	TxID        string         `json:"tx_id"`
	BlockHeight int64          `json:"block_height"`
	Data        map[string]any `json:"data"`
}

// Handler is a callback invoked for matching events.
type Handler func(Event)

// Emitter fans events out to subscribers. Subscribe before Emit.
type Emitter struct {
	mu       sync.RWMutex
	logger   log.Logger
	handlers map[EventType][]Handler
}

// NewEmitter creates an Emitter with no subscribers.
func NewEmitter(logger log.Logger) *Emitter {
	return &Emitter{
		logger:   logger.With("module", "events"),
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe registers h for typ.
func (e *Emitter) Subscribe(typ EventType, h Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[typ] = append(e.handlers[typ], h)
}

// Emit delivers ev to every subscriber of ev.Type in registration order.
// A panicking subscriber is logged and skipped; it cannot halt block
// production.
func (e *Emitter) Emit(ev Event) {
	e.mu.RLock()
	handlers := e.handlers[ev.Type]
	e.mu.RUnlock()
	for _, h := range handlers {
		e.deliver(h, ev)
	}
}

// EmitAll emits evs in order.
func (e *Emitter) EmitAll(evs []Event) {
	for _, ev := range evs {
		e.Emit(ev)
	}
}

func (e *Emitter) deliver(h Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("subscriber panicked", "event", ev.Type, "tx", ev.TxID, "panic", r)
		}
	}()
	h(ev)
}
