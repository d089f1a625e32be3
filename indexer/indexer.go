// Package indexer maintains secondary indexes over committed events so clients
// can find a player's game sessions without scanning state.
package indexer

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"cosmossdk.io/log"

	"github.com/tolelom/arcadechain/core"
	"github.com/tolelom/arcadechain/events"
	"github.com/tolelom/arcadechain/storage"
)

const prefixPlayerSessions = "idx:player:sessions:"

// Indexer subscribes to chain events and updates lookup tables in db.
type Indexer struct {
	mu     sync.Mutex
	db     storage.DB
	logger log.Logger
}

// New creates an Indexer backed by db and subscribes it to emitter.
func New(db storage.DB, emitter *events.Emitter, logger log.Logger) *Indexer {
	idx := &Indexer{db: db, logger: logger.With("module", "indexer")}
	emitter.Subscribe(events.EventGameStarted, idx.onGameStarted)
	return idx
}

// SessionsByPlayer returns the session keys a player opened, oldest first.
func (idx *Indexer) SessionsByPlayer(player string) ([]string, error) {
	return idx.getList(prefixPlayerSessions + player)
}

func (idx *Indexer) onGameStarted(ev events.Event) {
	player, _ := ev.Data["player"].(string)
	session, _ := ev.Data["session"].(string)
	if player == "" || session == "" {
		return
	}
	if err := idx.append(prefixPlayerSessions+player, session); err != nil {
		idx.logger.Error("index session", "player", player, "session", session, "err", err)
	}
}

func (idx *Indexer) getList(key string) ([]string, error) {
	data, err := idx.db.Get([]byte(key))
	if errors.Is(err, core.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("indexer unmarshal: %w", err)
	}
	return ids, nil
}

func (idx *Indexer) append(key, value string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	ids, err := idx.getList(key)
	if err != nil {
		return err
	}
	data, err := json.Marshal(append(ids, value))
	if err != nil {
		return err
	}
	return idx.db.Set([]byte(key), data)
}
