package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tolelom/arcadechain/crypto"
)

// TxType identifies the kind of operation a transaction performs.
type TxType string

const (
	TxTransfer       TxType = "transfer"
	TxArcadeInit     TxType = "arcade_init"
	TxArcadeStart    TxType = "arcade_start"
	TxArcadeActivate TxType = "arcade_activate"
	TxArcadeSubmit   TxType = "arcade_submit"
)

// Transaction is the atomic unit of work on the chain.
// From holds the sender's hex-encoded ed25519 public key (64 chars).
// Signature covers every field except ID and Signature.
type Transaction struct {
	ID        string          `json:"id"`
	ChainID   string          `json:"chain_id"`
	Type      TxType          `json:"type"`
	From      string          `json:"from"`
	Nonce     uint64          `json:"nonce"`
	Fee       uint64          `json:"fee"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
	Signature string          `json:"signature"`
}

type signingBody struct {
	ChainID   string          `json:"chain_id"`
	Type      TxType          `json:"type"`
	From      string          `json:"from"`
	Nonce     uint64          `json:"nonce"`
	Fee       uint64          `json:"fee"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// Hash returns the deterministic hash of the signing body.
func (tx *Transaction) Hash() string {
	data, err := json.Marshal(signingBody{
		ChainID:   tx.ChainID,
		Type:      tx.Type,
		From:      tx.From,
		Nonce:     tx.Nonce,
		Fee:       tx.Fee,
		Timestamp: tx.Timestamp,
		Payload:   tx.Payload,
	})
	if err != nil {
		return ""
	}
	return crypto.Hash(data)
}

// Sign sets ID and Signature.
func (tx *Transaction) Sign(priv crypto.PrivateKey) {
	tx.ID = tx.Hash()
	tx.Signature = crypto.Sign(priv, []byte(tx.ID))
}

// Verify checks that From is a valid public key and that it signed the tx.
func (tx *Transaction) Verify() error {
	if tx.From == "" {
		return errors.New("missing from field")
	}
	pub, err := crypto.PubKeyFromHex(tx.From)
	if err != nil {
		return fmt.Errorf("invalid from: %w", err)
	}
	return crypto.Verify(pub, []byte(tx.Hash()), tx.Signature)
}

// NewTransaction builds an unsigned transaction stamped with the current time.
func NewTransaction(chainID string, typ TxType, from string, nonce, fee uint64, payload any) (*Transaction, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return &Transaction{
		ChainID:   chainID,
		Type:      typ,
		From:      from,
		Nonce:     nonce,
		Fee:       fee,
		Timestamp: time.Now().UnixNano(),
		Payload:   raw,
	}, nil
}

// ---- Payload types ----

// TransferPayload moves native tokens from the signer to To.
type TransferPayload struct {
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

// ArcadeInitPayload creates the global leaderboard. The signer becomes its owner.
type ArcadeInitPayload struct{}

// ArcadeStartPayload escrows Amount and opens a game session for the signer.
type ArcadeStartPayload struct {
	Amount uint64 `json:"amount"`
}

// ArcadeActivatePayload marks a session as started by the physical trigger.
type ArcadeActivatePayload struct {
	Session string `json:"session"` // SessionKey.String()
}

// ArcadeSubmitPayload records the final score of an activated session.
type ArcadeSubmitPayload struct {
	Session string `json:"session"`
	Score   uint64 `json:"score"`
}
