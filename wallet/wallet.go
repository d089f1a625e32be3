package wallet

import (
	"github.com/tolelom/arcadechain/core"
	"github.com/tolelom/arcadechain/crypto"
)

// Wallet holds a key pair and builds signed transactions for one chain.
type Wallet struct {
	priv    crypto.PrivateKey
	pub     crypto.PublicKey
	chainID string
}

// New creates a Wallet for chainID from an existing private key.
func New(chainID string, priv crypto.PrivateKey) *Wallet {
	return &Wallet{priv: priv, pub: priv.Public(), chainID: chainID}
}

// Generate creates a Wallet with a fresh key pair.
func Generate(chainID string) (*Wallet, error) {
	priv, _, err := crypto.GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	return New(chainID, priv), nil
}

// PrivKey returns the raw private key.
func (w *Wallet) PrivKey() crypto.PrivateKey { return w.priv }

// PubKey returns the hex public key, which is the account address.
func (w *Wallet) PubKey() string { return w.pub.Hex() }

// ChainID returns the chain the wallet signs for.
func (w *Wallet) ChainID() string { return w.chainID }

// NewTx builds and signs a transaction. nonce must equal the account's
// current nonce.
func (w *Wallet) NewTx(typ core.TxType, nonce, fee uint64, payload any) (*core.Transaction, error) {
	tx, err := core.NewTransaction(w.chainID, typ, w.pub.Hex(), nonce, fee, payload)
	if err != nil {
		return nil, err
	}
	tx.Sign(w.priv)
	return tx, nil
}

// Transfer builds a signed token transfer.
func (w *Wallet) Transfer(to string, amount, nonce, fee uint64) (*core.Transaction, error) {
	return w.NewTx(core.TxTransfer, nonce, fee, core.TransferPayload{To: to, Amount: amount})
}

// InitLeaderboard builds the transaction that creates the global leaderboard
// with this wallet as owner.
func (w *Wallet) InitLeaderboard(nonce, fee uint64) (*core.Transaction, error) {
	return w.NewTx(core.TxArcadeInit, nonce, fee, core.ArcadeInitPayload{})
}

// StartGame escrows amount and opens a session keyed by this wallet and the
// including block's timestamp.
func (w *Wallet) StartGame(amount, nonce, fee uint64) (*core.Transaction, error) {
	return w.NewTx(core.TxArcadeStart, nonce, fee, core.ArcadeStartPayload{Amount: amount})
}

// ActivateGame flips the session's activated flag.
func (w *Wallet) ActivateGame(session core.SessionKey, nonce, fee uint64) (*core.Transaction, error) {
	return w.NewTx(core.TxArcadeActivate, nonce, fee, core.ArcadeActivatePayload{Session: session.String()})
}

// SubmitScore completes the session with score.
func (w *Wallet) SubmitScore(session core.SessionKey, score, nonce, fee uint64) (*core.Transaction, error) {
	return w.NewTx(core.TxArcadeSubmit, nonce, fee, core.ArcadeSubmitPayload{Session: session.String(), Score: score})
}
