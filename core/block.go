package core

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/tolelom/arcadechain/crypto"
)

// BlockHeader contains the block metadata that is hashed and signed.
// Timestamp (unix nanoseconds) is the "now" every transaction in the block
// observes; game sessions use it as part of their key.
type BlockHeader struct {
	Height    int64  `json:"height"`
	PrevHash  string `json:"prev_hash"`
	StateRoot string `json:"state_root"`
	TxRoot    string `json:"tx_root"`
	Timestamp int64  `json:"timestamp"`
	Proposer  string `json:"proposer"`
}

// Block is an ordered batch of transactions with a signed header.
type Block struct {
	Header       BlockHeader    `json:"header"`
	Transactions []*Transaction `json:"transactions"`
	Hash         string         `json:"hash"`
	Signature    string         `json:"signature"`
}

// ComputeHash hashes the serialised header.
func (b *Block) ComputeHash() string {
	data, err := json.Marshal(b.Header)
	if err != nil {
		return ""
	}
	return crypto.Hash(data)
}

// Sign sets Hash and signs it with the proposer's key.
func (b *Block) Sign(priv crypto.PrivateKey) {
	b.Hash = b.ComputeHash()
	b.Signature = crypto.Sign(priv, []byte(b.Hash))
}

// Verify checks the block signature against pub.
func (b *Block) Verify(pub crypto.PublicKey) error {
	return crypto.Verify(pub, []byte(b.Hash), b.Signature)
}

// ComputeTxRoot hashes the concatenated transaction IDs.
func ComputeTxRoot(txs []*Transaction) string {
	if len(txs) == 0 {
		return crypto.Hash([]byte("empty"))
	}
	var sb strings.Builder
	for _, tx := range txs {
		sb.WriteString(tx.ID)
	}
	return crypto.Hash([]byte(sb.String()))
}

// NewBlock creates an unsigned block stamped with the current time.
func NewBlock(height int64, prevHash, proposer string, txs []*Transaction) *Block {
	return NewBlockAt(height, prevHash, proposer, time.Now().UnixNano(), txs)
}

// NewBlockAt creates an unsigned block with an explicit timestamp.
func NewBlockAt(height int64, prevHash, proposer string, ts int64, txs []*Transaction) *Block {
	return &Block{
		Header: BlockHeader{
			Height:    height,
			PrevHash:  prevHash,
			TxRoot:    ComputeTxRoot(txs),
			Timestamp: ts,
			Proposer:  proposer,
		},
		Transactions: txs,
	}
}
