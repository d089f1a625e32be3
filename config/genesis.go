package config

import (
	"github.com/tolelom/arcadechain/core"
	"github.com/tolelom/arcadechain/crypto"
)

// GenesisHash is the all-zeros previous hash of block #0.
const GenesisHash = "0000000000000000000000000000000000000000000000000000000000000000"

// CreateGenesisBlock credits the configured allocations, commits them and
// returns the signed block #0. The leaderboard is not created here: it is
// created by the first arcade_init transaction, whose signer becomes owner.
func CreateGenesisBlock(cfg *Config, state core.State, proposerPriv crypto.PrivateKey) (*core.Block, error) {
	for pubkeyHex, balance := range cfg.Genesis.Alloc {
		if err := state.SetAccount(&core.Account{Address: pubkeyHex, Balance: balance}); err != nil {
			return nil, err
		}
	}

	stateRoot := state.ComputeRoot()
	if err := state.Commit(); err != nil {
		return nil, err
	}

	block := core.NewBlock(0, GenesisHash, proposerPriv.Public().Hex(), nil)
	block.Header.StateRoot = stateRoot
	// TxRoot of block #0 commits to the chain ID.
	block.Header.TxRoot = crypto.Hash([]byte(cfg.Genesis.ChainID))
	block.Sign(proposerPriv)
	return block, nil
}
