package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"cosmossdk.io/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tolelom/arcadechain/config"
	"github.com/tolelom/arcadechain/consensus"
	"github.com/tolelom/arcadechain/core"
	"github.com/tolelom/arcadechain/crypto"
	"github.com/tolelom/arcadechain/events"
	"github.com/tolelom/arcadechain/indexer"
	"github.com/tolelom/arcadechain/rpc"
	"github.com/tolelom/arcadechain/storage"
	"github.com/tolelom/arcadechain/vm"
	"github.com/tolelom/arcadechain/wallet"
)

func newStartCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Run the node: block production and the JSON-RPC server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			priv, err := wallet.LoadKey(flags.keyPath, keystorePassword(cmd))
			if err != nil {
				return fmt.Errorf("load key: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runNode(ctx, cfg, priv, cfg.NewLogger())
		},
	}
}

// runNode wires the node together and blocks until ctx is cancelled or a
// component fails.
func runNode(ctx context.Context, cfg *config.Config, priv crypto.PrivateKey, logger log.Logger) error {
	interval, err := cfg.Interval()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("mkdir data dir: %w", err)
	}
	db, err := storage.NewLevelDB(filepath.Join(cfg.DataDir, "chain"))
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	// State, blocks and indexes share one DB under distinct key prefixes.
	state := storage.NewStateDB(db)
	bc := core.NewBlockchain(storage.NewBlockStore(db))
	if err := bc.Init(); err != nil {
		return fmt.Errorf("blockchain init: %w", err)
	}
	if bc.Tip() == nil {
		genesis, err := config.CreateGenesisBlock(cfg, state, priv)
		if err != nil {
			return fmt.Errorf("genesis: %w", err)
		}
		if err := bc.AddBlock(genesis); err != nil {
			return fmt.Errorf("add genesis: %w", err)
		}
		logger.Info("genesis block committed", "hash", genesis.Hash, "chain_id", cfg.Genesis.ChainID)
	}

	emitter := events.NewEmitter(logger)
	idx := indexer.New(db, emitter, logger)
	mempool := core.NewMempool(cfg.MempoolSize)
	exec := vm.NewExecutor(state, logger)
	poa := consensus.New(cfg, bc, state, mempool, exec, emitter, logger, priv)

	handler := rpc.NewHandler(bc, mempool, state.Committed(), idx, cfg.Genesis.ChainID)
	server := rpc.NewServer(fmt.Sprintf(":%d", cfg.RPCPort), handler, cfg.RPCAuthToken, logger)
	if err := server.Listen(); err != nil {
		return fmt.Errorf("rpc listen: %w", err)
	}
	if cfg.RPCAuthToken != "" {
		logger.Info("rpc bearer token authentication enabled")
	}

	logger.Info("node starting", "node_id", cfg.NodeID, "validator", priv.Public().Hex(), "height", bc.Height())
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return poa.Run(ctx, interval) })
	g.Go(func() error { return server.Serve(ctx) })
	err = g.Wait()
	logger.Info("node stopped")
	return err
}
