package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tolelom/arcadechain/config"
	"github.com/tolelom/arcadechain/wallet"
)

func newGenKeyCmd(flags *rootFlags) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "genkey",
		Short: "Generate a validator key and save it to the keystore",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(flags.keyPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", flags.keyPath)
			}
			w, err := wallet.Generate("")
			if err != nil {
				return err
			}
			if err := wallet.SaveKey(flags.keyPath, keystorePassword(cmd), w.PrivKey()); err != nil {
				return err
			}
			cmd.Printf("Public key (validator address): %s\n", w.PubKey())
			cmd.Printf("Saved to: %s\n", flags.keyPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing keystore")
	return cmd
}

func newInitConfigCmd(flags *rootFlags) *cobra.Command {
	var alloc uint64
	cmd := &cobra.Command{
		Use:   "init-config",
		Short: "Write a single-validator config whose validator is the keystore key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(flags.configPath); err == nil {
				return fmt.Errorf("%s already exists", flags.configPath)
			} else if !errors.Is(err, os.ErrNotExist) {
				return err
			}
			priv, err := wallet.LoadKey(flags.keyPath, keystorePassword(cmd))
			if err != nil {
				return fmt.Errorf("load key: %w", err)
			}
			pub := priv.Public().Hex()

			cfg := config.DefaultConfig()
			cfg.Validators = []string{pub}
			if alloc > 0 {
				cfg.Genesis.Alloc[pub] = alloc
			}
			if err := config.Save(cfg, flags.configPath); err != nil {
				return err
			}
			cmd.Printf("Wrote %s (validator %s)\n", flags.configPath, pub)
			return nil
		},
	}
	cmd.Flags().Uint64Var(&alloc, "alloc", 1_000_000, "genesis balance credited to the validator")
	return cmd
}
