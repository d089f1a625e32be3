package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/tolelom/arcadechain/config"
)

// passwordEnv holds the keystore password. It is read from the environment
// because command-line flags leak via ps.
const passwordEnv = config.EnvPrefix + "_PASSWORD"

type rootFlags struct {
	configPath string
	keyPath    string
}

// NewRootCmd creates the node command tree.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}
	rootCmd := &cobra.Command{
		Use:           "arcaded",
		Short:         "Arcade chain node: pay-to-play games with an on-chain leaderboard",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "config.json", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flags.keyPath, "key", "validator.key", "path to keystore file")

	rootCmd.AddCommand(
		newStartCmd(flags),
		newGenKeyCmd(flags),
		newInitConfigCmd(flags),
		newLeaderboardCmd(flags),
	)
	return rootCmd
}

func keystorePassword(cmd *cobra.Command) string {
	password := os.Getenv(passwordEnv)
	if password == "" {
		cmd.PrintErrf("WARNING: %s not set; keystore uses an empty password\n", passwordEnv)
	}
	return password
}
