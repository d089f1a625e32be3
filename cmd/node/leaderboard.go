package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tolelom/arcadechain/config"
	"github.com/tolelom/arcadechain/rpc"
	"github.com/tolelom/arcadechain/vm/modules/arcade"
)

func newLeaderboardCmd(flags *rootFlags) *cobra.Command {
	var url string
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Print the top 10 of a running node's leaderboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			if url == "" {
				url = fmt.Sprintf("http://127.0.0.1:%d", cfg.RPCPort)
			}

			var view arcade.LeaderboardView
			client := rpc.NewClient(url, cfg.RPCAuthToken)
			if err := client.Call(cmd.Context(), "getLeaderboard", nil, &view); err != nil {
				return err
			}
			out, err := renderLeaderboard(&view)
			if err != nil {
				return err
			}
			cmd.Print(out)
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "rpc", "", "node RPC URL (default: local node on the configured port)")
	return cmd
}

func renderLeaderboard(view *arcade.LeaderboardView) (string, error) {
	data := pterm.TableData{{"Rank", "Player", "Score", "Submitted"}}
	for _, e := range view.Top {
		data = append(data, []string{
			strconv.Itoa(e.Rank),
			abbrev(e.Player),
			strconv.FormatUint(e.Score, 10),
			time.Unix(0, e.Timestamp).UTC().Format(time.RFC3339),
		})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return "", err
	}
	header := fmt.Sprintf("Games completed: %d\n", view.TotalGamesCompleted)
	return header + table + "\n", nil
}

// abbrev shortens a 64-char pubkey hex for display.
func abbrev(player string) string {
	if len(player) <= 16 {
		return player
	}
	return player[:8] + ".." + player[len(player)-6:]
}
