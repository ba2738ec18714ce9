package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dronefly-project/dronefly/am"
	"github.com/dronefly-project/dronefly/cmd/dronefly/commands"
	"github.com/dronefly-project/dronefly/logger"
)

var rootCmd = &cobra.Command{
	Use:   "dronefly",
	Short: "dronefly - iNaturalist query tooling",
	Long: `dronefly - parse and inspect iNaturalist chat-bot queries.

Runs the same query parser and message-state recovery the bot plugin uses,
without a chat connection.

Available commands:
  parse   - Parse a query and show its canonical form
  refine  - Merge a follow-up into the query behind a rendered message
  ranks   - List rank keywords
  macros  - List query macros
  am      - Manage dronefly configuration ("I am")
  version - Show version information

Examples:
  dronefly parse rg birds from canada since last week
  dronefly refine --url "https://www.inaturalist.org/observations?taxon_id=3" from peru
  dronefly macros
  dronefly am show`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs := false
		if cfg, err := am.Load(); err == nil {
			jsonLogs = cfg.Log.JSON
			if verbosity == 0 {
				verbosity = cfg.Log.Verbosity
			}
		}
		if err := logger.Initialize(jsonLogs, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")

	rootCmd.AddCommand(commands.ParseCmd)
	rootCmd.AddCommand(commands.RefineCmd)
	rootCmd.AddCommand(commands.RanksCmd)
	rootCmd.AddCommand(commands.MacrosCmd)
	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
