package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/woundlink/callcore/internal/sigclient"
	"github.com/woundlink/callcore/internal/ui"
)

var flagStatsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show rooms and connections on the server",
	Long: `Fetch one stats snapshot from the server and print it.

Examples:
  callctl stats
  callctl stats --server https://calls.example.com
  callctl stats --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		stats, err := sigclient.FetchStats(cmd.Context(), cfg.StatsURL())
		if err != nil {
			return err
		}

		if flagStatsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		}

		fmt.Println(ui.StatsSummaryView(stats))
		fmt.Println(ui.RoomsView(stats.Rooms, time.Now()))
		return nil
	},
}

func init() {
	statsCmd.Flags().BoolVar(&flagStatsJSON, "json", false, "print the raw JSON snapshot")
}
