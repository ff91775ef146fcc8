package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/woundlink/callcore/internal/protocol"
	"github.com/woundlink/callcore/internal/sigclient"
	"github.com/woundlink/callcore/internal/ui"
)

var flagWatchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live dashboard of rooms on the server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagWatchInterval <= 0 {
			return fmt.Errorf("interval must be positive, got %s", flagWatchInterval)
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		model := ui.NewWatchModel(cfg.ServerURL, flagWatchInterval, func(ctx context.Context) (protocol.Stats, error) {
			return sigclient.FetchStats(ctx, cfg.StatsURL())
		})
		return ui.RunWatch(cmd.Context(), model)
	},
}

func init() {
	watchCmd.Flags().DurationVarP(&flagWatchInterval, "interval", "i", 2*time.Second, "refresh interval")
}
