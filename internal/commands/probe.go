package commands

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/woundlink/callcore/internal/probe"
	"github.com/woundlink/callcore/internal/ui"
)

var (
	flagProbeRoom    string
	flagProbePings   int
	flagProbeTimeout time.Duration
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Run an end-to-end WebRTC call through the server",
	Long: `Start two in-process WebRTC peers, join them to a fresh room, negotiate a
data channel through the server and measure round trips over it.

Examples:
  callctl probe
  callctl probe --pings 20 --stun none
  callctl probe --server https://calls.example.com --origin https://app.example.com`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		sp := ui.NewWaitingSpinner("Negotiating probe call...")
		sp.Start()
		res, err := probe.Run(cmd.Context(), probe.Options{
			WebSocketURL: cfg.WebSocketURL(),
			Origin:       cfg.Origin,
			ICEServers:   cfg.ICEServers(),
			RoomID:       flagProbeRoom,
			Pings:        flagProbePings,
			Timeout:      flagProbeTimeout,
		}, slog.Default())
		if err != nil {
			sp.Error("Probe failed")
			return err
		}
		sp.Success(fmt.Sprintf("Probe completed in room %s", res.RoomID))

		fmt.Println(ui.ProbeReportView(res))
		return nil
	},
}

func init() {
	probeCmd.Flags().StringVar(&flagProbeRoom, "room", "", "room to probe in (default a fresh probe-<uuid> room)")
	probeCmd.Flags().IntVarP(&flagProbePings, "pings", "n", probe.DefaultPings, "number of data channel pings")
	probeCmd.Flags().DurationVar(&flagProbeTimeout, "timeout", probe.DefaultTimeout, "overall probe deadline")
}
