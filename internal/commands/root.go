// Package commands implements the callctl command tree.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/woundlink/callcore/internal/config"
	"github.com/woundlink/callcore/internal/ui"
	"github.com/woundlink/callcore/internal/version"
)

var (
	flagServer string
	flagOrigin string
	flagSTUN   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "callctl",
	Short: "Operator tool for the callcore signaling server",
	Long: `callctl inspects and exercises a running callcore signaling server.

It can list rooms, watch them live, join a room as a debug participant and
run an end-to-end WebRTC probe through the server.`,
	Version: version.Version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "", "signaling server base URL (env CALLCTL_SERVER, default "+config.DefaultServerURL+")")
	rootCmd.PersistentFlags().StringVar(&flagOrigin, "origin", "", "Origin header for the websocket handshake (env CALLCTL_ORIGIN)")
	rootCmd.PersistentFlags().StringVar(&flagSTUN, "stun", "", "STUN server for probe peers, \"none\" to disable (env STUN_SERVER)")

	rootCmd.AddCommand(statsCmd, watchCmd, joinCmd, probeCmd)
}

// Execute runs the command tree. It is called once by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		ui.PrintError(err.Error())
		stop()
		os.Exit(1)
	}
}

func loadConfig() (*config.Client, error) {
	cfg, err := config.LoadClient(config.ClientOptions{
		ServerURL:  flagServer,
		Origin:     flagOrigin,
		STUNServer: flagSTUN,
	})
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	slog.Debug("Loaded config", "server", cfg.ServerURL, "origin", cfg.Origin, "stun", cfg.STUNServer)
	return cfg, nil
}
