package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/woundlink/callcore/internal/config"
	"github.com/woundlink/callcore/internal/logging"
	"github.com/woundlink/callcore/internal/server"
	"github.com/woundlink/callcore/internal/signaling"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "callcore:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadServer(flag.CommandLine, os.Args[1:])
	if err != nil {
		return err
	}
	log := logging.Init(cfg.LogLevel, slog.LevelInfo)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := signaling.NewHub(signaling.Options{
		RoomGrace:     cfg.RoomGrace,
		SweepInterval: cfg.SweepInterval,
		SameRoomRelay: cfg.SameRoomRelay,
		SendBuffer:    cfg.SendBuffer,
	}, log)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.NewHandler(hub, cfg.AllowedOrigins, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := hub.Run(ctx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info("Starting signaling server", "addr", cfg.HTTPAddr, "origins", cfg.AllowedOrigins, "room_grace", cfg.RoomGrace)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("Shutting down signaling server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
