// Package config loads server and CLI configuration.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Server holds signaling server configuration.
type Server struct {
	HTTPAddr       string        `env:"CALLCORE_HTTP_ADDR"       envDefault:":8080"`
	AllowedOrigins []string      `env:"CALLCORE_ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
	RoomGrace      time.Duration `env:"CALLCORE_ROOM_GRACE"      envDefault:"30m"`
	SweepInterval  time.Duration `env:"CALLCORE_SWEEP_INTERVAL"  envDefault:"5m"`
	SameRoomRelay  bool          `env:"CALLCORE_SAME_ROOM_RELAY" envDefault:"true"`
	SendBuffer     int           `env:"CALLCORE_SEND_BUFFER"     envDefault:"256"`
	LogLevel       string        `env:"LOG_LEVEL"                envDefault:"info"`
}

// LoadServer reads an optional .env file, then the environment, then flags
// from args. Later sources win.
func LoadServer(flags *flag.FlagSet, args []string) (Server, error) {
	if err := loadDotEnv(".env"); err != nil {
		return Server{}, err
	}

	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}

	flags.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	flags.Func("allowed-origins", "comma-separated origins allowed to open a websocket (* for any)", func(v string) error {
		cfg.AllowedOrigins = splitList(v)
		return nil
	})
	flags.DurationVar(&cfg.RoomGrace, "room-grace", cfg.RoomGrace, "how long an empty room is kept")
	flags.DurationVar(&cfg.SweepInterval, "sweep-interval", cfg.SweepInterval, "how often empty rooms are swept")
	flags.BoolVar(&cfg.SameRoomRelay, "same-room-relay", cfg.SameRoomRelay, "only relay signaling between members of the same room")
	if args == nil {
		args = []string{}
	}
	if err := flags.Parse(args); err != nil {
		return Server{}, err
	}

	cfg.AllowedOrigins = splitList(strings.Join(cfg.AllowedOrigins, ","))
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate reports configuration values the server cannot run with.
func (c Server) Validate() error {
	var errs []error
	if strings.TrimSpace(c.HTTPAddr) == "" {
		errs = append(errs, errors.New("http address is required"))
	}
	if len(c.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("at least one allowed origin is required"))
	}
	if c.RoomGrace <= 0 {
		errs = append(errs, fmt.Errorf("room grace must be positive, got %s", c.RoomGrace))
	}
	if c.SweepInterval <= 0 {
		errs = append(errs, fmt.Errorf("sweep interval must be positive, got %s", c.SweepInterval))
	}
	if c.SendBuffer < 1 {
		errs = append(errs, fmt.Errorf("send buffer must be at least 1, got %d", c.SendBuffer))
	}
	return errors.Join(errs...)
}

func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
