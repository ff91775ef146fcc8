package main

import (
	"log/slog"
	"os"

	"github.com/woundlink/callcore/internal/commands"
	"github.com/woundlink/callcore/internal/logging"
)

func main() {
	// callctl stays quiet unless LOG_LEVEL asks otherwise.
	logging.Init(os.Getenv("LOG_LEVEL"), slog.LevelError)
	commands.Execute()
}
