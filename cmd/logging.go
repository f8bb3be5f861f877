package cmd

import (
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// SetupLogging installs charmbracelet/log as the slog default handler.
// Unknown or empty levels fall back to info.
func SetupLogging(levelStr string) {
	level, err := log.ParseLevel(levelStr)
	if err != nil {
		level = log.InfoLevel
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		Prefix:          "treewatch",
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})

	slog.SetDefault(slog.New(logger))
}
