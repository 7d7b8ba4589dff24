package cli

import (
	"io"
	"log/slog"
)

func configureLogging(output io.Writer, verbose bool) func() {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}

	previous := slog.Default()
	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	return func() { slog.SetDefault(previous) }
}
