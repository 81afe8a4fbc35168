package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/gammadia/hostpool/cli/flags"
	"github.com/spf13/viper"
)

// Base is a bare logger without attributes
var Base = slog.New(slog.NewTextHandler(io.Discard, nil))

// logger is the command line logger with default attributes
var logger = Base

// Init builds the loggers from the log flags, writing to w.
func Init(w io.Writer) error {
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(viper.GetString(flags.LogLevel))); err != nil {
		return fmt.Errorf("failed to parse log level: %w", err)
	}

	options := slog.HandlerOptions{
		AddSource: viper.GetBool(flags.LogSource),
		Level:     logLevel,
	}

	switch format := viper.GetString(flags.LogFormat); format {
	case "json":
		Base = slog.New(slog.NewJSONHandler(w, &options))
	case "text":
		Base = slog.New(slog.NewTextHandler(w, &options))
	default:
		return fmt.Errorf("unknown log format '%s'", format)
	}

	logger = Base.With("component", "cli")
	return nil
}

// Proxies for slog.Logger methods

func Debug(msg string, args ...any) {
	logger.Debug(msg, args...)
}

func Info(msg string, args ...any) {
	logger.Info(msg, args...)
}

func InfoContext(ctx context.Context, msg string, args ...any) {
	logger.InfoContext(ctx, msg, args...)
}

func Warn(msg string, args ...any) {
	logger.Warn(msg, args...)
}
