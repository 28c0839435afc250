package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Global logger instance
var (
	Log zerolog.Logger
)

// Initialize sets up the global logger with configuration
func Initialize(level string, pretty bool) {
	// Parse log level
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	// Configure output format
	if pretty {
		// Pretty console output for development
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	} else {
		// JSON output for production
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	}

	// Set global logger
	Log = log.With().
		Str("service", "chatcore").
		Logger()

	Log.Info().
		Str("level", logLevel.String()).
		Bool("pretty", pretty).
		Msg("Logger initialized")
}

// GetLogger returns the global logger instance
func GetLogger() *zerolog.Logger {
	return &Log
}

// Hub creates a logger for Hub registry/fan-out events
func Hub() *zerolog.Logger {
	l := Log.With().Str("component", "hub").Logger()
	return &l
}

// ClientSession creates a logger for per-connection client session events
func ClientSession() *zerolog.Logger {
	l := Log.With().Str("component", "client_session").Logger()
	return &l
}

// Edge creates a logger for WebSocket edge (upgrade, pumps) events
func Edge() *zerolog.Logger {
	l := Log.With().Str("component", "edge").Logger()
	return &l
}

// Friendship creates a logger for friendship state machine events
func Friendship() *zerolog.Logger {
	l := Log.With().Str("component", "friendship").Logger()
	return &l
}

// Store creates a logger for Store facade (DB + cache) events
func Store() *zerolog.Logger {
	l := Log.With().Str("component", "store").Logger()
	return &l
}

// HTTP creates a logger for HTTP request events
func HTTP() *zerolog.Logger {
	l := Log.With().Str("component", "http").Logger()
	return &l
}
