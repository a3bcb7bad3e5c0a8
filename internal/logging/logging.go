// Package logging builds the zap logger shared by every component
package logging

import (
	"go.uber.org/zap"
)

// Config holds logging configuration
type Config struct {
	Level       string `json:"level"`
	Format      string `json:"format"` // "json" or "console"
	OutputPath  string `json:"output_path"`
	Development bool   `json:"development"`
}

// New creates a structured logger. Output defaults to stderr so that stdout
// stays free for the MCP stdio transport.
func New(config Config) (*zap.Logger, error) {
	var zapConfig zap.Config

	if config.Development {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
	}

	level, err := zap.ParseAtomicLevel(config.Level)
	if err != nil {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	zapConfig.Level = level

	if config.Format == "console" {
		zapConfig.Encoding = "console"
	} else {
		zapConfig.Encoding = "json"
	}

	zapConfig.OutputPaths = []string{"stderr"}
	if config.OutputPath != "" {
		zapConfig.OutputPaths = []string{config.OutputPath}
	}

	return zapConfig.Build()
}

// NewDefault creates a logger with sensible defaults, falling back to the
// zap production logger if the configuration cannot be built.
func NewDefault(level string) *zap.Logger {
	logger, err := New(Config{Level: level, Format: "json"})
	if err != nil {
		fallback, _ := zap.NewProduction()
		return fallback
	}
	return logger
}

// Drawing returns a child logger tagged with the drawing being processed.
func Drawing(logger *zap.Logger, project, drawing string) *zap.Logger {
	return logger.With(zap.String("project", project), zap.String("drawing", drawing))
}
