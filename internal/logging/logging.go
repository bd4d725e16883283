// Package logging builds the zap logger used across midikeys.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/icco/midikeys/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a logger from cfg. Output goes to cfg.Path, or stderr when the
// path is empty.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		l, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		level = l
	}

	output := "stderr"
	if cfg.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0750); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
		output = cfg.Path
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.OutputPaths = []string{output}
	zc.ErrorOutputPaths = []string{output}
	zc.Sampling = nil

	return zc.Build()
}

// DefaultPath is the log file used while the terminal is taken by the UI.
func DefaultPath() string {
	dir, err := config.Dir()
	if err != nil {
		return filepath.Join(os.TempDir(), "midikeys.log")
	}
	return filepath.Join(dir, "midikeys.log")
}
