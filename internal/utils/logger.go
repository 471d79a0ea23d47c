package utils

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	loggerEncoding   = "console"
	loggerOutputPath = "stderr"
)

// NewApplicationLogger builds the console logger shared by every command. Log lines
// go to stderr so that stdout only carries command output; verbose enables debug.
func NewApplicationLogger(verbose bool) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	config := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Encoding:          loggerEncoding,
		DisableCaller:     true,
		DisableStacktrace: true,
		OutputPaths:       []string{loggerOutputPath},
		ErrorOutputPaths:  []string{loggerOutputPath},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey:     "message",
			LevelKey:       "level",
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
		},
	}
	return config.Build()
}
