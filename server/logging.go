package server

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// SetupLogging points the global logger at the console, plus a rotated JSON
// file when one is configured.
func SetupLogging(cfg LogConfig) {
	writers := []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr}}
	if cfg.File != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		})
	}
	log.Logger = log.Output(zerolog.MultiLevelWriter(writers...))
	applyLogLevel(cfg.Level)
}

func applyLogLevel(level string) {
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		l = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(l)
}
