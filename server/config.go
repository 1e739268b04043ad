package server

import (
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config is everything the server reads at start. A config file is optional;
// every field has a default and can come from GAMEHUB_* env vars instead.
type Config struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`

	// PollTimeout bounds wait-for-update requests.
	PollTimeout time.Duration `mapstructure:"poll_timeout"`
	// MaxBodyBytes bounds JSON request bodies, before parsing.
	MaxBodyBytes int64 `mapstructure:"max_body_bytes"`

	Log LogConfig `mapstructure:"log"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	// File, if set, gets JSON logs with rotation alongside the console.
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// LoadConfig reads config from file (if present), env, and defaults.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 8080)
	v.SetDefault("poll_timeout", 30*time.Second)
	v.SetDefault("max_body_bytes", 4096)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 3)

	v.SetEnvPrefix("GAMEHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("gamehub")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	// hot reload covers the log level only; everything else needs a restart
	v.OnConfigChange(func(e fsnotify.Event) {
		level := v.GetString("log.level")
		if level != cfg.Log.Level {
			cfg.Log.Level = level
			applyLogLevel(level)
			log.Info().Str("level", level).Msg("log level changed")
		}
	})
	v.WatchConfig()

	return cfg, nil
}
