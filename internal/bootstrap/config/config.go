package config

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"photolabel/internal/bootstrap/logging"
	"photolabel/internal/errs"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	Labeling LabelingConfig `mapstructure:"labeling"`
	Resolver ResolverConfig `mapstructure:"resolver"`
	HTTP     HTTPConfig     `mapstructure:"http"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// LabelingConfig tunes the assignment engine. LockWindowMinutes is the soft
// task-lock timeout; ClaimScanWindow bounds the unlabeled-image scan per
// claim attempt; HistoryWindow bounds history and review navigation queries.
type LabelingConfig struct {
	LockWindowMinutes int `mapstructure:"lock_window_minutes"`
	ClaimScanWindow   int `mapstructure:"claim_scan_window"`
	HistoryWindow     int `mapstructure:"history_window"`
}

type ResolverConfig struct {
	Endpoint string `mapstructure:"endpoint"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

func Load(ctx context.Context, configFile string) (Config, error) {
	if ctx == nil {
		return Config{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Config{}, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.config"))

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("PL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			// Keep default and env-backed config when no file is provided.
			logging.Warn(logCtx, "config file not found, fallback to defaults and env")
		} else {
			return Config{}, errs.Wrap(err, "read config")
		}
	} else {
		logging.Info(logCtx, "using config file", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.Wrap(err, "unmarshal config")
	}

	if cfg.Database.DSN == "" {
		return Config{}, errors.New("database.dsn is required")
	}
	if cfg.Labeling.LockWindowMinutes <= 0 {
		return Config{}, errors.New("labeling.lock_window_minutes must be positive")
	}
	if cfg.Labeling.ClaimScanWindow <= 0 {
		return Config{}, errors.New("labeling.claim_scan_window must be positive")
	}
	if cfg.Labeling.HistoryWindow <= 0 {
		return Config{}, errors.New("labeling.history_window must be positive")
	}

	logging.Info(
		logCtx,
		"config loaded",
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
		slog.String("database_driver", cfg.Database.Driver),
		slog.Int("lock_window_minutes", cfg.Labeling.LockWindowMinutes),
	)

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "photolabel")
	v.SetDefault("app.env", "local")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", ".photolabel/state/labeling.sqlite")
	v.SetDefault("labeling.lock_window_minutes", 60)
	v.SetDefault("labeling.claim_scan_window", 50)
	v.SetDefault("labeling.history_window", 200)
	v.SetDefault("resolver.endpoint", "")
	v.SetDefault("http.addr", ":8084")
}
