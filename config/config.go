// Package config loads runtime configuration for the curve updater from a
// config file and environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the full runtime configuration.
type Config struct {
	Banxico  BanxicoConfig  `mapstructure:"banxico"`
	Database DatabaseConfig `mapstructure:"database"`
	Curve    CurveConfig    `mapstructure:"curve"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// BanxicoConfig configures the SIE API client.
type BanxicoConfig struct {
	Token    string `mapstructure:"token"`
	BaseURL  string `mapstructure:"base_url"`
	MaxChunk int    `mapstructure:"max_chunk"`
}

// DatabaseConfig configures the Postgres curve store.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// CurveConfig configures the bootstrap batch.
type CurveConfig struct {
	UniqueIdentifier string `mapstructure:"unique_identifier"`
	Workers          int    `mapstructure:"workers"`
	SkipFailedDates  bool   `mapstructure:"skip_failed_dates"`
	// StartDate (YYYY-MM-DD) is the fetch window start used when the store
	// holds no prior curve.
	StartDate string `mapstructure:"start_date"`
}

// LoggingConfig configures the logrus setup.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from the optional file at path (YAML), then
// overlays environment variables prefixed MXLIB_ (nested keys joined by
// underscores, e.g. MXLIB_DATABASE_URL). BANXICO_TOKEN and DATABASE_URL are
// also honored unprefixed since deployments commonly export them bare.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("banxico.base_url", "")
	v.SetDefault("banxico.max_chunk", 10)
	v.SetDefault("curve.unique_identifier", "mxn_gov_zero")
	v.SetDefault("curve.workers", 0)
	v.SetDefault("curve.skip_failed_dates", true)
	v.SetDefault("curve.start_date", "2024-01-01")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetEnvPrefix("MXLIB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.BindEnv("banxico.token", "MXLIB_BANXICO_TOKEN", "BANXICO_TOKEN")
	v.BindEnv("database.url", "MXLIB_DATABASE_URL", "DATABASE_URL")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}
