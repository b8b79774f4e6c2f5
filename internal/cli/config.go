package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the CLI defaults. Values come from, in increasing priority:
// built-in defaults, gridq.yaml, GRIDQ_* environment variables and flags.
type Config struct {
	Format  string `mapstructure:"format"`
	Verbose bool   `mapstructure:"verbose"`

	// DB is the SQLite database used by query and load when --db is not
	// given.
	DB string `mapstructure:"db"`
	// Postgres is a connection string used instead of DB when set.
	Postgres string `mapstructure:"postgres"`

	RowsPerPage int `mapstructure:"rows_per_page"`
	// Timeout bounds one query or load, in seconds.
	Timeout int `mapstructure:"timeout"`
}

// GetDefaults returns a Config with all default values.
func GetDefaults() *Config {
	return &Config{
		Format:      "text",
		RowsPerPage: 10,
		Timeout:     30,
	}
}

// LoadConfig reads configuration into v. An explicit path must exist;
// otherwise a missing gridq.yaml is not an error.
func LoadConfig(v *viper.Viper, path string) (*Config, error) {
	def := GetDefaults()
	v.SetDefault("format", def.Format)
	v.SetDefault("verbose", def.Verbose)
	v.SetDefault("db", def.DB)
	v.SetDefault("postgres", def.Postgres)
	v.SetDefault("rows_per_page", def.RowsPerPage)
	v.SetDefault("timeout", def.Timeout)

	v.SetEnvPrefix("GRIDQ")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("gridq")
		v.SetConfigType("yaml")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "gridq"))
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %d", cfg.Timeout)
	}
	return &cfg, nil
}
