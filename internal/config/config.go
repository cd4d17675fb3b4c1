package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	ServerAddress string `mapstructure:"SERVER_ADDRESS"`
	Environment   string `mapstructure:"ENVIRONMENT"`
	LogLevel      string `mapstructure:"LOG_LEVEL"`

	DatabaseDriver string `mapstructure:"DATABASE_DRIVER"`
	DatabaseURL    string `mapstructure:"DATABASE_URL"`

	JWTSecret  string `mapstructure:"JWT_SECRET"`
	BcryptCost int    `mapstructure:"BCRYPT_COST"`

	SessionIdleTimeout     time.Duration `mapstructure:"SESSION_IDLE_TIMEOUT"`
	LobbyExpiry            time.Duration `mapstructure:"LOBBY_EXPIRY"`
	LobbyMaxPlayersDefault int           `mapstructure:"LOBBY_MAX_PLAYERS_DEFAULT"`
	ReapInterval           time.Duration `mapstructure:"REAP_INTERVAL"`
	RequestTimeout         time.Duration `mapstructure:"REQUEST_TIMEOUT"`

	// LegacyErrorBodies reports unexpected failures with status 200 and a
	// {success:false} body, as older game clients expect.
	LegacyErrorBodies bool `mapstructure:"LEGACY_ERROR_BODIES"`
	// StrictMigration only lets the current host migrate a lobby.
	StrictMigration bool `mapstructure:"STRICT_MIGRATION"`
}

var defaults = map[string]any{
	"SERVER_ADDRESS":            ":8080",
	"ENVIRONMENT":               "development",
	"LOG_LEVEL":                 "info",
	"DATABASE_DRIVER":           "postgres",
	"DATABASE_URL":              "",
	"JWT_SECRET":                "",
	"BCRYPT_COST":               10,
	"SESSION_IDLE_TIMEOUT":      "24h",
	"LOBBY_EXPIRY":              "5m",
	"LOBBY_MAX_PLAYERS_DEFAULT": 8,
	"REAP_INTERVAL":             "1m",
	"REQUEST_TIMEOUT":           "10s",
	"LEGACY_ERROR_BODIES":       false,
	"STRICT_MIGRATION":          false,
}

// LoadConfig loads the configuration from a .env file in dir and environment
// variables. Environment variables win over the file.
func LoadConfig(dir string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		log.Println("Warning: .env file not found, loading from environment variables")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	switch {
	case c.DatabaseURL == "":
		return errors.New("config: DATABASE_URL is required")
	case c.DatabaseDriver != "postgres" && c.DatabaseDriver != "sqlite":
		return fmt.Errorf("config: unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	case c.JWTSecret == "":
		return errors.New("config: JWT_SECRET is required")
	case c.SessionIdleTimeout <= 0:
		return errors.New("config: SESSION_IDLE_TIMEOUT must be positive")
	case c.LobbyExpiry <= 0:
		return errors.New("config: LOBBY_EXPIRY must be positive")
	case c.LobbyMaxPlayersDefault <= 0:
		return errors.New("config: LOBBY_MAX_PLAYERS_DEFAULT must be positive")
	case c.ReapInterval < 0:
		return errors.New("config: REAP_INTERVAL must not be negative")
	}
	return nil
}
