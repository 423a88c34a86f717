// Package config main config
package config

import (
	"fmt"

	"github.com/caarlos0/env/v7"
)

// MainConfig with init data
type MainConfig struct {
	Port     string `env:"PORT,notEmpty" envDefault:"8080"`
	APIToken string `env:"API_TOKEN"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// StoreBackend selects the ledger store: memory, sqlite, postgres or redis
	StoreBackend string `env:"LEDGER_STORE,notEmpty" envDefault:"sqlite"`
	SQLitePath   string `env:"SQLITE_PATH,notEmpty" envDefault:"alphacore.db"`

	PostgresPort     string `env:"POSTGRES_PORT,notEmpty" envDefault:"5432"`
	PostgresHost     string `env:"POSTGRES_HOST,notEmpty" envDefault:"localhost"`
	PostgresPassword string `env:"POSTGRES_PASSWORD,notEmpty" envDefault:"postgres"`
	PostgresUser     string `env:"POSTGRES_USER,notEmpty" envDefault:"postgres"`
	PostgresDB       string `env:"POSTGRES_DB,notEmpty" envDefault:"alphacore"`

	RedisAddr     string `env:"REDIS_ADDR,notEmpty" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// FinnhubAPIKey enables live quotes; empty runs pure simulation mode
	FinnhubAPIKey  string `env:"FINNHUB_API_KEY"`
	FinnhubBaseURL string `env:"FINNHUB_BASE_URL"`
}

// NewMainConfig parsing config from environment
func NewMainConfig() (*MainConfig, error) {
	mainConfig := &MainConfig{}

	err := env.Parse(mainConfig)
	if err != nil {
		return nil, fmt.Errorf("config - NewMainConfig - Parse: %w", err)
	}

	return mainConfig, nil
}

// PostgresDSN builds the lib/pq connection string
func (c *MainConfig) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB)
}
