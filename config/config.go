package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete simulation configuration
type Config struct {
	Assets  []AssetConfig `json:"assets" yaml:"assets"`
	Feed    FeedConfig    `json:"feed" yaml:"feed"`
	Account AccountConfig `json:"account" yaml:"account"`
	Session SessionConfig `json:"session" yaml:"session"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
}

// AssetConfig is one tradable symbol and its spread in points
type AssetConfig struct {
	Symbol string  `json:"symbol" yaml:"symbol"`
	Spread float64 `json:"spread" yaml:"spread"`
}

// FeedConfig selects and configures the market data provider
type FeedConfig struct {
	Provider  string `json:"provider" yaml:"provider"` // "alpaca", "polygon" or "csv"
	KeyID     string `json:"key_id,omitempty" yaml:"key_id,omitempty"`
	SecretKey string `json:"secret_key,omitempty" yaml:"secret_key,omitempty"`
	APIKey    string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Dir       string `json:"dir,omitempty" yaml:"dir,omitempty"`
}

// AccountConfig contains account initialization parameters
type AccountConfig struct {
	Name    string  `json:"name" yaml:"name"`
	Deposit float64 `json:"deposit" yaml:"deposit"`
}

// SessionConfig contains simulation session parameters
type SessionConfig struct {
	// Date of the session, "2006-01-02". Empty means the current date in
	// the exchange timezone.
	Date string `json:"date,omitempty" yaml:"date,omitempty"`
	// Close remaining open positions at the end of the session.
	CloseEnd bool `json:"close_end" yaml:"close_end"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv", "sqlite" or "none"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// ParseDate returns the session date, zero when unset.
func (s SessionConfig) ParseDate() (time.Time, error) {
	if s.Date == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s.Date)
}

// LoadFromFile loads configuration from a file (JSON or YAML based on content)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if len(c.Assets) == 0 {
		return fmt.Errorf("at least one asset is required")
	}
	for _, a := range c.Assets {
		if a.Symbol == "" {
			return fmt.Errorf("asset symbol is required")
		}
		if a.Spread < 0 {
			return fmt.Errorf("asset %s: spread must not be negative", a.Symbol)
		}
	}

	// Credentials are not validated here; they may come from the
	// environment instead of the config file.
	switch c.Feed.Provider {
	case "alpaca", "polygon":
	case "csv":
		if c.Feed.Dir == "" {
			return fmt.Errorf("feed dir required for csv provider")
		}
	default:
		return fmt.Errorf("feed.provider must be 'alpaca', 'polygon' or 'csv'")
	}

	if c.Account.Name == "" {
		return fmt.Errorf("account.name is required")
	}
	if c.Account.Deposit <= 0 {
		return fmt.Errorf("account.deposit must be positive")
	}

	if _, err := c.Session.ParseDate(); err != nil {
		return fmt.Errorf("session.date: %w", err)
	}

	switch c.Journal.Type {
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	case "none":
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'none'")
	}

	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Assets: []AssetConfig{
			{Symbol: "AAPL", Spread: 0.02},
			{Symbol: "GOOG", Spread: 0.05},
			{Symbol: "QQQ", Spread: 0.01},
		},
		Feed: FeedConfig{
			Provider: "alpaca",
		},
		Account: AccountConfig{
			Name:    "SIM-001",
			Deposit: 100000,
		},
		Session: SessionConfig{
			CloseEnd: true,
		},
		Journal: JournalConfig{
			Type:       "csv",
			TradesFile: "./trades.csv",
			EquityFile: "./equity.csv",
		},
	}
}
