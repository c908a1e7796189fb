// Package store loads and validates the run configuration. The engine
// itself takes plain values; this package is the caller-side YAML surface.
package store

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	CSVDir         string   `yaml:"csv_dir"`
	Symbols        []string `yaml:"symbols"`
	InitialCapital float64  `yaml:"initial_capital"`
	OrderQuantity  int64    `yaml:"order_quantity"`
	Exchange       string   `yaml:"exchange"`
	Strategy       struct {
		Name         string  `yaml:"name"`
		ShortWindow  int     `yaml:"short_window"`
		LongWindow   int     `yaml:"long_window"`
		RSIPeriod    int     `yaml:"rsi_period"`
		RSIBuyBelow  float64 `yaml:"rsi_buy_below"`
		RSISellAbove float64 `yaml:"rsi_sell_above"`
		BBWindow     int     `yaml:"bb_window"`
		BBStdDev     float64 `yaml:"bb_stddev"`
	} `yaml:"strategy"`
	Commission struct {
		Rate    float64 `yaml:"rate"`
		Minimum float64 `yaml:"minimum"`
	} `yaml:"commission"`
	Report struct {
		Enabled bool   `yaml:"enabled"`
		Dir     string `yaml:"dir"`
	} `yaml:"report"`
}

func (c *Config) Validate() error {
	if len(c.Symbols) == 0 {
		return errors.New("symbols cannot be empty")
	}
	if c.CSVDir == "" {
		return errors.New("csv_dir cannot be empty")
	}
	if c.InitialCapital <= 0 {
		return fmt.Errorf("initial_capital must be positive, got %.2f", c.InitialCapital)
	}
	switch c.Strategy.Name {
	case "MA_CROSS", "RSI", "BOLLINGER":
	default:
		return fmt.Errorf("strategy.name must be 'MA_CROSS', 'RSI', or 'BOLLINGER', got '%s'", c.Strategy.Name)
	}
	if c.Strategy.ShortWindow > 0 && c.Strategy.LongWindow > 0 && c.Strategy.ShortWindow >= c.Strategy.LongWindow {
		return fmt.Errorf("strategy.short_window (%d) must be below strategy.long_window (%d)", c.Strategy.ShortWindow, c.Strategy.LongWindow)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	if c.InitialCapital == 0 {
		c.InitialCapital = 100000
	}
	if c.Strategy.Name == "" {
		c.Strategy.Name = "MA_CROSS"
	}
	if c.Report.Dir == "" {
		c.Report.Dir = "out"
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}
