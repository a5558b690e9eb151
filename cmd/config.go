package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"warehouse-sync/internal/dialect"
)

type DBConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	Schema string `mapstructure:"schema"`
}

type SyncConfig struct {
	Interval    time.Duration `mapstructure:"interval"`
	DailyAt     string        `mapstructure:"daily_at"`
	Workers     int           `mapstructure:"workers"`
	PassTimeout time.Duration `mapstructure:"pass_timeout"`
}

type AdminConfig struct {
	Listen string `mapstructure:"listen"`
}

type Config struct {
	Source    DBConfig    `mapstructure:"source"`
	Warehouse DBConfig    `mapstructure:"warehouse"`
	Sync      SyncConfig  `mapstructure:"sync"`
	Admin     AdminConfig `mapstructure:"admin"`
}

// LoadConfig unmarshals and validates the viper state. Config errors are
// fatal on purpose: a pass against a misconfigured store must not start.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := c.Source.validate("source"); err != nil {
		return err
	}
	if err := c.Warehouse.validate("warehouse"); err != nil {
		return err
	}
	if c.Sync.Interval <= 0 {
		return fmt.Errorf("sync.interval must be positive")
	}
	if c.Sync.DailyAt != "" {
		if _, err := time.Parse("15:04", c.Sync.DailyAt); err != nil {
			return fmt.Errorf("sync.daily_at must be HH:MM: %w", err)
		}
	}
	return nil
}

func (d DBConfig) validate(section string) error {
	if d.DSN == "" {
		return fmt.Errorf("%s.dsn is required", section)
	}
	if _, err := dialect.GetDialect(d.Driver); err != nil {
		return fmt.Errorf("%s.driver: %w", section, err)
	}
	return nil
}
