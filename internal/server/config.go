package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config represents the complete server configuration
type Config struct {
	Server ServerSettings `hcl:"server,block"`
	Table  TableSettings  `hcl:"table,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address    string `hcl:"address,optional"`
	Port       int    `hcl:"port,optional"`
	LogLevel   string `hcl:"log_level,optional"`
	AuthURL    string `hcl:"auth_url,optional"`
	AuthSecret string `hcl:"auth_secret,optional"`
}

// TableSettings defines the table parameters
type TableSettings struct {
	MaxSeats           int `hcl:"max_seats,optional"`
	SmallBlind         int `hcl:"small_blind"`
	BigBlind           int `hcl:"big_blind"`
	DefaultBuyIn       int `hcl:"default_buy_in,optional"`
	TurnTimeoutSeconds int `hcl:"turn_timeout_seconds,optional"`
	StartDelaySeconds  int `hcl:"start_delay_seconds,optional"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Table: TableSettings{
			MaxSeats:           6,
			SmallBlind:         1,
			BigBlind:           2,
			DefaultBuyIn:       200,
			TurnTimeoutSeconds: 30,
			StartDelaySeconds:  3,
		},
	}
}

// LoadConfig loads configuration from an HCL file, falling back to defaults
// when the file does not exist.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	// Apply defaults for missing values
	if config.Server.Address == "" {
		config.Server.Address = "localhost"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = "info"
	}
	if config.Table.MaxSeats == 0 {
		config.Table.MaxSeats = 6
	}
	if config.Table.DefaultBuyIn == 0 {
		config.Table.DefaultBuyIn = config.Table.BigBlind * 100 // 100 big blinds
	}
	if config.Table.TurnTimeoutSeconds == 0 {
		config.Table.TurnTimeoutSeconds = 30
	}
	if config.Table.StartDelaySeconds == 0 {
		config.Table.StartDelaySeconds = 3
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Table.SmallBlind <= 0 {
		return fmt.Errorf("small blind must be positive")
	}
	if c.Table.BigBlind <= c.Table.SmallBlind {
		return fmt.Errorf("big blind must be greater than small blind")
	}
	if c.Table.MaxSeats < 2 || c.Table.MaxSeats > 10 {
		return fmt.Errorf("max seats must be between 2 and 10")
	}
	if c.Table.DefaultBuyIn < c.Table.BigBlind {
		return fmt.Errorf("default buy-in must cover at least one big blind")
	}
	if c.Table.TurnTimeoutSeconds <= 0 {
		return fmt.Errorf("turn timeout must be positive")
	}
	return nil
}

// Address returns the full listen address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// TurnTimeout returns the acting-seat timeout as a duration
func (c *Config) TurnTimeout() time.Duration {
	return time.Duration(c.Table.TurnTimeoutSeconds) * time.Second
}

// StartDelay returns the pre-hand countdown as a duration
func (c *Config) StartDelay() time.Duration {
	return time.Duration(c.Table.StartDelaySeconds) * time.Second
}
