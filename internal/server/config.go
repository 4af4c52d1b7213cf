package server

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/holdemarena/internal/game"
	"github.com/lox/holdemarena/internal/tournament"
	"github.com/lox/holdemarena/poker"
)

// Config is the complete host configuration
type Config struct {
	Server ServerSettings `hcl:"server,block"`
	Tables []TableConfig  `hcl:"table,block"`
}

// ServerSettings contains host-level configuration
type ServerSettings struct {
	Address       string `hcl:"address,optional"`
	Port          int    `hcl:"port,optional"`
	LogLevel      string `hcl:"log_level,optional"`
	ActionTimeout int    `hcl:"action_timeout_seconds,optional"`
}

// TableConfig defines one table created at startup
type TableConfig struct {
	Name          string `hcl:"name,label"`
	MaxPlayers    int    `hcl:"max_players,optional"`
	SmallBlind    int    `hcl:"small_blind"`
	BigBlind      int    `hcl:"big_blind"`
	Ruleset       string `hcl:"ruleset,optional"`
	StartingChips int    `hcl:"starting_chips,optional"`
	Continuous    bool   `hcl:"continuous,optional"`
	Seed          int64  `hcl:"seed,optional"`

	Tournament *TournamentConfig `hcl:"tournament,block"`
}

// TournamentConfig holds the blind escalation schedule for tournament tables
type TournamentConfig struct {
	Levels []BlindLevelConfig `hcl:"blind_level,block"`
}

// BlindLevelConfig is one blind_level block
type BlindLevelConfig struct {
	SmallBlind int `hcl:"small_blind"`
	BigBlind   int `hcl:"big_blind"`
	Hands      int `hcl:"hands,optional"`
}

// DefaultConfig returns the configuration used when no file is present
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:       "localhost",
			Port:          8080,
			LogLevel:      "info",
			ActionTimeout: 3,
		},
		Tables: []TableConfig{
			{
				Name:          "main",
				MaxPlayers:    6,
				SmallBlind:    10,
				BigBlind:      20,
				StartingChips: 1000,
			},
		},
	}
}

// LoadConfig loads configuration from an HCL file, falling back to defaults
// when the file does not exist
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
	if config.Server.ActionTimeout == 0 {
		config.Server.ActionTimeout = 3
	}
	for i := range config.Tables {
		if config.Tables[i].MaxPlayers == 0 {
			config.Tables[i].MaxPlayers = 6
		}
		if config.Tables[i].StartingChips == 0 {
			config.Tables[i].StartingChips = config.Tables[i].BigBlind * 50
		}
	}

	return &config, nil
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	seen := make(map[string]bool)
	for _, table := range c.Tables {
		if seen[table.Name] {
			return fmt.Errorf("duplicate table name: %s", table.Name)
		}
		seen[table.Name] = true

		if table.SmallBlind <= 0 || table.BigBlind < table.SmallBlind {
			return fmt.Errorf("table %s: invalid blinds %d/%d", table.Name, table.SmallBlind, table.BigBlind)
		}
		if table.MaxPlayers < 2 {
			return fmt.Errorf("table %s: need at least 2 seats", table.Name)
		}
		if _, ok := poker.ParseRuleset(table.Ruleset); !ok {
			return fmt.Errorf("table %s: unknown ruleset %q", table.Name, table.Ruleset)
		}
		if table.Tournament != nil {
			if table.Continuous {
				return fmt.Errorf("table %s: tournament tables cannot be continuous", table.Name)
			}
			if err := table.Tournament.Structure().Validate(); err != nil {
				return fmt.Errorf("table %s: %w", table.Name, err)
			}
		}
	}
	return nil
}

// GetServerAddress returns the host:port bind address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// GameConfig converts a table block to an engine configuration
func (t TableConfig) GameConfig() game.Config {
	ruleset, _ := poker.ParseRuleset(t.Ruleset)
	return game.Config{
		SmallBlind:         t.SmallBlind,
		BigBlind:           t.BigBlind,
		MaxPlayers:         t.MaxPlayers,
		Ruleset:            ruleset,
		AllowNegativeChips: t.Continuous,
		Seed:               t.Seed,
	}
}

// Structure converts the blind_level blocks to an escalation schedule
func (tc *TournamentConfig) Structure() tournament.BlindStructure {
	structure := make(tournament.BlindStructure, 0, len(tc.Levels))
	for _, level := range tc.Levels {
		structure = append(structure, tournament.BlindLevel{
			SmallBlind:    level.SmallBlind,
			BigBlind:      level.BigBlind,
			HandsDuration: level.Hands,
		})
	}
	return structure
}
