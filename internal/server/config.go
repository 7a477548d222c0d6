package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/tablestakes/sitngo/internal/game"
)

// Config is the complete server configuration
type Config struct {
	Server     ServerSettings    `hcl:"server,block"`
	Tournament *TournamentConfig `hcl:"tournament,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address     string `hcl:"address,optional"`
	Port        int    `hcl:"port,optional"`
	LogLevel    string `hcl:"log_level,optional"`
	HistoryFile string `hcl:"history_file,optional"`
}

// TournamentConfig defines the sit-and-go structure
type TournamentConfig struct {
	Seats                  int           `hcl:"seats,optional"`
	StartingChips          int           `hcl:"starting_chips,optional"`
	HandsPerLevel          int           `hcl:"hands_per_level,optional"`
	DecisionTimeoutSeconds int           `hcl:"decision_timeout_seconds,optional"`
	Seed                   int64         `hcl:"seed,optional"`
	Levels                 []LevelConfig `hcl:"level,block"`
}

// LevelConfig is one blind level block
type LevelConfig struct {
	Small int `hcl:"small"`
	Big   int `hcl:"big"`
}

// DefaultConfig returns the configuration used when no file is given
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:     "localhost",
			Port:        8080,
			LogLevel:    "info",
			HistoryFile: "hands.jsonl",
		},
		Tournament: &TournamentConfig{
			Seats:                  6,
			StartingChips:          1000,
			HandsPerLevel:          game.DefaultHandsPerLevel,
			DecisionTimeoutSeconds: 30,
		},
	}
}

// LoadConfig loads configuration from an HCL file, falling back to
// defaults when the file does not exist.
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

	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Server.Address == "" {
		c.Server.Address = def.Server.Address
	}
	if c.Server.Port == 0 {
		c.Server.Port = def.Server.Port
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = def.Server.LogLevel
	}
	if c.Server.HistoryFile == "" {
		c.Server.HistoryFile = def.Server.HistoryFile
	}
	if c.Tournament == nil {
		c.Tournament = def.Tournament
		return
	}
	if c.Tournament.Seats == 0 {
		c.Tournament.Seats = def.Tournament.Seats
	}
	if c.Tournament.StartingChips == 0 {
		c.Tournament.StartingChips = def.Tournament.StartingChips
	}
	if c.Tournament.HandsPerLevel == 0 {
		c.Tournament.HandsPerLevel = def.Tournament.HandsPerLevel
	}
	if c.Tournament.DecisionTimeoutSeconds == 0 {
		c.Tournament.DecisionTimeoutSeconds = def.Tournament.DecisionTimeoutSeconds
	}
}

// Validate checks the configuration for values the engine would reject
func (c *Config) Validate() error {
	t := c.Tournament
	if t.Seats < 2 || t.Seats > 10 {
		return fmt.Errorf("tournament seats must be 2-10, got %d", t.Seats)
	}
	if t.StartingChips <= 0 {
		return fmt.Errorf("starting_chips must be positive, got %d", t.StartingChips)
	}
	if t.HandsPerLevel <= 0 {
		return fmt.Errorf("hands_per_level must be positive, got %d", t.HandsPerLevel)
	}
	if t.DecisionTimeoutSeconds <= 0 {
		return fmt.Errorf("decision_timeout_seconds must be positive, got %d", t.DecisionTimeoutSeconds)
	}
	for i, lvl := range t.Levels {
		if lvl.Small <= 0 || lvl.Big <= 0 {
			return fmt.Errorf("level %d: blinds must be positive", i)
		}
		if lvl.Big < lvl.Small {
			return fmt.Errorf("level %d: big blind %d below small blind %d", i, lvl.Big, lvl.Small)
		}
		if i > 0 && lvl.Big < t.Levels[i-1].Big {
			return fmt.Errorf("level %d: blinds must not decrease", i)
		}
	}
	return nil
}

// ListenAddr returns the host:port to bind
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// BlindLevels converts the configured levels to the engine schedule.
// An empty list means the default schedule.
func (t *TournamentConfig) BlindLevels() []game.BlindLevel {
	levels := make([]game.BlindLevel, 0, len(t.Levels))
	for _, lvl := range t.Levels {
		levels = append(levels, game.BlindLevel{Small: lvl.Small, Big: lvl.Big})
	}
	return levels
}

// DecisionTimeout returns the per-decision timeout as a duration
func (t *TournamentConfig) DecisionTimeout() time.Duration {
	return time.Duration(t.DecisionTimeoutSeconds) * time.Second
}
