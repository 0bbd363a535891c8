// Package config loads host configuration: server settings, database path,
// maintenance schedule, and the simulation parameter block handed to the
// engine. YAML file first, then environment overrides, then defaults.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/zainabsawakni-art/SCMS-Simulator/internal/engine"
)

// Config holds everything the hosts need to start.
type Config struct {
	Server struct {
		Port     int    `yaml:"port"`
		AdminKey string `yaml:"admin_key"`
	} `yaml:"server"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Maintenance struct {
		Cron            string `yaml:"cron"`             // Checkpoint + prune schedule
		DiagnosticsKeep int    `yaml:"diagnostics_keep"` // Rows kept per run after pruning
	} `yaml:"maintenance"`
	Simulation engine.Params `yaml:"simulation"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides. A missing file is fine; defaults cover everything.
func Load(path string) (*Config, error) {
	cfg := &Config{Simulation: engine.DefaultParams()}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("SCMS_ADMIN_KEY"); v != "" {
		cfg.Server.AdminKey = v
	}
	if v := os.Getenv("SCMS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("SCMS_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Simulation.FixSeed = true
			cfg.Simulation.Seed = seed
		}
	}

	// Defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/scms.db"
	}
	if cfg.Maintenance.Cron == "" {
		cfg.Maintenance.Cron = "0 3 * * *"
	}
	if cfg.Maintenance.DiagnosticsKeep == 0 {
		cfg.Maintenance.DiagnosticsKeep = 5000
	}

	return cfg, nil
}

// Validate checks the host settings and the simulation parameter block.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be within [1, 65535], got %d", c.Server.Port)
	}
	if c.Maintenance.DiagnosticsKeep < 0 {
		return fmt.Errorf("maintenance.diagnostics_keep must not be negative, got %d", c.Maintenance.DiagnosticsKeep)
	}
	if err := c.Simulation.Validate(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	return nil
}
