// Package config provides Viper-based configuration loading for the
// encounter simulator.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// SimulationConfig holds the simulation run settings.
type SimulationConfig struct {
	// Rounds is the number of combat rounds to simulate.
	Rounds int `mapstructure:"rounds"`
	// Merge enables transposition merging between turns. Disabling it
	// keeps every branch distinct, at the cost of exponential growth.
	Merge bool `mapstructure:"merge"`
}

// EncounterConfig points at the encounter definition.
type EncounterConfig struct {
	// File is the path to the YAML encounter definition.
	File string `mapstructure:"file"`
	// ScriptDir is the directory searched for Lua strategy scripts
	// referenced by the encounter definition.
	ScriptDir string `mapstructure:"script_dir"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// OutputConfig holds report settings.
type OutputConfig struct {
	// Format is the report format: "text" or "json".
	Format string `mapstructure:"format"`
	// Pdf includes each participant's full damage distribution in the
	// report instead of summary statistics only.
	Pdf bool `mapstructure:"pdf"`
}

// Config is the top-level application configuration.
type Config struct {
	Simulation SimulationConfig `mapstructure:"simulation"`
	Encounter  EncounterConfig  `mapstructure:"encounter"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Output     OutputConfig     `mapstructure:"output"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateSimulation(c.Simulation); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateEncounter(c.Encounter); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateOutput(c.Output); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateSimulation(s SimulationConfig) error {
	if s.Rounds < 1 {
		return fmt.Errorf("simulation.rounds must be >= 1, got %d", s.Rounds)
	}
	return nil
}

func validateEncounter(e EncounterConfig) error {
	if e.File == "" {
		return fmt.Errorf("encounter.file must not be empty")
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateOutput(o OutputConfig) error {
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[o.Format] {
		return fmt.Errorf("output.format must be one of [text, json], got %q", o.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with DNDSTATS_ prefix
	v.SetEnvPrefix("DNDSTATS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("simulation.rounds", 3)
	v.SetDefault("simulation.merge", true)

	v.SetDefault("encounter.script_dir", ".")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("output.format", "text")
	v.SetDefault("output.pdf", false)
}
