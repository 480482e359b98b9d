// Package config provides Viper-based configuration loading for the battle simulator.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// BattleConfig holds turn-resolution tuning parameters.
type BattleConfig struct {
	// TurnCap is the hard limit on turns before a battle is declared a stalemate.
	TurnCap int `mapstructure:"turn_cap"`
	// TurnDelay is an optional pacing delay between turns, used only for
	// presentation playback. Zero disables pacing.
	TurnDelay time.Duration `mapstructure:"turn_delay"`
	// HealThreshold is the ally hp fraction below which the heal override fires.
	HealThreshold float64 `mapstructure:"heal_threshold"`
	// SkillUseChance is the probability an eligible offensive skill is used
	// instead of a basic attack.
	SkillUseChance float64 `mapstructure:"skill_use_chance"`
	// SkillDamageMargin is how much an offensive skill's expected damage must
	// exceed a basic attack before it is considered worth the mp.
	SkillDamageMargin int `mapstructure:"skill_damage_margin"`
}

// DifficultyConfig holds dynamic difficulty settings.
type DifficultyConfig struct {
	// Enabled toggles win-streak driven enemy scaling.
	Enabled bool `mapstructure:"enabled"`
	// MaxScale caps the enemy stat multiplier (e.g. 1.6 = at most +60%).
	MaxScale float64 `mapstructure:"max_scale"`
}

// DatabaseConfig holds PostgreSQL connection settings for the durable
// performance-history store.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// Config is the top-level application configuration.
type Config struct {
	Battle     BattleConfig     `mapstructure:"battle"`
	Difficulty DifficultyConfig `mapstructure:"difficulty"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateBattle(c.Battle); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateDifficulty(c.Difficulty); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateDatabase(c.Database); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateBattle(b BattleConfig) error {
	var errs []string
	if b.TurnCap < 1 {
		errs = append(errs, fmt.Sprintf("battle.turn_cap must be >= 1, got %d", b.TurnCap))
	}
	if b.TurnDelay < 0 {
		errs = append(errs, "battle.turn_delay must not be negative")
	}
	if b.HealThreshold < 0 || b.HealThreshold > 1 {
		errs = append(errs, fmt.Sprintf("battle.heal_threshold must be in [0,1], got %g", b.HealThreshold))
	}
	if b.SkillUseChance < 0 || b.SkillUseChance > 1 {
		errs = append(errs, fmt.Sprintf("battle.skill_use_chance must be in [0,1], got %g", b.SkillUseChance))
	}
	if b.SkillDamageMargin < 0 {
		errs = append(errs, fmt.Sprintf("battle.skill_damage_margin must be >= 0, got %d", b.SkillDamageMargin))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateDifficulty(d DifficultyConfig) error {
	if d.MaxScale < 1 {
		return fmt.Errorf("difficulty.max_scale must be >= 1, got %g", d.MaxScale)
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
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

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with COMPANION_ prefix
	v.SetEnvPrefix("COMPANION")
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

// Default returns the built-in configuration used when no file is supplied.
//
// Postcondition: Default().Validate() == nil.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// The default keys match the struct tags, so this cannot fail.
	_ = v.Unmarshal(&cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("battle.turn_cap", 200)
	v.SetDefault("battle.turn_delay", "0s")
	v.SetDefault("battle.heal_threshold", 0.35)
	v.SetDefault("battle.skill_use_chance", 0.70)
	v.SetDefault("battle.skill_damage_margin", 5)

	v.SetDefault("difficulty.enabled", true)
	v.SetDefault("difficulty.max_scale", 1.6)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "companion")
	v.SetDefault("database.password", "companion")
	v.SetDefault("database.name", "companion")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
