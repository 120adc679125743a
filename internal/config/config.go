package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"routine-planner/internal/model"
	"routine-planner/internal/ordering"
)

const (
	DefaultConfigFile  = "planner.yaml"
	DefaultDatabaseURL = "daily_planner.db"
	DefaultMaterialize = "00:05"
)

// OrderingConfig selects the task ordering policy.
type OrderingConfig struct {
	PriorityBands string `yaml:"priority_bands"`
	Tiebreak      string `yaml:"tiebreak"`
}

// RedisConfig is optional; an empty Addr keeps session state in memory.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Config keeps runtime settings for the planner.
type Config struct {
	TelegramToken  string         `yaml:"telegram_token"`
	DatabaseURL    string         `yaml:"database_url"`
	HTTPAddr       string         `yaml:"http_addr"`
	JWTSecret      string         `yaml:"jwt_secret"`
	Redis          RedisConfig    `yaml:"redis"`
	Timezone       string         `yaml:"timezone"`
	LogLevel       string         `yaml:"log_level"`
	LogFile        string         `yaml:"log_file"`
	Ordering       OrderingConfig `yaml:"ordering"`
	MonthOverflow  string         `yaml:"monthly_overflow"`
	ReorderFailure string         `yaml:"reorder_failure"`
	MaterializeAt  string         `yaml:"materialize_at"`

	Location *time.Location  `yaml:"-"`
	Policy   ordering.Policy `yaml:"-"`
}

// Load reads the optional YAML file named by PLANNER_CONFIG, applies
// environment overrides and fills defaults.
func Load() (Config, error) {
	path := strings.TrimSpace(os.Getenv("PLANNER_CONFIG"))
	if path == "" {
		path = DefaultConfigFile
	}
	return LoadFile(path)
}

// LoadFile is Load with an explicit file path. A missing file is not an error.
func LoadFile(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}

	overrideFromEnv(&cfg)

	if err := cfg.finish(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func overrideFromEnv(cfg *Config) {
	setString(&cfg.TelegramToken, "TELEGRAM_TOKEN")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.HTTPAddr, "HTTP_ADDR")
	setString(&cfg.JWTSecret, "JWT_SECRET")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	if raw := strings.TrimSpace(os.Getenv("REDIS_DB")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			cfg.Redis.DB = n
		}
	}
	setString(&cfg.Timezone, "TZ_NAME")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.LogFile, "LOG_FILE")
	setString(&cfg.Ordering.PriorityBands, "PRIORITY_BANDS")
	setString(&cfg.Ordering.Tiebreak, "TIEBREAK")
	setString(&cfg.MonthOverflow, "MONTHLY_OVERFLOW")
	setString(&cfg.ReorderFailure, "REORDER_FAILURE")
	setString(&cfg.MaterializeAt, "MATERIALIZE_AT")
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func (c *Config) finish() error {
	if c.DatabaseURL == "" {
		c.DatabaseURL = DefaultDatabaseURL
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.MaterializeAt == "" {
		c.MaterializeAt = DefaultMaterialize
	}
	if !model.ValidClock(c.MaterializeAt) {
		return fmt.Errorf("materialize_at %q must be HH:MM", c.MaterializeAt)
	}

	c.Location = time.Local
	if c.Timezone != "" {
		loc, err := time.LoadLocation(c.Timezone)
		if err != nil {
			return fmt.Errorf("timezone: %w", err)
		}
		c.Location = loc
	}

	bands, err := ordering.ParseBands(c.Ordering.PriorityBands)
	if err != nil {
		return err
	}
	tiebreak, err := ordering.ParseTiebreak(c.Ordering.Tiebreak)
	if err != nil {
		return err
	}
	c.Policy = ordering.Policy{Bands: bands, Tiebreak: tiebreak}

	switch model.MonthOverflow(strings.ToLower(c.MonthOverflow)) {
	case "":
		c.MonthOverflow = string(model.OverflowClamp)
	case model.OverflowClamp, model.OverflowSkip:
		c.MonthOverflow = strings.ToLower(c.MonthOverflow)
	default:
		return fmt.Errorf("monthly_overflow %q must be clamp or skip", c.MonthOverflow)
	}

	switch strings.ToLower(c.ReorderFailure) {
	case "":
		c.ReorderFailure = "resync"
	case "resync", "continue":
		c.ReorderFailure = strings.ToLower(c.ReorderFailure)
	default:
		return fmt.Errorf("reorder_failure %q must be resync or continue", c.ReorderFailure)
	}

	if c.HTTPAddr != "" && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when HTTP_ADDR is set")
	}
	return nil
}

// Overflow returns the monthly overflow policy.
func (c Config) Overflow() model.MonthOverflow {
	return model.MonthOverflow(c.MonthOverflow)
}

// ResyncOnReorderFailure reports whether a failed reorder refetches the day.
func (c Config) ResyncOnReorderFailure() bool {
	return c.ReorderFailure != "continue"
}
