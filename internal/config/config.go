package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	appName = "dayplanner"

	defaultDataFile        = "student_tasks.json"
	defaultDayRollover     = "0 0 * * *"
	defaultLogLevel        = "info"
	defaultProductID       = "-//dayplanner//RU"
	defaultDurationMinutes = 60
	defaultHorizonDays     = 365
	defaultBackfillDays    = 30
)

// ICSConfig controls iCalendar export and import.
type ICSConfig struct {
	// ProductID is written as PRODID on export.
	ProductID string `yaml:"product_id" json:"product_id"`

	// DefaultDurationMinutes sets DTEND for timed events, which only
	// carry a start time.
	DefaultDurationMinutes int `yaml:"default_duration_minutes" json:"default_duration_minutes"`

	// ImportHorizonDays / ImportBackfillDays bound recurrence expansion
	// around today when importing.
	ImportHorizonDays  int `yaml:"import_horizon_days" json:"import_horizon_days"`
	ImportBackfillDays int `yaml:"import_backfill_days" json:"import_backfill_days"`
}

// Config is the top-level application configuration.
type Config struct {
	// DataFile is the JSON document holding tasks, events and notes.
	// Relative paths resolve against the working directory.
	DataFile string `yaml:"data_file" json:"data_file"`

	// Timezone is the IANA zone that decides "today" for upcoming/past
	// events and stamps created_at/updated_at. Empty means local time.
	Timezone string `yaml:"timezone" json:"timezone"`

	// DayRollover is a cron expression; the UI refreshes its views each
	// time it fires so date-based filters follow the calendar.
	DayRollover string `yaml:"day_rollover" json:"day_rollover"`

	// LogLevel is one of debug, info, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// LogFile receives log lines while the terminal UI runs. Empty
	// disables logging in UI mode.
	LogFile string `yaml:"log_file" json:"log_file"`

	ICS ICSConfig `yaml:"ics" json:"ics"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		DataFile:    defaultDataFile,
		Timezone:    "",
		DayRollover: defaultDayRollover,
		LogLevel:    defaultLogLevel,
		LogFile:     "",
		ICS: ICSConfig{
			ProductID:              defaultProductID,
			DefaultDurationMinutes: defaultDurationMinutes,
			ImportHorizonDays:      defaultHorizonDays,
			ImportBackfillDays:     defaultBackfillDays,
		},
	}
}

// DefaultPath is $XDG_CONFIG_HOME/dayplanner/config.yaml (or the
// platform equivalent).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName, "config.yaml"), nil
}

// Normalize fills in missing/zero values so partially-filled configs
// still behave.
func (c *Config) Normalize() {
	if c.DataFile == "" {
		c.DataFile = defaultDataFile
	}
	if c.DayRollover == "" {
		c.DayRollover = defaultDayRollover
	}
	switch c.LogLevel {
	case "debug", "info", "error":
	default:
		c.LogLevel = defaultLogLevel
	}
	if c.ICS.ProductID == "" {
		c.ICS.ProductID = defaultProductID
	}
	if c.ICS.DefaultDurationMinutes <= 0 {
		c.ICS.DefaultDurationMinutes = defaultDurationMinutes
	}
	if c.ICS.ImportHorizonDays <= 0 {
		c.ICS.ImportHorizonDays = defaultHorizonDays
	}
	if c.ICS.ImportBackfillDays < 0 {
		c.ICS.ImportBackfillDays = 0
	}
}

// Validate checks values that cannot be defaulted silently.
func (c *Config) Validate() error {
	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
		}
	}
	if _, err := cron.ParseStandard(c.DayRollover); err != nil {
		return fmt.Errorf("config: day_rollover %q: %w", c.DayRollover, err)
	}
	return nil
}

// Location resolves Timezone, falling back to time.Local.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written there with
//     0600 permissions and returned.
//   - Otherwise the YAML is decoded, normalized and validated.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := cfg.Save(path); err != nil {
				// Still usable in memory; the caller decides.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save is shorthand for Save(path, c).
func (c *Config) Save(path string) error {
	return Save(path, c)
}

// Save writes cfg to path atomically (temp file + rename) with 0600
// permissions, creating the parent directory if needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".dayplanner-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
