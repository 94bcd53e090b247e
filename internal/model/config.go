package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DatabaseConfig locates the local store.
type DatabaseConfig struct {
	// Path is the SQLite database file.
	Path string `mapstructure:"path" yaml:"path"`
}

// CalendarConfig holds scheduling conventions and reorder commit behaviour.
type CalendarConfig struct {
	// WeekStartsOn is the weekday name that opens a week ("monday").
	WeekStartsOn string `mapstructure:"week_starts_on" yaml:"week_starts_on"`

	// AtomicReorder commits a reorder delta in one transaction when the
	// store supports it, instead of one write per item.
	AtomicReorder bool `mapstructure:"atomic_reorder" yaml:"atomic_reorder"`

	// RequestTimeoutSec bounds every store call issued by the calendar.
	RequestTimeoutSec int `mapstructure:"request_timeout_sec" yaml:"request_timeout_sec"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme              string `mapstructure:"theme" yaml:"theme"`
	RefreshIntervalSec int    `mapstructure:"refresh_interval_sec" yaml:"refresh_interval_sec"`
}

// LoggingConfig controls the log level and where the rotating log file lives.
type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	Dir   string `mapstructure:"dir" yaml:"dir"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Calendar CalendarConfig `mapstructure:"calendar" yaml:"calendar"`
	Display  DisplayConfig  `mapstructure:"display" yaml:"display"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

// WeekStart parses Calendar.WeekStartsOn, falling back to Monday.
func (c *AppConfig) WeekStart() time.Weekday {
	d, err := ParseWeekday(c.Calendar.WeekStartsOn)
	if err != nil {
		return time.Monday
	}
	return d
}

// RequestTimeout returns the per-call store timeout.
func (c *AppConfig) RequestTimeout() time.Duration {
	if c.Calendar.RequestTimeoutSec <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Calendar.RequestTimeoutSec) * time.Second
}

// RefreshInterval returns how often the calendar reloads its window.
// Zero disables periodic refresh.
func (c *AppConfig) RefreshInterval() time.Duration {
	if c.Display.RefreshIntervalSec <= 0 {
		return 0
	}
	return time.Duration(c.Display.RefreshIntervalSec) * time.Second
}

// ParseWeekday converts an English weekday name (or its three-letter
// abbreviation) into a time.Weekday.
func ParseWeekday(name string) (time.Weekday, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if n == full || n == full[:3] {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", name)
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/prodcal/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "prodcal", "config.yaml")
}

// DefaultDatabasePath returns ~/.local/share/prodcal/prodcal.db.
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "prodcal.db"
	}
	return filepath.Join(home, ".local", "share", "prodcal", "prodcal.db")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Database: DatabaseConfig{Path: DefaultDatabasePath()},
		Calendar: CalendarConfig{
			WeekStartsOn:      "monday",
			AtomicReorder:     true,
			RequestTimeoutSec: 30,
		},
		Display: DisplayConfig{
			Theme:              "default",
			RefreshIntervalSec: 60,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// A .env file in the working directory and PRODCAL_* environment variables
// override file values. If the file does not exist, defaults are used.
func LoadConfig(path string) (*AppConfig, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("PRODCAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults so missing keys resolve to sensible values and so
	// AutomaticEnv can see every key during Unmarshal.
	def := defaultAppConfig()
	v.SetDefault("database.path", def.Database.Path)
	v.SetDefault("calendar.week_starts_on", def.Calendar.WeekStartsOn)
	v.SetDefault("calendar.atomic_reorder", def.Calendar.AtomicReorder)
	v.SetDefault("calendar.request_timeout_sec", def.Calendar.RequestTimeoutSec)
	v.SetDefault("display.theme", def.Display.Theme)
	v.SetDefault("display.refresh_interval_sec", def.Display.RefreshIntervalSec)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.dir", def.Logging.Dir)

	if err := v.ReadInConfig(); err != nil {
		_, isPathErr := err.(*os.PathError)
		_, isNotFound := err.(viper.ConfigFileNotFoundError)
		if !isPathErr && !isNotFound {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if _, err := ParseWeekday(cfg.Calendar.WeekStartsOn); err != nil {
		return nil, fmt.Errorf("parsing config %s: calendar.week_starts_on: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("database", cfg.Database)
	v.Set("calendar", cfg.Calendar)
	v.Set("display", cfg.Display)
	v.Set("logging", cfg.Logging)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
