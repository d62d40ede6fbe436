package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
)

const (
	xdgAppName = "floaat"
	configFile = "config.toml"
	logFile    = "floaat.log"
	lockFile   = "run.lock"
	envPrefix  = "FLOAAT"
)

// ErrMissingCredentials is returned when a command needs the API keys and
// the account id but one of them has not been configured.
var ErrMissingCredentials = errors.New("missing credentials, run 'floaat login' first")

type Config struct {
	TogglAPIKey   string `toml:"toggl_api_key" mapstructure:"toggl_api_key" json:"toggl_api_key" yaml:"toggl_api_key"`
	FloatAPIKey   string `toml:"float_api_key" mapstructure:"float_api_key" json:"float_api_key" yaml:"float_api_key"`
	FloatPeopleID int64  `toml:"float_people_id" mapstructure:"float_people_id" json:"float_people_id" yaml:"float_people_id"`

	// SettleDelay is a Go duration string such as "2s".
	SettleDelay           string `toml:"settle_delay" mapstructure:"settle_delay" json:"settle_delay" yaml:"settle_delay"`
	BackfillWindowDays    int    `toml:"backfill_window_days" mapstructure:"backfill_window_days" json:"backfill_window_days" yaml:"backfill_window_days"`
	MigrationWindowMonths int    `toml:"migration_window_months" mapstructure:"migration_window_months" json:"migration_window_months" yaml:"migration_window_months"`
	LogFile               string `toml:"log_file,omitempty" mapstructure:"log_file" json:"log_file" yaml:"log_file"`
}

// Default returns the settings used for keys missing from the file.
func Default() *Config {
	return &Config{
		SettleDelay:           "2s",
		BackfillWindowDays:    14,
		MigrationWindowMonths: 2,
	}
}

func GetConfigDir() (string, error) {
	xdgHome, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(xdgHome, ".config", xdgAppName), nil
}

func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Load reads the config file, applying defaults and FLOAAT_* environment
// overrides (FLOAAT_TOGGL_API_KEY and so on). A missing file is not an error.
func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	def := Default()
	v.SetDefault("toggl_api_key", "")
	v.SetDefault("float_api_key", "")
	v.SetDefault("float_people_id", 0)
	v.SetDefault("settle_delay", def.SettleDelay)
	v.SetDefault("backfill_window_days", def.BackfillWindowDays)
	v.SetDefault("migration_window_months", def.MigrationWindowMonths)
	v.SetDefault("log_file", "")

	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Save writes cfg to the config file, readable only by the user.
func Save(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

func SaveFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file for writing: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// Clear removes the config file and with it the stored credentials.
func Clear() error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove config: %w", err)
	}
	return nil
}

// Credentials checks that both API keys and the Float account are set.
func (c *Config) Credentials() error {
	var missing []string
	if c.TogglAPIKey == "" {
		missing = append(missing, "toggl_api_key")
	}
	if c.FloatAPIKey == "" {
		missing = append(missing, "float_api_key")
	}
	if c.FloatPeopleID == 0 {
		missing = append(missing, "float_people_id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w (%s)", ErrMissingCredentials, strings.Join(missing, ", "))
	}
	return nil
}

// Settle parses SettleDelay, falling back to the default when empty.
func (c *Config) Settle() (time.Duration, error) {
	if c.SettleDelay == "" {
		c.SettleDelay = Default().SettleDelay
	}
	d, err := time.ParseDuration(c.SettleDelay)
	if err != nil {
		return 0, fmt.Errorf("invalid settle_delay '%s': %w", c.SettleDelay, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid settle_delay '%s': must not be negative", c.SettleDelay)
	}
	return d, nil
}

// LogPath is where the rotating log file is written.
func (c *Config) LogPath() (string, error) {
	if c.LogFile != "" {
		return c.LogFile, nil
	}
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, logFile), nil
}

// LockPath is the file every process locks while it runs a sync, prune or
// backfill.
func (c *Config) LockPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, lockFile), nil
}
