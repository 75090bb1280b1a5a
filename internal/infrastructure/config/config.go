// Package config provides configuration management for the comunicado
// client. It handles loading, saving, and managing application
// configuration with platform-specific paths and environment variable
// overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the application-wide configuration: global defaults
// plus the per-subsystem default sections for the AI cache, calendar
// sync, and keyboard binding core. Per-account state lives in the
// account config store, not here.
type Config struct {
	DefaultAccount string `yaml:"default_account" mapstructure:"default_account"`
	DefaultFormat  string `yaml:"default_format" mapstructure:"default_format"`
	Timezone       string `yaml:"timezone" mapstructure:"timezone"`

	AICache      AICacheConfig      `yaml:"ai_cache" mapstructure:"ai_cache"`
	CalendarSync CalendarSyncConfig `yaml:"calendar_sync" mapstructure:"calendar_sync"`
	Keyboard     KeyboardConfig     `yaml:"keyboard" mapstructure:"keyboard"`
}

// AICacheConfig mirrors aicache.Config's tunables (spec §4.E).
type AICacheConfig struct {
	MaxEntries       int           `yaml:"max_entries" mapstructure:"max_entries"`
	MaxMemoryBytes   int64         `yaml:"max_memory_bytes" mapstructure:"max_memory_bytes"`
	DefaultTTL       time.Duration `yaml:"default_ttl" mapstructure:"default_ttl"`
	CleanupInterval  time.Duration `yaml:"cleanup_interval" mapstructure:"cleanup_interval"`
	DefaultPolicy    string        `yaml:"default_policy" mapstructure:"default_policy"`
	WarmingEnabled   bool          `yaml:"warming_enabled" mapstructure:"warming_enabled"`
	WarmingBatchSize int           `yaml:"warming_batch_size" mapstructure:"warming_batch_size"`
}

// CalendarSyncConfig mirrors the calendarsync engine's per-calendar
// defaults (spec §4.F) applied when a new calendar is registered
// without explicit overrides.
type CalendarSyncConfig struct {
	DefaultIntervalMinutes int           `yaml:"default_interval_minutes" mapstructure:"default_interval_minutes"`
	WindowPast             time.Duration `yaml:"window_past" mapstructure:"window_past"`
	WindowFuture           time.Duration `yaml:"window_future" mapstructure:"window_future"`
}

// KeyboardConfig mirrors the keyboard binding core's table-wide default
// (spec §4.G).
type KeyboardConfig struct {
	DefaultConflictResolution string `yaml:"default_conflict_resolution" mapstructure:"default_conflict_resolution"`
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		DefaultAccount: "",
		DefaultFormat:  "table",
		Timezone:       "Local",
		AICache: AICacheConfig{
			MaxEntries:       1000,
			MaxMemoryBytes:   100 * 1024 * 1024,
			DefaultTTL:       30 * time.Minute,
			CleanupInterval:  10 * time.Minute,
			DefaultPolicy:    "ttl",
			WarmingEnabled:   false,
			WarmingBatchSize: 10,
		},
		CalendarSync: CalendarSyncConfig{
			DefaultIntervalMinutes: 15,
			WindowPast:             30 * 24 * time.Hour,
			WindowFuture:           180 * 24 * time.Hour,
		},
		Keyboard: KeyboardConfig{
			DefaultConflictResolution: "reject",
		},
	}
}

// GetConfigPath returns the platform-specific configuration file path.
// The path can be overridden by setting the COMUNICADO_CONFIG environment
// variable.
func GetConfigPath() string {
	if envPath := os.Getenv("COMUNICADO_CONFIG"); envPath != "" {
		return envPath
	}

	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		configDir = filepath.Join(home, "Library", "Application Support", "comunicado")

	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				home = "."
			}
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		configDir = filepath.Join(appData, "comunicado")

	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				home = "."
			}
			configDir = filepath.Join(home, ".config")
		}
		configDir = filepath.Join(configDir, "comunicado")
	}

	return filepath.Join(configDir, "config.yaml")
}

// Load reads the configuration from the config file. If the file does
// not exist, it creates a default configuration. Environment variables
// can override specific settings:
//   - COMUNICADO_ACCOUNT overrides default_account
//   - COMUNICADO_FORMAT overrides default_format
//   - COMUNICADO_CONFIG overrides the config file path
func Load() (*Config, error) {
	configPath := GetConfigPath()
	configDir := filepath.Dir(configPath)

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	_, err := os.Stat(configPath)
	configExists := err == nil

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	def := NewConfig()
	v.SetDefault("default_account", def.DefaultAccount)
	v.SetDefault("default_format", def.DefaultFormat)
	v.SetDefault("timezone", def.Timezone)
	v.SetDefault("ai_cache", def.AICache)
	v.SetDefault("calendar_sync", def.CalendarSync)
	v.SetDefault("keyboard", def.Keyboard)

	if configExists {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if envAccount := os.Getenv("COMUNICADO_ACCOUNT"); envAccount != "" {
		v.Set("default_account", envAccount)
	}
	if envFormat := os.Getenv("COMUNICADO_FORMAT"); envFormat != "" {
		v.Set("default_format", envFormat)
	}

	cfg := NewConfig()
	if err := v.Unmarshal(cfg, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			stringToTimeHookFunc(),
		),
	)); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if !configExists {
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("failed to save default config: %w", err)
		}
	}

	return cfg, nil
}

// Save writes the configuration to the config file. It creates the
// config directory if it doesn't exist and creates the file with secure
// permissions (0600) from the start to avoid race conditions where the
// file could be read before permissions are set.
func (c *Config) Save() error {
	configPath := GetConfigPath()
	configDir := filepath.Dir(configPath)

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.Set("default_account", c.DefaultAccount)
	v.Set("default_format", c.DefaultFormat)
	v.Set("timezone", c.Timezone)
	v.Set("ai_cache", c.AICache)
	v.Set("calendar_sync", c.CalendarSync)
	v.Set("keyboard", c.Keyboard)

	if err := writeConfigSecurely(configPath, v); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// writeConfigSecurely writes the viper configuration to a file with
// secure permissions (0600) from the start. This avoids the race
// condition where the file is created with default permissions and
// then chmod'd.
func writeConfigSecurely(configPath string, v *viper.Viper) error {
	if runtime.GOOS == "windows" {
		if err := v.WriteConfig(); err != nil {
			if os.IsNotExist(err) {
				return v.SafeWriteConfig()
			}
			return err
		}
		return nil
	}

	f, err := os.OpenFile(configPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	settings := v.AllSettings()
	yamlData, err := marshalYAML(settings)
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if _, err := f.Write(yamlData); err != nil {
		f.Close()
		return fmt.Errorf("failed to write config: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close config file: %w", err)
	}

	return nil
}

// marshalYAML marshals the settings map to YAML format.
func marshalYAML(settings map[string]interface{}) ([]byte, error) {
	return yaml.Marshal(settings)
}

// SetPermissions sets the config file permissions to 0600 (owner
// read/write only). This is a no-op on Windows where file permissions
// work differently.
func SetPermissions() error {
	if runtime.GOOS == "windows" {
		return nil
	}

	configPath := GetConfigPath()
	if err := os.Chmod(configPath, 0600); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", configPath, err)
	}

	return nil
}

// validFormats lists the valid output format options.
var validFormats = map[string]bool{
	"json":  true,
	"plain": true,
	"table": true,
}

// SetValue sets a configuration value by key path (e.g. "ai_cache.max_entries").
func (c *Config) SetValue(key, value string) error {
	switch key {
	case "default_account":
		c.DefaultAccount = value
	case "default_format":
		if !validFormats[value] {
			return fmt.Errorf("invalid format %q: must be one of json, plain, table", value)
		}
		c.DefaultFormat = value
	case "timezone":
		if value != "" && value != "Local" {
			if _, err := time.LoadLocation(value); err != nil {
				return fmt.Errorf("invalid timezone %q: %w", value, err)
			}
		}
		c.Timezone = value
	case "ai_cache.max_entries":
		n, err := fmt.Sscanf(value, "%d", &c.AICache.MaxEntries)
		if err != nil || n != 1 {
			return fmt.Errorf("invalid max_entries: %w", err)
		}
	case "ai_cache.default_policy":
		c.AICache.DefaultPolicy = value
	case "calendar_sync.default_interval_minutes":
		n, err := fmt.Sscanf(value, "%d", &c.CalendarSync.DefaultIntervalMinutes)
		if err != nil || n != 1 {
			return fmt.Errorf("invalid default_interval_minutes: %w", err)
		}
	case "keyboard.default_conflict_resolution":
		c.Keyboard.DefaultConflictResolution = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

// GetValue retrieves a configuration value by key path.
func (c *Config) GetValue(key string) (string, error) {
	switch key {
	case "default_account":
		return c.DefaultAccount, nil
	case "default_format":
		return c.DefaultFormat, nil
	case "timezone":
		return c.Timezone, nil
	case "ai_cache.max_entries":
		return fmt.Sprintf("%d", c.AICache.MaxEntries), nil
	case "ai_cache.default_policy":
		return c.AICache.DefaultPolicy, nil
	case "calendar_sync.default_interval_minutes":
		return fmt.Sprintf("%d", c.CalendarSync.DefaultIntervalMinutes), nil
	case "keyboard.default_conflict_resolution":
		return c.Keyboard.DefaultConflictResolution, nil
	default:
		return "", fmt.Errorf("unknown config key: %s", key)
	}
}

// stringToTimeHookFunc returns a mapstructure decode hook that converts
// strings to time.Time using RFC3339 format.
func stringToTimeHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		if t != reflect.TypeOf(time.Time{}) {
			return data, nil
		}

		str := data.(string)
		if str == "" {
			return time.Time{}, nil
		}

		parsed, err := time.Parse(time.RFC3339, str)
		if err == nil {
			return parsed, nil
		}

		parsed, err = time.Parse(time.RFC3339Nano, str)
		if err == nil {
			return parsed, nil
		}

		return nil, fmt.Errorf("unable to parse time: %s", str)
	}
}
