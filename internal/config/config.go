// Package config handles the smartscreend configuration file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/smartscreen/internal/capability"
	"github.com/jmylchreest/smartscreen/internal/endpoint"
	"github.com/jmylchreest/smartscreen/internal/focus"
)

// Default configuration values.
const (
	DefaultGateway                = "https://alexa.na.gateway.devices.a2z.com"
	DefaultPresentationMaxVersion = "2023.2"
	DefaultVolume                 = 80
	DefaultLogLevel               = "info"
	DefaultTriggerTimeout         = 5 * time.Second
	DefaultDocumentIdleTimeout    = 30 * time.Second
)

// Config is the smartscreend configuration.
// Loaded from ~/.config/smartscreen/smartscreend.toml
type Config struct {
	Device   DeviceConfig   `toml:"device"`
	Service  ServiceConfig  `toml:"service"`
	Features FeaturesConfig `toml:"features"`
	Focus    FocusConfig    `toml:"focus"`
	Audio    AudioConfig    `toml:"audio"`
	Storage  StorageConfig  `toml:"storage"`
	Log      LogConfig      `toml:"log"`
}

// DeviceConfig identifies the device to the service.
type DeviceConfig struct {
	ClientID     string `toml:"client_id"`
	ProductID    string `toml:"product_id"`
	SerialNumber string `toml:"serial_number"`
	FriendlyName string `toml:"friendly_name"`
	Manufacturer string `toml:"manufacturer"`
	Description  string `toml:"description"`
}

// ServiceConfig contains service connection settings.
type ServiceConfig struct {
	Gateway                string   `toml:"gateway"`
	FirmwareVersion        int32    `toml:"firmware_version"`         // 0 = not reported
	PresentationMaxVersion string   `toml:"presentation_max_version"` // semver, e.g. "2023.2"
	SendSoftwareInfo       bool     `toml:"send_software_info"`       // Report firmware on every connect
	ConnectOnStart         bool     `toml:"connect_on_start"`
	TriggerTimeout         Duration `toml:"trigger_timeout"`       // How long D-Bus triggers wait for a result
	DocumentIdleTimeout    Duration `toml:"document_idle_timeout"` // How long an idle document stays on screen
}

// FeaturesConfig enables optional capabilities.
type FeaturesConfig struct {
	Telephony           bool `toml:"telephony"`
	Meetings            bool `toml:"meetings"`
	Comms               bool `toml:"comms"`
	MultiRoomMusic      bool `toml:"multi_room_music"`
	Captions            bool `toml:"captions"`
	RevokeAuthorization bool `toml:"revoke_authorization"`
}

// FocusConfig overrides the focus channels. Empty lists select the defaults.
type FocusConfig struct {
	Audio  []ChannelConfig `toml:"audio"`
	Visual []ChannelConfig `toml:"visual"`
}

// ChannelConfig is one focus channel. Lower priority values win.
type ChannelConfig struct {
	Name     string `toml:"name"`
	Priority uint   `toml:"priority"`
}

// AudioConfig contains local sound settings.
type AudioConfig struct {
	Enabled bool        `toml:"enabled"`
	Volume  int         `toml:"volume"` // 0-100
	Sounds  SoundConfig `toml:"sounds"`
}

// SoundConfig maps local sinks to sound files. Empty paths are silent.
type SoundConfig struct {
	Wakeword     string `toml:"wakeword"`
	Alarm        string `toml:"alarm"`
	Notification string `toml:"notification"`
	Ringtone     string `toml:"ringtone"`
}

// StorageConfig contains the persistent store location.
type StorageConfig struct {
	Dir string `toml:"dir"` // One JSON file per store
}

// Store names, one file each under StorageConfig.Dir.
const (
	StoreSettings      = "settings"
	StoreMessages      = "messages"
	StoreAlerts        = "alerts"
	StoreNotifications = "notifications"
	StoreMisc          = "misc"
)

// Path returns the file backing the named store.
func (s StorageConfig) Path(name string) string {
	return filepath.Join(ExpandPath(s.Dir), name+".json")
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "localhost"
	}
	return &Config{
		Device: DeviceConfig{
			ClientID:     "smartscreen",
			ProductID:    "smartscreen-linux",
			SerialNumber: host,
			FriendlyName: "Smart Screen",
			Manufacturer: "jmylchreest",
		},
		Service: ServiceConfig{
			Gateway:                DefaultGateway,
			PresentationMaxVersion: DefaultPresentationMaxVersion,
			ConnectOnStart:         true,
			TriggerTimeout:         Duration(DefaultTriggerTimeout),
			DocumentIdleTimeout:    Duration(DefaultDocumentIdleTimeout),
		},
		Audio: AudioConfig{
			Enabled: true,
			Volume:  DefaultVolume,
		},
		Storage: StorageConfig{
			Dir: DataPath(),
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "smartscreen", "smartscreend.toml")
}

// DataPath returns the path to the data directory.
// Uses XDG_DATA_HOME if set, otherwise ~/.local/share.
func DataPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "smartscreen")
}

// Load loads configuration from path, or the default path if empty.
// Returns the default config if the file doesn't exist.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then overlay with file contents
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to path, or the default path if empty.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Device.ClientID == "" {
		return errors.New("device.client_id must be set")
	}
	if c.Device.ProductID == "" {
		return errors.New("device.product_id must be set")
	}
	if c.Service.PresentationMaxVersion == "" {
		return errors.New("service.presentation_max_version must be set")
	}
	if c.Service.FirmwareVersion < 0 {
		return fmt.Errorf("service.firmware_version must not be negative, got %d", c.Service.FirmwareVersion)
	}
	if c.Service.TriggerTimeout < 0 {
		return fmt.Errorf("service.trigger_timeout must not be negative, got %s", c.Service.TriggerTimeout.Duration())
	}

	if c.Storage.Dir == "" {
		return errors.New("storage.dir must be set")
	}

	if c.Audio.Volume < 0 || c.Audio.Volume > 100 {
		return fmt.Errorf("volume must be between 0 and 100, got %d", c.Audio.Volume)
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}

	if len(c.Focus.Audio) > 0 {
		if _, err := focus.Validate(c.AudioChannels()); err != nil {
			return fmt.Errorf("focus.audio: %w", err)
		}
	}
	if len(c.Focus.Visual) > 0 {
		if _, err := focus.Validate(c.VisualChannels()); err != nil {
			return fmt.Errorf("focus.visual: %w", err)
		}
	}
	return nil
}

// Identity returns the device identity for the default endpoint.
func (c *Config) Identity() endpoint.Identity {
	return endpoint.Identity{
		ClientID:     c.Device.ClientID,
		ProductID:    c.Device.ProductID,
		SerialNumber: c.Device.SerialNumber,
		FriendlyName: c.Device.FriendlyName,
		Manufacturer: c.Device.Manufacturer,
		Description:  c.Device.Description,
	}
}

// AudioChannels returns the configured audio channels, nil for defaults.
func (c *Config) AudioChannels() []capability.ChannelConfiguration {
	return channels(c.Focus.Audio)
}

// VisualChannels returns the configured visual channels, nil for defaults.
func (c *Config) VisualChannels() []capability.ChannelConfiguration {
	return channels(c.Focus.Visual)
}

func channels(in []ChannelConfig) []capability.ChannelConfiguration {
	if len(in) == 0 {
		return nil
	}
	out := make([]capability.ChannelConfiguration, len(in))
	for i, ch := range in {
		out[i] = capability.ChannelConfiguration{Name: ch.Name, Priority: ch.Priority}
	}
	return out
}

// ParseLevel converts a config log level to a slog level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q, must be one of: debug, info, warn, error", level)
	}
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
