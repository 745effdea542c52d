package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/five82/handset/internal/device"
)

// Config holds every handset setting.
type Config struct {
	Tools    ToolsConfig    `mapstructure:"tools"`
	Poll     PollConfig     `mapstructure:"poll"`
	Files    FilesConfig    `mapstructure:"files"`
	Shell    ShellConfig    `mapstructure:"shell"`
	Wireless WirelessConfig `mapstructure:"wireless"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Log      LogConfig      `mapstructure:"log"`
}

// ToolsConfig names the device tool binaries.
type ToolsConfig struct {
	Bridge     string   `mapstructure:"bridge"`
	Bootloader string   `mapstructure:"bootloader"`
	SearchDirs []string `mapstructure:"search_dirs"`
}

// PollConfig tunes device discovery.
type PollConfig struct {
	BridgeInterval     time.Duration `mapstructure:"bridge_interval"`
	BootloaderInterval time.Duration `mapstructure:"bootloader_interval"`
	EmptyAcceptStreak  int           `mapstructure:"empty_accept_streak"`
	ModePriority       string        `mapstructure:"mode_priority"`
}

// Priority parses ModePriority.
func (p PollConfig) Priority() device.Priority {
	prio, _ := device.ParsePriority(p.ModePriority)
	return prio
}

// FilesConfig configures the remote file browser.
type FilesConfig struct {
	StartPath string `mapstructure:"start_path"`
}

// ShellConfig configures the command console.
type ShellConfig struct {
	NoOutputMarker string `mapstructure:"no_output_marker"`
}

// WirelessConfig configures wireless bridge connections.
type WirelessConfig struct {
	DefaultPort string `mapstructure:"default_port"`
}

// StorageConfig locates handset's own files.
type StorageConfig struct {
	NicknamesPath string `mapstructure:"nicknames_path"`
	JournalPath   string `mapstructure:"journal_path"`
	PrefsPath     string `mapstructure:"prefs_path"`
}

// LogConfig configures the log file. Path "-" logs to stderr.
type LogConfig struct {
	Path  string `mapstructure:"path"`
	Level string `mapstructure:"level"`
}

const (
	envPrefix         = "HANDSET"
	defaultConfigDir  = "~/.config/handset"
	defaultConfigName = "config"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("tools.bridge", "adb")
	v.SetDefault("tools.bootloader", "fastboot")
	v.SetDefault("tools.search_dirs", []string{"./bin"})
	v.SetDefault("poll.bridge_interval", "3s")
	v.SetDefault("poll.bootloader_interval", "4s")
	v.SetDefault("poll.empty_accept_streak", 2)
	v.SetDefault("poll.mode_priority", "bridge")
	v.SetDefault("files.start_path", "/sdcard")
	v.SetDefault("shell.no_output_marker", "(no output)")
	v.SetDefault("wireless.default_port", "5555")
	v.SetDefault("storage.nicknames_path", defaultConfigDir+"/nicknames.toml")
	v.SetDefault("storage.journal_path", "~/.local/share/handset/journal.db")
	v.SetDefault("storage.prefs_path", defaultConfigDir+"/prefs.toml")
	v.SetDefault("log.path", "~/.local/state/handset/handset.log")
	v.SetDefault("log.level", "info")
}

// Load reads the config file at path, or HANDSET_CONFIG, or
// ~/.config/handset/config.toml. A missing file yields defaults. HANDSET_*
// environment variables override file values (HANDSET_POLL_BRIDGE_INTERVAL
// for poll.bridge_interval).
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("toml")

	if strings.TrimSpace(path) == "" {
		path = os.Getenv(envPrefix + "_CONFIG")
	}
	if strings.TrimSpace(path) != "" {
		resolved, err := expandPath(path)
		if err != nil {
			return Config{}, err
		}
		v.SetConfigFile(resolved)
	} else {
		v.AddConfigPath(mustExpand(defaultConfigDir))
		v.SetConfigName(defaultConfigName)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	_ = cfg.normalize()
	return cfg
}

func (c *Config) normalize() error {
	if c.Poll.BridgeInterval <= 0 {
		return fmt.Errorf("poll.bridge_interval must be positive, got %s", c.Poll.BridgeInterval)
	}
	if c.Poll.BootloaderInterval <= 0 {
		return fmt.Errorf("poll.bootloader_interval must be positive, got %s", c.Poll.BootloaderInterval)
	}
	if c.Poll.EmptyAcceptStreak < 1 {
		return fmt.Errorf("poll.empty_accept_streak must be at least 1, got %d", c.Poll.EmptyAcceptStreak)
	}
	if _, err := device.ParsePriority(c.Poll.ModePriority); err != nil {
		return fmt.Errorf("poll.mode_priority: %w", err)
	}

	c.Storage.NicknamesPath = mustExpand(c.Storage.NicknamesPath)
	c.Storage.JournalPath = mustExpand(c.Storage.JournalPath)
	c.Storage.PrefsPath = mustExpand(c.Storage.PrefsPath)
	if strings.TrimSpace(c.Log.Path) != "-" {
		c.Log.Path = mustExpand(c.Log.Path)
	}
	for i, dir := range c.Tools.SearchDirs {
		c.Tools.SearchDirs[i] = mustExpand(dir)
	}
	return nil
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
