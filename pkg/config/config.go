// Package config provides configuration management for diffcheck with
// embedded defaults.
package config

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"
)

//go:embed defaults/config
var defaultsFS embed.FS

// Config holds all configuration settings for diffcheck.
type Config struct {
	ToolCommand     string // tool under test, cli positional overrides this
	DiffstatCommand string // reference formatter binary
	ArtifactDir     string // mismatch artifact directory, empty means cwd
	NotifyDest      string // go-pkgz/notify destination url, empty disables

	// output colors (RGB values as comma-separated strings)
	Colors ColorConfig

	configDir string // private, set by Load()
}

// ColorConfig holds RGB values for output colors.
// each field stores comma-separated RGB values (e.g., "255,0,0" for red).
type ColorConfig struct {
	Info     string // informational messages
	Warn     string // mismatch warnings
	Error    string // error messages
	Debug    string // debug traces
	Progress string // in-place progress line
}

// Load loads configuration from the specified directory. If configDir is
// empty, uses the default location (~/.config/diffcheck/). It installs the
// default config file on first run, then parses the user's file.
func Load(configDir string) (*Config, error) {
	c := &Config{}
	c.configDir = configDir
	if configDir == "" {
		c.configDir = c.defaultConfigDir()
	}

	if err := c.installDefaults(); err != nil {
		return nil, fmt.Errorf("install defaults: %w", err)
	}

	if err := c.loadConfigFile(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := c.loadColorsWithFallback(); err != nil {
		return nil, fmt.Errorf("load colors fallback: %w", err)
	}

	return c, nil
}

// defaultConfigDir returns the default configuration directory path.
// returns ~/.config/diffcheck/ on all platforms.
func (c *Config) defaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "diffcheck")
	}
	return filepath.Join(home, ".config", "diffcheck")
}

// installDefaults creates the config directory and installs the default
// config file if it doesn't exist yet.
func (c *Config) installDefaults() error {
	configPath := filepath.Join(c.configDir, "config")
	_, statErr := os.Stat(configPath)
	if statErr == nil {
		return nil // already installed
	}
	if !os.IsNotExist(statErr) {
		return fmt.Errorf("check config file: %w", statErr)
	}

	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := defaultsFS.ReadFile("defaults/config")
	if err != nil {
		return fmt.Errorf("read embedded config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// loadConfigFile parses the user config, falling back to embedded defaults
// when no file exists.
func (c *Config) loadConfigFile() error {
	configPath := filepath.Join(c.configDir, "config")

	data, err := os.ReadFile(configPath) //nolint:gosec // path is constructed internally
	if err != nil {
		if os.IsNotExist(err) {
			data, err = defaultsFS.ReadFile("defaults/config")
			if err != nil {
				return fmt.Errorf("read embedded defaults: %w", err)
			}
			return c.parseConfigBytes(data)
		}
		return fmt.Errorf("read config: %w", err)
	}

	return c.parseConfigBytes(data)
}

// parseConfigBytes parses ini-formatted config data into c.
func (c *Config) parseConfigBytes(data []byte) error {
	// ignoreInlineComment allows # in values (e.g., color_warn = #ffff00)
	cfg, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, data)
	if err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	section := cfg.Section("") // default section (no section header)

	if key, err := section.GetKey("tool_command"); err == nil {
		c.ToolCommand = key.String()
	}
	if key, err := section.GetKey("diffstat_command"); err == nil {
		c.DiffstatCommand = key.String()
	}
	if key, err := section.GetKey("artifact_dir"); err == nil {
		c.ArtifactDir = key.String()
	}
	if key, err := section.GetKey("notify_destination"); err == nil {
		c.NotifyDest = key.String()
	}

	colorKeys := []struct {
		key   string
		field *string
	}{
		{"color_info", &c.Colors.Info},
		{"color_warn", &c.Colors.Warn},
		{"color_error", &c.Colors.Error},
		{"color_debug", &c.Colors.Debug},
		{"color_progress", &c.Colors.Progress},
	}
	for _, ck := range colorKeys {
		key, err := section.GetKey(ck.key)
		if err != nil {
			continue
		}
		hex := strings.TrimSpace(key.String())
		if hex == "" {
			continue
		}
		r, g, b, err := parseHexColor(hex)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", ck.key, err)
		}
		*ck.field = fmt.Sprintf("%d,%d,%d", r, g, b)
	}

	return nil
}

// loadColorsWithFallback fills any missing color values from embedded
// defaults so all ColorConfig fields are populated after loading.
func (c *Config) loadColorsWithFallback() error {
	data, err := defaultsFS.ReadFile("defaults/config")
	if err != nil {
		return fmt.Errorf("read embedded defaults: %w", err)
	}
	embedded := &Config{}
	if err := embedded.parseConfigBytes(data); err != nil {
		return fmt.Errorf("parse embedded defaults: %w", err)
	}

	if c.Colors.Info == "" {
		c.Colors.Info = embedded.Colors.Info
	}
	if c.Colors.Warn == "" {
		c.Colors.Warn = embedded.Colors.Warn
	}
	if c.Colors.Error == "" {
		c.Colors.Error = embedded.Colors.Error
	}
	if c.Colors.Debug == "" {
		c.Colors.Debug = embedded.Colors.Debug
	}
	if c.Colors.Progress == "" {
		c.Colors.Progress = embedded.Colors.Progress
	}

	return nil
}

// parseHexColor converts "#rrggbb" to RGB components.
func parseHexColor(hex string) (r, g, b int, err error) {
	if hex == "" || hex[0] != '#' {
		return 0, 0, 0, errors.New("hex color must start with #")
	}
	if len(hex) != 7 {
		return 0, 0, 0, errors.New("hex color must be 7 characters (e.g., #ff0000)")
	}

	val, err := strconv.ParseInt(hex[1:], 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}

	r = int((val >> 16) & 0xFF)
	g = int((val >> 8) & 0xFF)
	b = int(val & 0xFF)
	return r, g, b, nil
}
