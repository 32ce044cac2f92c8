// Package config loads the player configuration from TOML files.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/lucasb-eyer/go-colorful"
)

const appName = "murn"

// Defaults applied for missing or invalid values.
const (
	DefaultVolumeStep  = 5
	DefaultSeekStep    = 5 // seconds
	DefaultAccentColor = "#5f87af"
	DefaultDeviceRate  = 48000
)

type Config struct {
	VolumeStep  int      `koanf:"volume_step"`
	SeekStep    int      `koanf:"seek_step"` // seconds
	AccentColor string   `koanf:"accent_color"`
	DeviceRate  int      `koanf:"device_rate"`
	Roots       []string `koanf:"roots"` // music root directories
}

// Load reads config files in order of priority (last wins): the XDG
// config dir, then ./config.toml. Missing files are fine; defaults
// cover everything.
func Load() (*Config, error) {
	k := koanf.New(".")

	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	for i, root := range cfg.Roots {
		cfg.Roots[i] = expandPath(root)
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.VolumeStep <= 0 || c.VolumeStep > 100 {
		c.VolumeStep = DefaultVolumeStep
	}
	if c.SeekStep <= 0 {
		c.SeekStep = DefaultSeekStep
	}
	if c.DeviceRate <= 0 {
		c.DeviceRate = DefaultDeviceRate
	}
	if _, err := colorful.Hex(c.AccentColor); err != nil {
		c.AccentColor = DefaultAccentColor
	}
}

// SeekStepDuration returns the seek step as a duration.
func (c *Config) SeekStepDuration() time.Duration {
	return time.Duration(c.SeekStep) * time.Second
}

func getConfigPaths() []string {
	return []string{
		filepath.Join(xdg.ConfigHome, appName, "config.toml"),
		"config.toml",
	}
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
