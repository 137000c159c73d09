// Package config loads gesturekit settings from an ini file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mobile-next/gesturekit/gestures"
	"github.com/spf13/afero"
	"gopkg.in/ini.v1"
)

const (
	DefaultListen      = "localhost:12000"
	DefaultMaxSessions = 64

	EnvListen      = "GESTUREKIT_LISTEN"
	EnvToken       = "GESTUREKIT_TOKEN"
	EnvMaxSessions = "GESTUREKIT_MAX_SESSIONS"
)

type ServerConfig struct {
	Listen      string
	CORS        bool
	MaxSessions int
	Token       string
}

type LogConfig struct {
	Verbose bool
	JSON    bool
}

type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Gestures gestures.Config

	// Path is the file the config was read from, empty when none was found
	Path string
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Listen:      DefaultListen,
			MaxSessions: DefaultMaxSessions,
		},
		Gestures: gestures.DefaultConfig(),
	}
}

// Load reads $XDG_CONFIG_HOME/gesturekit/config.ini (or ~/.config/...) when it
// exists, then applies environment overrides.
func Load() (*Config, error) {
	return LoadFs(afero.NewOsFs())
}

// LoadFs is Load on a specific filesystem.
func LoadFs(fsys afero.Fs) (*Config, error) {
	path := DefaultPath()
	if path != "" {
		if exists, _ := afero.Exists(fsys, path); exists {
			return LoadFromFs(fsys, path)
		}
	}

	cfg := Default()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	return LoadFromFs(afero.NewOsFs(), path)
}

// LoadFromFs reads configuration from a file on fsys.
func LoadFromFs(fsys afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	file, err := ini.Load(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}

	cfg, err := parse(file)
	if err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	cfg.Path = path

	applyEnvOverrides(cfg)
	return cfg, nil
}

// DefaultPath returns where Load looks for the config file.
func DefaultPath() string {
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		xdgConfig = filepath.Join(home, ".config")
	}
	return filepath.Join(xdgConfig, "gesturekit", "config.ini")
}

func parse(file *ini.File) (*Config, error) {
	cfg := Default()

	server := file.Section("server")
	cfg.Server.Listen = server.Key("listen").MustString(cfg.Server.Listen)
	cfg.Server.CORS = server.Key("cors").MustBool(false)
	cfg.Server.MaxSessions = server.Key("max_sessions").MustInt(cfg.Server.MaxSessions)
	cfg.Server.Token = server.Key("token").String()

	log := file.Section("log")
	cfg.Log.Verbose = log.Key("verbose").MustBool(false)
	cfg.Log.JSON = log.Key("json").MustBool(false)

	g := file.Section("gestures")
	cfg.Gestures.TriggerRate = g.Key("trigger_rate").MustFloat64(cfg.Gestures.TriggerRate)
	cfg.Gestures.DeadzonePercent = g.Key("deadzone_percent").MustFloat64(cfg.Gestures.DeadzonePercent)
	cfg.Gestures.SubtitleAreaThreshold = g.Key("subtitle_area_threshold").MustFloat64(cfg.Gestures.SubtitleAreaThreshold)
	cfg.Gestures.ThrottleDivisor = g.Key("throttle_divisor").MustFloat64(cfg.Gestures.ThrottleDivisor)
	cfg.Gestures.SeekMax = g.Key("seek_max").MustFloat64(cfg.Gestures.SeekMax)
	cfg.Gestures.VolumeMax = g.Key("volume_max").MustFloat64(cfg.Gestures.VolumeMax)
	cfg.Gestures.BrightMax = g.Key("bright_max").MustFloat64(cfg.Gestures.BrightMax)

	if cfg.Server.MaxSessions <= 0 {
		return nil, fmt.Errorf("server.max_sessions must be positive, got %d", cfg.Server.MaxSessions)
	}

	if err := cfg.Gestures.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvListen); v != "" {
		cfg.Server.Listen = v
	}
	if v := os.Getenv(EnvToken); v != "" {
		cfg.Server.Token = v
	}
	if v := os.Getenv(EnvMaxSessions); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			cfg.Server.MaxSessions = i
		}
	}
}
