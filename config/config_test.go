package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mobile-next/gesturekit/gestures"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	path := filepath.Join(dir, "config.ini")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(EnvListen, "")
	t.Setenv(EnvToken, "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultListen, cfg.Server.Listen)
	assert.Equal(t, DefaultMaxSessions, cfg.Server.MaxSessions)
	assert.Equal(t, gestures.DefaultConfig(), cfg.Gestures)
	assert.Empty(t, cfg.Path)
}

func TestLoad_FromXDGConfigHome(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv(EnvListen, "")
	t.Setenv(EnvToken, "")

	dir := filepath.Join(xdg, "gesturekit")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := writeConfig(t, dir, "[server]\nlisten = 0.0.0.0:13000\n")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:13000", cfg.Server.Listen)
	assert.Equal(t, path, cfg.Path)
}

func TestLoadFrom(t *testing.T) {
	t.Setenv(EnvListen, "")
	t.Setenv(EnvToken, "")

	path := writeConfig(t, t.TempDir(), `
[server]
listen = :14000
cors = true
max_sessions = 8
token = abc

[log]
verbose = true
json = true

[gestures]
trigger_rate = 20
deadzone_percent = 10
subtitle_area_threshold = 0.8
throttle_divisor = 4
`)

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, ServerConfig{Listen: ":14000", CORS: true, MaxSessions: 8, Token: "abc"}, cfg.Server)
	assert.Equal(t, LogConfig{Verbose: true, JSON: true}, cfg.Log)
	assert.Equal(t, 20.0, cfg.Gestures.TriggerRate)
	assert.Equal(t, 10.0, cfg.Gestures.DeadzonePercent)
	assert.Equal(t, 0.8, cfg.Gestures.SubtitleAreaThreshold)
	assert.Equal(t, 4.0, cfg.Gestures.ThrottleDivisor)
	assert.Equal(t, gestures.ControlSeekMax, cfg.Gestures.SeekMax)
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	t.Setenv(EnvListen, "127.0.0.1:15000")
	t.Setenv(EnvToken, "from-env")

	path := writeConfig(t, t.TempDir(), "[server]\nlisten = :14000\ntoken = from-file\n")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:15000", cfg.Server.Listen)
	assert.Equal(t, "from-env", cfg.Server.Token)
}

func TestLoadFrom_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"negative trigger rate", "[gestures]\ntrigger_rate = -1\n"},
		{"deadzone too large", "[gestures]\ndeadzone_percent = 60\n"},
		{"zero max sessions", "[server]\nmax_sessions = 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.content)
			_, err := LoadFrom(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadFrom_MissingFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "nope.ini"))
	assert.Error(t, err)
}

func TestLoadFs_InMemory(t *testing.T) {
	xdg := "/xdg"
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv(EnvListen, "")
	t.Setenv(EnvToken, "")

	fsys := afero.NewMemMapFs()
	path := filepath.Join(xdg, "gesturekit", "config.ini")
	require.NoError(t, afero.WriteFile(fsys, path, []byte("[log]\njson = true\n[gestures]\nthrottle_divisor = 2\n"), 0o644))

	cfg, err := LoadFs(fsys)
	require.NoError(t, err)
	assert.True(t, cfg.Log.JSON)
	assert.Equal(t, 2.0, cfg.Gestures.ThrottleDivisor)
	assert.Equal(t, path, cfg.Path)
}

func TestLoadFs_MissingFileFallsBackToDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/nowhere")
	t.Setenv(EnvListen, ":9999")
	t.Setenv(EnvToken, "")

	cfg, err := LoadFs(afero.NewMemMapFs())
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Server.Listen)
	assert.Empty(t, cfg.Path)
}

func TestLoadFrom_MaxSessionsEnvOverride(t *testing.T) {
	t.Setenv(EnvListen, "")
	t.Setenv(EnvToken, "")

	path := writeConfig(t, t.TempDir(), "[server]\nmax_sessions = 8\n")

	t.Setenv(EnvMaxSessions, "16")
	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Server.MaxSessions)

	// unusable values keep the file setting
	t.Setenv(EnvMaxSessions, "-3")
	cfg, err = LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Server.MaxSessions)
}
