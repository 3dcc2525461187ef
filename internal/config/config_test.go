package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:          "wss://companion.example.net/socket",
			HandshakeTimeout: 15 * time.Second,
		},
		Player: PlayerConfig{
			Name:   "Alice",
			Locale: "en_us",
		},
		Audio: AudioConfig{
			ProximityRadius: 48,
		},
		Chat: ChatConfig{
			MultiChannel: true,
			Languages:    map[string]bool{"fr": true, "en": false},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

func TestValidConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidate_ServerAddress(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Address = "http://companion.example.net"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.address")
}

func TestValidate_HandshakeTimeout(t *testing.T) {
	cfg := validConfig()
	cfg.Server.HandshakeTimeout = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "handshake_timeout")
}

func TestValidate_Player(t *testing.T) {
	cfg := validConfig()
	cfg.Player.Name = ""
	cfg.Player.Locale = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "player.name")
	assert.Contains(t, err.Error(), "player.locale")
}

func TestValidate_ProximityRadius(t *testing.T) {
	cfg := validConfig()
	cfg.Audio.ProximityRadius = -1
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "proximity_radius")
}

func TestValidate_Logging(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "trace"
	cfg.Logging.Format = "xml"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
	assert.Contains(t, err.Error(), "logging.format")
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	err := os.WriteFile(path, []byte(`
server:
  address: wss://companion.example.net/socket
  handshake_timeout: 20s
player:
  name: Alice
  locale: fr_fr
audio:
  speaker_name: "USB Speakers"
  proximity_radius: 32
chat:
  multichannel: true
  languages:
    fr: false
logging:
  level: debug
  format: console
`), 0o600)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "wss://companion.example.net/socket", cfg.Server.Address)
	assert.Equal(t, 20*time.Second, cfg.Server.HandshakeTimeout)
	assert.Equal(t, "Alice", cfg.Player.Name)
	assert.Equal(t, "fr_fr", cfg.Player.Locale)
	assert.Equal(t, "USB Speakers", cfg.Audio.SpeakerName)
	assert.InDelta(t, 32, cfg.Audio.ProximityRadius, 1e-9)
	assert.True(t, cfg.Chat.MultiChannel)
	assert.False(t, cfg.Chat.Languages["fr"])
	assert.True(t, cfg.Chat.Languages["en"], "defaults fill untouched language toggles")
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_DefaultsApplied(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	err := os.WriteFile(path, []byte(`
player:
  name: Alice
`), 0o600)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ws://127.0.0.1:4580/socket", cfg.Server.Address)
	assert.Equal(t, 15*time.Second, cfg.Server.HandshakeTimeout)
	assert.Equal(t, "en_us", cfg.Player.Locale)
	assert.False(t, cfg.Chat.MultiChannel)
	for _, lang := range ChatLanguages {
		assert.True(t, cfg.Chat.Languages[lang], "language %q should default to enabled", lang)
	}
}

func TestLoad_MissingPlayerNameRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	err := os.WriteFile(path, []byte("logging:\n  level: info\n"), 0o600)
	require.NoError(t, err)

	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "player.name")
}
