// Package config provides Viper-based configuration loading for the
// companion client.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds companion-server connection settings.
type ServerConfig struct {
	// Address is the WebSocket URL of the companion server.
	Address string `mapstructure:"address"`
	// HandshakeTimeout bounds the WebSocket dial handshake.
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"`
}

// PlayerConfig identifies the local player in the hello handshake.
type PlayerConfig struct {
	// Name is the player display name.
	Name string `mapstructure:"name"`
	// Locale is the game client language (e.g. "en_us").
	Locale string `mapstructure:"locale"`
}

// AudioConfig holds voice pipeline settings.
type AudioConfig struct {
	// SpeakerName is the preferred playback device; empty = system default.
	SpeakerName string `mapstructure:"speaker_name"`
	// MicrophoneName is the preferred capture device; empty = system default.
	MicrophoneName string `mapstructure:"microphone_name"`
	// ProximityRadius is the audible radius, in blocks, for proximity mixing.
	ProximityRadius float64 `mapstructure:"proximity_radius"`
}

// ChatConfig holds multi-channel chat relay settings.
type ChatConfig struct {
	// MultiChannel enables relaying chat from other language channels.
	MultiChannel bool `mapstructure:"multichannel"`
	// Languages toggles relaying per source language code. A language that
	// is absent from the map is relayed.
	Languages map[string]bool `mapstructure:"languages"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// Config is the top-level application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Player  PlayerConfig  `mapstructure:"player"`
	Audio   AudioConfig   `mapstructure:"audio"`
	Chat    ChatConfig    `mapstructure:"chat"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateServer(c.Server); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validatePlayer(c.Player); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateAudio(c.Audio); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateServer(s ServerConfig) error {
	var errs []string
	if !strings.HasPrefix(s.Address, "ws://") && !strings.HasPrefix(s.Address, "wss://") {
		errs = append(errs, fmt.Sprintf("server.address must be a ws:// or wss:// URL, got %q", s.Address))
	}
	if s.HandshakeTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("server.handshake_timeout must be positive, got %s", s.HandshakeTimeout))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validatePlayer(p PlayerConfig) error {
	var errs []string
	if p.Name == "" {
		errs = append(errs, "player.name must not be empty")
	}
	if p.Locale == "" {
		errs = append(errs, "player.locale must not be empty")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateAudio(a AudioConfig) error {
	if a.ProximityRadius <= 0 {
		return fmt.Errorf("audio.proximity_radius must be positive, got %g", a.ProximityRadius)
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	var errs []string
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		errs = append(errs, fmt.Sprintf("logging.level must be one of [debug, info, warn, error], got %q", l.Level))
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		errs = append(errs, fmt.Sprintf("logging.format must be one of [json, console], got %q", l.Format))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with MINEBOX_ prefix
	v.SetEnvPrefix("MINEBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ChatLanguages is the set of language codes with a dedicated relay toggle.
var ChatLanguages = []string{"fr", "en", "es", "ru", "pt", "de", "cn", "pl", "it", "jp", "nl", "tr"}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "ws://127.0.0.1:4580/socket")
	v.SetDefault("server.handshake_timeout", "15s")

	v.SetDefault("player.name", "")
	v.SetDefault("player.locale", "en_us")

	v.SetDefault("audio.speaker_name", "")
	v.SetDefault("audio.microphone_name", "")
	v.SetDefault("audio.proximity_radius", 48.0)

	v.SetDefault("chat.multichannel", false)
	for _, lang := range ChatLanguages {
		v.SetDefault("chat.languages."+lang, true)
	}

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}
