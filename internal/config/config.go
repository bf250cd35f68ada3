// Package config handles roomtool configuration loading and management.
package config

import (
	"fmt"
	"time"
)

// Config holds all roomtool settings.
type Config struct {
	Package PackageConfig `yaml:"package" toml:"package"`
	Decode  DecodeConfig  `yaml:"decode" toml:"decode"`
	Watch   WatchConfig   `yaml:"watch" toml:"watch"`
	Export  ExportConfig  `yaml:"export" toml:"export"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// PackageConfig holds the room package location.
type PackageConfig struct {
	Dir string `yaml:"dir" toml:"dir"` // Default package directory
}

// DecodeConfig holds mesh decoding settings.
type DecodeConfig struct {
	// Completion is "faces" (legacy: sub-meshes end with their faces) or
	// "object" (object markers and end of input also end a sub-mesh).
	Completion string `yaml:"completion" toml:"completion"`
	SkipLayers bool   `yaml:"skip_layers" toml:"skip_layers"`
}

// WatchConfig holds package watcher settings.
type WatchConfig struct {
	Debounce Duration `yaml:"debounce" toml:"debounce"`
}

// Duration is a time.Duration written as text ("500ms", "2s") in both
// YAML and TOML config files.
type Duration time.Duration

// String returns the duration in time.Duration notation.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}

// ExportConfig holds layer export settings.
type ExportConfig struct {
	Dir string `yaml:"dir" toml:"dir"` // Output directory for exported layers
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Package: PackageConfig{
			Dir: "TextureData",
		},
		Decode: DecodeConfig{
			Completion: "faces",
			SkipLayers: false,
		},
		Watch: WatchConfig{
			Debounce: Duration(500 * time.Millisecond),
		},
		Export: ExportConfig{
			Dir: "RoomTextureBundle",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
