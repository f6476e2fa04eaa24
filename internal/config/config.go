package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/iwat/iostream/internal/domain"
	"gopkg.in/yaml.v3"
)

// Config holds the settings of a run. Zero values in a loaded file keep the
// defaults.
type Config struct {
	Input      string `yaml:"input"`
	Output     string `yaml:"output"`
	Payload    string `yaml:"payload"`
	BufferSize int    `yaml:"buffer_size"`
	Journal    string `yaml:"journal"`
	LogLevel   string `yaml:"log_level"`
}

func Default() *Config {
	return &Config{
		Input:      domain.DefaultInputPath,
		Output:     domain.DefaultOutputPath,
		Payload:    domain.DefaultPayload,
		BufferSize: domain.CopyBufferSize,
		Journal:    DefaultJournalPath(),
		LogLevel:   "info",
	}
}

// Load decodes a YAML document on top of the defaults
func Load(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	return Load(f)
}

func (c *Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("input path must not be empty")
	}
	if c.Output == "" {
		return fmt.Errorf("output path must not be empty")
	}
	if c.BufferSize <= 0 {
		return fmt.Errorf("buffer size must be positive, got %d", c.BufferSize)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

func DefaultJournalPath() string {
	// Use standard user config directory
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "./iostream.db"
	}

	return filepath.Join(configDir, "iostream", "journal.db")
}
