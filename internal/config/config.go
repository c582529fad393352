package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultFile is read when no -config flag is given.
const DefaultFile = "vcalc.toml"

type Config struct {
	Trace bool  `toml:"trace"`
	Run   Run   `toml:"run"`
	Build Build `toml:"build"`
	Check Check `toml:"check"`
	Watch Watch `toml:"watch"`
}

type Run struct {
	MaxSteps int `toml:"max_steps"` // negative disables the limit
}

type Build struct {
	OutputDir string `toml:"output_dir"`
}

type Check struct {
	Patterns []string `toml:"patterns"` // used when check gets no arguments
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
	Patterns []string      `toml:"patterns"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.Run.MaxSteps == 0 {
		cfg.Run.MaxSteps = 10_000_000
	}
	if len(cfg.Check.Patterns) == 0 {
		cfg.Check.Patterns = []string{"**.vct"}
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 300 * time.Millisecond
	}
	if len(cfg.Watch.Patterns) == 0 {
		cfg.Watch.Patterns = []string{"*.vct"}
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// LoadOptional is Load, except a missing file yields Default().
func LoadOptional(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}
