package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load builds the effective config: defaults, then the YAML file (if any), then flags.
// A missing config file is only an error when it was explicitly requested.
func Load(flags Flags) (*Config, error) {
	cfg := New()
	cfg.Flags = flags

	path, explicit := cfg.GetConfigPath()
	if err := cfg.loadFile(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg.Apply(flags)

	// Discovered paths are derived from the base dir, keep them cwd-independent
	if abs, err := filepath.Abs(cfg.BaseDir); err == nil {
		cfg.BaseDir = abs
	}

	if err := cfg.loadDotEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if c.Env == nil {
		c.Env = map[string]string{}
	}
	return nil
}

// loadDotEnv merges the base directory's .env into Env. Values from the config file win.
func (c *Config) loadDotEnv() error {
	envPath := filepath.Join(c.BaseDir, ".env")
	values, err := godotenv.Read(envPath)
	if err != nil {
		// .env file might not exist, that's okay
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", envPath, err)
	}
	for k, v := range values {
		if _, ok := c.Env[k]; !ok {
			c.Env[k] = v
		}
	}
	return nil
}

// Environ returns the Env map as KEY=VALUE pairs
func (c *Config) Environ() []string {
	env := make([]string, 0, len(c.Env))
	for k, v := range c.Env {
		env = append(env, k+"="+v)
	}
	return env
}
