package config

// loader.go - configuration layers below the command line.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/root.go)
//   2. Environment variables  (LoadFromEnv)
//   3. YAML config file  (LoadFile)
//   4. Defaults   (defaults.go)

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// LoadFromEnv overlays DIALUP_* environment variables onto cfg.  Unset
// variables leave the existing value alone.  Durations use Go syntax
// ("30ms"), booleans accept strconv.ParseBool forms.
func LoadFromEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadFile overlays the YAML document at path onto cfg.  Keys absent
// from the file leave the existing value alone; unknown keys are an
// error so that typos surface.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config file: %w", err)
	}
	if err := Parse(data, cfg); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	cfg.ConfigFile = path
	return nil
}

// Parse overlays a YAML document onto cfg.
func Parse(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return err
	}
	return nil
}

// Load assembles a Config from defaults, the YAML file named by path
// (or by DIALUP_CONFIG when path is empty) and the environment.  Flags
// are applied on top by the caller before Validate.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("DIALUP_CONFIG")
	}
	if path != "" {
		if err := LoadFile(path, cfg); err != nil {
			return nil, err
		}
	}
	if err := LoadFromEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
