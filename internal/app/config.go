package app

import (
	"errors"

	"github.com/vk/gridml/engine"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ScriptPath string // dml script file
	ConfigPath string // hcl connection profiles, optional

	Profile   string
	Outputs   []string
	Watch     bool
	LogFormat string
	LogLevel  string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.ScriptPath == "" {
		return nil, errors.New("ScriptPath is a required configuration field and cannot be empty")
	}
	if cfg.Profile == "" {
		cfg.Profile = engine.DefaultProfile
	}

	return &cfg, nil
}
