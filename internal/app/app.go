package app

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/gridml/engine"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	config    *Config
	engineCfg *engine.Config
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and the
// resolved engine connection profile.
func NewApp(outW io.Writer, config *Config) *App {
	logger := newLogger(config.LogLevel, config.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	engineCfg, err := loadEngineConfig(config)
	if err != nil {
		// A failure to load the connection profile is a fatal startup error.
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Engine connection profile resolved.",
		"profile", engineCfg.Profile, "endpoint", engineCfg.Endpoint())

	return &App{
		outW:      outW,
		logger:    logger,
		config:    config,
		engineCfg: engineCfg,
	}
}

// EngineConfig returns the resolved connection profile. This is primarily
// for testing.
func (a *App) EngineConfig() *engine.Config {
	return a.engineCfg
}

// loadEngineConfig resolves the connection profile, falling back to the
// built-in defaults when no config file was given.
func loadEngineConfig(config *Config) (*engine.Config, error) {
	if config.ConfigPath == "" {
		if config.Profile != engine.DefaultProfile {
			return nil, fmt.Errorf("profile %q requested but no config file given", config.Profile)
		}
		return engine.DefaultConfig(), nil
	}
	return engine.LoadConfigFile(config.ConfigPath, config.Profile)
}
