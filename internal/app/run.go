package app

import (
	"context"
	"fmt"
	"os"

	"github.com/vk/gridml/engine"
	"github.com/vk/gridml/internal/ctxlog"
)

// Run executes the main application logic based on the provided configuration.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	script, err := os.ReadFile(a.config.ScriptPath)
	if err != nil {
		return fmt.Errorf("failed to read script file: %w", err)
	}
	a.logger.Debug("Script file loaded.", "path", a.config.ScriptPath, "bytes", len(script))

	client := engine.NewClient(a.engineCfg)
	ectx := engine.NewContext(client)

	if a.config.Watch {
		if monitor := engine.NewMonitor(a.engineCfg); monitor != nil {
			watchCtx, cancel := context.WithCancel(ctx)
			defer cancel()
			go monitor.Watch(watchCtx, ectx.ID())
		} else {
			a.logger.Warn("Watch requested but the profile has no events_namespace, skipping.")
		}
	}

	a.logger.Info("Submitting script for execution.",
		"endpoint", a.engineCfg.Endpoint(), "outputs", a.config.Outputs)
	results, err := ectx.Execute(ctx, string(script), nil, a.config.Outputs)
	if err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	a.logger.Info("Execution finished.", "outputs", len(results))

	for _, name := range a.config.Outputs {
		v, ok := results[name]
		if !ok {
			continue
		}
		fmt.Fprintf(a.outW, "%s:\n%s\n", name, formatValue(v))
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}
