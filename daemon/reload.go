package daemon

import (
	"fmt"
	"log/slog"

	"github.com/prettymuchbryce/treewatch/internal/config"
	"github.com/prettymuchbryce/treewatch/internal/ipc"
)

// HandleReload reloads the configuration file and restarts the watcher with it.
// An invalid config leaves the running watcher untouched.
func (c *Controller) HandleReload() (ipc.ReloadResult, error) {
	cfg, err := config.LoadWithFs(c.configPath, c.afs)
	if err != nil {
		return ipc.ReloadResult{}, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.Metrics.Listen != c.cfg.Metrics.Listen {
		slog.Warn("metrics.listen changes take effect after a daemon restart")
	}

	c.StopWatcher()
	c.cfg = cfg
	if err := c.startIfEnabled(); err != nil {
		return ipc.ReloadResult{}, fmt.Errorf("failed to restart watcher: %w", err)
	}

	result := ipc.ReloadResult{ConfigPath: c.configPath, Root: cfg.Root}
	if c.watcher != nil {
		result.WatchCount = c.watcher.WatchCount()
	}
	slog.Info("reloaded config", "path", c.configPath, "root", cfg.Root, "entries", result.WatchCount)

	return result, nil
}
