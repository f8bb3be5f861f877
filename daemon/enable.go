package daemon

import "log/slog"

// HandleEnable starts the watcher if not running and remembers the choice.
func (c *Controller) HandleEnable() {
	if err := c.state.SetDisabled(false); err != nil {
		slog.Warn("failed to persist enabled state", "error", err)
	}
	if c.watcher != nil {
		return
	}

	if err := c.StartWatcher(); err != nil {
		slog.Error("failed to start watcher", "error", err)
		return
	}
	slog.Info("daemon enabled")
}
