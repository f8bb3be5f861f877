package daemon

import "log/slog"

// HandleDisable stops the watcher if running and remembers the choice across restarts.
func (c *Controller) HandleDisable() {
	if err := c.state.SetDisabled(true); err != nil {
		slog.Warn("failed to persist disabled state", "error", err)
	}
	if c.watcher == nil {
		return
	}

	c.StopWatcher()
	slog.Info("daemon disabled")
}
