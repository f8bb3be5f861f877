package daemon

import (
	"github.com/prettymuchbryce/treewatch/internal/config"
	"github.com/prettymuchbryce/treewatch/internal/ipc"
)

// HandleStatus returns the current daemon status.
func (c *Controller) HandleStatus(includeEntries bool) ipc.StatusData {
	status := ipc.StatusData{
		ConfigPath:  c.configPath,
		ConfigValid: true,
		Enabled:     !c.state.IsDisabled(),
		Root:        c.cfg.Root,
		Backend:     string(c.cfg.Backend.Kind),
		IgnoreFiles: c.cfg.Ignore.Files,
		IgnoreDirs:  c.cfg.Ignore.Dirs,
	}

	// Report whether a reload would succeed.
	if _, err := config.LoadWithFs(c.configPath, c.afs); err != nil {
		status.ConfigValid = false
		status.ConfigError = err.Error()
	}

	if c.watcher != nil {
		tree := c.watcher.Tree()
		status.Watching = tree.Watching()
		status.WatchCount = tree.Len()
		if includeEntries {
			status.Entries = tree.Entries()
		}
	}

	if cmd := c.cfg.Trigger.Command; cmd != "" {
		ts := &ipc.TriggerStatus{Command: cmd}
		if st := c.state.GetTriggerState(cmd); st != nil {
			ts.Runs = st.Runs
			ts.Failures = st.Failures
			ts.LastRunAt = &st.LastRunAt
			ts.LastDuration = &st.LastDuration
			ts.LastError = st.LastError
		}
		status.Trigger = ts
	}

	return status
}
