package ipc

import (
	"time"

	"github.com/prettymuchbryce/treewatch/internal/watcher"
)

// Empty is used for RPC methods that don't need arguments or return values.
type Empty struct{}

// StatusArgs selects what Daemon.Status includes.
type StatusArgs struct {
	// Entries requests the full watch table.
	Entries bool `json:"entries"`
}

// StatusData is returned by Daemon.Status.
type StatusData struct {
	ConfigPath  string          `json:"config_path"`
	ConfigValid bool            `json:"config_valid"`
	ConfigError string          `json:"config_error,omitempty"`
	Enabled     bool            `json:"enabled"`
	Watching    bool            `json:"watching"`
	Root        string          `json:"root,omitempty"`
	Backend     string          `json:"backend,omitempty"`
	WatchCount  int             `json:"watch_count"`
	IgnoreFiles []string        `json:"ignore_files,omitempty"`
	IgnoreDirs  []string        `json:"ignore_dirs,omitempty"`
	Trigger     *TriggerStatus  `json:"trigger,omitempty"`
	Entries     []watcher.Entry `json:"entries,omitempty"`
}

// TriggerStatus shows the configured command and its persisted run history.
type TriggerStatus struct {
	Command      string         `json:"command"`
	Runs         int            `json:"runs"`
	Failures     int            `json:"failures"`
	LastRunAt    *time.Time     `json:"last_run_at,omitempty"`
	LastDuration *time.Duration `json:"last_duration,omitempty"`
	LastError    string         `json:"last_error,omitempty"`
}

// ReloadResult is returned by Daemon.Reload.
type ReloadResult struct {
	ConfigPath string `json:"config_path"`
	Root       string `json:"root,omitempty"`
	WatchCount int    `json:"watch_count"`
}
