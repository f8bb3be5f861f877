package state

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/prettymuchbryce/treewatch/internal/ipc"
)

// TriggerState tracks the run history of the trigger command.
type TriggerState struct {
	Command      string        `json:"command"`
	Runs         int           `json:"runs"`
	Failures     int           `json:"failures"`
	LastRunAt    time.Time     `json:"last_run_at"`
	LastDuration time.Duration `json:"last_duration"`
	LastError    string        `json:"last_error,omitempty"`
}

// State tracks daemon state that persists across restarts.
type State struct {
	mu   sync.RWMutex
	path string

	// Disabled is set by `treewatch disable` and survives a daemon restart.
	Disabled bool          `json:"disabled"`
	Trigger  *TriggerState `json:"trigger,omitempty"`
}

// Load loads state from the default state file path.
// If the file doesn't exist, returns an empty state.
func Load() (*State, error) {
	path, err := ipc.StatePath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads state from the specified path.
// If the file doesn't exist, returns an empty state.
func LoadFrom(path string) (*State, error) {
	s := &State{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, s); err != nil {
		// Log warning but return empty state rather than failing
		slog.Warn("failed to parse state file, starting fresh", "error", err)
		return &State{path: path}, nil
	}

	return s, nil
}

// SetDisabled records whether watching is disabled and persists to disk.
func (s *State) SetDisabled(disabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Disabled = disabled
	return s.save()
}

// IsDisabled reports whether watching was last disabled.
func (s *State) IsDisabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Disabled
}

// RecordTriggerRun records one trigger run and persists to disk.
// History is reset when the command changes.
func (s *State) RecordTriggerRun(command string, runAt time.Time, duration time.Duration, runErr error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Trigger == nil || s.Trigger.Command != command {
		s.Trigger = &TriggerState{Command: command}
	}
	s.Trigger.Runs++
	s.Trigger.LastRunAt = runAt
	s.Trigger.LastDuration = duration
	s.Trigger.LastError = ""
	if runErr != nil {
		s.Trigger.Failures++
		s.Trigger.LastError = runErr.Error()
	}
	return s.save()
}

// GetTriggerState returns the persisted history for command.
// Returns nil if command has never run.
func (s *State) GetTriggerState(command string) *TriggerState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.Trigger == nil || s.Trigger.Command != command {
		return nil
	}
	ts := *s.Trigger
	return &ts
}

// save persists the state to disk. Must be called with mu held.
func (s *State) save() error {
	if s.path == "" {
		return nil
	}

	// Create parent directory if needed
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0644)
}

// Clear removes all state (useful for testing).
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Disabled = false
	s.Trigger = nil
}
