//go:build integration

// Package daemontest runs data-driven integration tests against a live daemon.
package daemontest

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"text/template"
	"time"

	"github.com/spf13/afero"

	"github.com/prettymuchbryce/treewatch/daemon"
	"github.com/prettymuchbryce/treewatch/internal/ipc"
	"github.com/prettymuchbryce/treewatch/internal/watcher"
)

// FileEntry describes a file or directory with all relevant properties.
type FileEntry struct {
	Path    string        // relative path using forward slashes (e.g., "source/file.txt")
	IsDir   bool          // true for directories
	Content string        // file content (mutually exclusive with Size)
	Size    int64         // create file with this many zero bytes
	ModTime time.Duration // relative to now, e.g., -48*time.Hour means "2 days ago"
}

// TestCase is a complete data-driven integration test.
type TestCase struct {
	Name    string        // test name (used for t.Run)
	Config  string        // YAML config with {{.TmpDir}} template variable
	Before  []FileEntry   // files/dirs to create BEFORE daemon starts
	Trigger []FileEntry   // files/dirs to create AFTER daemon starts
	Remove  []string      // paths to delete AFTER Trigger is applied
	Expect  []string      // keys that SHOULD be watched, e.g. "/source/a.txt"
	Missing []string      // keys that should NOT be watched
	Check   func(t *testing.T, entries []watcher.Entry)
	Timeout time.Duration // how long to wait for expected state (default: 2s)
}

// Harness manages the test environment.
type Harness struct {
	t       *testing.T
	tmpDir  string
	sockDir string
	fs      afero.Fs
	cancel  context.CancelFunc
	errCh   chan error
}

// Run executes a single test case.
func Run(t *testing.T, tc TestCase) {
	t.Helper()

	// Unix socket paths are length-limited, so keep the socket out of t.TempDir.
	sockDir, err := os.MkdirTemp("", "tw")
	if err != nil {
		t.Fatalf("failed to create socket dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(sockDir) })

	h := &Harness{
		t:       t,
		tmpDir:  t.TempDir(),
		sockDir: sockDir,
		fs:      afero.NewOsFs(),
		errCh:   make(chan error, 1),
	}
	t.Setenv(ipc.SocketEnv, filepath.Join(sockDir, "d.sock"))
	t.Setenv(ipc.StateEnv, filepath.Join(h.tmpDir, "state.json"))

	h.createEntries(tc.Before)
	h.startDaemon(tc.Config)

	h.createEntries(tc.Trigger)
	h.removePaths(tc.Remove)

	h.waitAndVerify(tc)

	h.cleanup()
}

// RunTable executes multiple test cases as subtests.
func RunTable(t *testing.T, cases []TestCase) {
	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			Run(t, tc)
		})
	}
}

// createEntries creates files and directories from FileEntry specs.
func (h *Harness) createEntries(entries []FileEntry) {
	h.t.Helper()

	for _, e := range entries {
		// Convert forward slashes to OS-specific separator for Windows compatibility
		path := filepath.Join(h.tmpDir, filepath.FromSlash(e.Path))

		if e.IsDir {
			if err := os.MkdirAll(path, 0755); err != nil {
				h.t.Fatalf("failed to create directory %s: %v", e.Path, err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			h.t.Fatalf("failed to create parent directory for %s: %v", e.Path, err)
		}

		var content []byte
		if e.Content != "" {
			content = []byte(e.Content)
		} else if e.Size > 0 {
			content = make([]byte, e.Size)
		}

		if err := os.WriteFile(path, content, 0644); err != nil {
			h.t.Fatalf("failed to create file %s: %v", e.Path, err)
		}

		if e.ModTime != 0 {
			mtime := time.Now().Add(e.ModTime)
			if err := os.Chtimes(path, mtime, mtime); err != nil {
				h.t.Fatalf("failed to set timestamps for %s: %v", e.Path, err)
			}
		}
	}
}

// removePaths deletes files or whole directories.
func (h *Harness) removePaths(paths []string) {
	h.t.Helper()

	for _, p := range paths {
		if err := os.RemoveAll(filepath.Join(h.tmpDir, filepath.FromSlash(p))); err != nil {
			h.t.Fatalf("failed to remove %s: %v", p, err)
		}
	}
}

// startDaemon starts the daemon with the given config template.
func (h *Harness) startDaemon(configTemplate string) {
	h.t.Helper()

	tmpl, err := template.New("config").Funcs(template.FuncMap{
		// join creates OS-native paths: {{join .TmpDir "source" "subdir"}}
		"join": filepath.Join,
	}).Parse(configTemplate)
	if err != nil {
		h.t.Fatalf("failed to parse config template: %v", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]string{
		"TmpDir": h.tmpDir,
	}); err != nil {
		h.t.Fatalf("failed to execute config template: %v", err)
	}

	configPath := filepath.Join(h.tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, buf.Bytes(), 0644); err != nil {
		h.t.Fatalf("failed to write config file: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel

	go func() {
		h.errCh <- daemon.Run(ctx, configPath, h.fs, func(level string) {
			var logLevel slog.Level
			switch level {
			case "debug":
				logLevel = slog.LevelDebug
			case "info":
				logLevel = slog.LevelInfo
			case "warn":
				logLevel = slog.LevelWarn
			case "error":
				logLevel = slog.LevelError
			default:
				logLevel = slog.LevelInfo
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
		})
	}()

	// Wait for the IPC server to come up
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case err := <-h.errCh:
			h.t.Fatalf("daemon failed to start: %v", err)
		default:
		}
		if client, err := h.connect(); err == nil {
			client.Close()
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	h.t.Fatal("daemon did not start within timeout")
}

// connect dials the daemon under test.
func (h *Harness) connect() (*ipc.Client, error) {
	return ipc.ConnectTo(filepath.Join(h.sockDir, "d.sock"))
}

// entries fetches the watch table from the daemon.
func (h *Harness) entries() ([]watcher.Entry, error) {
	client, err := h.connect()
	if err != nil {
		return nil, err
	}
	defer client.Close()

	status, err := client.Status(true)
	if err != nil {
		return nil, err
	}
	return status.Entries, nil
}

// waitAndVerify waits for the expected state and verifies it.
func (h *Harness) waitAndVerify(tc TestCase) {
	h.t.Helper()

	timeout := tc.Timeout
	if timeout == 0 {
		timeout = 2 * time.Second
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		entries, err := h.entries()
		if err == nil && checkKeys(entries, tc.Expect, tc.Missing) {
			if tc.Check != nil {
				tc.Check(h.t, entries)
			}
			return
		}
		time.Sleep(50 * time.Millisecond)
	}

	// Final check with error reporting
	entries, err := h.entries()
	if err != nil {
		h.t.Fatalf("failed to query daemon: %v", err)
	}
	h.assertKeys(entries, tc.Expect, tc.Missing)
}

func keySet(entries []watcher.Entry) map[string]bool {
	keys := make(map[string]bool, len(entries))
	for _, e := range entries {
		keys[e.Key] = true
	}
	return keys
}

// checkKeys checks if the expected state is achieved (no error reporting).
func checkKeys(entries []watcher.Entry, expect, missing []string) bool {
	keys := keySet(entries)
	for _, k := range expect {
		if !keys[k] {
			return false
		}
	}
	for _, k := range missing {
		if keys[k] {
			return false
		}
	}
	return true
}

// assertKeys checks the expected state and reports errors.
func (h *Harness) assertKeys(entries []watcher.Entry, expect, missing []string) {
	h.t.Helper()

	keys := keySet(entries)
	var all []string
	for k := range keys {
		all = append(all, k)
	}
	sort.Strings(all)

	for _, k := range expect {
		if !keys[k] {
			h.t.Errorf("expected %s to be watched; watched: %v", k, all)
		}
	}
	for _, k := range missing {
		if keys[k] {
			h.t.Errorf("expected %s to NOT be watched; watched: %v", k, all)
		}
	}
}

// cleanup stops the daemon gracefully.
func (h *Harness) cleanup() {
	h.t.Helper()

	if h.cancel != nil {
		h.cancel()
	}

	select {
	case err := <-h.errCh:
		if err != nil {
			h.t.Errorf("daemon returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		h.t.Error("daemon did not stop within timeout")
	}
}
