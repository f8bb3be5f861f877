package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prettymuchbryce/treewatch/internal/config"
	"github.com/prettymuchbryce/treewatch/internal/fs"
	"github.com/prettymuchbryce/treewatch/internal/ipc"
	"github.com/prettymuchbryce/treewatch/internal/notify"
	"github.com/prettymuchbryce/treewatch/internal/state"
	"github.com/prettymuchbryce/treewatch/internal/trigger"
	"github.com/prettymuchbryce/treewatch/internal/watcher"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/spf13/afero"
)

// ErrNoRoot is returned by StartWatcher when the config names no root directory.
var ErrNoRoot = errors.New("no root directory configured")

// Controller manages the daemon lifecycle and implements ipc.Handler.
// All methods are called serially by the IPC server, so no locking is needed.
type Controller struct {
	configPath string
	afs        afero.Fs
	fs         fs.FileSystem
	state      *state.State
	cfg        *config.Config

	// newNotifier creates the backend for each watcher start.
	newNotifier func(kind notify.Kind, interval time.Duration) (notify.Notifier, error)

	watcher            *watcher.Watcher
	trigger            *trigger.Runner
	stopWatcher        context.CancelFunc
	chanWatcherStopped chan struct{}
}

// NewController creates a new daemon controller. afs is used to read the
// config; filesystem is the tree being watched.
func NewController(configPath string, afs afero.Fs, filesystem fs.FileSystem, st *state.State, cfg *config.Config) *Controller {
	return &Controller{
		configPath:  configPath,
		afs:         afs,
		fs:          filesystem,
		state:       st,
		cfg:         cfg,
		newNotifier: notify.New,
	}
}

// StartWatcher creates a watcher for the configured root, performs the
// initial traversal and starts handling notifications.
func (c *Controller) StartWatcher() error {
	if !c.cfg.HasRoot() {
		return ErrNoRoot
	}

	notifier, err := c.newNotifier(c.cfg.Backend.Kind, c.cfg.Backend.PollInterval)
	if err != nil {
		return fmt.Errorf("failed to create %s notifier: %w", c.cfg.Backend.Kind, err)
	}

	var runner *trigger.Runner
	handlers := []watcher.Handler{logEvent}
	if c.cfg.Trigger.Command != "" {
		runner = trigger.New(c.cfg.Trigger.Command, c.cfg.Trigger.Debounce, nil)
		runner.OnComplete(c.recordTriggerRun)
		handlers = append(handlers, runner.Handle)
	}

	w := watcher.New(c.fs, notifier, watcher.Fanout(handlers...))
	if err := c.configureIgnores(w.Tree()); err != nil {
		notifier.Close()
		return err
	}

	start := time.Now()
	if err := w.Watch(c.cfg.Root); err != nil {
		notifier.Close()
		return err
	}
	slog.Info("watching", "root", c.cfg.Root, "entries", w.WatchCount(), "duration", time.Since(start))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	c.watcher = w
	c.trigger = runner
	c.stopWatcher = cancel
	c.chanWatcherStopped = done

	go func() {
		defer close(done)
		if err := w.Run(ctx); err != nil {
			slog.Error("watcher error", "error", err)
		}
	}()

	return nil
}

// StopWatcher stops the current watcher and waits for it to finish.
func (c *Controller) StopWatcher() {
	if c.watcher == nil {
		return
	}

	if c.trigger != nil {
		c.trigger.Stop()
	}
	c.stopWatcher()
	<-c.chanWatcherStopped

	c.watcher = nil
	c.trigger = nil
	c.stopWatcher = nil
	c.chanWatcherStopped = nil
}

func (c *Controller) configureIgnores(tree *watcher.Tree) error {
	if err := tree.SetIgnoreFile(c.cfg.Ignore.Files); err != nil {
		return fmt.Errorf("ignore.files: %w", err)
	}
	if err := tree.SetIgnoreDir(c.cfg.Ignore.Dirs); err != nil {
		return fmt.Errorf("ignore.dirs: %w", err)
	}
	return nil
}

func (c *Controller) recordTriggerRun(command string, start time.Time, duration time.Duration, runErr error) {
	if err := c.state.RecordTriggerRun(command, start, duration, runErr); err != nil {
		slog.Warn("failed to persist trigger stats", "command", command, "error", err)
	}
}

// logEvent logs events the tree does not log itself.
func logEvent(e watcher.Event) {
	switch e.Kind {
	case watcher.EventError:
		slog.Warn("watch error", "key", e.Key, "error", e.Err)
	case watcher.EventUnwatch:
		if e.Key == "/" {
			slog.Warn("watch root removed", "path", e.Path)
		}
	}
}

// startIfEnabled starts the watcher unless it was disabled or there is no root.
func (c *Controller) startIfEnabled() error {
	if c.state.IsDisabled() {
		slog.Info("watching is disabled; run `treewatch enable` to resume")
		return nil
	}
	err := c.StartWatcher()
	if errors.Is(err, ErrNoRoot) {
		// Keep running for a later reload.
		slog.Warn("no root directory in config", "path", c.configPath)
		return nil
	}
	return err
}

// Run loads config and runs the daemon until context is cancelled.
func Run(ctx context.Context, configPath string, afs afero.Fs, setupLogging func(string)) error {
	cfg, err := config.LoadWithFs(configPath, afs)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	setupLogging(cfg.Logging.Level)

	// Load persistent state
	st, err := state.Load()
	if err != nil {
		slog.Warn("failed to load state, starting fresh", "error", err)
		st, _ = state.LoadFrom("")
	}

	slog.Info("loaded config", "root", cfg.Root, "backend", cfg.Backend.Kind, "trigger", cfg.Trigger.Command)

	controller := NewController(configPath, afs, fs.NewReal(), st, cfg)

	if err := controller.startIfEnabled(); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	metrics, err := startMetrics(cfg.Metrics.Listen)
	if err != nil {
		controller.StopWatcher()
		return fmt.Errorf("failed to start metrics server: %w", err)
	}
	defer metrics.shutdown()

	// Start IPC server
	ipcServer, err := ipc.NewServer(controller)
	if err != nil {
		controller.StopWatcher()
		return fmt.Errorf("failed to create IPC server: %w", err)
	}

	// Notify systemd that we're ready (no-op on non-systemd systems)
	daemon.SdNotify(false, daemon.SdNotifyReady)
	slog.Info("daemon ready")

	// Run IPC server (blocks until context cancelled)
	if err := ipcServer.Serve(ctx); err != nil {
		slog.Error("IPC server error", "error", err)
	}

	// Notify systemd that we're stopping (no-op on non-systemd systems)
	daemon.SdNotify(false, daemon.SdNotifyStopping)

	controller.StopWatcher()

	return nil
}
