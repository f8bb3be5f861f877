// Package trigger runs a shell command once watch activity settles.
package trigger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/prettymuchbryce/treewatch/internal/watcher"
)

var metricRuns = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "treewatch",
	Subsystem: "trigger",
	Name:      "runs_total",
	Help:      "Total number of trigger command runs, by result",
}, []string{"result"})

// ExecFunc runs command to completion.
type ExecFunc func(ctx context.Context, command string) error

// CompleteFunc is called after every run with its start time, duration and result.
type CompleteFunc func(command string, start time.Time, duration time.Duration, err error)

// Runner debounces watch events into command runs. Runs never overlap; a
// change that arrives while the command is running schedules one more run.
type Runner struct {
	command  string
	debounce time.Duration
	exec     ExecFunc
	onDone   CompleteFunc

	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	timer *time.Timer

	// execMu serializes command runs.
	execMu sync.Mutex
}

// New creates a Runner for command. A nil exec runs command through the shell
// with output sent to stdout and stderr.
func New(command string, debounce time.Duration, exec ExecFunc) *Runner {
	if exec == nil {
		exec = ShellExec(os.Stdout, os.Stderr)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		command:  command,
		debounce: debounce,
		exec:     exec,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// OnComplete sets a function called after each run. Must be called before the
// first Trigger.
func (r *Runner) OnComplete(fn CompleteFunc) {
	r.onDone = fn
}

// Command returns the command this Runner executes.
func (r *Runner) Command() string {
	return r.command
}

// Handle is a watcher.Handler. Watch and unwatch events schedule a run;
// errors do not.
func (r *Runner) Handle(e watcher.Event) {
	if e.Kind == watcher.EventError {
		return
	}
	r.Trigger()
}

// Trigger schedules a run after the debounce delay, restarting the delay if
// one is already pending.
func (r *Runner) Trigger() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ctx.Err() != nil {
		return
	}
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(r.debounce, r.fire)
}

// Stop cancels any pending run and kills a running command.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cancel()
	if r.timer != nil {
		r.timer.Stop()
	}
}

func (r *Runner) fire() {
	r.execMu.Lock()
	defer r.execMu.Unlock()

	if r.ctx.Err() != nil {
		return
	}

	slog.Info("running trigger", "command", r.command)
	start := time.Now()
	err := r.exec(r.ctx, r.command)
	duration := time.Since(start)
	if err != nil {
		metricRuns.WithLabelValues("failure").Inc()
		slog.Error("trigger failed", "command", r.command, "duration", duration, "error", err)
	} else {
		metricRuns.WithLabelValues("success").Inc()
		slog.Debug("trigger finished", "command", r.command, "duration", duration)
	}

	if r.onDone != nil {
		r.onDone(r.command, start, duration, err)
	}
}

// ShellExec returns an ExecFunc that runs commands with sh -c (cmd /C on
// Windows), writing their output to stdout and stderr.
func ShellExec(stdout, stderr io.Writer) ExecFunc {
	return func(ctx context.Context, command string) error {
		var cmd *exec.Cmd
		if runtime.GOOS == "windows" {
			cmd = exec.CommandContext(ctx, "cmd", "/C", command)
		} else {
			cmd = exec.CommandContext(ctx, "sh", "-c", command)
		}
		cmd.Stdout = stdout
		cmd.Stderr = stderr
		return cmd.Run()
	}
}
