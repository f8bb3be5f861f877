package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/prettymuchbryce/treewatch/internal/fs"
	"github.com/prettymuchbryce/treewatch/internal/notify"
	"github.com/prettymuchbryce/treewatch/internal/report"
	"github.com/prettymuchbryce/treewatch/internal/trigger"
	"github.com/prettymuchbryce/treewatch/internal/watcher"
)

var (
	watchIgnore       ignoreFlags
	watchBackend      string
	watchPollInterval time.Duration
	watchExec         string
	watchDebounce     time.Duration
	watchMIME         bool
	watchQuiet        bool
	watchSilent       bool
	watchTimeFormat   string
	watchLogLevel     string
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Watch a directory tree in the foreground and print changes",
	Long: `Watch every file and directory below <dir>, printing each entry as it
is added to or removed from the watch.

With --exec, the command is run through the shell once changes settle.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		SetupLogging(watchLogLevel)

		root, err := resolveRoot(args[0])
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		notifier, err := notify.New(notify.Kind(watchBackend), watchPollInterval)
		if err != nil {
			return err
		}

		filesystem := fs.NewReal()
		var reporter report.Reporter = report.NullReporter{}
		if !watchSilent {
			reporter = report.NewEvents(filesystem, report.Options{
				TimeFormat: watchTimeFormat,
				MIME:       watchMIME,
				Quiet:      watchQuiet,
			})
		}
		handlers := []watcher.Handler{reporter.Report}

		if watchExec != "" {
			runner := trigger.New(watchExec, watchDebounce, nil)
			defer runner.Stop()
			handlers = append(handlers, runner.Handle)
		}

		w := watcher.New(filesystem, notifier, watcher.Fanout(handlers...))
		if err := watchIgnore.apply(w.Tree()); err != nil {
			notifier.Close()
			return err
		}

		if err := w.Watch(root); err != nil {
			notifier.Close()
			return err
		}
		if !w.Tree().Watching() {
			notifier.Close()
			return fmt.Errorf("failed to watch %s", root)
		}

		return w.Run(ctx)
	},
}

func init() {
	watchIgnore.register(watchCmd)
	watchCmd.Flags().StringVar(&watchBackend, "backend", string(notify.KindFsnotify), "notification backend: fsnotify or poll")
	watchCmd.Flags().DurationVar(&watchPollInterval, "poll-interval", notify.DefaultPollInterval, "how often the poll backend checks for changes")
	watchCmd.Flags().StringVarP(&watchExec, "exec", "x", "", "shell command to run after changes settle")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 300*time.Millisecond, "how long changes must settle before --exec runs")
	watchCmd.Flags().BoolVar(&watchMIME, "mime", false, "print the detected content type of files")
	watchCmd.Flags().BoolVarP(&watchQuiet, "quiet", "q", false, "only print file events and errors")
	watchCmd.Flags().BoolVarP(&watchSilent, "silent", "s", false, "print nothing; useful with --exec")
	watchCmd.Flags().StringVar(&watchTimeFormat, "time-format", report.DefaultTimeFormat, "strftime layout for timestamps; empty to hide")
	watchCmd.Flags().StringVar(&watchLogLevel, "log-level", "warn", "log level: debug, info, warn or error")
	rootCmd.AddCommand(watchCmd)
}
