package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prettymuchbryce/treewatch/daemon"
	"github.com/prettymuchbryce/treewatch/internal/config"
	"github.com/prettymuchbryce/treewatch/internal/pathutil"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var daemonConfigPath string

var daemonCmd = &cobra.Command{
	Use:    "daemon",
	Hidden: true,
	Short:  "Keep the configured directory tree watched",
	Long: `Start a long-running process that watches the configured root and
serves status, reload, enable and disable requests over a local socket.

Optionally runs a command when changes settle and serves Prometheus
metrics. Shuts down gracefully on SIGINT/SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var configPath string
		var err error

		if cmd.Flags().Changed("config") {
			configPath = pathutil.ExpandTilde(daemonConfigPath)
		} else {
			configPath, err = config.EnsureDefaultConfig(daemonConfigPath)
			if err != nil {
				return err
			}
		}

		return daemon.Run(ctx, configPath, afero.NewOsFs(), SetupLogging)
	},
}

func init() {
	daemonCmd.Flags().StringVarP(&daemonConfigPath, "config", "c", pathutil.MustDefaultConfigPath(), "path to config file")
	rootCmd.AddCommand(daemonCmd)
}
