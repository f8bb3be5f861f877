package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prettymuchbryce/treewatch/internal/ipc"
)

// withClient connects to the daemon and runs fn. Connection failures are
// logged by ipc.Connect and are not returned as errors.
func withClient(fn func(*ipc.Client) error) error {
	client, err := ipc.Connect()
	if err != nil {
		return nil
	}
	defer client.Close()
	return fn(client)
}

var enableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Resume watching (if it was previously disabled)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(client *ipc.Client) error {
			if err := client.Enable(); err != nil {
				return fmt.Errorf("failed to enable daemon: %w", err)
			}
			status, err := client.Status(false)
			if err != nil {
				return fmt.Errorf("failed to get status: %w", err)
			}
			if status.Watching {
				fmt.Printf("Daemon enabled, watching %d entries under %s\n", status.WatchCount, status.Root)
			} else {
				fmt.Println("Daemon enabled, but nothing is being watched (check the root in " + status.ConfigPath + ")")
			}
			return nil
		})
	},
}

var disableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Stop watching until enabled again, even across restarts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(client *ipc.Client) error {
			if err := client.Disable(); err != nil {
				return fmt.Errorf("failed to disable daemon: %w", err)
			}
			fmt.Println("Daemon disabled")
			return nil
		})
	},
}

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Reload the configuration file and rebuild the watch",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(client *ipc.Client) error {
			result, err := client.Reload()
			if err != nil {
				return fmt.Errorf("failed to reload config: %w", err)
			}
			if result.Root == "" {
				fmt.Printf("Reloaded %s (no root configured)\n", result.ConfigPath)
				return nil
			}
			fmt.Printf("Reloaded %s, watching %d entries under %s\n", result.ConfigPath, result.WatchCount, result.Root)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(enableCmd, disableCmd, reloadCmd)
}
