package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/prettymuchbryce/treewatch/internal/fs"
	"github.com/prettymuchbryce/treewatch/internal/report"
	"github.com/prettymuchbryce/treewatch/internal/watcher"
)

var treeIgnore ignoreFlags

// nopRegistrar accepts every registration without watching anything.
type nopRegistrar struct{}

func (nopRegistrar) Add(string) error    { return nil }
func (nopRegistrar) Remove(string) error { return nil }

var treeCmd = &cobra.Command{
	Use:   "tree <dir>",
	Short: "Print what would be watched below a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveRoot(args[0])
		if err != nil {
			return err
		}

		var failures int
		tree := watcher.NewTree(fs.NewReal(), nopRegistrar{}, func(e watcher.Event) {
			if e.Kind == watcher.EventError {
				failures++
				fmt.Fprintln(os.Stderr, e.Err)
			}
		})
		if err := treeIgnore.apply(tree); err != nil {
			return err
		}
		if err := tree.Watch(root); err != nil {
			return err
		}

		report.WriteTree(cmd.OutOrStdout(), root, tree.Entries())
		if failures > 0 {
			return fmt.Errorf("%d errors while traversing %s", failures, root)
		}
		return nil
	},
}

func init() {
	treeIgnore.register(treeCmd)
	rootCmd.AddCommand(treeCmd)
}
