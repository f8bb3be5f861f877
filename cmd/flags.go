package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/prettymuchbryce/treewatch/internal/ignore"
	"github.com/prettymuchbryce/treewatch/internal/pathutil"
	"github.com/prettymuchbryce/treewatch/internal/watcher"
)

// ignoreFlags are shared by the commands that traverse a tree.
type ignoreFlags struct {
	files     []string
	dirs      []string
	noDefault bool
}

func (f *ignoreFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.files, "ignore-file", nil, "regexp (or glob:pattern) matched against file names; repeatable")
	cmd.Flags().StringArrayVar(&f.dirs, "ignore-dir", nil, "regexp (or glob:pattern) matched against directory keys like /a/b; repeatable")
	cmd.Flags().BoolVar(&f.noDefault, "no-default-ignores", false, "do not ignore .gitignore, .DS_Store and .git directories")
}

// filePatterns returns the file ignore patterns, defaults first.
func (f *ignoreFlags) filePatterns() []string {
	if f.noDefault {
		return f.files
	}
	return append(append([]string(nil), ignore.DefaultFilePatterns...), f.files...)
}

// dirPatterns returns the directory ignore patterns, defaults first.
func (f *ignoreFlags) dirPatterns() []string {
	if f.noDefault {
		return f.dirs
	}
	return append(append([]string(nil), ignore.DefaultDirPatterns...), f.dirs...)
}

// apply installs the patterns on tree.
func (f *ignoreFlags) apply(tree *watcher.Tree) error {
	if err := tree.SetIgnoreFile(f.filePatterns()); err != nil {
		return fmt.Errorf("--ignore-file: %w", err)
	}
	if err := tree.SetIgnoreDir(f.dirPatterns()); err != nil {
		return fmt.Errorf("--ignore-dir: %w", err)
	}
	return nil
}

// resolveRoot expands and absolutizes dir and checks that it is a directory.
func resolveRoot(dir string) (string, error) {
	root, err := filepath.Abs(pathutil.ExpandTilde(dir))
	if err != nil {
		return "", err
	}
	info, err := os.Stat(root)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", root)
	}
	return root, nil
}
