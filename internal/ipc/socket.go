package ipc

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/prettymuchbryce/treewatch/internal/pathutil"
)

// SocketEnv overrides the socket path, mainly for running several daemons side by side.
const SocketEnv = "TREEWATCH_SOCKET"

// StateEnv overrides the state file path.
const StateEnv = "TREEWATCH_STATE"

// SocketPath returns the platform-appropriate socket/address for IPC.
func SocketPath() (string, error) {
	if p := os.Getenv(SocketEnv); p != "" {
		return p, nil
	}
	if runtime.GOOS == "windows" {
		return `\\.\pipe\treewatch`, nil
	}
	// XDG_RUNTIME_DIR is a linux convention; macOS has no equivalent.
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" || runtime.GOOS == "darwin" {
		cacheDir, err := os.UserCacheDir()
		if err != nil {
			return "", err
		}
		dir = cacheDir
	}
	return filepath.Join(dir, "treewatch", "treewatch.sock"), nil
}

// StatePath returns the state file path, honoring StateEnv.
func StatePath() (string, error) {
	if p := os.Getenv(StateEnv); p != "" {
		return p, nil
	}
	return pathutil.DefaultStatePath()
}
