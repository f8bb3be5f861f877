package ipc

import (
	"log/slog"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client calls the Daemon service over the control socket.
type Client struct {
	rpc *rpc.Client
}

// Connect dials SocketPath and logs a hint when no daemon answers.
func Connect() (*Client, error) {
	sockPath, err := SocketPath()
	if err != nil {
		return nil, err
	}
	client, err := ConnectTo(sockPath)
	if err != nil {
		slog.Error("Failed to connect to the treewatch daemon. Are you sure it's running?", "error", err)
		return nil, err
	}
	return client, nil
}

// ConnectTo dials the daemon listening on sockPath.
func ConnectTo(sockPath string) (*Client, error) {
	conn, err := dial(sockPath, 2*time.Second)
	if err != nil {
		return nil, err
	}
	return &Client{rpc: jsonrpc.NewClient(conn)}, nil
}

// Status fetches the watch state, with the full watch table if entries is set.
func (c *Client) Status(entries bool) (*StatusData, error) {
	var status StatusData
	if err := c.rpc.Call("Daemon.Status", &StatusArgs{Entries: entries}, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Reload makes the daemon reread its config and rebuild the watch.
func (c *Client) Reload() (*ReloadResult, error) {
	var result ReloadResult
	if err := c.rpc.Call("Daemon.Reload", &Empty{}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Enable resumes watching the configured root.
func (c *Client) Enable() error {
	return c.rpc.Call("Daemon.Enable", &Empty{}, &Empty{})
}

// Disable releases every watch until Enable.
func (c *Client) Disable() error {
	return c.rpc.Call("Daemon.Disable", &Empty{}, &Empty{})
}

// Close hangs up.
func (c *Client) Close() error {
	return c.rpc.Close()
}
