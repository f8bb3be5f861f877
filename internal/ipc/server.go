package ipc

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"path/filepath"
	"runtime"
)

// Handler answers control requests. daemon.Controller implements it.
type Handler interface {
	HandleStatus(includeEntries bool) StatusData
	HandleReload() (ReloadResult, error)
	HandleEnable()
	HandleDisable()
}

// Daemon is registered under the RPC service name "Daemon".
type Daemon struct {
	handler Handler
}

// Status reports the watch state. args.Entries adds the full watch table.
func (d *Daemon) Status(args *StatusArgs, reply *StatusData) error {
	*reply = d.handler.HandleStatus(args != nil && args.Entries)
	return nil
}

// Reload rereads the config file and rebuilds the watch from its root.
func (d *Daemon) Reload(_ *Empty, reply *ReloadResult) error {
	result, err := d.handler.HandleReload()
	if err != nil {
		return err
	}
	*reply = result
	return nil
}

// Enable clears the persisted disable and watches the configured root again.
func (d *Daemon) Enable(_ *Empty, _ *Empty) error {
	d.handler.HandleEnable()
	return nil
}

// Disable releases every watch and keeps the tree unwatched, across
// restarts, until Enable.
func (d *Daemon) Disable(_ *Empty, _ *Empty) error {
	d.handler.HandleDisable()
	return nil
}

// Server serves the Daemon service over the control socket.
type Server struct {
	listener  net.Listener
	rpcServer *rpc.Server
	sockPath  string
}

// NewServer listens on SocketPath.
func NewServer(handler Handler) (*Server, error) {
	sockPath, err := SocketPath()
	if err != nil {
		return nil, err
	}
	return NewServerAt(sockPath, handler)
}

// NewServerAt listens on sockPath, replacing a stale socket file.
func NewServerAt(sockPath string, handler Handler) (*Server, error) {
	// Named pipes are not files.
	if runtime.GOOS != "windows" {
		if err := os.MkdirAll(filepath.Dir(sockPath), 0755); err != nil {
			return nil, err
		}
		os.Remove(sockPath)
	}

	listener, err := listen(sockPath)
	if err != nil {
		return nil, err
	}

	rpcServer := rpc.NewServer()
	if err := rpcServer.RegisterName("Daemon", &Daemon{handler: handler}); err != nil {
		listener.Close()
		return nil, err
	}

	return &Server{
		listener:  listener,
		rpcServer: rpcServer,
		sockPath:  sockPath,
	}, nil
}

// Serve handles one connection at a time until ctx is done, so Handler
// calls never overlap.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.listener.Close()
		if runtime.GOOS != "windows" {
			os.Remove(s.sockPath)
		}
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			if !errors.Is(err, net.ErrClosed) {
				slog.Warn("ipc accept error", "error", err)
			}
			continue
		}

		s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(conn))
	}

	return nil
}
