//go:build !windows

package ipc

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/1broseidon/wincycle/internal/runtimepath"
)

// DefaultAddress returns the daemon's unix socket path.
func DefaultAddress() (string, error) {
	return runtimepath.SocketPath()
}

func listen(address string) (net.Listener, func(), error) {
	if err := removeStaleSocket(address); err != nil {
		return nil, nil, err
	}
	listener, err := net.Listen("unix", address)
	if err != nil {
		return nil, nil, err
	}
	if err := os.Chmod(address, 0o600); err != nil {
		listener.Close()
		return nil, nil, fmt.Errorf("failed to set socket permissions: %w", err)
	}
	cleanup := func() {
		os.Remove(address)
	}
	return listener, cleanup, nil
}

// removeStaleSocket removes a socket left by a previous daemon. A socket
// that still accepts connections belongs to a live daemon.
func removeStaleSocket(address string) error {
	if _, err := os.Stat(address); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if conn, err := net.DialTimeout("unix", address, 200*time.Millisecond); err == nil {
		conn.Close()
		return fmt.Errorf("another daemon is listening on %s", address)
	}
	if err := os.Remove(address); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove stale socket: %w", err)
	}
	return nil
}

func dial(address string, timeout time.Duration) (net.Conn, error) {
	if address == "" {
		return nil, errors.New("no daemon address")
	}
	return net.DialTimeout("unix", address, timeout)
}
