//go:build windows

package ipc

import (
	"errors"
	"fmt"
	"net"
	"os/user"
	"regexp"
	"strings"
	"time"

	"github.com/Microsoft/go-winio"

	"github.com/1broseidon/wincycle/internal/runtimepath"
)

// DefaultAddress returns the per-user named pipe path.
func DefaultAddress() (string, error) {
	return runtimepath.PipeName(runtimepath.Username()), nil
}

func listen(address string) (net.Listener, func(), error) {
	securityDescriptor, err := pipeSecurityDescriptor()
	if err != nil {
		return nil, nil, err
	}
	listener, err := winio.ListenPipe(address, &winio.PipeConfig{
		SecurityDescriptor: securityDescriptor,
		MessageMode:        false,
		InputBufferSize:    int32(maxRequestBytes),
		OutputBufferSize:   int32(maxRequestBytes),
	})
	if err != nil {
		return nil, nil, err
	}
	return listener, nil, nil
}

var validSIDPattern = regexp.MustCompile(`^S-1(-\d+)+$`)

// pipeSecurityDescriptor grants access to SYSTEM and the current user only.
func pipeSecurityDescriptor() (string, error) {
	current, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("resolve current user: %w", err)
	}
	sid := strings.TrimSpace(current.Uid)
	if sid == "" {
		return "", errors.New("current user SID is unavailable")
	}
	if !validSIDPattern.MatchString(sid) {
		return "", fmt.Errorf("current user SID has unexpected format: %s", sid)
	}
	return fmt.Sprintf("D:P(A;;GA;;;SY)(A;;GA;;;%s)", sid), nil
}

func dial(address string, timeout time.Duration) (net.Conn, error) {
	if address == "" {
		return nil, errors.New("no daemon address")
	}
	return winio.DialPipe(address, &timeout)
}
