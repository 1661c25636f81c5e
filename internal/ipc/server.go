package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"
)

const connTimeout = 10 * time.Second

// Handler executes IPC commands against the running daemon.
type Handler interface {
	Status() StatusData
	Windows(ctx context.Context, groupByApp bool) (WindowsData, error)
	Reload(ctx context.Context) error
	Switch(gesture string, reverse bool) error
}

// Server handles IPC requests from clients
type Server struct {
	address string
	handler Handler
	logger  *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	cleanup  func()
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewServer creates a server listening on address, or on DefaultAddress
// when address is empty.
func NewServer(address string, handler Handler, logger *slog.Logger) (*Server, error) {
	if address == "" {
		var err error
		address, err = DefaultAddress()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve IPC address: %w", err)
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{address: address, handler: handler, logger: logger}, nil
}

// Address returns the listen address.
func (s *Server) Address() string {
	return s.address
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return errors.New("IPC server already started")
	}

	listener, cleanup, err := listen(s.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}
	s.listener = listener
	s.cleanup = cleanup
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.logger.Info("IPC server listening", "address", s.address)
	s.wg.Add(1)
	go s.acceptLoop(listener)
	return nil
}

// Stop closes the listener and waits for in-flight requests.
func (s *Server) Stop() error {
	s.mu.Lock()
	listener := s.listener
	s.listener = nil
	cleanup := s.cleanup
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	if listener == nil {
		return nil
	}
	err := listener.Close()
	s.wg.Wait()
	if cleanup != nil {
		cleanup()
	}
	return err
}

func (s *Server) acceptLoop(listener net.Listener) {
	defer s.wg.Done()
	for {
		conn, err := listener.Accept()
		if err != nil {
			if s.ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("IPC accept error", "error", err)
			time.Sleep(50 * time.Millisecond)
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

// handleConnection serves one request per connection.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	if err := conn.SetDeadline(time.Now().Add(connTimeout)); err != nil {
		s.logger.Debug("IPC failed to set deadline", "error", err)
	}

	reader := bufio.NewReaderSize(conn, maxRequestBytes+1)
	data, err := readFrame(reader, maxRequestBytes)
	if errors.Is(err, io.EOF) {
		return
	}
	if err != nil {
		s.writeResponse(conn, NewErrorResponse(fmt.Sprintf("invalid request: %v", err)))
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.writeResponse(conn, NewErrorResponse(fmt.Sprintf("invalid request: %v", err)))
		return
	}

	s.logger.Debug("IPC request", "command", req.Command)
	s.writeResponse(conn, s.handleCommand(req))
}

func (s *Server) writeResponse(conn net.Conn, resp *Response) {
	data, err := resp.Marshal()
	if err != nil {
		s.logger.Warn("IPC failed to marshal response", "error", err)
		data = []byte(`{"status":"ERROR","error":"internal encode error"}`)
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		s.logger.Debug("IPC failed to send response", "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	ctx, cancel := context.WithTimeout(s.ctx, connTimeout)
	defer cancel()

	switch req.Command {
	case CommandPing:
		return ok(nil)
	case CommandGetStatus:
		return ok(s.handler.Status())
	case CommandListWindows:
		var payload ListWindowsPayload
		if err := decodePayload(req.Payload, &payload); err != nil {
			return NewErrorResponse(err.Error())
		}
		windows, err := s.handler.Windows(ctx, payload.GroupByApp)
		if err != nil {
			return NewErrorResponse(fmt.Sprintf("failed to list windows: %v", err))
		}
		return ok(windows)
	case CommandReload:
		if err := s.handler.Reload(ctx); err != nil {
			return NewErrorResponse(fmt.Sprintf("failed to reload config: %v", err))
		}
		return ok(nil)
	case CommandSwitch:
		var payload SwitchPayload
		if err := decodePayload(req.Payload, &payload); err != nil {
			return NewErrorResponse(err.Error())
		}
		switch payload.Gesture {
		case GestureWindows, GestureApps:
		default:
			return NewErrorResponse(fmt.Sprintf("unknown gesture %q (use %s or %s)", payload.Gesture, GestureWindows, GestureApps))
		}
		if err := s.handler.Switch(payload.Gesture, payload.Reverse); err != nil {
			return NewErrorResponse(err.Error())
		}
		return ok(nil)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func ok(data any) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func decodePayload(raw json.RawMessage, out any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}
