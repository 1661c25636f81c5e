//go:build linux

package platform

import (
	"fmt"

	"github.com/1broseidon/wincycle/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/shirou/gopsutil/v4/process"
)

// LinuxBackend wraps an existing X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Session = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// Open connects to the X server named by $DISPLAY.
func Open() (Session, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{conn: conn}, nil
}

// Close closes the underlying X11 connection.
func (b *LinuxBackend) Close() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// Windows lists managed client windows, topmost first.
func (b *LinuxBackend) Windows() ([]Window, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	clients, err := conn.StackedClients()
	if err != nil {
		return nil, err
	}

	currentDesktop, desktopErr := conn.GetCurrentDesktop()
	hasCurrentDesktop := desktopErr == nil

	attrs := make(map[xproto.Window]x11.Attributes, len(clients))
	for _, win := range clients {
		a, err := conn.WindowAttributes(win)
		if err != nil {
			// Closed between listing and reading; not an enumeration failure.
			continue
		}
		attrs[win] = a
	}

	windows := make([]Window, 0, len(attrs))
	for _, win := range clients {
		a, ok := attrs[win]
		if !ok {
			continue
		}

		w := Window{
			ID:               WindowID(win),
			PID:              a.PID,
			Title:            a.Title,
			Class:            a.Class,
			Bounds:           Rect{X: a.Geometry.X, Y: a.Geometry.Y, Width: a.Geometry.Width, Height: a.Geometry.Height},
			Visible:          true,
			Minimized:        a.Hidden,
			Topmost:          a.Above,
			ToolWindow:       a.SkipTaskbar,
			Shell:            a.Shell,
			OnCurrentDesktop: !hasCurrentDesktop || a.Desktop < 0 || a.Desktop == currentDesktop,
		}

		// Transient-for is the X11 notion of an owner; X has no popup
		// activation history, so the owner stands for its own active popup.
		if a.Transient != 0 && a.Transient != win {
			owner, known := attrs[a.Transient]
			w.Owner = WindowID(a.Transient)
			w.OwnerVisible = known && !owner.Hidden
			w.OwnerActivePopup = w.Owner
		}

		windows = append(windows, w)
	}

	return windows, nil
}

// ForegroundWindow returns the currently active/focused window ID.
func (b *LinuxBackend) ForegroundWindow() (WindowID, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}

	wid, err := conn.GetActiveWindow()
	if err != nil {
		return 0, err
	}
	return WindowID(wid), nil
}

// WindowPID returns the _NET_WM_PID of a window.
func (b *LinuxBackend) WindowPID(id WindowID) (int, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}

	attrs, err := conn.WindowAttributes(xproto.Window(id))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStaleWindow, err)
	}
	if attrs.PID <= 0 {
		return 0, fmt.Errorf("window 0x%x has no _NET_WM_PID", uint64(id))
	}
	return attrs.PID, nil
}

// ProcessPath resolves the executable of pid through gopsutil.
func (b *LinuxBackend) ProcessPath(pid int) (string, error) {
	if pid <= 0 {
		return "", fmt.Errorf("invalid pid %d", pid)
	}
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return "", fmt.Errorf("open process %d: %w", pid, err)
	}
	exe, err := proc.Exe()
	if err != nil {
		return "", fmt.Errorf("resolve executable of process %d: %w", pid, err)
	}
	return exe, nil
}

// HostedProcessIDs always returns nil; X11 has no host-wrapper processes.
func (b *LinuxBackend) HostedProcessIDs(WindowID) []int {
	return nil
}

// Activate maps a hidden window and asks the WM to focus it.
func (b *LinuxBackend) Activate(id WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}

	attrs, err := conn.WindowAttributes(xproto.Window(id))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStaleWindow, err)
	}
	if attrs.Hidden {
		if err := conn.RestoreWindow(uint32(id)); err != nil {
			return err
		}
	}
	return conn.FocusWindow(uint32(id))
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}
