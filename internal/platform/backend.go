package platform

import "errors"

var (
	// ErrUnsupported is returned by backends on platforms without a window system binding.
	ErrUnsupported = errors.New("platform: window switching is not supported on this platform")
	// ErrStaleWindow is returned when a window handle no longer refers to a live window.
	ErrStaleWindow = errors.New("platform: window no longer exists")
)

// WindowID is an opaque, OS-assigned top-level window handle. Handles are
// plain comparable values and may become invalid at any time.
type WindowID uint64

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Area returns the rectangle's area, or zero for degenerate rectangles.
func (r Rect) Area() int {
	if r.Width <= 0 || r.Height <= 0 {
		return 0
	}
	return r.Width * r.Height
}

// Window is the raw attribute record of one enumerated top-level window.
// Backends fill it; deciding what is switchable happens in discovery.
type Window struct {
	ID    WindowID
	PID   int
	Title string
	Class string

	// Bounds is the restored (normal) placement, so minimized windows keep
	// their real size.
	Bounds Rect

	Visible    bool
	Cloaked    bool
	Minimized  bool
	Topmost    bool
	ToolWindow bool
	Shell      bool

	// OnCurrentDesktop is false only when the backend knows the window lives
	// on another virtual desktop.
	OnCurrentDesktop bool

	Owner            WindowID
	OwnerVisible     bool
	OwnerActivePopup WindowID
}

// Backend abstracts the window-system calls the switch engine needs.
type Backend interface {
	// Windows enumerates top-level windows in Z-order, frontmost first.
	Windows() ([]Window, error)
	ForegroundWindow() (WindowID, error)
	WindowPID(id WindowID) (int, error)
	// ProcessPath returns the full executable path of a process.
	ProcessPath(pid int) (string, error)
	// HostedProcessIDs lists processes owning child windows of id, other
	// than id's own process.
	HostedProcessIDs(id WindowID) []int
	// Activate restores id if minimized and brings it to the foreground.
	Activate(id WindowID) error
}

// Session is a Backend bound to a live window-system connection.
type Session interface {
	Backend
	Close()
}
