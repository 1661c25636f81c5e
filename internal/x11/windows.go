package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

// Attributes holds the EWMH/ICCCM properties of a managed client window.
type Attributes struct {
	Title       string
	Class       string
	PID         int
	Hidden      bool
	Above       bool
	SkipTaskbar bool
	Shell       bool
	Transient   xproto.Window
	Desktop     int
	Geometry    Geometry
}

// Geometry is a window's size and root-relative position.
type Geometry struct {
	X, Y          int
	Width, Height int
}

// StackedClients returns managed client windows, topmost first.
// _NET_CLIENT_LIST_STACKING is ordered bottom-to-top, so it is reversed here.
func (c *Connection) StackedClients() ([]xproto.Window, error) {
	clients, err := ewmh.ClientListStackingGet(c.XUtil)
	if err != nil || len(clients) == 0 {
		// Some WMs only publish the mapping-order list.
		clients, err = ewmh.ClientListGet(c.XUtil)
		if err != nil {
			return nil, fmt.Errorf("failed to get client list: %w", err)
		}
	}

	ordered := make([]xproto.Window, len(clients))
	for i, win := range clients {
		ordered[len(clients)-1-i] = win
	}
	return ordered, nil
}

// WindowAttributes reads the switching-relevant properties of a client window.
func (c *Connection) WindowAttributes(windowID xproto.Window) (Attributes, error) {
	if !c.WindowExists(windowID) {
		return Attributes{}, fmt.Errorf("window 0x%x does not exist", windowID)
	}

	attrs := Attributes{
		Title:   c.windowTitle(windowID),
		Desktop: -1,
	}
	if class, err := icccm.WmClassGet(c.XUtil, windowID); err == nil {
		attrs.Class = strings.TrimSpace(class.Class)
	}
	if pid, err := ewmh.WmPidGet(c.XUtil, windowID); err == nil {
		attrs.PID = int(pid)
	}
	if owner, err := icccm.WmTransientForGet(c.XUtil, windowID); err == nil {
		attrs.Transient = owner
	}
	if desktop, err := c.GetWindowDesktop(uint32(windowID)); err == nil {
		attrs.Desktop = desktop
	}

	if states, err := ewmh.WmStateGet(c.XUtil, windowID); err == nil {
		for _, state := range states {
			switch state {
			case "_NET_WM_STATE_HIDDEN":
				attrs.Hidden = true
			case "_NET_WM_STATE_ABOVE":
				attrs.Above = true
			case "_NET_WM_STATE_SKIP_TASKBAR":
				attrs.SkipTaskbar = true
			}
		}
	}
	attrs.Shell = !c.IsNormalWindow(windowID)

	if geom, err := c.geometry(windowID); err == nil {
		attrs.Geometry = geom
	}
	return attrs, nil
}

// WindowExists reports whether the server still knows the window.
func (c *Connection) WindowExists(windowID xproto.Window) bool {
	_, err := xproto.GetWindowAttributes(c.XUtil.Conn(), windowID).Reply()
	return err == nil
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL", "_NET_WM_WINDOW_TYPE_DIALOG":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION",
			"_NET_WM_WINDOW_TYPE_TOOLBAR",
			"_NET_WM_WINDOW_TYPE_UTILITY":
			return false
		}
	}

	return len(types) == 0
}

// GetActiveWindow returns the window named by _NET_ACTIVE_WINDOW.
func (c *Connection) GetActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}

func (c *Connection) geometry(windowID xproto.Window) (Geometry, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return Geometry{}, err
	}

	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), windowID, c.Root, 0, 0).Reply()
	if err != nil {
		return Geometry{}, err
	}

	return Geometry{
		X:      int(translate.DstX),
		Y:      int(translate.DstY),
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}, nil
}

func (c *Connection) windowTitle(windowID xproto.Window) string {
	title, err := ewmh.WmNameGet(c.XUtil, windowID)
	if err == nil {
		title = strings.TrimSpace(title)
		if title != "" {
			return title
		}
	}

	title, err = icccm.WmNameGet(c.XUtil, windowID)
	if err == nil {
		return strings.TrimSpace(title)
	}
	return ""
}
