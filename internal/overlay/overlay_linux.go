//go:build linux

package overlay

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"

	"github.com/1broseidon/wincycle/internal/cycle"
	"github.com/1broseidon/wincycle/internal/platform"
)

type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// Picker draws the app list in an override-redirect window. It must be
// used from a single goroutine.
type Picker struct {
	xu     *xgbutil.XUtil
	root   xproto.Window
	logger *slog.Logger

	window  xproto.Window
	gc      xproto.Gcontext
	font    xproto.Font
	created bool
	mapped  bool
}

// NewPicker creates a picker on the backend's X connection. Resources are
// allocated on first use.
func NewPicker(backend platform.Backend, logger *slog.Logger) (*Picker, error) {
	accessor, ok := backend.(x11Accessor)
	if !ok || accessor.XUtil() == nil {
		return nil, errors.New("overlay: backend has no X connection")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Picker{xu: accessor.XUtil(), root: accessor.RootWindow(), logger: logger}, nil
}

// ShowApps draws preview with the selected entry highlighted.
func (p *Picker) ShowApps(preview cycle.Preview) {
	lines, selected := pickerLines(preview)
	if len(lines) == 0 {
		p.HideApps()
		return
	}
	if err := p.ensureResources(); err != nil {
		p.logger.Debug("app picker unavailable", "error", err)
		return
	}

	conn := p.xu.Conn()
	screen := p.xu.Screen()
	width, height := panelSize(lines)
	x, y := centered(int(screen.WidthInPixels), int(screen.HeightInPixels), width, height)

	xproto.ConfigureWindow(
		conn,
		p.window,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight|xproto.ConfigWindowStackMode,
		[]uint32{uint32(x), uint32(y), uint32(width), uint32(height), xproto.StackModeAbove},
	)
	if !p.mapped {
		xproto.MapWindow(conn, p.window)
		p.mapped = true
	}
	xproto.ClearArea(conn, false, p.window, 0, 0, 0, 0)

	baseline := paddingY + lineHeight - 5
	for i, line := range lines {
		fg, bg := uint32(ColorText), uint32(ColorBg)
		if i == selected {
			fg, bg = ColorBg, ColorSelection
		}
		xproto.ChangeGC(conn, p.gc, xproto.GcForeground|xproto.GcBackground, []uint32{fg, bg})
		xproto.ImageText8(
			conn,
			byte(len(line)),
			xproto.Drawable(p.window),
			p.gc,
			int16(paddingX),
			int16(baseline+i*lineHeight),
			line,
		)
	}
}

// HideApps unmaps the picker window.
func (p *Picker) HideApps() {
	if !p.mapped {
		return
	}
	xproto.UnmapWindow(p.xu.Conn(), p.window)
	p.mapped = false
}

// Close frees the X resources.
func (p *Picker) Close() {
	if !p.created {
		return
	}
	conn := p.xu.Conn()
	xproto.FreeGC(conn, p.gc)
	xproto.CloseFont(conn, p.font)
	xproto.DestroyWindow(conn, p.window)
	p.created = false
	p.mapped = false
}

func (p *Picker) ensureResources() error {
	if p.created {
		return nil
	}
	conn := p.xu.Conn()
	screen := p.xu.Screen()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return err
	}
	// Value list order follows the mask bit order: back_pixel, then override_redirect.
	err = xproto.CreateWindowChecked(
		conn,
		screen.RootDepth,
		wid,
		p.root,
		0, 0, 1, 1, 0,
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		xproto.CwBackPixel|xproto.CwOverrideRedirect,
		[]uint32{ColorBg, 1},
	).Check()
	if err != nil {
		return fmt.Errorf("create picker window: %w", err)
	}

	font, err := xproto.NewFontId(conn)
	if err != nil {
		xproto.DestroyWindow(conn, wid)
		return err
	}
	opened := false
	for _, name := range []string{"9x15", "fixed", "8x13", "6x13"} {
		if xproto.OpenFontChecked(conn, font, uint16(len(name)), name).Check() == nil {
			opened = true
			break
		}
	}
	if !opened {
		xproto.DestroyWindow(conn, wid)
		return errors.New("no core X font available")
	}

	gc, err := xproto.NewGcontextId(conn)
	if err == nil {
		err = xproto.CreateGCChecked(
			conn,
			gc,
			xproto.Drawable(wid),
			xproto.GcForeground|xproto.GcBackground|xproto.GcFont|xproto.GcGraphicsExposures,
			[]uint32{ColorText, ColorBg, uint32(font), 0},
		).Check()
	}
	if err != nil {
		xproto.CloseFont(conn, font)
		xproto.DestroyWindow(conn, wid)
		return fmt.Errorf("create picker GC: %w", err)
	}

	p.window, p.font, p.gc = wid, font, gc
	p.created = true
	return nil
}
