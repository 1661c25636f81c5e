//go:build linux

package hotkeys

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/1broseidon/wincycle/internal/command"
	"github.com/1broseidon/wincycle/internal/platform"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// x11Accessor is an optional interface for backends that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

var modifierMasks = map[Modifier]uint16{
	ModAlt:  xproto.ModMask1,
	ModCtrl: xproto.ModMaskControl,
	ModWin:  xproto.ModMask4,
}

// Hook drives an Interpreter from X11 key events. Accelerators are
// passively grabbed on the root window; once a gesture steps, the whole
// keyboard is grabbed so the modifier release and Escape are observed.
type Hook struct {
	xu     *xgbutil.XUtil
	root   xproto.Window
	interp *Interpreter
	logger *slog.Logger

	mu      sync.Mutex
	started bool
	// keyboardGrabbed is only touched on the xevent goroutine.
	keyboardGrabbed bool
}

var ignoreModsOnce sync.Once

// NewHook creates a hook for interp on the backend's X connection.
func NewHook(backend platform.Backend, interp *Interpreter, logger *slog.Logger) *Hook {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Hook{interp: interp, logger: logger}
	if accessor, ok := backend.(x11Accessor); ok {
		h.xu = accessor.XUtil()
		h.root = accessor.RootWindow()
	}
	return h
}

// Start grabs every enabled binding and runs the X event loop.
func (h *Hook) Start() error {
	if h.xu == nil {
		return errors.New("keyboard hook requires an X11 backend")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.started {
		return errors.New("keyboard hook already started")
	}

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(h.xu)
	})

	for _, b := range h.interp.Bindings() {
		if err := h.grab(b); err != nil {
			h.ungrabAll()
			return err
		}
	}

	xevent.KeyPressFun(h.onKeyPress).Connect(h.xu, h.root)
	xevent.KeyReleaseFun(h.onKeyRelease).Connect(h.xu, h.root)

	h.started = true
	go xevent.Main(h.xu)
	h.logger.Info("keyboard grabs installed", "bindings", len(h.interp.Bindings()))
	return nil
}

// Stop releases all grabs and stops the event loop.
func (h *Hook) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.started {
		return nil
	}
	h.ungrabAll()
	xevent.Detach(h.xu, h.root)
	xevent.Quit(h.xu)
	h.started = false
	return nil
}

// Enable re-grabs a binding so its accelerator reaches the switcher.
func (h *Hook) Enable(id command.BindingID) error {
	b, ok := h.binding(id)
	if !ok {
		return fmt.Errorf("unknown binding %s", id)
	}
	h.interp.SetEnabled(id, true)
	return h.grab(b)
}

// Disable ungrabs a binding so the focused application receives it.
func (h *Hook) Disable(id command.BindingID) error {
	b, ok := h.binding(id)
	if !ok {
		return fmt.Errorf("unknown binding %s", id)
	}
	h.interp.SetEnabled(id, false)
	h.ungrab(b)
	return nil
}

func (h *Hook) binding(id command.BindingID) (Binding, bool) {
	for _, b := range h.interp.Bindings() {
		if b.ID == id {
			return b, true
		}
	}
	return Binding{}, false
}

func (h *Hook) grab(b Binding) error {
	keycode, ok := keycodeFromScancode(b.Accelerator)
	if !ok {
		return fmt.Errorf("binding %s: key has no X11 keycode", b)
	}
	mask := modifierMasks[b.Modifier]
	for _, mods := range []uint16{mask, mask | xproto.ModMaskShift} {
		if err := keybind.GrabChecked(h.xu, h.root, mods, keycode); err != nil {
			return fmt.Errorf("grab %s: %w", b, err)
		}
	}
	return nil
}

func (h *Hook) ungrab(b Binding) {
	keycode, ok := keycodeFromScancode(b.Accelerator)
	if !ok {
		return
	}
	mask := modifierMasks[b.Modifier]
	keybind.Ungrab(h.xu, h.root, mask, keycode)
	keybind.Ungrab(h.xu, h.root, mask|xproto.ModMaskShift, keycode)
}

func (h *Hook) ungrabAll() {
	for _, b := range h.interp.Bindings() {
		h.ungrab(b)
	}
}

// syncModifiers reconciles interpreter modifier state with the event mask.
// Modifier presses that happened before a grab are never delivered, and a
// release can be missed if the keyboard grab failed.
func (h *Hook) syncModifiers(state uint16) {
	for _, b := range h.interp.Bindings() {
		down := state&modifierMasks[b.Modifier] != 0
		if down != h.interp.Held(b.ID) {
			h.interp.HandleKey(KeyEvent{Scancode: b.Modifiers[0], Down: down})
		}
	}
	shift := state&xproto.ModMaskShift != 0
	h.interp.HandleKey(KeyEvent{Scancode: ScanLeftShift, Down: shift})
}

func (h *Hook) onKeyPress(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
	h.syncModifiers(ev.State)
	scancode := scancodeFromKeycode(ev.Detail)
	if !h.interp.HandleKey(KeyEvent{Scancode: scancode, Down: true}) {
		return
	}
	if !h.keyboardGrabbed && h.interp.AnyHeld() {
		if err := keybind.GrabKeyboard(xu, h.root); err != nil {
			h.logger.Warn("keyboard grab failed; modifier release may be missed", "error", err)
			return
		}
		h.keyboardGrabbed = true
	}
}

func (h *Hook) onKeyRelease(xu *xgbutil.XUtil, ev xevent.KeyReleaseEvent) {
	scancode := scancodeFromKeycode(ev.Detail)
	h.interp.HandleKey(KeyEvent{Scancode: scancode, Down: false})
	if h.keyboardGrabbed && !h.interp.AnyHeld() {
		keybind.UngrabKeyboard(xu)
		h.keyboardGrabbed = false
	}
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
