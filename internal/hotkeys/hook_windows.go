//go:build windows

package hotkeys

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
	"unsafe"

	"github.com/1broseidon/wincycle/internal/command"
	"github.com/1broseidon/wincycle/internal/platform"
	"golang.org/x/sys/windows"
)

var (
	user32DLL   = windows.NewLazySystemDLL("user32.dll")
	kernel32DLL = windows.NewLazySystemDLL("kernel32.dll")

	procSetWindowsHookExW   = user32DLL.NewProc("SetWindowsHookExW")
	procUnhookWindowsHookEx = user32DLL.NewProc("UnhookWindowsHookEx")
	procCallNextHookEx      = user32DLL.NewProc("CallNextHookEx")
	procGetMessageW         = user32DLL.NewProc("GetMessageW")
	procPeekMessageW        = user32DLL.NewProc("PeekMessageW")
	procPostThreadMessageW  = user32DLL.NewProc("PostThreadMessageW")
	procGetModuleHandleW    = kernel32DLL.NewProc("GetModuleHandleW")
)

const (
	whKeyboardLL = 13
	hcAction     = 0
	llkhfUp      = 0x80
	wmQuit       = 0x0012
	pmNoRemove   = 0x0000
)

// kbdllHookStruct mirrors the Win32 KBDLLHOOKSTRUCT.
type kbdllHookStruct struct {
	vkCode      uint32
	scanCode    uint32
	flags       uint32
	time        uint32
	dwExtraInfo uintptr
}

// point mirrors the Win32 POINT struct.
type point struct {
	x int32
	y int32
}

// winMsg mirrors the Win32 MSG struct.
type winMsg struct {
	hWnd     uintptr
	message  uint32
	wParam   uintptr
	lParam   uintptr
	time     uint32
	pt       point
	lPrivate uint32
}

type loopReady struct {
	threadID uint32
	err      error
}

// The OS calls the hook procedure without user context, so the installed
// Hook is reachable through this process-wide slot. Only one Hook may be
// installed at a time.
var (
	installedHook atomic.Pointer[Hook]
	hookCallback  = windows.NewCallback(lowLevelKeyboardProc)
)

// Hook installs a WH_KEYBOARD_LL hook on a dedicated OS thread and feeds
// every key event to an Interpreter.
type Hook struct {
	interp *Interpreter
	logger *slog.Logger

	mu       sync.Mutex
	threadID uint32
	doneCh   chan struct{}
}

// NewHook creates a hook for interp. The backend is unused on Windows.
func NewHook(_ platform.Backend, interp *Interpreter, logger *slog.Logger) *Hook {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hook{interp: interp, logger: logger}
}

// Start installs the hook and starts its message loop.
func (h *Hook) Start() error {
	if err := user32DLL.Load(); err != nil {
		return fmt.Errorf("user32.dll is unavailable: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.doneCh != nil {
		return errors.New("keyboard hook already started")
	}
	if !installedHook.CompareAndSwap(nil, h) {
		return errors.New("another keyboard hook is installed")
	}

	readyCh := make(chan loopReady, 1)
	doneCh := make(chan struct{})
	go h.run(readyCh, doneCh)

	ready := <-readyCh
	if ready.err != nil {
		installedHook.CompareAndSwap(h, nil)
		return fmt.Errorf("install keyboard hook: %w", ready.err)
	}
	h.threadID = ready.threadID
	h.doneCh = doneCh
	return nil
}

// Stop removes the hook and waits for its thread to exit.
func (h *Hook) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.doneCh == nil {
		return nil
	}

	var stopErr error
	ret, _, err := procPostThreadMessageW.Call(uintptr(h.threadID), wmQuit, 0, 0)
	if ret == 0 {
		stopErr = fmt.Errorf("PostThreadMessageW(WM_QUIT): %w", err)
	}

	select {
	case <-h.doneCh:
	case <-time.After(2 * time.Second):
		stopErr = errors.Join(stopErr, errors.New("keyboard hook thread did not exit"))
	}
	h.doneCh = nil
	installedHook.CompareAndSwap(h, nil)
	return stopErr
}

// Enable honors a binding's accelerator again.
func (h *Hook) Enable(id command.BindingID) error {
	if !h.interp.SetEnabled(id, true) {
		return fmt.Errorf("unknown binding %s", id)
	}
	return nil
}

// Disable lets a binding's accelerator pass through to applications.
func (h *Hook) Disable(id command.BindingID) error {
	if !h.interp.SetEnabled(id, false) {
		return fmt.Errorf("unknown binding %s", id)
	}
	return nil
}

func (h *Hook) run(readyCh chan<- loopReady, doneCh chan struct{}) {
	// Low-level hooks are called on the installing thread's message loop.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(doneCh)

	threadID := windows.GetCurrentThreadId()

	// Creates the thread message queue so Stop can post WM_QUIT.
	var qmsg winMsg
	procPeekMessageW.Call(uintptr(unsafe.Pointer(&qmsg)), 0, 0, 0, pmNoRemove)

	module, _, _ := procGetModuleHandleW.Call(0)
	hook, _, err := procSetWindowsHookExW.Call(whKeyboardLL, hookCallback, module, 0)
	if hook == 0 {
		if errors.Is(err, syscall.Errno(0)) {
			err = errors.New("SetWindowsHookExW failed")
		}
		readyCh <- loopReady{err: err}
		return
	}
	defer func() {
		if ret, _, err := procUnhookWindowsHookEx.Call(hook); ret == 0 {
			h.logger.Error("failed to remove keyboard hook", "error", err)
		}
	}()

	readyCh <- loopReady{threadID: threadID}
	h.logger.Info("keyboard hook installed", "thread", threadID)

	for {
		var msg winMsg
		ret, _, lastErr := procGetMessageW.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0)
		switch int32(ret) {
		case -1:
			h.logger.Error("keyboard hook message loop failed", "error", lastErr)
			return
		case 0:
			return
		}
	}
}

// lowLevelKeyboardProc runs for every key event system-wide. It must return
// quickly; the interpreter only flips flags and posts to a buffered queue.
func lowLevelKeyboardProc(nCode int, wParam uintptr, lParam uintptr) uintptr {
	if nCode == hcAction {
		if h := installedHook.Load(); h != nil {
			kb := (*kbdllHookStruct)(unsafe.Pointer(lParam))
			ev := KeyEvent{Scancode: kb.scanCode, Down: kb.flags&llkhfUp == 0}
			if h.interp.HandleKey(ev) {
				return 1
			}
		}
	}
	ret, _, _ := procCallNextHookEx.Call(0, uintptr(nCode), wParam, lParam)
	return ret
}
