//go:build windows

package platform

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

// WindowsBackend implements Backend with direct user32/dwmapi calls.
type WindowsBackend struct{}

var _ Session = (*WindowsBackend)(nil)

// Open loads the Win32 libraries the backend depends on.
func Open() (Session, error) {
	if err := user32DLL.Load(); err != nil {
		return nil, fmt.Errorf("user32.dll is unavailable: %w", err)
	}
	if err := kernel32DLL.Load(); err != nil {
		return nil, fmt.Errorf("kernel32.dll is unavailable: %w", err)
	}
	return &WindowsBackend{}, nil
}

// Close is a no-op; there is no connection to release.
func (b *WindowsBackend) Close() {}

var shellClasses = map[string]bool{
	"Progman":       true,
	"WorkerW":       true,
	"Shell_TrayWnd": true,
}

// Windows enumerates top-level windows in Z-order, frontmost first.
func (b *WindowsBackend) Windows() ([]Window, error) {
	hwnds, err := enumTopLevel()
	if err != nil {
		return nil, fmt.Errorf("EnumWindows: %w", err)
	}

	shell := shellWindow()
	windowsOut := make([]Window, 0, len(hwnds))
	for _, hwnd := range hwnds {
		var pid uint32
		if _, err := windows.GetWindowThreadProcessId(hwnd, &pid); err != nil {
			continue
		}

		style := exStyle(hwnd)
		class := className(hwnd)
		w := Window{
			ID:               WindowID(hwnd),
			PID:              int(pid),
			Title:            windowText(hwnd),
			Class:            class,
			Visible:          windows.IsWindowVisible(hwnd),
			Cloaked:          isCloaked(hwnd),
			Minimized:        isIconic(hwnd),
			Topmost:          style&wsExTopmost != 0,
			ToolWindow:       style&wsExToolWindow != 0 && style&wsExAppWindow == 0,
			Shell:            hwnd == shell || shellClasses[class],
			OnCurrentDesktop: true,
		}
		if bounds, ok := normalBounds(hwnd); ok {
			w.Bounds = bounds
		}
		if owner := getWindow(hwnd, gwOwner); owner != 0 {
			w.Owner = WindowID(owner)
			w.OwnerVisible = windows.IsWindowVisible(owner)
			w.OwnerActivePopup = WindowID(getLastActivePopup(owner))
		}
		windowsOut = append(windowsOut, w)
	}
	return windowsOut, nil
}

// ForegroundWindow returns the window that currently has input focus.
func (b *WindowsBackend) ForegroundWindow() (WindowID, error) {
	hwnd := windows.GetForegroundWindow()
	if hwnd == 0 {
		return 0, fmt.Errorf("no foreground window")
	}
	return WindowID(hwnd), nil
}

// WindowPID returns the id of the process that created the window.
func (b *WindowsBackend) WindowPID(id WindowID) (int, error) {
	var pid uint32
	if _, err := windows.GetWindowThreadProcessId(windows.HWND(id), &pid); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStaleWindow, err)
	}
	return int(pid), nil
}

// ProcessPath returns the full image path of pid.
func (b *WindowsBackend) ProcessPath(pid int) (string, error) {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		return "", fmt.Errorf("OpenProcess(%d): %w", pid, err)
	}
	defer windows.CloseHandle(h)

	buf := make([]uint16, windows.MAX_LONG_PATH)
	size := uint32(len(buf))
	if err := windows.QueryFullProcessImageName(h, 0, &buf[0], &size); err != nil {
		return "", fmt.Errorf("QueryFullProcessImageName(%d): %w", pid, err)
	}
	return windows.UTF16ToString(buf[:size]), nil
}

// HostedProcessIDs lists processes owning child windows of id other than
// id's own process. Packaged apps render into such a child of their frame host.
func (b *WindowsBackend) HostedProcessIDs(id WindowID) []int {
	hwnd := windows.HWND(id)
	var own uint32
	if _, err := windows.GetWindowThreadProcessId(hwnd, &own); err != nil {
		return nil
	}

	children := enumChildren(hwnd)
	seen := make(map[uint32]bool, len(children))
	var pids []int
	for _, child := range children {
		var pid uint32
		if _, err := windows.GetWindowThreadProcessId(child, &pid); err != nil {
			continue
		}
		if pid == 0 || pid == own || seen[pid] {
			continue
		}
		seen[pid] = true
		pids = append(pids, int(pid))
	}
	return pids
}

// Activate restores a minimized window and makes it the foreground window.
func (b *WindowsBackend) Activate(id WindowID) error {
	hwnd := windows.HWND(id)
	if !isWindow(hwnd) {
		return ErrStaleWindow
	}
	if isIconic(hwnd) {
		procShowWindow.Call(uintptr(hwnd), swRestore)
	}
	if windows.GetForegroundWindow() == hwnd {
		return nil
	}
	if setForegroundWindow(hwnd) {
		return nil
	}

	acquireForegroundRights()
	if setForegroundWindow(hwnd) {
		return nil
	}
	return fmt.Errorf("SetForegroundWindow(0x%x) was refused", uintptr(hwnd))
}

// Enumeration callbacks are created once; Windows caps the number of
// callbacks a process may create.
var (
	enumMu        sync.Mutex
	enumCollector []windows.HWND
	enumCallback  = windows.NewCallback(collectWindow)
)

func collectWindow(hwnd windows.HWND, _ uintptr) uintptr {
	enumCollector = append(enumCollector, hwnd)
	return 1
}

func enumTopLevel() ([]windows.HWND, error) {
	enumMu.Lock()
	defer enumMu.Unlock()

	enumCollector = enumCollector[:0]
	if err := windows.EnumWindows(enumCallback, unsafe.Pointer(nil)); err != nil {
		return nil, err
	}
	out := make([]windows.HWND, len(enumCollector))
	copy(out, enumCollector)
	return out, nil
}

func enumChildren(parent windows.HWND) []windows.HWND {
	enumMu.Lock()
	defer enumMu.Unlock()

	enumCollector = enumCollector[:0]
	windows.EnumChildWindows(parent, enumCallback, unsafe.Pointer(nil))
	out := make([]windows.HWND, len(enumCollector))
	copy(out, enumCollector)
	return out
}
