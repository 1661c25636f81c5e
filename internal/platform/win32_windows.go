//go:build windows

package platform

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32DLL   = windows.NewLazySystemDLL("user32.dll")
	kernel32DLL = windows.NewLazySystemDLL("kernel32.dll")
	dwmapiDLL   = windows.NewLazySystemDLL("dwmapi.dll")

	procIsIconic              = user32DLL.NewProc("IsIconic")
	procIsWindow              = user32DLL.NewProc("IsWindow")
	procGetWindow             = user32DLL.NewProc("GetWindow")
	procGetShellWindow        = user32DLL.NewProc("GetShellWindow")
	procGetLastActivePopup    = user32DLL.NewProc("GetLastActivePopup")
	procGetWindowTextW        = user32DLL.NewProc("GetWindowTextW")
	procGetWindowTextLengthW  = user32DLL.NewProc("GetWindowTextLengthW")
	procGetClassNameW         = user32DLL.NewProc("GetClassNameW")
	procGetWindowLongPtrW     = user32DLL.NewProc("GetWindowLongPtrW")
	procGetWindowLongW        = user32DLL.NewProc("GetWindowLongW")
	procGetWindowPlacement    = user32DLL.NewProc("GetWindowPlacement")
	procShowWindow            = user32DLL.NewProc("ShowWindow")
	procSetForegroundWindow   = user32DLL.NewProc("SetForegroundWindow")
	procSetWindowPos          = user32DLL.NewProc("SetWindowPos")
	procAllocConsole          = kernel32DLL.NewProc("AllocConsole")
	procFreeConsole           = kernel32DLL.NewProc("FreeConsole")
	procGetConsoleWindow      = kernel32DLL.NewProc("GetConsoleWindow")
	procDwmGetWindowAttribute = dwmapiDLL.NewProc("DwmGetWindowAttribute")
)

const (
	gwOwner = 4

	gwlExStyle      = -20
	wsExTopmost     = 0x00000008
	wsExToolWindow  = 0x00000080
	wsExAppWindow   = 0x00040000
	dwmwaCloaked    = 14
	swRestore       = 9
	swpNoZOrder     = 0x0004
	maxClassNameLen = 256
)

// windowPlacement mirrors the Win32 WINDOWPLACEMENT struct.
type windowPlacement struct {
	length           uint32
	flags            uint32
	showCmd          uint32
	ptMinPosition    point
	ptMaxPosition    point
	rcNormalPosition windows.Rect
}

// point mirrors the Win32 POINT struct.
type point struct {
	x int32
	y int32
}

func boolCall(proc *windows.LazyProc, args ...uintptr) bool {
	ret, _, _ := proc.Call(args...)
	return ret != 0
}

func isWindow(hwnd windows.HWND) bool {
	return boolCall(procIsWindow, uintptr(hwnd))
}

func isIconic(hwnd windows.HWND) bool {
	return boolCall(procIsIconic, uintptr(hwnd))
}

func getWindow(hwnd windows.HWND, cmd uint32) windows.HWND {
	ret, _, _ := procGetWindow.Call(uintptr(hwnd), uintptr(cmd))
	return windows.HWND(ret)
}

func shellWindow() windows.HWND {
	ret, _, _ := procGetShellWindow.Call()
	return windows.HWND(ret)
}

func getLastActivePopup(hwnd windows.HWND) windows.HWND {
	ret, _, _ := procGetLastActivePopup.Call(uintptr(hwnd))
	return windows.HWND(ret)
}

func windowText(hwnd windows.HWND) string {
	n, _, _ := procGetWindowTextLengthW.Call(uintptr(hwnd))
	if n == 0 {
		return ""
	}
	buf := make([]uint16, n+1)
	copied, _, _ := procGetWindowTextW.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return windows.UTF16ToString(buf[:copied])
}

func className(hwnd windows.HWND) string {
	buf := make([]uint16, maxClassNameLen)
	copied, _, _ := procGetClassNameW.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return windows.UTF16ToString(buf[:copied])
}

func exStyle(hwnd windows.HWND) uintptr {
	index := int32(gwlExStyle)
	// GetWindowLongPtrW is not exported on 32-bit user32.
	if procGetWindowLongPtrW.Find() == nil {
		ret, _, _ := procGetWindowLongPtrW.Call(uintptr(hwnd), uintptr(index))
		return ret
	}
	ret, _, _ := procGetWindowLongW.Call(uintptr(hwnd), uintptr(index))
	return ret
}

func isCloaked(hwnd windows.HWND) bool {
	if procDwmGetWindowAttribute.Find() != nil {
		return false
	}
	var cloaked uint32
	hr, _, _ := procDwmGetWindowAttribute.Call(
		uintptr(hwnd),
		dwmwaCloaked,
		uintptr(unsafe.Pointer(&cloaked)),
		unsafe.Sizeof(cloaked),
	)
	return hr == 0 && cloaked != 0
}

func normalBounds(hwnd windows.HWND) (Rect, bool) {
	wp := windowPlacement{}
	wp.length = uint32(unsafe.Sizeof(wp))
	if !boolCall(procGetWindowPlacement, uintptr(hwnd), uintptr(unsafe.Pointer(&wp))) {
		return Rect{}, false
	}
	r := wp.rcNormalPosition
	return Rect{
		X:      int(r.Left),
		Y:      int(r.Top),
		Width:  int(r.Right - r.Left),
		Height: int(r.Bottom - r.Top),
	}, true
}

func setForegroundWindow(hwnd windows.HWND) bool {
	return boolCall(procSetForegroundWindow, uintptr(hwnd))
}

// acquireForegroundRights briefly owns a console window, which makes the
// process eligible to change the foreground window.
func acquireForegroundRights() {
	if !boolCall(procAllocConsole) {
		return
	}
	if console, _, _ := procGetConsoleWindow.Call(); console != 0 {
		procSetWindowPos.Call(console, 0, 0, 0, 0, 0, swpNoZOrder)
	}
	procFreeConsole.Call()
}
