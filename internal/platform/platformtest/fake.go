// Package platformtest provides an in-memory platform.Backend for tests.
package platformtest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/1broseidon/wincycle/internal/platform"
)

// Backend is a scripted window system. Windows are kept in Z-order,
// frontmost first; Activate moves a window to the front like a real WM.
type Backend struct {
	mu         sync.Mutex
	windows    []platform.Window
	paths      map[int]string
	hosted     map[platform.WindowID][]int
	foreground platform.WindowID

	// EnumerateErr, when set, is returned by Windows.
	EnumerateErr error
	// ActivateErr, when set, is returned by Activate after recording the call.
	ActivateErr error

	Activations []platform.WindowID
}

var _ platform.Backend = (*Backend)(nil)

// New returns an empty fake backend.
func New() *Backend {
	return &Backend{
		paths:  make(map[int]string),
		hosted: make(map[platform.WindowID][]int),
	}
}

// AddProcess registers the executable path of pid.
func (b *Backend) AddProcess(pid int, path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.paths[pid] = path
}

// AddWindow appends a switchable window at the back of the Z-order.
func (b *Backend) AddWindow(id platform.WindowID, pid int, title string) {
	b.AddRaw(platform.Window{
		ID:               id,
		PID:              pid,
		Title:            title,
		Bounds:           platform.Rect{Width: 800, Height: 600},
		Visible:          true,
		OnCurrentDesktop: true,
	})
}

// AddRaw appends an arbitrary window record at the back of the Z-order.
func (b *Backend) AddRaw(w platform.Window) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.windows = append(b.windows, w)
	if b.foreground == 0 {
		b.foreground = w.ID
	}
}

// SetHosted records processes hosted inside a wrapper window.
func (b *Backend) SetHosted(id platform.WindowID, pids ...int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hosted[id] = pids
}

// Remove closes a window.
func (b *Backend) Remove(id platform.WindowID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, w := range b.windows {
		if w.ID == id {
			b.windows = append(b.windows[:i], b.windows[i+1:]...)
			break
		}
	}
	if b.foreground == id {
		b.foreground = 0
		if len(b.windows) > 0 {
			b.foreground = b.windows[0].ID
		}
	}
}

// Focus raises a window to the front as if the user clicked it.
func (b *Backend) Focus(id platform.WindowID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.raiseLocked(id)
}

// Order returns the current Z-order.
func (b *Backend) Order() []platform.WindowID {
	b.mu.Lock()
	defer b.mu.Unlock()
	ids := make([]platform.WindowID, len(b.windows))
	for i, w := range b.windows {
		ids[i] = w.ID
	}
	return ids
}

func (b *Backend) Windows() ([]platform.Window, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.EnumerateErr != nil {
		return nil, b.EnumerateErr
	}
	out := make([]platform.Window, len(b.windows))
	copy(out, b.windows)
	return out, nil
}

func (b *Backend) ForegroundWindow() (platform.WindowID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.foreground == 0 {
		return 0, errors.New("no foreground window")
	}
	return b.foreground, nil
}

func (b *Backend) WindowPID(id platform.WindowID) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, w := range b.windows {
		if w.ID == id {
			return w.PID, nil
		}
	}
	return 0, platform.ErrStaleWindow
}

func (b *Backend) ProcessPath(pid int) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	path, ok := b.paths[pid]
	if !ok {
		return "", fmt.Errorf("process %d not found", pid)
	}
	return path, nil
}

func (b *Backend) HostedProcessIDs(id platform.WindowID) []int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hosted[id]
}

func (b *Backend) Activate(id platform.WindowID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Activations = append(b.Activations, id)
	if b.ActivateErr != nil {
		return b.ActivateErr
	}
	if !b.raiseLocked(id) {
		return platform.ErrStaleWindow
	}
	return nil
}

// ActivationCount returns how many Activate calls were made.
func (b *Backend) ActivationCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Activations)
}

// LastActivation returns the most recent Activate target.
func (b *Backend) LastActivation() (platform.WindowID, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.Activations) == 0 {
		return 0, false
	}
	return b.Activations[len(b.Activations)-1], true
}

func (b *Backend) raiseLocked(id platform.WindowID) bool {
	for i, w := range b.windows {
		if w.ID != id {
			continue
		}
		w.Minimized = false
		copy(b.windows[1:i+1], b.windows[:i])
		b.windows[0] = w
		b.foreground = id
		return true
	}
	return false
}
