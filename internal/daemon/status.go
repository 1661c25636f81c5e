package daemon

import (
	"time"

	"github.com/1broseidon/wincycle/internal/platform"
)

// Status is a point-in-time view of the dispatcher for the control surface.
type Status struct {
	StartedAt     time.Time
	HookInstalled bool
	HotkeyActive  bool // false while a blacklisted app has focus
	WindowsHotkey string
	AppsHotkey    string
	Foreground    string
	Steps         uint64
	Activations   uint64
	Failures      uint64
	Reloads       uint64
	Dropped       uint64
	LastTarget    platform.WindowID
}

// Status returns a copy of the current status. Safe for concurrent use.
func (d *Dispatcher) Status() Status {
	d.mu.Lock()
	s := d.status
	d.mu.Unlock()
	if d.queue != nil {
		s.Dropped = d.queue.Dropped()
	}
	return s
}

func (d *Dispatcher) count(update func(*Status)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	update(&d.status)
}
