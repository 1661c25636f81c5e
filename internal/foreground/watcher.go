package foreground

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/1broseidon/wincycle/internal/command"
	"github.com/1broseidon/wincycle/internal/discovery"
	"github.com/1broseidon/wincycle/internal/platform"
)

// DefaultInterval is the focus polling period.
const DefaultInterval = 100 * time.Millisecond

// Poster accepts commands without blocking.
type Poster interface {
	Post(cmd command.Command) bool
}

// Watcher polls the foreground window and posts FocusChanged when its
// executable changes. It never touches control-loop state.
type Watcher struct {
	backend  platform.Backend
	out      Poster
	interval time.Duration
	logger   *slog.Logger
	last     string
	resync   atomic.Bool
}

// NewWatcher creates a watcher. A non-positive interval uses DefaultInterval.
func NewWatcher(backend platform.Backend, out Poster, interval time.Duration, logger *slog.Logger) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{backend: backend, out: out, interval: interval, logger: logger}
}

// Run polls until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("foreground watcher started", "interval", w.interval)
	w.Poll()
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("foreground watcher stopped")
			return
		case <-ticker.C:
			w.Poll()
		}
	}
}

// Resync makes the next poll report the foreground executable even if it
// has not changed. It is safe to call from any goroutine.
func (w *Watcher) Resync() {
	w.resync.Store(true)
}

// Poll checks the foreground window once.
func (w *Watcher) Poll() {
	exe, err := w.foregroundExecutable()
	if err != nil {
		w.logger.Debug("foreground lookup failed", "error", err)
		return
	}
	resync := w.resync.Swap(false)
	if exe == w.last && !resync {
		return
	}
	if !w.out.Post(command.FocusChanged{Executable: exe}) {
		// Retried on the next tick.
		if resync {
			w.resync.Store(true)
		}
		return
	}
	w.last = exe
}

func (w *Watcher) foregroundExecutable() (string, error) {
	id, err := w.backend.ForegroundWindow()
	if err != nil {
		return "", err
	}
	pid, err := w.backend.WindowPID(id)
	if err != nil {
		return "", err
	}
	path, err := w.backend.ProcessPath(pid)
	if err != nil {
		return "", err
	}
	return strings.ToLower(discovery.ExecutableName(path)), nil
}
