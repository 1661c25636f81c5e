// Package daemon runs the switcher's control loop: it consumes commands from
// the keyboard hook, the foreground watcher and IPC, and drives discovery,
// the cyclers and window activation on a single goroutine.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/wincycle/internal/command"
	"github.com/1broseidon/wincycle/internal/config"
	"github.com/1broseidon/wincycle/internal/cycle"
	"github.com/1broseidon/wincycle/internal/discovery"
	"github.com/1broseidon/wincycle/internal/foreground"
	"github.com/1broseidon/wincycle/internal/platform"
)

// ReloadFunc loads a fresh configuration.
type ReloadFunc func() (*config.Config, error)

// DispatcherConfig holds the dispatcher's collaborators.
type DispatcherConfig struct {
	Backend platform.Backend
	Queue   *command.Queue
	Config  *config.Config
	// Hotkeys toggles bindings for the blacklist. Nil when the keyboard hook
	// could not be installed.
	Hotkeys   foreground.Registrar
	Presenter Presenter
	Reload    ReloadFunc
	// OnReload is called on the control loop after a successful reload.
	OnReload func(*config.Config)
	// Resync asks the focus source to report the foreground again. It is
	// called when toggling the hotkey failed.
	Resync func()
	Logger *slog.Logger
}

// Dispatcher owns the cycle state. Every field below mu is only touched by
// the Run goroutine.
type Dispatcher struct {
	backend   platform.Backend
	disc      *discovery.Discoverer
	queue     *command.Queue
	presenter Presenter
	reload    ReloadFunc
	onReload  func(*config.Config)
	resync    func()
	logger    *slog.Logger

	mu     sync.Mutex
	status Status

	cfg     *config.Config
	windows *cycle.WindowCycler
	apps    *cycle.AppCycler
	guard   *foreground.Guard
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	presenter := cfg.Presenter
	if presenter == nil {
		presenter = LogPresenter{Logger: logger}
	}
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = config.DefaultConfig()
	}

	d := &Dispatcher{
		backend:   cfg.Backend,
		disc:      discovery.New(cfg.Backend),
		queue:     cfg.Queue,
		presenter: presenter,
		reload:    cfg.Reload,
		onReload:  cfg.OnReload,
		resync:    cfg.Resync,
		logger:    logger,
		cfg:       appCfg,
		windows:   cycle.NewWindowCycler(),
		apps:      cycle.NewAppCycler(),
	}
	if cfg.Hotkeys != nil {
		d.guard = foreground.NewGuard(cfg.Hotkeys, command.SwitchWindows, appCfg.SwitchWindows.Blacklist, logger)
	}
	d.status = Status{
		StartedAt:     time.Now(),
		HotkeyActive:  cfg.Hotkeys != nil,
		HookInstalled: cfg.Hotkeys != nil,
	}
	d.recordBindings(appCfg)
	return d
}

// Run processes commands in FIFO order until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	d.logger.Info("dispatcher started")
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("dispatcher stopped")
			return
		case cmd := <-d.queue.C():
			d.Handle(cmd)
		}
	}
}

// Handle processes one command. It is exported for tests and must only be
// called from the goroutine that owns the dispatcher.
func (d *Dispatcher) Handle(cmd command.Command) {
	// A failing command must not take down the loop.
	defer func() {
		if err := recover(); err != nil {
			d.logger.Error("dispatcher panic recovered", "command", fmt.Sprintf("%T", cmd), "error", err)
		}
	}()

	switch c := cmd.(type) {
	case command.GestureStep:
		d.step(c.BindingID, c.Reverse)
	case command.GestureFinished:
		d.finish(c.BindingID)
	case command.GesturePress:
		d.step(c.BindingID, c.Reverse)
		d.finish(c.BindingID)
	case command.GestureCancel:
		if c.BindingID == command.SwitchApps {
			d.apps.Cancel()
			d.presenter.HideApps()
			d.logger.Debug("app switch cancelled")
		}
	case command.FocusChanged:
		d.focusChanged(c.Executable)
	case command.Reload:
		err := d.reloadConfig()
		if c.Reply != nil {
			c.Reply <- err
		}
	case command.ListWindows:
		snap, err := d.listWindows(c.GroupByApp)
		if c.Reply != nil {
			c.Reply <- command.WindowsReply{Snapshot: snap, Err: err}
		}
	default:
		d.logger.Warn("unknown command", "command", fmt.Sprintf("%T", cmd))
	}
}

func (d *Dispatcher) step(id command.BindingID, reverse bool) {
	d.count(func(s *Status) { s.Steps++ })
	switch id {
	case command.SwitchWindows:
		d.stepWindows(reverse)
	case command.SwitchApps:
		d.stepApps(reverse)
	}
}

func (d *Dispatcher) finish(id command.BindingID) {
	switch id {
	case command.SwitchWindows:
		d.windows.Release()
	case command.SwitchApps:
		d.finishApps()
	}
}

func (d *Dispatcher) stepWindows(reverse bool) {
	opts := d.cfg.WindowsOptions()
	fg, err := d.backend.ForegroundWindow()
	if err != nil {
		d.logger.Debug("no foreground window", "error", err)
		return
	}
	snap, err := d.disc.Discover(opts)
	if err != nil {
		d.logger.Warn("window discovery failed", "error", err)
		return
	}

	key, ok := snap.KeyOf(fg)
	if !ok {
		key, err = d.disc.Resolve(fg, opts)
		if err != nil {
			d.logger.Debug("cannot resolve focused window", "window", fmt.Sprintf("0x%x", uint64(fg)), "error", err)
			return
		}
	}

	target, branch := d.windows.Next(reverse, key, snap)
	if branch == cycle.BranchNone {
		d.logger.Debug("nothing to switch to", "app", key)
		return
	}
	d.logger.Debug("switch window", "app", key, "target", fmt.Sprintf("0x%x", uint64(target)), "branch", branch, "reverse", reverse)
	d.activate(target)
}

func (d *Dispatcher) stepApps(reverse bool) {
	var snap *discovery.Snapshot
	if !d.apps.Active() {
		var err error
		snap, err = d.disc.Discover(d.cfg.AppsOptions())
		if err != nil {
			d.logger.Warn("window discovery failed", "error", err)
			return
		}
	}
	preview, ok := d.apps.Step(reverse, snap)
	if !ok {
		d.logger.Debug("no apps to switch to")
		return
	}
	d.presenter.ShowApps(preview)
}

func (d *Dispatcher) finishApps() {
	if !d.apps.Active() {
		return
	}
	selected, ok := d.apps.Finish()
	d.presenter.HideApps()
	if !ok {
		return
	}
	d.logger.Debug("switch app", "app", selected.Key, "target", fmt.Sprintf("0x%x", uint64(selected.Window)))
	d.activate(selected.Window)
}

func (d *Dispatcher) activate(id platform.WindowID) {
	err := d.backend.Activate(id)
	d.count(func(s *Status) {
		s.LastTarget = id
		if err != nil {
			s.Failures++
			return
		}
		s.Activations++
	})
	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, platform.ErrStaleWindow) {
			level = slog.LevelDebug
		}
		d.logger.Log(context.Background(), level, "window activation failed", "window", fmt.Sprintf("0x%x", uint64(id)), "error", err)
	}
}

func (d *Dispatcher) focusChanged(exe string) {
	if d.guard != nil {
		d.guard.Observe(exe)
		d.retryGuard()
	}
	d.count(func(s *Status) {
		s.Foreground = exe
		if d.guard != nil {
			s.HotkeyActive = d.guard.Active()
		}
	})
}

func (d *Dispatcher) retryGuard() {
	if d.guard.Pending() && d.resync != nil {
		d.resync()
	}
}

func (d *Dispatcher) reloadConfig() error {
	if d.reload == nil {
		return errors.New("reload is not configured")
	}
	next, err := d.reload()
	if err != nil {
		d.logger.Error("config reload failed", "error", err)
		return err
	}

	if !d.cfg.HotkeysEqual(next) {
		d.logger.Warn("hotkey changes take effect after a restart")
		next.SwitchWindows.Hotkey = d.cfg.SwitchWindows.Hotkey
		next.SwitchApps.Hotkey = d.cfg.SwitchApps.Hotkey
		next.SwitchApps.Enable = d.cfg.SwitchApps.Enable
	}
	d.cfg = next
	if d.guard != nil {
		d.guard.UpdateBlacklist(next.SwitchWindows.Blacklist)
		d.retryGuard()
	}
	d.count(func(s *Status) {
		s.Reloads++
		if d.guard != nil {
			s.HotkeyActive = d.guard.Active()
		}
	})
	if d.onReload != nil {
		d.onReload(next)
	}
	d.logger.Info("config reloaded")
	return nil
}

func (d *Dispatcher) listWindows(groupByApp bool) (*discovery.Snapshot, error) {
	opts := d.cfg.WindowsOptions()
	opts.GroupByApp = groupByApp
	return d.disc.Discover(opts)
}

func (d *Dispatcher) recordBindings(cfg *config.Config) {
	bindings, err := cfg.Bindings()
	if err != nil {
		return
	}
	for _, b := range bindings {
		switch b.ID {
		case command.SwitchWindows:
			d.status.WindowsHotkey = b.String()
		case command.SwitchApps:
			d.status.AppsHotkey = b.String()
		}
	}
}
