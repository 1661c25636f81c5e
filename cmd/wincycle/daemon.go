package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/wincycle/internal/command"
	"github.com/1broseidon/wincycle/internal/config"
	"github.com/1broseidon/wincycle/internal/daemon"
	"github.com/1broseidon/wincycle/internal/foreground"
	"github.com/1broseidon/wincycle/internal/hotkeys"
	"github.com/1broseidon/wincycle/internal/ipc"
	"github.com/1broseidon/wincycle/internal/logging"
	"github.com/1broseidon/wincycle/internal/overlay"
	"github.com/1broseidon/wincycle/internal/platform"
	"github.com/1broseidon/wincycle/internal/singleinstance"
)

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: "+config.DefaultConfigPath()+")")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wincycle daemon [--path PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run the switcher in the foreground until interrupted.")
	}
	if code, ok := parseNoArgs(fs, "daemon", args); !ok {
		return code
	}
	if *path == "" {
		*path = config.DefaultConfigPath()
	}

	lock, err := singleinstance.Acquire()
	if errors.Is(err, singleinstance.ErrAlreadyRunning) {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to acquire instance lock: %v\n", err)
		return 1
	}
	defer lock.Release()

	res, err := config.LoadFromPath(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}
	cfg := res.Config

	logger, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log: %v\n", err)
		return 1
	}
	defer logger.Close()
	logger.Info("configuration loaded", "path", res.Path, "exists", res.Exists,
		"windows_hotkey", cfg.SwitchWindows.Hotkey, "apps_enabled", cfg.SwitchApps.Enable)

	session, err := platform.Open()
	if err != nil {
		logger.Error("failed to connect to the window system", "error", err)
		return 1
	}
	defer session.Close()

	bindings, err := cfg.Bindings()
	if err != nil {
		logger.Error("invalid hotkeys", "error", err)
		return 1
	}

	queue := command.NewQueue(command.DefaultQueueSize)
	interp := hotkeys.NewInterpreter(queue, bindings...)

	// Without the hook the control surface still works.
	var registrar foreground.Registrar
	hook := hotkeys.NewHook(session, interp, logger.Logger)
	if err := hook.Start(); err != nil {
		logger.Error("keyboard hook unavailable, hotkeys are disabled", "error", err)
		fmt.Fprintf(os.Stderr, "wincycle: hotkeys disabled: %v\n", err)
	} else {
		registrar = hook
		defer hook.Stop()
	}

	var presenter daemon.Presenter = daemon.LogPresenter{Logger: logger.Logger}
	if picker, err := overlay.NewPicker(session, logger.Logger); err == nil {
		presenter = picker
		defer picker.Close()
	} else {
		logger.Debug("app picker overlay unavailable, logging previews", "error", err)
	}

	watcher := foreground.NewWatcher(session, queue, cfg.PollInterval(), logger.Logger)

	dispatcher := daemon.NewDispatcher(daemon.DispatcherConfig{
		Backend:   session,
		Queue:     queue,
		Config:    cfg,
		Hotkeys:   registrar,
		Presenter: presenter,
		Reload: func() (*config.Config, error) {
			r, err := config.LoadFromPath(*path)
			if err != nil {
				return nil, err
			}
			return r.Config, nil
		},
		OnReload: func(next *config.Config) {
			logger.SetLevel(next.LogLevel)
		},
		Resync: watcher.Resync,
		Logger: logger.Logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dispatcherDone := make(chan struct{})
	go func() {
		dispatcher.Run(ctx)
		close(dispatcherDone)
	}()
	go watcher.Run(ctx)

	ipcServer, err := ipc.NewServer("", daemon.NewControl(dispatcher), logger.Logger)
	if err == nil {
		err = ipcServer.Start()
	}
	if err != nil {
		logger.Warn("IPC server unavailable", "error", err)
	} else {
		defer ipcServer.Stop()
	}

	if cfg.WatchConfig {
		go func() {
			err := config.Watch(ctx, *path, logger.Logger, func() {
				if !queue.Post(command.Reload{}) {
					logger.Warn("config change dropped, command queue full")
				}
			})
			if err != nil {
				logger.Warn("config watch stopped", "error", err)
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	logger.Info("wincycle daemon started", "pid", os.Getpid())
	for sig := range sigCh {
		if sig == syscall.SIGHUP {
			logger.Info("received SIGHUP, reloading config")
			queue.Post(command.Reload{})
			continue
		}
		break
	}
	logger.Info("shutting down wincycle daemon")
	cancel()
	<-dispatcherDone
	return 0
}
