package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/1broseidon/wincycle/internal/config"
	"github.com/1broseidon/wincycle/internal/discovery"
	"github.com/1broseidon/wincycle/internal/platform"
)

func runInspect(args []string) int {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", config.DefaultConfigPath(), "Config file path used for filter options")
	all := fs.Bool("all", false, "Include hidden windows")
	apps := fs.Bool("apps", false, "Apply the switch_apps filter options instead of switch_windows")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wincycle inspect [--path PATH] [--all] [--apps]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List top-level windows in Z-order with their attributes and the reason")
		fmt.Fprintln(os.Stderr, "each one is skipped. Does not need a running daemon.")
	}
	if code, ok := parseNoArgs(fs, "inspect", args); !ok {
		return code
	}

	res, err := config.LoadFromPath(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	opts := res.Config.WindowsOptions()
	if *apps {
		opts = res.Config.AppsOptions()
	}

	session, err := platform.Open()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer session.Close()

	windows, err := session.Windows()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fg, _ := session.ForegroundWindow()
	printInspect(os.Stdout, session, windows, fg, opts, *all, terminalWidth())
	return 0
}

func printInspect(w io.Writer, backend platform.Backend, windows []platform.Window, fg platform.WindowID, opts discovery.Options, all bool, width int) {
	switchable := 0
	for _, win := range windows {
		reason := discovery.Classify(win, opts)
		if reason == discovery.Hidden && !all {
			continue
		}
		status := "switchable"
		if reason != discovery.Switchable {
			status = "skip:" + string(reason)
		} else {
			switchable++
		}

		marker := " "
		if win.ID == fg {
			marker = "*"
		}
		exe := "?"
		if p, err := backend.ProcessPath(win.PID); err == nil {
			exe = discovery.ExecutableName(p)
		}
		line := fmt.Sprintf("%s 0x%-10x %-18s %-20s %-14s %s",
			marker, uint64(win.ID), status, truncate(exe, 20), windowFlags(win), win.Title)
		fmt.Fprintln(w, truncate(line, width))
	}
	fmt.Fprintf(w, "%d windows, %d switchable\n", len(windows), switchable)
}

func windowFlags(w platform.Window) string {
	var flags []string
	if w.Minimized {
		flags = append(flags, "min")
	}
	if w.Topmost {
		flags = append(flags, "top")
	}
	if w.ToolWindow {
		flags = append(flags, "tool")
	}
	if w.Owner != 0 {
		flags = append(flags, "owned")
	}
	if !w.OnCurrentDesktop {
		flags = append(flags, "away")
	}
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, ",")
}
