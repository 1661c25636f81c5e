package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/1broseidon/wincycle/internal/discovery"
	"github.com/1broseidon/wincycle/internal/ipc"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "windows":
		os.Exit(runWindows(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "next-window":
		os.Exit(runSwitch("next-window", ipc.GestureWindows, os.Args[2:]))
	case "next-app":
		os.Exit(runSwitch("next-app", ipc.GestureApps, os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "inspect":
		os.Exit(runInspect(os.Args[2:]))
	case "startup":
		os.Exit(runStartup(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: wincycle <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the wincycle daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  windows             List switchable windows seen by the daemon")
	fmt.Fprintln(w, "  reload              Reload the daemon configuration")
	fmt.Fprintln(w, "  next-window         Switch to the next window of the focused app")
	fmt.Fprintln(w, "  next-app            Switch to the next app")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config path         Print the configuration file path")
	fmt.Fprintln(w, "  config init         Write the default configuration file")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  inspect             Show every top-level window and why it is skipped")
	fmt.Fprintln(w, "  startup enable      Start the daemon at login")
	fmt.Fprintln(w, "  startup disable     Stop starting the daemon at login")
	fmt.Fprintln(w, "  startup status      Show the login registration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'wincycle <command> --help' for command-specific options.")
}

// parseNoArgs parses a flag set for a command that takes no positional
// arguments. It returns an exit code and false when the caller should stop.
func parseNoArgs(fs *flag.FlagSet, name string, args []string) (int, bool) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0, false
		}
		return 2, false
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", name)
		fs.Usage()
		return 2, false
	}
	return 0, true
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print status as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wincycle status [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	if code, ok := parseNoArgs(fs, "status", args); !ok {
		return code
	}

	status, err := ipc.NewClient().GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		return printJSON(status)
	}
	fmt.Printf("pid:            %d\n", status.PID)
	fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
	fmt.Printf("hook_installed: %v\n", status.HookInstalled)
	fmt.Printf("hotkey_active:  %v\n", status.HotkeyActive)
	fmt.Printf("windows_hotkey: %s\n", status.WindowsHotkey)
	if status.AppsHotkey != "" {
		fmt.Printf("apps_hotkey:    %s\n", status.AppsHotkey)
	}
	fmt.Printf("foreground:     %s\n", status.Foreground)
	fmt.Printf("steps:          %d\n", status.Steps)
	fmt.Printf("activations:    %d\n", status.Activations)
	fmt.Printf("failures:       %d\n", status.Failures)
	fmt.Printf("reloads:        %d\n", status.Reloads)
	fmt.Printf("dropped:        %d\n", status.Dropped)
	return 0
}

func runWindows(args []string) int {
	fs := flag.NewFlagSet("windows", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	flat := fs.Bool("flat", false, "List every window as its own entry")
	asJSON := fs.Bool("json", false, "Print windows as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wincycle windows [--flat] [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List the switchable windows the daemon sees, grouped by executable.")
	}
	if code, ok := parseNoArgs(fs, "windows", args); !ok {
		return code
	}

	data, err := ipc.NewClient().ListWindows(!*flat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		return printJSON(data)
	}

	width := terminalWidth()
	for _, g := range data.Groups {
		fmt.Printf("%s (%d)\n", discovery.ExecutableName(g.Key), len(g.Windows))
		for _, w := range g.Windows {
			id := fmt.Sprintf("0x%x", w.ID)
			fmt.Printf("  %-12s %s\n", id, truncate(w.Title, width-16))
		}
	}
	return 0
}

func runReload(args []string) int {
	fs := flag.NewFlagSet("reload", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wincycle reload")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Ask the daemon to re-read its configuration. Hotkey changes need a restart.")
	}
	if code, ok := parseNoArgs(fs, "reload", args); !ok {
		return code
	}

	if err := ipc.NewClient().Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("config reloaded")
	return 0
}

func runSwitch(name, gesture string, args []string) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	reverse := fs.Bool("reverse", false, "Move backwards")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: wincycle %s [--reverse]\n", name)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Perform one press and release of the hotkey through the daemon.")
	}
	if code, ok := parseNoArgs(fs, name, args); !ok {
		return code
	}

	if err := ipc.NewClient().Switch(gesture, *reverse); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func printJSON(v any) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func truncate(s string, max int) string {
	if max < 8 {
		max = 8
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimRight(string(r[:max-1]), " ") + "…"
}
