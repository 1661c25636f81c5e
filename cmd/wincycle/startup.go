package main

import (
	"fmt"
	"io"
	"os"

	"github.com/1broseidon/wincycle/internal/startup"
)

func printStartupUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: wincycle startup <enable|disable|status>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Register the daemon to start when you log in.")
}

func runStartup(args []string) int {
	if len(args) != 1 {
		printStartupUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "enable":
		exe, err := startup.Executable()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if err := startup.Enable(exe); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("startup enabled: %s\n", startup.CommandLine(exe))
		return 0
	case "disable":
		if err := startup.Disable(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("startup disabled")
		return 0
	case "status":
		state, err := startup.Status()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("enabled:  %v\n", state.Enabled)
		fmt.Printf("location: %s\n", state.Location)
		if state.Command != "" {
			fmt.Printf("command:  %s\n", state.Command)
		}
		return 0
	case "help", "-h", "--help":
		printStartupUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown startup command: %s\n\n", args[0])
		printStartupUsage(os.Stderr)
		return 2
	}
}
